package format

// ReconcileOnEdit replaces the buffer with newText and, when the edit
// shortened it, adjusts ranges to the deletion. Insertions leave every range
// untouched: typed text is not absorbed into neighbouring ranges.
//
// The deleted span is estimated from the selection held before the edit.
// A caret at the very end of the old text means the last characters went
// (backspace at end); otherwise the selection bounds are the span.
func (m *Model) ReconcileOnEdit(oldText, newText string, before Selection) {
	oldLen := len([]rune(oldText))
	next := []rune(newText)
	if len(next) < oldLen {
		m.ranges = reconcileDeletion(m.ranges, oldLen, len(next), before)
	}
	m.text = next
	m.sel = m.sel.clamp(len(m.text))
}

// Edit is ReconcileOnEdit against the model's own buffer and selection.
func (m *Model) Edit(newText string) {
	m.ReconcileOnEdit(string(m.text), newText, m.sel)
}

func deletionSpan(oldLen, deleted int, before Selection) (int, int) {
	before = before.clamp(oldLen)
	if before.Start == oldLen && before.End == oldLen {
		return max(0, oldLen-deleted), oldLen
	}
	return before.Start, before.End
}

// reconcileDeletion returns a new range list; the input is not modified.
func reconcileDeletion(ranges []Range, oldLen, newLen int, before Selection) []Range {
	deleted := oldLen - newLen
	delStart, delEnd := deletionSpan(oldLen, deleted, before)

	out := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		switch {
		case r.End <= delStart:
			// before the cut
		case r.Start >= delStart && r.End <= delEnd:
			continue
		case r.Start < delStart && r.End > delEnd:
			r.End -= deleted
		case r.Start >= delStart && r.Start < delEnd:
			r.Start = delStart
			r.End = max(delStart, r.End-deleted)
		case r.End > delStart && r.End <= delEnd:
			r.End = delStart
		case r.Start >= delEnd:
			r.Start -= deleted
			r.End -= deleted
		}
		out = append(out, clampRange(r, newLen))
	}
	return out
}

// clampRange keeps 0 <= Start <= End <= n. The estimated span may not be
// what the host removed (a mid-text backspace has a collapsed selection).
func clampRange(r Range, n int) Range {
	r.End = clampInt(r.End, 0, n)
	r.Start = clampInt(r.Start, 0, r.End)
	return r
}
