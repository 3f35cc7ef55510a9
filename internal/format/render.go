package format

import (
	"cmp"
	"iter"
	"slices"
)

// Style is the resolved visual style of a rendered segment.
type Style struct {
	// Formatted is false for text not covered by any range.
	Formatted       bool
	Bold            bool
	Italic          bool
	Underline       bool
	FontSize        int
	Alignment       Alignment
	Heading         Heading
	TextColor       Color
	BackgroundColor Color
	MarginBottom    int
}

// Segment is one entry of the render plan. Start/End are code point offsets
// into the buffer.
type Segment struct {
	Text  string
	Start int
	End   int
	Style Style
}

var headingStyles = map[Heading]struct{ size, margin int }{
	H1: {24, 10},
	H2: {20, 8},
	H3: {18, 6},
}

// Resolve maps a range format to its visual style: a heading fixes the font
// size and weight, the remaining attributes layer on top.
func Resolve(f Format) Style {
	s := Style{
		Formatted:       true,
		Bold:            f.Bold,
		Italic:          f.Italic,
		Underline:       f.Underline,
		FontSize:        f.FontSize,
		Alignment:       f.Alignment,
		Heading:         f.Heading,
		TextColor:       f.TextColor,
		BackgroundColor: f.BackgroundColor,
	}
	if hs, ok := headingStyles[f.Heading]; ok {
		s.FontSize = hs.size
		s.Bold = true
		s.MarginBottom = hs.margin
	}
	return s
}

// span is one step of the left-to-right walk; format is nil for a gap.
type span struct {
	start, end int
	format     *Format
}

// walk visits ranges sorted by start (stable, so equal starts keep their
// insertion order). A gap is emitted when a range starts past the cursor,
// then the range itself, then the cursor moves to the range's end. When
// ranges overlap the cursor can move backwards and text is sliced again.
// Degenerate ranges produce nothing and leave the cursor alone.
func (m *Model) walk() iter.Seq[span] {
	return func(yield func(span) bool) {
		n := len(m.text)
		sorted := slices.Clone(m.ranges)
		slices.SortStableFunc(sorted, func(a, b Range) int {
			return cmp.Compare(a.Start, b.Start)
		})
		last := 0
		for i := range sorted {
			r := &sorted[i]
			start := clampInt(r.Start, 0, n)
			end := clampInt(r.End, start, n)
			if start == end {
				continue
			}
			if start > last {
				if !yield(span{start: last, end: start}) {
					return
				}
			}
			if !yield(span{start: start, end: end, format: &r.Format}) {
				return
			}
			last = end
		}
		if last < n {
			yield(span{start: last, end: n})
		}
	}
}

// Render returns the render plan. The sequence is recomputed on every
// iteration from the current ranges.
func (m *Model) Render() iter.Seq[Segment] {
	return func(yield func(Segment) bool) {
		for sp := range m.walk() {
			seg := Segment{
				Text:  string(m.text[sp.start:sp.end]),
				Start: sp.start,
				End:   sp.end,
			}
			if sp.format != nil {
				seg.Style = Resolve(*sp.format)
			}
			if !yield(seg) {
				return
			}
		}
	}
}

// Segments collects Render into a slice.
func (m *Model) Segments() []Segment {
	return slices.Collect(m.Render())
}
