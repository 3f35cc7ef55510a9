package format

import "testing"

func newTestModel(text string) *Model {
	return New(text, Options{})
}

func TestApplyFormatCreateThenToggleOff(t *testing.T) {
	m := newTestModel("Hello World")
	sel := Selection{Start: 0, End: 5}

	if err := m.ApplyFormat(sel, PropItalic, true); err != nil {
		t.Fatalf("ApplyFormat error: %v", err)
	}
	ranges := m.Ranges()
	if len(ranges) != 1 {
		t.Fatalf("ranges = %d, want 1", len(ranges))
	}
	want := Range{Start: 0, End: 5, Format: DefaultFormat(16)}
	want.Italic = true
	if ranges[0] != want {
		t.Fatalf("range = %+v, want %+v", ranges[0], want)
	}
	if !m.CurrentFormat().Italic {
		t.Fatalf("current italic = false, want true")
	}

	if err := m.ApplyFormat(sel, PropItalic, true); err != nil {
		t.Fatalf("ApplyFormat error: %v", err)
	}
	if got := len(m.Ranges()); got != 0 {
		t.Fatalf("ranges = %d, want 0", got)
	}
	if m.CurrentFormat().Italic {
		t.Fatalf("current italic = true, want false")
	}
}

func TestApplyFormatSameValueTwiceIsNoop(t *testing.T) {
	m := newTestModel("Hello World")
	sel := Selection{Start: 6, End: 11}
	for i := 0; i < 2; i++ {
		if err := m.ApplyFormat(sel, PropBold, true); err != nil {
			t.Fatalf("ApplyFormat error: %v", err)
		}
	}
	if got := len(m.Ranges()); got != 0 {
		t.Fatalf("ranges = %d, want 0", got)
	}
	if m.CurrentFormat() != m.DefaultFormat() {
		t.Fatalf("current = %+v, want defaults", m.CurrentFormat())
	}
}

func TestApplyFormatUpdatesInPlace(t *testing.T) {
	m := newTestModel("Hello World")
	sel := Selection{Start: 0, End: 5}
	_ = m.ApplyFormat(sel, PropBold, true)
	_ = m.ApplyFormat(sel, PropItalic, true)

	ranges := m.Ranges()
	if len(ranges) != 1 {
		t.Fatalf("ranges = %d, want 1", len(ranges))
	}
	if !ranges[0].Bold || !ranges[0].Italic {
		t.Fatalf("range = %+v, want bold and italic", ranges[0])
	}
	if m.CurrentFormat() != ranges[0].Format {
		t.Fatalf("current = %+v, want %+v", m.CurrentFormat(), ranges[0].Format)
	}
}

func TestApplyFormatCollapsedOnlyTouchesCurrent(t *testing.T) {
	m := newTestModel("Hello")
	if err := m.ApplyFormat(Selection{Start: 3, End: 3}, PropBold, true); err != nil {
		t.Fatalf("ApplyFormat error: %v", err)
	}
	if got := len(m.Ranges()); got != 0 {
		t.Fatalf("ranges = %d, want 0", got)
	}
	if !m.CurrentFormat().Bold {
		t.Fatalf("current bold = false, want true")
	}
}

func TestApplyFormatSeedsFromCurrent(t *testing.T) {
	m := newTestModel("Hello World")
	_ = m.ApplyFormat(Selection{Start: 2, End: 2}, PropFontSize, 20)
	_ = m.ApplyFormat(Selection{Start: 0, End: 5}, PropBold, true)

	r := m.Ranges()[0]
	if r.FontSize != 20 || !r.Bold {
		t.Fatalf("range = %+v, want fontSize 20 and bold", r)
	}
}

func TestApplyFormatToggleOffResetsDefaults(t *testing.T) {
	tests := []struct {
		name  string
		prop  Property
		value any
		check func(Format) bool
	}{
		{"fontSize", PropFontSize, 20, func(f Format) bool { return f.FontSize == 16 }},
		{"alignment", PropAlignment, AlignRight, func(f Format) bool { return f.Alignment == AlignLeft }},
		{"heading", PropHeading, H2, func(f Format) bool { return f.Heading == HeadingNone }},
		{"textColor", PropTextColor, Color("#0000FF"), func(f Format) bool { return f.TextColor == "" }},
		{"backgroundColor", PropBackgroundColor, "#ADD8E6", func(f Format) bool { return f.BackgroundColor == "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel("Hello World")
			sel := Selection{Start: 1, End: 4}
			_ = m.ApplyFormat(sel, tt.prop, tt.value)
			_ = m.ApplyFormat(sel, tt.prop, tt.value)
			if got := len(m.Ranges()); got != 0 {
				t.Fatalf("ranges = %d, want 0", got)
			}
			if !tt.check(m.CurrentFormat()) {
				t.Fatalf("current = %+v, want %s reset", m.CurrentFormat(), tt.name)
			}
		})
	}
}

func TestApplyFormatClampsSelection(t *testing.T) {
	m := newTestModel("Hello")
	_ = m.ApplyFormat(Selection{Start: -3, End: 100}, PropBold, true)
	_ = m.ApplyFormat(Selection{Start: 4, End: 1}, PropUnderline, true)

	ranges := m.Ranges()
	if len(ranges) != 2 {
		t.Fatalf("ranges = %d, want 2", len(ranges))
	}
	if ranges[0].Start != 0 || ranges[0].End != 5 {
		t.Fatalf("range0 = %d..%d, want 0..5", ranges[0].Start, ranges[0].End)
	}
	if ranges[1].Start != 1 || ranges[1].End != 4 {
		t.Fatalf("range1 = %d..%d, want 1..4", ranges[1].Start, ranges[1].End)
	}
}

func TestApplyFormatInvalidValue(t *testing.T) {
	m := newTestModel("Hello")
	sel := Selection{Start: 0, End: 5}
	if err := m.ApplyFormat(sel, PropBold, "yes"); err == nil {
		t.Fatalf("expected error for string bold")
	}
	if err := m.ApplyFormat(sel, PropFontSize, 0); err == nil {
		t.Fatalf("expected error for zero font size")
	}
	if err := m.ApplyNamed(sel, "strike", true); err == nil {
		t.Fatalf("expected error for unknown property")
	}
	if got := len(m.Ranges()); got != 0 {
		t.Fatalf("ranges = %d, want 0", got)
	}
}

func TestApplyNamedParsesEnums(t *testing.T) {
	m := newTestModel("Hello")
	sel := Selection{Start: 0, End: 2}
	if err := m.ApplyNamed(sel, "alignment", "center"); err != nil {
		t.Fatalf("ApplyNamed error: %v", err)
	}
	if err := m.ApplyNamed(sel, "heading", "h3"); err != nil {
		t.Fatalf("ApplyNamed error: %v", err)
	}
	if err := m.ApplyNamed(sel, "font-size", 18); err != nil {
		t.Fatalf("ApplyNamed error: %v", err)
	}
	r := m.Ranges()[0]
	if r.Alignment != AlignCenter || r.Heading != H3 || r.FontSize != 18 {
		t.Fatalf("range = %+v, want center/h3/18", r)
	}
}

func TestSetSelectionDerivesCurrentFormat(t *testing.T) {
	m := newTestModel("Hello World")
	_ = m.ApplyFormat(Selection{Start: 0, End: 5}, PropBold, true)

	m.SetSelection(Selection{Start: 0, End: 5})
	if !m.CurrentFormat().Bold {
		t.Fatalf("current bold = false on exact match")
	}
	m.SetSelection(Selection{Start: 1, End: 5})
	if m.CurrentFormat() != m.DefaultFormat() {
		t.Fatalf("current = %+v, want defaults", m.CurrentFormat())
	}
	m.SetSelection(Selection{Start: 9, End: 50})
	if got := m.Selection(); got != (Selection{Start: 9, End: 11}) {
		t.Fatalf("selection = %+v, want 9..11", got)
	}
}

func TestDuplicateRangesAreNotMerged(t *testing.T) {
	m := newTestModel("abcdef")
	_ = m.ApplyFormat(Selection{Start: 0, End: 2}, PropBold, true)
	m.SetSelection(Selection{Start: 0, End: 4})
	_ = m.ApplyFormat(Selection{Start: 0, End: 4}, PropItalic, true)

	m.ReconcileOnEdit("abcdef", "abef", Selection{Start: 2, End: 4})
	ranges := m.Ranges()
	if len(ranges) != 2 {
		t.Fatalf("ranges = %d, want 2", len(ranges))
	}
	for i, r := range ranges {
		if r.Start != 0 || r.End != 2 {
			t.Fatalf("range%d = %d..%d, want 0..2", i, r.Start, r.End)
		}
	}

	// The first match wins, leaving the other duplicate in place.
	_ = m.ApplyFormat(Selection{Start: 0, End: 2}, PropBold, true)
	ranges = m.Ranges()
	if len(ranges) != 1 || !ranges[0].Italic || ranges[0].Bold {
		t.Fatalf("ranges = %+v, want the italic range only", ranges)
	}
}

type recordingReflower struct {
	calls []Selection
}

func (r *recordingReflower) Reflow(sel Selection) {
	r.calls = append(r.calls, sel)
}

func TestJustifyNotifiesReflower(t *testing.T) {
	rf := &recordingReflower{}
	m := New("Hello World", Options{Reflower: rf})
	m.SetSelection(Selection{Start: 0, End: 5})
	if err := m.SetAlignment(AlignCenter); err != nil {
		t.Fatalf("SetAlignment error: %v", err)
	}
	if len(rf.calls) != 0 {
		t.Fatalf("reflow calls = %d, want 0 for center", len(rf.calls))
	}
	if err := m.SetAlignment(AlignJustify); err != nil {
		t.Fatalf("SetAlignment error: %v", err)
	}
	if len(rf.calls) != 1 || rf.calls[0] != (Selection{Start: 0, End: 5}) {
		t.Fatalf("reflow calls = %+v, want one call for 0..5", rf.calls)
	}
	if got := m.Ranges()[0].Alignment; got != AlignJustify {
		t.Fatalf("alignment = %v, want justify", got)
	}
}

func TestToolbarToggleBoldFlipsValue(t *testing.T) {
	m := newTestModel("Hello World")
	m.SetSelection(Selection{Start: 0, End: 5})
	_ = m.ToggleBold()
	_ = m.ToggleBold()

	// The second press applies bold=false, which differs from the stored
	// value, so the range stays with bold cleared.
	ranges := m.Ranges()
	if len(ranges) != 1 {
		t.Fatalf("ranges = %d, want 1", len(ranges))
	}
	if ranges[0].Bold {
		t.Fatalf("bold = true, want false")
	}
}

func TestToolbarFontSizeBounds(t *testing.T) {
	m := newTestModel("")
	for i := 0; i < 20; i++ {
		_ = m.IncreaseFontSize()
	}
	if got := m.CurrentFormat().FontSize; got != 32 {
		t.Fatalf("font size = %d, want 32", got)
	}
	for i := 0; i < 20; i++ {
		_ = m.DecreaseFontSize()
	}
	if got := m.CurrentFormat().FontSize; got != 12 {
		t.Fatalf("font size = %d, want 12", got)
	}
}

func TestToolbarColorToggles(t *testing.T) {
	m := New("Hello", Options{TextColor: "#FF0000"})
	_ = m.ToggleTextColor()
	if got := m.CurrentFormat().TextColor; got != "#FF0000" {
		t.Fatalf("text color = %q, want #FF0000", got)
	}
	_ = m.ToggleTextColor()
	if got := m.CurrentFormat().TextColor; got != "" {
		t.Fatalf("text color = %q, want unset", got)
	}
	_ = m.ToggleBackgroundColor()
	if got := m.CurrentFormat().BackgroundColor; got != "#ADD8E6" {
		t.Fatalf("background = %q, want #ADD8E6", got)
	}
}

func TestParseProperty(t *testing.T) {
	for i, name := range propertyNames {
		p, err := ParseProperty(name)
		if err != nil {
			t.Fatalf("ParseProperty(%q) error: %v", name, err)
		}
		if p != Property(i) {
			t.Fatalf("ParseProperty(%q) = %v, want %v", name, p, Property(i))
		}
	}
	if p, err := ParseProperty("background-color"); err != nil || p != PropBackgroundColor {
		t.Fatalf("ParseProperty(background-color) = %v, %v", p, err)
	}
}
