package format

import "slices"

// Reflower is told when justify alignment is applied so a rich renderer can
// reflow the segment. It has no effect on the ranges.
type Reflower interface {
	Reflow(sel Selection)
}

// Options tune the toolbar helpers. Zero values fall back to the editor
// defaults: 16px text, sizes 12 to 32 in steps of 2, blue text and light
// blue highlight.
type Options struct {
	DefaultFontSize int
	MinFontSize     int
	MaxFontSize     int
	FontSizeStep    int
	TextColor       Color
	BackgroundColor Color
	Reflower        Reflower
}

func (o Options) withDefaults() Options {
	if o.DefaultFontSize <= 0 {
		o.DefaultFontSize = DefaultFontSize
	}
	if o.MinFontSize <= 0 {
		o.MinFontSize = 12
	}
	if o.MaxFontSize <= 0 {
		o.MaxFontSize = 32
	}
	if o.MaxFontSize < o.MinFontSize {
		o.MaxFontSize = o.MinFontSize
	}
	if o.FontSizeStep <= 0 {
		o.FontSizeStep = 2
	}
	if o.TextColor == "" {
		o.TextColor = "#0000FF"
	}
	if o.BackgroundColor == "" {
		o.BackgroundColor = "#ADD8E6"
	}
	return o
}

// Model owns the text buffer and its format ranges. Ranges are kept in
// insertion order and are never merged or deduplicated, so several ranges
// may cover the same span.
//
// A Model is not safe for concurrent use; the host serializes calls.
type Model struct {
	text     []rune
	ranges   []Range
	sel      Selection
	current  Format
	defaults Format
	opts     Options
}

// New starts an editing session pre-seeded with initial text and no ranges.
func New(initial string, opts Options) *Model {
	opts = opts.withDefaults()
	def := DefaultFormat(opts.DefaultFontSize)
	return &Model{
		text:     []rune(initial),
		current:  def,
		defaults: def,
		opts:     opts,
	}
}

func (m *Model) Text() string {
	return string(m.text)
}

// Len is the buffer length in code points.
func (m *Model) Len() int {
	return len(m.text)
}

// Ranges returns a copy of the range list in insertion order.
func (m *Model) Ranges() []Range {
	return slices.Clone(m.ranges)
}

func (m *Model) Selection() Selection {
	return m.sel
}

// CurrentFormat is the format that applies to the next insertion.
func (m *Model) CurrentFormat() Format {
	return m.current
}

// DefaultFormat returns the format a fresh selection starts from.
func (m *Model) DefaultFormat() Format {
	return m.defaults
}

// SetSelection records the active selection and re-derives CurrentFormat
// from a range with exactly the same bounds, or from the defaults.
func (m *Model) SetSelection(sel Selection) {
	m.sel = sel.clamp(len(m.text))
	if i := m.exactMatch(m.sel); i >= 0 {
		m.current = m.ranges[i].Format
		return
	}
	m.current = m.defaults
}

// ApplyFormat sets property p to value over sel.
//
// With a collapsed selection only CurrentFormat changes. Otherwise a range
// with exactly sel's bounds is looked up: if it already holds value it is
// removed (toggle-off) and CurrentFormat's p goes back to its default; if
// it holds something else it is updated in place; if there is none a new
// range is appended, seeded from CurrentFormat.
//
// The only error is an unknown property or a value of the wrong type.
func (m *Model) ApplyFormat(sel Selection, p Property, value any) error {
	v, err := normalize(p, value)
	if err != nil {
		return err
	}
	sel = sel.clamp(len(m.text))
	if p == PropAlignment && v == AlignJustify && m.opts.Reflower != nil {
		m.opts.Reflower.Reflow(sel)
	}
	if sel.Collapsed() {
		m.current.set(p, v)
		return nil
	}

	if i := m.exactMatch(sel); i >= 0 {
		existing := &m.ranges[i]
		if existing.Get(p) == v {
			m.ranges = slices.Delete(m.ranges, i, i+1)
			m.current.set(p, m.defaults.Get(p))
			return nil
		}
		existing.set(p, v)
		m.current = existing.Format
		return nil
	}

	r := Range{Start: sel.Start, End: sel.End, Format: m.current}
	r.set(p, v)
	m.ranges = append(m.ranges, r)
	m.current = r.Format
	return nil
}

// ApplyNamed is ApplyFormat keyed by property name.
func (m *Model) ApplyNamed(sel Selection, name string, value any) error {
	p, err := ParseProperty(name)
	if err != nil {
		return err
	}
	return m.ApplyFormat(sel, p, value)
}

// exactMatch returns the index of the first range with sel's bounds or -1.
func (m *Model) exactMatch(sel Selection) int {
	return slices.IndexFunc(m.ranges, func(r Range) bool {
		return r.Start == sel.Start && r.End == sel.End
	})
}
