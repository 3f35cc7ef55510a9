// Package format holds the range-based rich-text model behind the editor:
// a plain text buffer, an unordered list of style ranges over it, and the
// reconciliation applied to those ranges when text is deleted.
package format

import (
	"fmt"
	"strings"
)

type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
	AlignJustify
)

var alignmentNames = [...]string{"left", "center", "right", "justify"}

func (a Alignment) String() string {
	if a < 0 || int(a) >= len(alignmentNames) {
		return "left"
	}
	return alignmentNames[a]
}

func ParseAlignment(s string) (Alignment, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range alignmentNames {
		if name == s {
			return Alignment(i), true
		}
	}
	return AlignLeft, false
}

type Heading int

const (
	HeadingNone Heading = iota
	H1
	H2
	H3
)

var headingNames = [...]string{"none", "h1", "h2", "h3"}

func (h Heading) String() string {
	if h < 0 || int(h) >= len(headingNames) {
		return "none"
	}
	return headingNames[h]
}

// Level returns 1..3 for h1..h3 and 0 for none.
func (h Heading) Level() int {
	if h < H1 || h > H3 {
		return 0
	}
	return int(h)
}

func ParseHeading(s string) (Heading, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range headingNames {
		if name == s {
			return Heading(i), true
		}
	}
	return HeadingNone, false
}

// Color is a CSS color value such as "#0000FF". The empty Color means unset.
type Color string

// Format is the set of style attributes carried by a range.
type Format struct {
	Bold            bool
	Italic          bool
	Underline       bool
	FontSize        int
	Alignment       Alignment
	Heading         Heading
	BackgroundColor Color
	TextColor       Color
}

// DefaultFontSize is used when no font size is configured.
const DefaultFontSize = 16

// DefaultFormat is the format applied at an insertion point with no range.
func DefaultFormat(fontSize int) Format {
	if fontSize <= 0 {
		fontSize = DefaultFontSize
	}
	return Format{FontSize: fontSize, Alignment: AlignLeft, Heading: HeadingNone}
}

// Range is a [Start,End) span of the buffer, measured in code points.
type Range struct {
	Start int
	End   int
	Format
}

// Len returns the number of code points the range covers.
func (r Range) Len() int {
	return r.End - r.Start
}

// Selection is always kept with Start <= End.
type Selection struct {
	Start int
	End   int
}

func (s Selection) Collapsed() bool {
	return s.Start == s.End
}

// clamp orders the bounds and limits them to [0, n].
func (s Selection) clamp(n int) Selection {
	if s.Start > s.End {
		s.Start, s.End = s.End, s.Start
	}
	s.Start = clampInt(s.Start, 0, n)
	s.End = clampInt(s.End, s.Start, n)
	return s
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Property names one attribute of a Format.
type Property int

const (
	PropBold Property = iota
	PropItalic
	PropUnderline
	PropFontSize
	PropAlignment
	PropHeading
	PropBackgroundColor
	PropTextColor
)

var propertyNames = [...]string{
	"bold",
	"italic",
	"underline",
	"fontSize",
	"alignment",
	"heading",
	"backgroundColor",
	"textColor",
}

func (p Property) String() string {
	if p < 0 || int(p) >= len(propertyNames) {
		return fmt.Sprintf("property(%d)", int(p))
	}
	return propertyNames[p]
}

// ParseProperty accepts the camelCase names used by the toolbar as well as
// kebab-case spellings ("font-size").
func ParseProperty(name string) (Property, error) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "-", ""))
	for i, n := range propertyNames {
		if strings.ToLower(n) == key {
			return Property(i), nil
		}
	}
	return 0, fmt.Errorf("unknown format property %q", name)
}

// Get returns the value of p. Values are bool, int, Alignment, Heading or
// Color and are comparable with ==.
func (f Format) Get(p Property) any {
	switch p {
	case PropBold:
		return f.Bold
	case PropItalic:
		return f.Italic
	case PropUnderline:
		return f.Underline
	case PropFontSize:
		return f.FontSize
	case PropAlignment:
		return f.Alignment
	case PropHeading:
		return f.Heading
	case PropBackgroundColor:
		return f.BackgroundColor
	case PropTextColor:
		return f.TextColor
	}
	return nil
}

// set assigns an already normalized value.
func (f *Format) set(p Property, v any) {
	switch p {
	case PropBold:
		f.Bold = v.(bool)
	case PropItalic:
		f.Italic = v.(bool)
	case PropUnderline:
		f.Underline = v.(bool)
	case PropFontSize:
		f.FontSize = v.(int)
	case PropAlignment:
		f.Alignment = v.(Alignment)
	case PropHeading:
		f.Heading = v.(Heading)
	case PropBackgroundColor:
		f.BackgroundColor = v.(Color)
	case PropTextColor:
		f.TextColor = v.(Color)
	}
}

// normalize converts a caller supplied value into the type stored for p.
// Strings are accepted for the enum and color properties.
func normalize(p Property, v any) (any, error) {
	switch p {
	case PropBold, PropItalic, PropUnderline:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case PropFontSize:
		if n, ok := v.(int); ok && n > 0 {
			return n, nil
		}
	case PropAlignment:
		switch a := v.(type) {
		case Alignment:
			if a >= AlignLeft && a <= AlignJustify {
				return a, nil
			}
		case string:
			if parsed, ok := ParseAlignment(a); ok {
				return parsed, nil
			}
		}
	case PropHeading:
		switch h := v.(type) {
		case Heading:
			if h >= HeadingNone && h <= H3 {
				return h, nil
			}
		case string:
			if parsed, ok := ParseHeading(h); ok {
				return parsed, nil
			}
		}
	case PropBackgroundColor, PropTextColor:
		switch c := v.(type) {
		case Color:
			return c, nil
		case string:
			return Color(c), nil
		case nil:
			return Color(""), nil
		}
	default:
		return nil, fmt.Errorf("unknown format property %d", int(p))
	}
	return nil, fmt.Errorf("invalid value %v (%T) for %s", v, v, p)
}
