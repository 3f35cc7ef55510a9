package format

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// ExportMarkup serializes the buffer and ranges into HTML for document
// generation. Each formatted segment is wrapped, innermost first, in
// strong, em, u, the heading tag, a text color span, a background span and
// an alignment div (only when not left). Gaps are emitted as escaped text.
// Adjacent segments with the same style are not coalesced.
func (m *Model) ExportMarkup() string {
	var sb strings.Builder
	for sp := range m.walk() {
		text := html.EscapeString(string(m.text[sp.start:sp.end]))
		if sp.format == nil {
			sb.WriteString(text)
			continue
		}
		sb.WriteString(wrapSegment(text, *sp.format))
	}
	return sb.String()
}

func wrapSegment(s string, f Format) string {
	if f.Bold {
		s = "<strong>" + s + "</strong>"
	}
	if f.Italic {
		s = "<em>" + s + "</em>"
	}
	if f.Underline {
		s = "<u>" + s + "</u>"
	}
	if lvl := f.Heading.Level(); lvl > 0 {
		s = fmt.Sprintf("<h%d>%s</h%d>", lvl, s, lvl)
	}
	if f.TextColor != "" {
		s = fmt.Sprintf(`<span style="color: %s">%s</span>`, html.EscapeString(string(f.TextColor)), s)
	}
	if f.BackgroundColor != "" {
		s = fmt.Sprintf(`<span style="background-color: %s">%s</span>`, html.EscapeString(string(f.BackgroundColor)), s)
	}
	if f.Alignment != AlignLeft {
		s = fmt.Sprintf(`<div style="text-align: %s">%s</div>`, f.Alignment, s)
	}
	return s
}
