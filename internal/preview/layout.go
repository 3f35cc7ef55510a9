package preview

import (
	"strings"
	"unicode"

	"golang.org/x/image/font"

	"github.com/kobzarvs/qscan/internal/format"
)

type token struct {
	text  string
	style format.Style
	face  font.Face
	width float64
	space bool
}

type line struct {
	tokens []token
	width  float64
	height float64
	ascent float64
	// gap is extra space below the line from a heading margin.
	gap   float64
	align format.Alignment
	// last is set for the final line of a paragraph, which is never
	// justified.
	last bool
}

// offset returns the starting x and the extra width for each space token.
func (l line) offset(maxW float64) (float64, float64) {
	free := maxW - l.width
	if free <= 0 {
		return 0, 0
	}
	switch l.align {
	case format.AlignCenter:
		return free / 2, 0
	case format.AlignRight:
		return free, 0
	case format.AlignJustify:
		if l.last {
			return 0, 0
		}
		spaces := 0
		for _, t := range l.tokens {
			if t.space {
				spaces++
			}
		}
		if spaces == 0 {
			return 0, 0
		}
		return 0, free / float64(spaces)
	}
	return 0, 0
}

// layout breaks segments into words and spaces and wraps them greedily at
// the text block width. Newlines end a paragraph.
func (r *Renderer) layout(segs []format.Segment, opts Options) ([]line, error) {
	maxW := float64(opts.Width) - 2*opts.Margin
	var lines []line
	cur := line{}

	finish := func(last bool) {
		for len(cur.tokens) > 0 && cur.tokens[len(cur.tokens)-1].space {
			cur.width -= cur.tokens[len(cur.tokens)-1].width
			cur.tokens = cur.tokens[:len(cur.tokens)-1]
		}
		if cur.height == 0 {
			cur.height = float64(opts.FontSize) * opts.LineSpacing
			cur.ascent = float64(opts.FontSize)
		}
		cur.last = last
		lines = append(lines, cur)
		cur = line{}
	}

	for _, seg := range segs {
		style := seg.Style
		size := style.FontSize
		if !style.Formatted || size <= 0 {
			size = opts.FontSize
		}
		face, err := r.face(style.Bold, style.Italic, size)
		if err != nil {
			return nil, err
		}
		h := float64(size) * opts.LineSpacing
		for _, piece := range split(seg.Text) {
			if piece == "\n" {
				finish(true)
				continue
			}
			t := token{
				text:  piece,
				style: style,
				face:  face,
				width: float64(font.MeasureString(face, piece)) / 64,
				space: strings.TrimSpace(piece) == "",
			}
			if t.space && len(cur.tokens) == 0 && len(lines) > 0 && !lines[len(lines)-1].last {
				// drop spaces carried over a soft break
				continue
			}
			if !t.space && cur.width+t.width > maxW && len(cur.tokens) > 0 {
				finish(false)
			}
			if len(cur.tokens) == 0 {
				cur.align = style.Alignment
			}
			cur.tokens = append(cur.tokens, t)
			cur.width += t.width
			if h > cur.height {
				cur.height = h
				cur.ascent = float64(size)
			}
			if g := float64(style.MarginBottom); g > cur.gap {
				cur.gap = g
			}
		}
	}
	if len(cur.tokens) > 0 {
		finish(true)
	}
	return lines, nil
}

// split cuts s into runs of non-space characters, runs of spaces and
// single newlines.
func split(s string) []string {
	var out []string
	start := -1
	inSpace := false
	for i, r := range s {
		if r == '\n' {
			if start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
			out = append(out, "\n")
			continue
		}
		sp := unicode.IsSpace(r)
		if start >= 0 && sp != inSpace {
			out = append(out, s[start:i])
			start = -1
		}
		if start < 0 {
			start = i
			inSpace = sp
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}
