// Package measure maps characters to horizontal positions so pointer
// coordinates can be turned into text offsets. The format model never
// depends on it.
package measure

import (
	"math"
	"strings"

	"github.com/golang/freetype/truetype"
	"github.com/rivo/uniseg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// Box is the horizontal extent of one character.
type Box struct {
	X     float64
	Width float64
}

// Center returns the midpoint of the box.
func (b Box) Center() float64 {
	return b.X + b.Width/2
}

type Measurer interface {
	Boxes(text []rune) []Box
}

// EqualDivision splits Width evenly across the characters. Glyph widths,
// wrapping and line breaks are ignored.
type EqualDivision struct {
	X     float64
	Width float64
}

func (e EqualDivision) Boxes(text []rune) []Box {
	if len(text) == 0 {
		return nil
	}
	w := e.Width / float64(len(text))
	boxes := make([]Box, len(text))
	for i := range text {
		boxes[i] = Box{X: e.X + float64(i)*w, Width: w}
	}
	return boxes
}

// FaceMeasurer advances through text with real glyph metrics, kerning
// included.
type FaceMeasurer struct {
	Face font.Face
	X    float64
}

func (f FaceMeasurer) Boxes(text []rune) []Box {
	if len(text) == 0 || f.Face == nil {
		return nil
	}
	boxes := make([]Box, len(text))
	x := f.X
	prev := rune(-1)
	for i, r := range text {
		if prev >= 0 {
			x += float64(f.Face.Kern(prev, r)) / 64
		}
		adv, ok := f.Face.GlyphAdvance(r)
		if !ok {
			adv, _ = f.Face.GlyphAdvance('?')
		}
		w := float64(adv) / 64
		boxes[i] = Box{X: x, Width: w}
		x += w
		prev = r
	}
	return boxes
}

// NewGoFace returns the Go regular font at size points (72 DPI).
func NewGoFace(size float64) (font.Face, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// CellMeasurer measures in terminal cells; wide characters take two and
// combining marks zero.
type CellMeasurer struct {
	X int
}

func (c CellMeasurer) Boxes(text []rune) []Box {
	if len(text) == 0 {
		return nil
	}
	boxes := make([]Box, len(text))
	x := c.X
	for i, r := range text {
		w := RuneCells(r)
		boxes[i] = Box{X: float64(x), Width: float64(w)}
		x += w
	}
	return boxes
}

// RuneCells returns the display width of r in terminal cells. Tabs and
// newlines are handled by callers and count as one.
func RuneCells(r rune) int {
	if r == '\t' || r == '\n' {
		return 1
	}
	return uniseg.StringWidth(string(r))
}

// StringCells returns the display width of s in terminal cells.
func StringCells(s string) int {
	return uniseg.StringWidth(strings.ReplaceAll(s, "\t", " "))
}

// Closest returns the index of the box whose centre is nearest to x, or -1
// for no boxes.
func Closest(boxes []Box, x float64) int {
	best := -1
	dist := math.MaxFloat64
	for i, b := range boxes {
		if d := math.Abs(b.Center() - x); d < dist {
			dist = d
			best = i
		}
	}
	return best
}

// Offset returns the caret offset for x: before the first character whose
// centre lies right of x, or len(boxes) past the end.
func Offset(boxes []Box, x float64) int {
	for i, b := range boxes {
		if x < b.Center() {
			return i
		}
	}
	return len(boxes)
}

// Position returns the x coordinate of caret offset i.
func Position(boxes []Box, i int) float64 {
	if len(boxes) == 0 {
		return 0
	}
	if i <= 0 {
		return boxes[0].X
	}
	if i >= len(boxes) {
		last := boxes[len(boxes)-1]
		return last.X + last.Width
	}
	return boxes[i].X
}
