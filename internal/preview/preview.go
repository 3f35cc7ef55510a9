// Package preview rasterizes a render plan into a PNG image.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/kobzarvs/qscan/internal/format"
)

// Options controls the page geometry.
type Options struct {
	// Width of the image in pixels.
	Width int
	// Margin around the text block in pixels.
	Margin float64
	// FontSize is used for unformatted text.
	FontSize int
	// LineSpacing multiplies the tallest font size on a line.
	LineSpacing float64
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 800
	}
	if o.Margin <= 0 {
		o.Margin = 40
	}
	if o.FontSize <= 0 {
		o.FontSize = format.DefaultFontSize
	}
	if o.LineSpacing <= 0 {
		o.LineSpacing = 1.4
	}
	return o
}

type faceKey struct {
	bold, italic bool
	size         int
}

// Renderer caches font faces between renders. The zero value is ready to
// use; a Renderer is safe for concurrent use.
type Renderer struct {
	mu    sync.Mutex
	fonts map[[2]bool]*truetype.Font
	faces map[faceKey]font.Face
}

var fontData = map[[2]bool][]byte{
	{false, false}: goregular.TTF,
	{true, false}:  gobold.TTF,
	{false, true}:  goitalic.TTF,
	{true, true}:   gobolditalic.TTF,
}

func (r *Renderer) face(bold, italic bool, size int) (font.Face, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := faceKey{bold, italic, size}
	if f, ok := r.faces[key]; ok {
		return f, nil
	}
	if r.fonts == nil {
		r.fonts = make(map[[2]bool]*truetype.Font)
		r.faces = make(map[faceKey]font.Face)
	}
	style := [2]bool{bold, italic}
	ttf, ok := r.fonts[style]
	if !ok {
		var err error
		ttf, err = truetype.Parse(fontData[style])
		if err != nil {
			return nil, fmt.Errorf("parse font: %w", err)
		}
		r.fonts[style] = ttf
	}
	f := truetype.NewFace(ttf, &truetype.Options{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	r.faces[key] = f
	return f, nil
}

// Render draws segs onto a white page sized to fit the wrapped text.
func (r *Renderer) Render(segs []format.Segment, opts Options) (image.Image, error) {
	dc, err := r.draw(segs, opts)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// WritePNG renders segs and encodes the page as PNG.
func (r *Renderer) WritePNG(w io.Writer, segs []format.Segment, opts Options) error {
	dc, err := r.draw(segs, opts)
	if err != nil {
		return err
	}
	return dc.EncodePNG(w)
}

// SavePNG renders segs into the file at path.
func (r *Renderer) SavePNG(path string, segs []format.Segment, opts Options) error {
	dc, err := r.draw(segs, opts)
	if err != nil {
		return err
	}
	return dc.SavePNG(path)
}

func (r *Renderer) draw(segs []format.Segment, opts Options) (*gg.Context, error) {
	opts = opts.withDefaults()
	lines, err := r.layout(segs, opts)
	if err != nil {
		return nil, err
	}

	height := 2 * opts.Margin
	for _, ln := range lines {
		height += ln.height + ln.gap
	}
	dc := gg.NewContext(opts.Width, int(height+0.5))
	dc.SetColor(color.White)
	dc.Clear()

	maxW := float64(opts.Width) - 2*opts.Margin
	y := opts.Margin
	for _, ln := range lines {
		x, spaceExtra := ln.offset(maxW)
		x += opts.Margin
		baseline := y + ln.ascent
		for _, t := range ln.tokens {
			w := t.width
			if t.space {
				w += spaceExtra
			}
			if bg, ok := parseColor(t.style.BackgroundColor); ok {
				dc.SetColor(bg)
				dc.DrawRectangle(x, y, w, ln.height)
				dc.Fill()
			}
			fg, ok := parseColor(t.style.TextColor)
			if !ok {
				fg = color.Black
			}
			dc.SetColor(fg)
			if !t.space {
				dc.SetFontFace(t.face)
				dc.DrawString(t.text, x, baseline)
			}
			if t.style.Underline {
				dc.SetLineWidth(1)
				dc.DrawLine(x, baseline+2, x+w, baseline+2)
				dc.Stroke()
			}
			x += w
		}
		y += ln.height + ln.gap
	}
	return dc, nil
}

func parseColor(c format.Color) (color.Color, bool) {
	if c == "" {
		return nil, false
	}
	col, err := colorful.Hex(string(c))
	if err != nil {
		return nil, false
	}
	return col, true
}
