// Package pdf lays out exported markup onto A4 pages.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/kobzarvs/qscan/internal/markup"
)

// ErrEmptyDocument is returned when the markup holds no printable text.
var ErrEmptyDocument = errors.New("pdf: document has no text")

// Page geometry follows the HTML template: 14px body text and a 60px
// margin, converted at 96dpi.
const (
	pxToPt      = 0.75
	pxToMM      = 25.4 / 96
	bodySizePx  = 14
	marginPx    = 60
	lineSpacing = 1.6
	embedFamily = "embedded"
	coreFamily  = "Helvetica"
)

var headingSizesPx = map[int]float64{1: 24, 2: 20, 3: 18}
var headingMarginsPx = map[int]float64{1: 10, 2: 8, 3: 6}

// Request describes one document to generate.
type Request struct {
	Markup string
	// FileName is the base name of the output without extension.
	FileName string
	// EmbeddedFontPaths are TrueType files registered as the body font. The
	// first one that loads wins; on failure the core font is used.
	EmbeddedFontPaths []string
}

// Generator writes PDFs into Dir, or a fresh temporary directory when Dir
// is empty.
type Generator struct {
	Dir string
	// DefaultAlign applies to blocks without an explicit alignment.
	DefaultAlign string
}

// Generate renders req and returns the path of the written file. A partial
// file is removed on failure.
func (g *Generator) Generate(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	blocks, err := markup.Parse(req.Markup)
	if err != nil {
		return "", fmt.Errorf("parse markup: %w", err)
	}
	if len(blocks) == 0 {
		return "", ErrEmptyDocument
	}

	dir := g.Dir
	if dir == "" {
		dir, err = os.MkdirTemp("", "qscan-pdf-")
		if err != nil {
			return "", err
		}
	}
	name := strings.TrimSuffix(req.FileName, ".pdf")
	if name == "" {
		name = "document"
	}
	path := filepath.Join(dir, name+".pdf")

	doc := fpdf.New("P", "mm", "A4", "")
	margin := marginPx * pxToMM
	doc.SetMargins(margin, margin, margin)
	doc.SetAutoPageBreak(true, margin)
	doc.SetCreator("qscan", true)
	doc.SetTitle(name, true)

	w := &writer{doc: doc, family: coreFamily, defaultAlign: g.DefaultAlign}
	w.registerFont(req.EmbeddedFontPaths)
	doc.AddPage()

	for _, b := range blocks {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		w.block(b)
	}
	if err := doc.Error(); err != nil {
		return "", fmt.Errorf("layout: %w", err)
	}
	if err := doc.OutputFileAndClose(path); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

type writer struct {
	doc          *fpdf.Fpdf
	family       string
	tr           func(string) string
	defaultAlign string
}

func (w *writer) registerFont(paths []string) {
	for _, p := range paths {
		for _, style := range []string{"", "B", "I", "BI"} {
			w.doc.AddUTF8Font(embedFamily, style, p)
		}
		if w.doc.Err() {
			w.doc.ClearError()
			continue
		}
		w.family = embedFamily
		return
	}
	// Core fonts are cp1252.
	w.tr = w.doc.UnicodeTranslatorFromDescriptor("")
}

func (w *writer) text(s string) string {
	if w.tr != nil {
		return w.tr(s)
	}
	return s
}

func (w *writer) setRun(r markup.Run, sizePt float64, forceBold bool) {
	style := ""
	if r.Bold || forceBold {
		style += "B"
	}
	if r.Italic {
		style += "I"
	}
	if r.Underline {
		style += "U"
	}
	w.doc.SetFont(w.family, style, sizePt)
	cr, cg, cb := rgb(r.Color, 0, 0, 0)
	w.doc.SetTextColor(cr, cg, cb)
	if r.Background != "" {
		br, bg, bb := rgb(r.Background, 255, 255, 255)
		w.doc.SetFillColor(br, bg, bb)
	}
}

func (w *writer) block(b markup.Block) {
	sizePx := float64(bodySizePx)
	if s, ok := headingSizesPx[b.Heading]; ok {
		sizePx = s
	}
	sizePt := sizePx * pxToPt
	lineH := sizePx * pxToMM * lineSpacing
	heading := b.Heading > 0

	align := b.Align
	if align == "" {
		align = w.defaultAlign
	}

	if heading || (align != "" && align != "left") {
		// fpdf aligns whole cells, so a mixed-style block takes its first
		// run's style.
		first := b.Runs[0]
		w.setRun(first, sizePt, heading)
		if w.doc.GetX() > w.leftMargin()+0.01 {
			w.doc.Ln(lineH)
		}
		w.doc.MultiCell(0, lineH, w.text(strings.TrimSpace(b.Text())), "", alignCode(align), first.Background != "")
		if heading {
			w.doc.Ln(headingMarginsPx[b.Heading] * pxToMM)
		}
		return
	}

	for _, r := range b.Runs {
		w.setRun(r, sizePt, false)
		txt := w.text(r.Text)
		if r.Background != "" && !strings.Contains(r.Text, "\n") && w.fits(txt) {
			w.doc.CellFormat(w.doc.GetStringWidth(txt), lineH, txt, "", 0, "L", true, 0, "")
			continue
		}
		w.doc.Write(lineH, txt)
	}
}

func (w *writer) leftMargin() float64 {
	l, _, _, _ := w.doc.GetMargins()
	return l
}

func (w *writer) fits(s string) bool {
	pageW, _ := w.doc.GetPageSize()
	_, _, right, _ := w.doc.GetMargins()
	return w.doc.GetX()+w.doc.GetStringWidth(s) <= pageW-right
}

func alignCode(a string) string {
	switch a {
	case "center":
		return "C"
	case "right":
		return "R"
	case "justify":
		return "J"
	default:
		return "L"
	}
}

// rgb parses a hex color, returning the fallback when s is empty or
// invalid.
func rgb(s string, r, g, b int) (int, int, int) {
	if s == "" {
		return r, g, b
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return r, g, b
	}
	cr, cg, cb := c.RGB255()
	return int(cr), int(cg), int(cb)
}
