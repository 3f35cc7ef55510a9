package editor

import (
	"github.com/kobzarvs/qscan/internal/format"
	"github.com/kobzarvs/qscan/internal/measure"
)

// row is one visual line: text[start:end] drawn from column indent. The
// newline ending a paragraph is not part of any row.
type row struct {
	start, end int
	indent     int
	width      int
}

// layout soft-wraps text at width cells, breaking after the last space
// when there is one. Rows whose first character is centred or
// right-aligned are shifted.
func layout(text []rune, styles []format.Style, width int) []row {
	if width < 1 {
		width = 1
	}
	var rows []row
	add := func(start, end, cells int) {
		r := row{start: start, end: end, width: cells}
		if start < end && start < len(styles) {
			switch styles[start].Alignment {
			case format.AlignCenter:
				r.indent = max(0, (width-cells)/2)
			case format.AlignRight:
				r.indent = max(0, width-cells)
			}
		}
		rows = append(rows, r)
	}

	start, cells := 0, 0
	lastSpace := -1
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if ch == '\n' {
			add(start, i, cells)
			start, cells, lastSpace = i+1, 0, -1
			continue
		}
		w := measure.RuneCells(ch)
		if cells+w > width && i > start {
			brk := i
			if lastSpace >= start {
				brk = lastSpace + 1
			}
			add(start, brk, cellsOf(text[start:brk]))
			start = brk
			cells = cellsOf(text[start:i])
			lastSpace = -1
		}
		if ch == ' ' {
			lastSpace = i
		}
		cells += w
	}
	add(start, len(text), cells)
	return rows
}

func cellsOf(rs []rune) int {
	n := 0
	for _, r := range rs {
		n += measure.RuneCells(r)
	}
	return n
}

// rowFor returns the index of the row holding caret offset c.
func rowFor(rows []row, c int) int {
	idx := 0
	for i, r := range rows {
		if r.start > c {
			break
		}
		idx = i
	}
	return idx
}

// grid lays all rows on one virtual axis so selection handles can pick
// characters by a single x coordinate: row i starts at i*(width+1).
type grid struct {
	rows  []row
	width int
	// scroll is the first visible row.
	scroll int
}

func (g grid) Boxes(text []rune) []measure.Box {
	boxes := make([]measure.Box, len(text))
	for ri, r := range g.rows {
		base := float64(ri*(g.width+1) + r.indent)
		end := min(r.end, len(text))
		x := 0
		for i := r.start; i < end; i++ {
			w := measure.RuneCells(text[i])
			boxes[i] = measure.Box{X: base + float64(x), Width: float64(w)}
			x += w
		}
		if end < len(text) && text[end] == '\n' {
			boxes[end] = measure.Box{X: base + float64(x), Width: 1}
		}
	}
	return boxes
}

// virtualX maps a screen cell in the text view to the grid axis.
func (g grid) virtualX(x, y int) float64 {
	ri := min(max(y+g.scroll, 0), max(len(g.rows)-1, 0))
	return float64(ri*(g.width+1)+x) + 0.5
}

// offsetAt maps a screen cell to a caret offset.
func (g grid) offsetAt(text []rune, x, y int) int {
	if len(g.rows) == 0 {
		return 0
	}
	ri := min(max(y+g.scroll, 0), len(g.rows)-1)
	r := g.rows[ri]
	boxes := measure.CellMeasurer{X: r.indent}.Boxes(text[r.start:r.end])
	return r.start + measure.Offset(boxes, float64(x))
}

// caretCell returns the row index and column of caret offset c.
func (g grid) caretCell(text []rune, c int) (int, int) {
	if len(g.rows) == 0 {
		return 0, 0
	}
	ri := rowFor(g.rows, c)
	r := g.rows[ri]
	c = min(max(c, r.start), r.end)
	return ri, r.indent + cellsOf(text[r.start:c])
}
