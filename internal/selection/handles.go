// Package selection drives the two drag handles of a text selection. Hosts
// wire their gesture primitives to DragStart/DragMove/DragEnd; the format
// model only ever sees the resulting (start, end) pair.
package selection

import (
	"github.com/kobzarvs/qscan/internal/format"
	"github.com/kobzarvs/qscan/internal/measure"
)

// Source is the text being selected. *format.Model implements it.
type Source interface {
	Text() string
	Selection() format.Selection
	SetSelection(format.Selection)
}

type Handles struct {
	src      Source
	measurer measure.Measurer

	active bool
	boxes  []measure.Box
	start  int
	end    int
}

func New(src Source, m measure.Measurer) *Handles {
	return &Handles{src: src, measurer: m}
}

// SetMeasurer swaps the measurer, e.g. after a layout change.
func (h *Handles) SetMeasurer(m measure.Measurer) {
	h.measurer = m
}

func (h *Handles) Active() bool {
	return h.active
}

// DragStart snapshots the character layout and the current selection.
func (h *Handles) DragStart(x float64) {
	sel := h.src.Selection()
	h.boxes = h.measurer.Boxes([]rune(h.src.Text()))
	h.start, h.end = sel.Start, sel.End
	h.active = true
}

// DragMove moves the start handle when dragging left (dx < 0) and the end
// handle otherwise, to the character nearest x. A handle never crosses the
// other one.
func (h *Handles) DragMove(x, dx float64) format.Selection {
	if !h.active {
		return h.current()
	}
	i := measure.Closest(h.boxes, x)
	if i < 0 {
		return h.current()
	}
	if dx < 0 {
		h.start = min(i, h.end)
	} else {
		h.end = max(i, h.start)
	}
	return h.current()
}

// DragEnd publishes the final selection to the source.
func (h *Handles) DragEnd() format.Selection {
	sel := h.current()
	if h.active {
		h.active = false
		h.src.SetSelection(sel)
	}
	return sel
}

// Positions returns the x coordinates of the start and end handles.
func (h *Handles) Positions() (float64, float64) {
	boxes := h.boxes
	sel := h.current()
	if !h.active {
		boxes = h.measurer.Boxes([]rune(h.src.Text()))
		sel = h.src.Selection()
	}
	return measure.Position(boxes, sel.Start), measure.Position(boxes, sel.End)
}

func (h *Handles) current() format.Selection {
	if !h.active {
		return h.src.Selection()
	}
	return format.Selection{Start: min(h.start, h.end), End: max(h.start, h.end)}
}
