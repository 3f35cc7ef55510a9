package editor

import "github.com/gdamore/tcell/v2"

const wheelStep = 3

// HandleMouse maps a button-1 press to a caret move, motion with the button
// held to the selection handles, and release to publishing the selection.
func (e *Editor) HandleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	buttons := ev.Buttons()
	switch {
	case buttons&tcell.WheelUp != 0:
		e.scrollBy(-wheelStep)
	case buttons&tcell.WheelDown != 0:
		e.scrollBy(wheelStep)
	case buttons&tcell.Button1 != 0:
		if y < 0 || y >= e.viewHeight {
			return
		}
		g := e.grid()
		vx := g.virtualX(x, y)
		if !e.handles.Active() {
			e.moveTo(g.offsetAt(e.text, x, y), false)
			e.handles.DragStart(vx)
			e.dragX = vx
			return
		}
		sel := e.handles.DragMove(vx, vx-e.dragX)
		e.dragX = vx
		e.anchor, e.caret = sel.Start, sel.End
	case buttons == tcell.ButtonNone:
		if e.handles.Active() {
			e.endDrag()
		}
	}
}

// endDrag publishes the dragged selection through the handles.
func (e *Editor) endDrag() {
	e.handles.DragEnd()
}

func (e *Editor) scrollBy(n int) {
	e.ensureLayout()
	e.scroll += n
	e.clampScroll()
}
