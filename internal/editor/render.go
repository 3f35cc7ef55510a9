package editor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qscan/internal/format"
	"github.com/kobzarvs/qscan/internal/measure"
)

// runeStyles resolves the render plan to one style per character. When
// ranges overlap the later segment wins.
func (e *Editor) runeStyles() []format.Style {
	out := make([]format.Style, len(e.text))
	for seg := range e.model.Render() {
		for i := seg.Start; i < seg.End && i < len(out); i++ {
			if seg.Style.Formatted || !out[i].Formatted {
				out[i] = seg.Style
			}
		}
	}
	return out
}

func (e *Editor) ensureLayout() {
	if !e.layoutDirty && e.layoutWidth == e.width && e.rows != nil {
		return
	}
	e.rows = layout(e.text, e.runeStyles(), e.width)
	e.layoutWidth = e.width
	e.layoutDirty = false
}

func (e *Editor) grid() grid {
	e.ensureLayout()
	return grid{rows: e.rows, width: e.width, scroll: e.scroll}
}

// gridMeasurer feeds the selection handles with the current layout.
type gridMeasurer struct {
	e *Editor
}

func (m gridMeasurer) Boxes(text []rune) []measure.Box {
	return m.e.grid().Boxes(text)
}

func (e *Editor) ensureCaretVisible() {
	if e.viewHeight <= 0 {
		return
	}
	ri := rowFor(e.rows, e.caret)
	if ri < e.scroll {
		e.scroll = ri
	}
	if ri >= e.scroll+e.viewHeight {
		e.scroll = ri - e.viewHeight + 1
	}
	e.clampScroll()
}

func (e *Editor) clampScroll() {
	maxScroll := max(0, len(e.rows)-max(1, e.viewHeight))
	e.scroll = min(max(e.scroll, 0), maxScroll)
}

func (e *Editor) Render(s tcell.Screen) {
	w, h := s.Size()
	if w <= 0 || h <= 0 {
		return
	}
	statusY := h - 2
	msgY := h - 1
	e.viewHeight = max(0, h-2)
	if e.width != w {
		e.width = w
		e.layoutDirty = true
	}
	e.ensureLayout()
	if !e.handles.Active() {
		e.ensureCaretVisible()
	}

	s.SetStyle(e.styles.main)
	s.Clear()

	styles := e.runeStyles()
	sel := e.Selection()
	for y := 0; y < e.viewHeight; y++ {
		ri := e.scroll + y
		if ri >= len(e.rows) {
			break
		}
		e.drawRow(s, y, w, e.rows[ri], styles, sel)
	}

	if statusY >= 0 {
		e.renderStatusline(s, w, statusY)
	}
	if msgY > statusY {
		e.renderMessage(s, w, msgY)
	}

	ri, col := grid{rows: e.rows, width: e.width}.caretCell(e.text, e.caret)
	cy := ri - e.scroll
	if cy < 0 || cy >= e.viewHeight {
		s.HideCursor()
		s.Show()
		return
	}
	s.SetCursorStyle(tcell.CursorStyleSteadyBar)
	s.ShowCursor(min(col, w-1), cy)
	s.Show()
}

func (e *Editor) drawRow(s tcell.Screen, y, w int, r row, styles []format.Style, sel format.Selection) {
	x := r.indent
	lastX := -1
	var last rune
	var comb []rune
	for i := r.start; i < r.end; i++ {
		ch := e.text[i]
		style := e.cellStyle(styles[i], i >= sel.Start && i < sel.End)
		cw := measure.RuneCells(ch)
		if cw == 0 {
			if lastX >= 0 {
				comb = append(comb, ch)
				s.SetContent(lastX, y, last, comb, style)
			}
			continue
		}
		if x+cw > w {
			break
		}
		s.SetContent(x, y, ch, nil, style)
		lastX, last, comb = x, ch, nil
		x += cw
	}
}

func (e *Editor) cellStyle(st format.Style, selected bool) tcell.Style {
	style := e.styles.main
	if st.Formatted {
		style = style.Bold(st.Bold).Italic(st.Italic).Underline(st.Underline)
		if st.Heading != format.HeadingNone {
			style = style.Foreground(e.styles.heading)
		}
		if st.TextColor != "" {
			style = style.Foreground(parseColor(string(st.TextColor), e.styles.fg))
		}
		if st.BackgroundColor != "" {
			style = style.Background(parseColor(string(st.BackgroundColor), e.styles.bg))
		}
	}
	if selected {
		fg, bg, _ := e.styles.selection.Decompose()
		style = style.Foreground(fg).Background(bg)
	}
	return style
}

func (e *Editor) renderStatusline(s tcell.Screen, w, y int) {
	left := " qscan"
	if e.fileName != "" {
		left += "  " + e.fileName
	}
	if e.exporting {
		left += "  [exporting]"
	}
	sel := e.Selection()
	right := describeFormat(e.model.CurrentFormat())
	if !sel.Collapsed() {
		right += fmt.Sprintf("  sel %d-%d", sel.Start, sel.End)
	}
	right += fmt.Sprintf("  %d chars ", len(e.text))
	drawLine(s, y, composeStatusLine(left, right, w), e.styles.status)
}

func (e *Editor) renderMessage(s tcell.Screen, w, y int) {
	style := e.styles.message
	if e.statusError {
		style = e.styles.errorMsg
	}
	drawLine(s, y, composeStatusLine(e.statusMessage, "", w), style)
}

func drawLine(s tcell.Screen, y int, line []rune, style tcell.Style) {
	x := 0
	for _, r := range line {
		s.SetContent(x, y, r, nil, style)
		x += max(1, measure.RuneCells(r))
	}
	w, _ := s.Size()
	for ; x < w; x++ {
		s.SetContent(x, y, ' ', nil, style)
	}
}

// describeFormat is the status line summary of the current format, e.g.
// "B U h2 center 20px #0000FF".
func describeFormat(f format.Format) string {
	var parts []string
	if f.Bold {
		parts = append(parts, "B")
	}
	if f.Italic {
		parts = append(parts, "I")
	}
	if f.Underline {
		parts = append(parts, "U")
	}
	if f.Heading != format.HeadingNone {
		parts = append(parts, f.Heading.String())
	}
	parts = append(parts, f.Alignment.String(), strconv.Itoa(f.FontSize)+"px")
	if f.TextColor != "" {
		parts = append(parts, string(f.TextColor))
	}
	if f.BackgroundColor != "" {
		parts = append(parts, "bg:"+string(f.BackgroundColor))
	}
	return strings.Join(parts, " ")
}

func composeStatusLine(left, right string, width int) []rune {
	if width <= 0 {
		return nil
	}
	leftRunes := []rune(left)
	rightRunes := []rune(right)
	if len(leftRunes)+len(rightRunes) > width {
		if len(rightRunes) >= width {
			rightRunes = rightRunes[len(rightRunes)-width:]
			leftRunes = nil
		} else {
			leftRunes = leftRunes[:width-len(rightRunes)]
		}
	}
	spaceCount := max(0, width-len(leftRunes)-len(rightRunes))
	line := make([]rune, 0, width)
	line = append(line, leftRunes...)
	line = append(line, []rune(strings.Repeat(" ", spaceCount))...)
	return append(line, rightRunes...)
}

func parseColor(name string, fallback tcell.Color) tcell.Color {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	if strings.HasPrefix(name, "#") && len(name) == 7 {
		r, err1 := strconv.ParseInt(name[1:3], 16, 32)
		g, err2 := strconv.ParseInt(name[3:5], 16, 32)
		b, err3 := strconv.ParseInt(name[5:7], 16, 32)
		if err1 == nil && err2 == nil && err3 == nil {
			return tcell.NewRGBColor(int32(r), int32(g), int32(b))
		}
		return fallback
	}
	name = strings.ToLower(name)
	if name == "default" {
		return tcell.ColorDefault
	}
	c := tcell.GetColor(name)
	if c == tcell.ColorDefault {
		return fallback
	}
	return c
}
