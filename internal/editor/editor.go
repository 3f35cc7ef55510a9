// Package editor is the terminal host of the format model: it owns the
// text buffer, caret and selection, routes keys and mouse gestures, and
// paints the render plan with tcell.
package editor

import (
	"context"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/kobzarvs/qscan/internal/config"
	"github.com/kobzarvs/qscan/internal/export"
	"github.com/kobzarvs/qscan/internal/format"
	"github.com/kobzarvs/qscan/internal/preview"
	"github.com/kobzarvs/qscan/internal/selection"
)

const (
	actionMoveLeft          = "move_left"
	actionMoveRight         = "move_right"
	actionMoveUp            = "move_up"
	actionMoveDown          = "move_down"
	actionLineStart         = "line_start"
	actionLineEnd           = "line_end"
	actionFileStart         = "file_start"
	actionFileEnd           = "file_end"
	actionPageUp            = "page_up"
	actionPageDown          = "page_down"
	actionSelectLeft        = "select_left"
	actionSelectRight       = "select_right"
	actionSelectUp          = "select_up"
	actionSelectDown        = "select_down"
	actionSelectLineStart   = "select_line_start"
	actionSelectLineEnd     = "select_line_end"
	actionSelectAll         = "select_all"
	actionCollapseSelection = "collapse_selection"
	actionBackspace         = "backspace"
	actionDeleteChar        = "delete_char"
	actionNewline           = "newline"
	actionTab               = "tab"

	actionToggleBold       = "toggle_bold"
	actionToggleItalic     = "toggle_italic"
	actionToggleUnderline  = "toggle_underline"
	actionHeading1         = "heading_1"
	actionHeading2         = "heading_2"
	actionHeading3         = "heading_3"
	actionHeadingNone      = "heading_none"
	actionAlignLeft        = "align_left"
	actionAlignCenter      = "align_center"
	actionAlignRight       = "align_right"
	actionAlignJustify     = "align_justify"
	actionFontBigger       = "font_bigger"
	actionFontSmaller      = "font_smaller"
	actionToggleTextColor  = "toggle_text_color"
	actionToggleBackground = "toggle_background"

	actionExport           = "export"
	actionExportDevanagari = "export_devanagari"
	actionPreview          = "preview"
	actionCopyMarkup       = "copy_markup"
	actionCopy             = "copy"
	actionPaste            = "paste"
	actionQuit             = "quit"
)

// Exporter runs document exports. *export.Service implements it.
type Exporter interface {
	Export(ctx context.Context, req export.Request) (export.Result, error)
	Busy() bool
}

// Previewer rasterizes the render plan. *preview.Renderer implements it.
type Previewer interface {
	SavePNG(path string, segs []format.Segment, opts preview.Options) error
}

type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) ReadAll() (string, error)   { return clipboard.ReadAll() }
func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// Options wires the editor to the rest of the program. Every field is
// optional.
type Options struct {
	Exporter  Exporter
	Previewer Previewer
	// PreviewDir receives preview images; the system temp dir when empty.
	PreviewDir string
	Clipboard  Clipboard
	// Post delivers events back to the UI loop, usually Screen.PostEvent.
	// Without it exports run synchronously.
	Post     func(tcell.Event) error
	Logger   *zap.Logger
	FileName string
	Context  context.Context
}

type styles struct {
	main      tcell.Style
	status    tcell.Style
	selection tcell.Style
	message   tcell.Style
	errorMsg  tcell.Style
	fg        tcell.Color
	bg        tcell.Color
	heading   tcell.Color
}

type Editor struct {
	model   *format.Model
	text    []rune
	caret   int
	anchor  int
	handles *selection.Handles
	keymap  map[string]string

	rows        []row
	layoutWidth int
	layoutDirty bool
	width       int
	viewHeight  int
	scroll      int
	dragX       float64

	styles   styles
	tabWidth int

	statusMessage string
	statusError   bool

	exporter     Exporter
	exporting    bool
	previewer    Previewer
	previewDir   string
	previewWidth int
	clip         Clipboard
	post         func(tcell.Event) error
	fileName     string
	ctx          context.Context
	log          *zap.Logger

	// actionHook observes every dispatched action.
	actionHook func(string)
}

func New(cfg config.Config, text string, opts Options) *Editor {
	keymap := make(map[string]string, len(cfg.Keymap))
	for k, v := range cfg.Keymap {
		keymap[k] = v
	}
	tabWidth := cfg.Editor.TabWidth
	if tabWidth < 1 {
		tabWidth = 1
	}
	e := &Editor{
		keymap:       keymap,
		tabWidth:     tabWidth,
		styles:       newStyles(cfg.Theme),
		exporter:     opts.Exporter,
		previewer:    opts.Previewer,
		previewDir:   opts.PreviewDir,
		previewWidth: cfg.Export.PreviewWidth,
		clip:         opts.Clipboard,
		post:         opts.Post,
		fileName:     opts.FileName,
		ctx:          opts.Context,
		log:          opts.Logger,
		layoutDirty:  true,
		width:        80,
	}
	if e.clip == nil {
		e.clip = systemClipboard{}
	}
	if e.ctx == nil {
		e.ctx = context.Background()
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	e.text = []rune(e.normalize(text))
	e.model = format.New(string(e.text), format.Options{
		DefaultFontSize: cfg.Editor.DefaultFontSize,
		MinFontSize:     cfg.Editor.MinFontSize,
		MaxFontSize:     cfg.Editor.MaxFontSize,
		FontSizeStep:    cfg.Editor.FontSizeStep,
		TextColor:       format.Color(cfg.Editor.TextColor),
		BackgroundColor: format.Color(cfg.Editor.BackgroundColor),
		Reflower:        e,
	})
	e.handles = selection.New(e, gridMeasurer{e})
	return e
}

func newStyles(t config.Theme) styles {
	fg := parseColor(t.Foreground, tcell.ColorWhite)
	bg := parseColor(t.Background, tcell.ColorBlack)
	main := tcell.StyleDefault.Foreground(fg).Background(bg)
	return styles{
		main: main,
		status: tcell.StyleDefault.
			Foreground(parseColor(t.StatuslineForeground, tcell.ColorBlack)).
			Background(parseColor(t.StatuslineBackground, tcell.ColorGray)),
		selection: tcell.StyleDefault.
			Foreground(parseColor(t.SelectionForeground, fg)).
			Background(parseColor(t.SelectionBackground, tcell.ColorNavy)),
		message:  main.Foreground(parseColor(t.MessageForeground, fg)),
		errorMsg: main.Foreground(parseColor(t.ErrorForeground, tcell.ColorRed)),
		fg:       fg,
		bg:       bg,
		heading:  parseColor(t.HeadingForeground, fg),
	}
}

// normalize expands tabs and drops carriage returns.
func (e *Editor) normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", e.tabWidth))
}

// Model exposes the format model, mostly for callers that export.
func (e *Editor) Model() *format.Model {
	return e.model
}

func (e *Editor) Text() string {
	return string(e.text)
}

// Selection is the caret/anchor pair as an ordered span.
func (e *Editor) Selection() format.Selection {
	return format.Selection{Start: min(e.anchor, e.caret), End: max(e.anchor, e.caret)}
}

// SetSelection places the anchor at sel.Start and the caret at sel.End.
func (e *Editor) SetSelection(sel format.Selection) {
	n := len(e.text)
	e.anchor = min(max(sel.Start, 0), n)
	e.caret = min(max(sel.End, e.anchor), n)
	e.model.SetSelection(e.Selection())
}

// Reflow is called by the model when justify is applied.
func (e *Editor) Reflow(format.Selection) {
	e.layoutDirty = true
}

// Status returns the message line and whether it reports an error.
func (e *Editor) Status() (string, bool) {
	return e.statusMessage, e.statusError
}

func (e *Editor) setStatus(msg string) {
	e.statusMessage = msg
	e.statusError = false
}

func (e *Editor) setError(msg string) {
	e.statusMessage = msg
	e.statusError = true
}

// HandleEvent dispatches one tcell event and reports whether the editor
// asked to quit.
func (e *Editor) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return e.HandleKey(ev)
	case *tcell.EventMouse:
		e.HandleMouse(ev)
	case *ExportDoneEvent:
		e.finishExport(ev)
	case *tcell.EventResize:
		e.layoutDirty = true
	}
	return false
}

func (e *Editor) HandleKey(ev *tcell.EventKey) bool {
	if e.handles.Active() {
		e.endDrag()
	}
	if action, ok := e.keymap[keyString(ev)]; ok {
		e.statusMessage = ""
		return e.execAction(action)
	}
	if ev.Key() == tcell.KeyRune && ev.Modifiers()&(tcell.ModCtrl|tcell.ModAlt|tcell.ModMeta) == 0 {
		e.statusMessage = ""
		e.insertText([]rune{ev.Rune()})
	}
	return false
}

func (e *Editor) execAction(action string) bool {
	if e.actionHook != nil {
		e.actionHook(action)
	}
	var err error
	switch action {
	case actionMoveLeft:
		e.moveHorizontal(-1, false)
	case actionMoveRight:
		e.moveHorizontal(1, false)
	case actionMoveUp:
		e.moveVertical(-1, false)
	case actionMoveDown:
		e.moveVertical(1, false)
	case actionLineStart:
		e.moveLineEdge(false, false)
	case actionLineEnd:
		e.moveLineEdge(true, false)
	case actionFileStart:
		e.moveTo(0, false)
	case actionFileEnd:
		e.moveTo(len(e.text), false)
	case actionPageUp:
		e.moveVertical(-max(1, e.viewHeight), false)
	case actionPageDown:
		e.moveVertical(max(1, e.viewHeight), false)
	case actionSelectLeft:
		e.moveHorizontal(-1, true)
	case actionSelectRight:
		e.moveHorizontal(1, true)
	case actionSelectUp:
		e.moveVertical(-1, true)
	case actionSelectDown:
		e.moveVertical(1, true)
	case actionSelectLineStart:
		e.moveLineEdge(false, true)
	case actionSelectLineEnd:
		e.moveLineEdge(true, true)
	case actionSelectAll:
		e.SetSelection(format.Selection{Start: 0, End: len(e.text)})
	case actionCollapseSelection:
		e.moveTo(e.caret, false)
	case actionBackspace:
		e.backspace()
	case actionDeleteChar:
		e.deleteChar()
	case actionNewline:
		e.insertText([]rune{'\n'})
	case actionTab:
		e.insertText([]rune(strings.Repeat(" ", e.tabWidth)))

	case actionToggleBold:
		err = e.model.ToggleBold()
	case actionToggleItalic:
		err = e.model.ToggleItalic()
	case actionToggleUnderline:
		err = e.model.ToggleUnderline()
	case actionHeading1:
		err = e.model.SetHeading(format.H1)
	case actionHeading2:
		err = e.model.SetHeading(format.H2)
	case actionHeading3:
		err = e.model.SetHeading(format.H3)
	case actionHeadingNone:
		err = e.model.SetHeading(format.HeadingNone)
	case actionAlignLeft:
		err = e.model.SetAlignment(format.AlignLeft)
	case actionAlignCenter:
		err = e.model.SetAlignment(format.AlignCenter)
	case actionAlignRight:
		err = e.model.SetAlignment(format.AlignRight)
	case actionAlignJustify:
		err = e.model.SetAlignment(format.AlignJustify)
	case actionFontBigger:
		err = e.model.IncreaseFontSize()
	case actionFontSmaller:
		err = e.model.DecreaseFontSize()
	case actionToggleTextColor:
		err = e.model.ToggleTextColor()
	case actionToggleBackground:
		err = e.model.ToggleBackgroundColor()

	case actionExport:
		e.startExport(false)
	case actionExportDevanagari:
		e.startExport(true)
	case actionPreview:
		e.savePreview()
	case actionCopyMarkup:
		e.copyMarkup()
	case actionCopy:
		e.copySelection()
	case actionPaste:
		e.paste()
	case actionQuit:
		return true
	default:
		e.setError("unknown action: " + action)
		return false
	}
	if err != nil {
		e.setError(err.Error())
	}
	e.layoutDirty = true
	return false
}

func (e *Editor) moveTo(c int, extend bool) {
	c = min(max(c, 0), len(e.text))
	e.caret = c
	if !extend {
		e.anchor = c
	}
	e.model.SetSelection(e.Selection())
}

func (e *Editor) moveHorizontal(d int, extend bool) {
	sel := e.Selection()
	if !extend && !sel.Collapsed() {
		if d < 0 {
			e.moveTo(sel.Start, false)
		} else {
			e.moveTo(sel.End, false)
		}
		return
	}
	e.moveTo(e.caret+d, extend)
}

// moveVertical moves by visual rows, keeping the column.
func (e *Editor) moveVertical(d int, extend bool) {
	g := e.grid()
	ri, col := g.caretCell(e.text, e.caret)
	target := ri + d
	switch {
	case target < 0:
		e.moveTo(0, extend)
		return
	case target >= len(g.rows):
		e.moveTo(len(e.text), extend)
		return
	}
	e.moveTo(g.offsetAt(e.text, col, target-g.scroll), extend)
}

func (e *Editor) moveLineEdge(end, extend bool) {
	g := e.grid()
	if len(g.rows) == 0 {
		return
	}
	r := g.rows[rowFor(g.rows, e.caret)]
	if end {
		e.moveTo(r.end, extend)
		return
	}
	e.moveTo(r.start, extend)
}

// replace swaps text[start:end] for ins. The deletion and the insertion are
// reported to the model separately with the exact deleted span.
func (e *Editor) replace(start, end int, ins []rune) {
	if end > start {
		old := string(e.text)
		e.text = append(e.text[:start:start], e.text[end:]...)
		e.model.ReconcileOnEdit(old, string(e.text), format.Selection{Start: start, End: end})
	}
	if len(ins) > 0 {
		old := string(e.text)
		next := make([]rune, 0, len(e.text)+len(ins))
		next = append(next, e.text[:start]...)
		next = append(next, ins...)
		next = append(next, e.text[start:]...)
		e.text = next
		e.model.ReconcileOnEdit(old, string(e.text), format.Selection{Start: start, End: start})
	}
	e.layoutDirty = true
	e.moveTo(start+len(ins), false)
}

func (e *Editor) insertText(rs []rune) {
	sel := e.Selection()
	e.replace(sel.Start, sel.End, rs)
}

func (e *Editor) backspace() {
	sel := e.Selection()
	if !sel.Collapsed() {
		e.replace(sel.Start, sel.End, nil)
		return
	}
	if e.caret == 0 {
		return
	}
	e.replace(e.caret-1, e.caret, nil)
}

func (e *Editor) deleteChar() {
	sel := e.Selection()
	if !sel.Collapsed() {
		e.replace(sel.Start, sel.End, nil)
		return
	}
	if e.caret >= len(e.text) {
		return
	}
	e.replace(e.caret, e.caret+1, nil)
}

// selectedText is the selection, or the whole buffer when it is collapsed.
func (e *Editor) selectedText() string {
	sel := e.Selection()
	if sel.Collapsed() {
		return string(e.text)
	}
	return string(e.text[sel.Start:sel.End])
}

func (e *Editor) copySelection() {
	if err := e.clip.WriteAll(e.selectedText()); err != nil {
		e.setError("clipboard unavailable")
		return
	}
	e.setStatus("copied to clipboard")
}

func (e *Editor) copyMarkup() {
	if err := e.clip.WriteAll(e.model.ExportMarkup()); err != nil {
		e.setError("clipboard unavailable")
		return
	}
	e.setStatus("markup copied to clipboard")
}

func (e *Editor) paste() {
	text, err := e.clip.ReadAll()
	if err != nil {
		e.setError("clipboard unavailable")
		return
	}
	if text == "" {
		e.setStatus("clipboard empty")
		return
	}
	e.insertText([]rune(e.normalize(text)))
	e.setStatus("pasted from clipboard")
}
