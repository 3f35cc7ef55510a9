package editor

import (
	"errors"
	"testing"

	"github.com/kobzarvs/qscan/internal/config"
	"github.com/kobzarvs/qscan/internal/format"
)

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) ReadAll() (string, error) { return c.text, c.err }

func (c *fakeClipboard) WriteAll(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

func newTestEditor(text string) *Editor {
	return New(config.Default(), text, Options{Clipboard: &fakeClipboard{}})
}

func TestNewNormalizesTabsAndCR(t *testing.T) {
	e := newTestEditor("a\tb\r\nc")
	if got, want := e.Text(), "a    b\nc"; got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}
	if e.Model().Text() != e.Text() {
		t.Fatalf("model text = %q, want %q", e.Model().Text(), e.Text())
	}
}

func TestTypingDoesNotExtendRange(t *testing.T) {
	e := newTestEditor("Hello")
	e.SetSelection(format.Selection{Start: 0, End: 5})
	e.execAction(actionToggleBold)
	e.moveTo(5, false)
	e.insertText([]rune("!"))

	if e.Text() != "Hello!" || e.Model().Text() != "Hello!" {
		t.Fatalf("text = %q, model %q", e.Text(), e.Model().Text())
	}
	r := e.Model().Ranges()
	if len(r) != 1 || r[0].Start != 0 || r[0].End != 5 || !r[0].Bold {
		t.Fatalf("ranges = %+v, want bold 0..5", r)
	}
	if e.caret != 6 {
		t.Fatalf("caret = %d, want 6", e.caret)
	}
}

func TestBackspaceShrinksRange(t *testing.T) {
	e := newTestEditor("Hello World")
	e.SetSelection(format.Selection{Start: 6, End: 11})
	e.execAction(actionToggleBold)
	e.moveTo(11, false)
	e.execAction(actionBackspace)

	r := e.Model().Ranges()
	if len(r) != 1 || r[0].Start != 6 || r[0].End != 10 {
		t.Fatalf("ranges = %+v, want 6..10", r)
	}
}

func TestDeleteCharBeforeRangeShiftsIt(t *testing.T) {
	e := newTestEditor("abcdef")
	e.SetSelection(format.Selection{Start: 2, End: 4})
	e.execAction(actionToggleItalic)
	e.moveTo(1, false)
	e.execAction(actionDeleteChar)

	if e.Text() != "acdef" {
		t.Fatalf("text = %q, want %q", e.Text(), "acdef")
	}
	r := e.Model().Ranges()
	if len(r) != 1 || r[0].Start != 1 || r[0].End != 3 {
		t.Fatalf("ranges = %+v, want 1..3", r)
	}
}

func TestBackspaceDeletesSelection(t *testing.T) {
	e := newTestEditor("Hello World")
	e.SetSelection(format.Selection{Start: 2, End: 9})
	e.execAction(actionBackspace)
	if e.Text() != "Held" {
		t.Fatalf("text = %q, want %q", e.Text(), "Held")
	}
	if sel := e.Model().Selection(); sel.Start != 2 || sel.End != 2 {
		t.Fatalf("selection = %+v, want collapsed at 2", sel)
	}
}

func TestBackspaceAtStartIsNoop(t *testing.T) {
	e := newTestEditor("abc")
	e.execAction(actionBackspace)
	e.moveTo(3, false)
	e.execAction(actionDeleteChar)
	if e.Text() != "abc" {
		t.Fatalf("text = %q, want %q", e.Text(), "abc")
	}
}

func TestShiftSelectionReachesModel(t *testing.T) {
	e := newTestEditor("Hello World")
	for range 3 {
		e.execAction(actionSelectRight)
	}
	if sel := e.Model().Selection(); sel.Start != 0 || sel.End != 3 {
		t.Fatalf("selection = %+v, want 0..3", sel)
	}
	e.execAction(actionMoveRight)
	if sel := e.Model().Selection(); sel.Start != 3 || sel.End != 3 {
		t.Fatalf("after move_right selection = %+v, want collapsed at 3", sel)
	}
}

func TestSelectionCurrentFormatFollowsRange(t *testing.T) {
	e := newTestEditor("Hello World")
	e.execAction(actionSelectAll)
	e.execAction(actionHeading2)
	e.execAction(actionMoveRight)
	if e.Model().CurrentFormat().Heading != format.HeadingNone {
		t.Fatalf("collapsed caret format = %+v, want defaults", e.Model().CurrentFormat())
	}
	e.execAction(actionSelectAll)
	if e.Model().CurrentFormat().Heading != format.H2 {
		t.Fatalf("heading = %v, want h2", e.Model().CurrentFormat().Heading)
	}
}

func TestMoveVerticalFollowsWrappedRows(t *testing.T) {
	e := newTestEditor("aaaa bbbb cccc")
	e.width = 10
	e.moveTo(2, false)
	e.execAction(actionMoveDown)
	if e.caret != 12 {
		t.Fatalf("caret = %d, want 12", e.caret)
	}
	e.execAction(actionMoveUp)
	if e.caret != 2 {
		t.Fatalf("caret = %d, want 2", e.caret)
	}
	e.execAction(actionMoveUp)
	if e.caret != 0 {
		t.Fatalf("caret = %d, want 0", e.caret)
	}
}

func TestLineEdgesUseVisualRows(t *testing.T) {
	e := newTestEditor("one\ntwo three")
	e.moveTo(6, false)
	e.execAction(actionLineStart)
	if e.caret != 4 {
		t.Fatalf("line start = %d, want 4", e.caret)
	}
	e.execAction(actionSelectLineEnd)
	if sel := e.Selection(); sel.Start != 4 || sel.End != 13 {
		t.Fatalf("selection = %+v, want 4..13", sel)
	}
}

func TestJustifyMarksLayoutDirty(t *testing.T) {
	e := newTestEditor("some text")
	e.ensureLayout()
	if e.layoutDirty {
		t.Fatalf("layout dirty after ensureLayout")
	}
	e.Reflow(format.Selection{})
	if !e.layoutDirty {
		t.Fatalf("Reflow did not mark the layout dirty")
	}
}

func TestCopyAndPaste(t *testing.T) {
	clip := &fakeClipboard{}
	e := New(config.Default(), "Hello World", Options{Clipboard: clip})
	e.SetSelection(format.Selection{Start: 0, End: 5})
	e.execAction(actionCopy)
	if clip.text != "Hello" {
		t.Fatalf("clipboard = %q, want %q", clip.text, "Hello")
	}

	e.moveTo(11, false)
	clip.text = "!\tok"
	e.execAction(actionPaste)
	if got, want := e.Text(), "Hello World!    ok"; got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}
}

func TestCopyMarkup(t *testing.T) {
	clip := &fakeClipboard{}
	e := New(config.Default(), "Hi there", Options{Clipboard: clip})
	e.SetSelection(format.Selection{Start: 0, End: 2})
	e.execAction(actionToggleBold)
	e.execAction(actionCopyMarkup)
	if want := "<strong>Hi</strong> there"; clip.text != want {
		t.Fatalf("clipboard = %q, want %q", clip.text, want)
	}
}

func TestClipboardFailureReportsError(t *testing.T) {
	e := New(config.Default(), "abc", Options{Clipboard: &fakeClipboard{err: errors.New("no display")}})
	e.execAction(actionCopy)
	if msg, isErr := e.Status(); msg != "clipboard unavailable" || !isErr {
		t.Fatalf("status = %q (error %v), want clipboard unavailable", msg, isErr)
	}
}

func TestQuitAction(t *testing.T) {
	e := newTestEditor("abc")
	if !e.execAction(actionQuit) {
		t.Fatalf("quit did not request exit")
	}
	if e.execAction("no_such_action") {
		t.Fatalf("unknown action requested exit")
	}
	if _, isErr := e.Status(); !isErr {
		t.Fatalf("unknown action did not report an error")
	}
}
