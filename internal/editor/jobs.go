package editor

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/kobzarvs/qscan/internal/export"
	"github.com/kobzarvs/qscan/internal/preview"
)

// ExportDoneEvent carries the outcome of a background export back to the
// UI loop.
type ExportDoneEvent struct {
	tcell.EventTime
	Result export.Result
	Err    error
}

// Exporting reports whether an export started by the editor is still
// running.
func (e *Editor) Exporting() bool {
	return e.exporting
}

func (e *Editor) startExport(devanagari bool) {
	if e.exporter == nil {
		e.setError("export is not configured")
		return
	}
	if e.exporting || e.exporter.Busy() {
		e.setError("an export is already in progress")
		return
	}
	if strings.TrimSpace(string(e.text)) == "" {
		e.setError("no text to export")
		return
	}
	req := export.Request{
		Text:       string(e.text),
		Markup:     e.model.ExportMarkup(),
		FileName:   e.fileName,
		Devanagari: devanagari,
	}
	if devanagari {
		req.FileName = ""
	}

	e.exporting = true
	e.setStatus("exporting...")
	if e.post == nil {
		res, err := e.exporter.Export(e.ctx, req)
		e.finishExport(newExportDone(res, err))
		return
	}
	ctx, exporter, post, log := e.ctx, e.exporter, e.post, e.log
	go func() {
		res, err := exporter.Export(ctx, req)
		if perr := post(newExportDone(res, err)); perr != nil {
			log.Warn("export result dropped", zap.Error(perr))
		}
	}()
}

func newExportDone(res export.Result, err error) *ExportDoneEvent {
	ev := &ExportDoneEvent{Result: res, Err: err}
	ev.SetEventNow()
	return ev
}

func (e *Editor) finishExport(ev *ExportDoneEvent) {
	e.exporting = false
	switch {
	case errors.Is(ev.Err, export.ErrExportInProgress):
		e.setError("an export is already in progress")
	case errors.Is(ev.Err, export.ErrNoText):
		e.setError("no text to export")
	case ev.Err != nil:
		e.log.Error("export failed", zap.Error(ev.Err))
		e.setError("export failed: " + ev.Err.Error())
	default:
		msg := "saved " + ev.Result.Path
		if ev.Result.FontEmbedded {
			msg += " (font embedded)"
		}
		e.setStatus(msg)
	}
}

func (e *Editor) savePreview() {
	if e.previewer == nil {
		e.setError("preview is not configured")
		return
	}
	dir := e.previewDir
	if dir == "" {
		dir = os.TempDir()
	}
	name := strings.TrimSuffix(export.SanitizeFileName(e.fileName, export.DefaultName), ".pdf")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		e.setError("preview failed: " + err.Error())
		return
	}
	path := filepath.Join(dir, name+".png")
	err := e.previewer.SavePNG(path, e.model.Segments(), preview.Options{Width: e.previewWidth})
	if err != nil {
		e.log.Error("preview failed", zap.String("path", path), zap.Error(err))
		e.setError("preview failed: " + err.Error())
		return
	}
	e.setStatus("preview saved to " + path)
}
