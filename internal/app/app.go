// Package app wires configuration, storage and the terminal editor into
// the qscan command.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kobzarvs/qscan/internal/config"
	"github.com/kobzarvs/qscan/internal/editor"
	"github.com/kobzarvs/qscan/internal/export"
	"github.com/kobzarvs/qscan/internal/fonts"
	"github.com/kobzarvs/qscan/internal/logger"
	"github.com/kobzarvs/qscan/internal/ocr"
	"github.com/kobzarvs/qscan/internal/pdf"
	"github.com/kobzarvs/qscan/internal/preview"
	"github.com/kobzarvs/qscan/internal/session"
	"github.com/kobzarvs/qscan/internal/storage"
)

const usage = `usage: qscan [command] [args]

commands:
  edit [file]     edit text, optionally loaded from a file (default)
  ocr <image>     recognize text in an image and edit it
  pdfs            list exported documents
  open <name>     open an exported document
  rm <name>       delete an exported document
  help            show this message`

var errUsage = errors.New(usage)

// interrupted is posted to the event loop when the process is signalled.
var interrupted = new(struct{})

// App is the top-level runtime for qscan.
type App struct {
	args []string
	out  io.Writer

	newScreen     func() (tcell.Screen, error)
	newRecognizer func(cfg config.OCROptions) (ocr.Recognizer, error)
	session       func() (*session.Manager, error)
}

func New(args []string) *App {
	return &App{
		args:          args,
		out:           os.Stdout,
		newScreen:     tcell.NewScreen,
		newRecognizer: recognizer,
		session:       session.NewManager,
	}
}

func (a *App) Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init(os.Getenv("QSCAN_DEBUG") != ""); err != nil {
		fmt.Fprintln(os.Stderr, "qscan: logging disabled:", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, rest := "edit", a.args
	if len(rest) > 0 {
		cmd, rest = rest[0], rest[1:]
		if _, ok := commands[cmd]; !ok {
			// A bare path means edit.
			cmd, rest = "edit", a.args
		}
	}
	logger.Debug("run", "command", cmd, "args", rest)
	return commands[cmd](a, ctx, cfg, rest)
}

var commands = map[string]func(*App, context.Context, config.Config, []string) error{
	"edit": (*App).runEdit,
	"ocr":  (*App).runOCR,
	"pdfs": (*App).runList,
	"open": (*App).runOpen,
	"rm":   (*App).runRemove,
	"help": (*App).runHelp,
}

func (a *App) runHelp(context.Context, config.Config, []string) error {
	_, err := fmt.Fprintln(a.out, usage)
	return err
}

func (a *App) runEdit(ctx context.Context, cfg config.Config, args []string) error {
	if len(args) > 1 {
		return errUsage
	}
	text := ""
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		text = string(data)
	}
	return a.edit(ctx, cfg, text)
}

func (a *App) runOCR(ctx context.Context, cfg config.Config, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	image, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	rec, err := a.newRecognizer(cfg.OCR)
	if err != nil {
		return err
	}
	text, err := rec.Recognize(ctx, image)
	if err != nil {
		return fmt.Errorf("ocr %s: %w", filepath.Base(args[0]), err)
	}
	logger.Info("recognized text", "image", args[0], "chars", len([]rune(text)))
	return a.edit(ctx, cfg, text)
}

// recognizer picks the OCR backend named in the config.
func recognizer(cfg config.OCROptions) (ocr.Recognizer, error) {
	switch cfg.Backend {
	case "", "vision":
		key := cfg.APIKey()
		if key == "" {
			return nil, fmt.Errorf("ocr: set %s to use the vision backend", cfg.APIKeyEnv)
		}
		v := ocr.NewVision(key, cfg.Timeout())
		if cfg.Endpoint != "" {
			v.Endpoint = cfg.Endpoint
		}
		return v, nil
	case "tesseract":
		return ocr.NewTesseract(cfg.Languages), nil
	}
	return nil, fmt.Errorf("ocr: unknown backend %q", cfg.Backend)
}

func outputStore(cfg config.Config) *storage.Store {
	return storage.New(config.ExpandHome(cfg.Export.OutputDir))
}

func (a *App) edit(ctx context.Context, cfg config.Config, text string) error {
	store := outputStore(cfg)
	log := logger.Named("app")

	exportOpts := []export.Option{
		export.WithLogger(logger.Named("export")),
		export.WithDefaultNames(cfg.Export.DefaultName, cfg.Export.DevanagariName),
	}
	if cacheDir, err := cfg.Export.FontCache(); err == nil {
		exportOpts = append(exportOpts, export.WithFonts(&fonts.Provider{
			Roots:    fontRoots(cfg.Export.FontPaths),
			Name:     cfg.Export.FontName,
			CacheDir: cacheDir,
		}))
	} else {
		log.Warn("font cache unavailable", zap.Error(err))
	}
	fileName := ""
	if sm, err := a.session(); err == nil {
		defer func() {
			if err := sm.Stop(); err != nil {
				log.Warn("session save failed", zap.Error(err))
			}
		}()
		exportOpts = append(exportOpts, export.WithHistory(sm))
		fileName = sm.LastFileName()
	} else {
		log.Warn("session unavailable", zap.Error(err))
	}
	svc := export.New(&pdf.Generator{DefaultAlign: cfg.Export.DefaultAlign}, store, exportOpts...)

	s, err := a.newScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	s.EnableMouse()
	defer s.Fini()

	ed := editor.New(cfg, text, editor.Options{
		Exporter:   svc,
		Previewer:  &preview.Renderer{},
		PreviewDir: store.Dir,
		Post:       s.PostEvent,
		Logger:     logger.Named("editor"),
		FileName:   fileName,
		Context:    ctx,
	})

	g, gctx := errgroup.WithContext(ctx)
	done := make(chan struct{})
	g.Go(func() error {
		defer close(done)
		return runLoop(s, ed)
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
			_ = s.PostEvent(tcell.NewEventInterrupt(interrupted))
		case <-done:
		}
		return nil
	})
	return g.Wait()
}

func runLoop(s tcell.Screen, ed *editor.Editor) error {
	ed.Render(s)
	for {
		ev := s.PollEvent()
		switch ev := ev.(type) {
		case nil:
			return nil
		case *tcell.EventInterrupt:
			if ev.Data() == interrupted {
				return nil
			}
		case *tcell.EventResize:
			s.Sync()
		}
		if ed.HandleEvent(ev) {
			if ed.Exporting() {
				logger.Warn("quitting with an export in flight")
			}
			return nil
		}
		ed.Render(s)
	}
}

// fontRoots expands configured roots; relative roots also resolve next to
// the executable.
func fontRoots(paths []string) []string {
	roots := make([]string, 0, 2*len(paths))
	exe, err := os.Executable()
	for _, p := range paths {
		p = config.ExpandHome(p)
		roots = append(roots, p)
		if err == nil && !filepath.IsAbs(p) {
			roots = append(roots, filepath.Join(filepath.Dir(exe), p))
		}
	}
	return roots
}
