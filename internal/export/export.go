// Package export turns an edited buffer into a PDF in the output
// directory.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/kobzarvs/qscan/internal/markup"
	"github.com/kobzarvs/qscan/internal/pdf"
)

var (
	// ErrNoText is returned when there is no text to export.
	ErrNoText = errors.New("export: no text to export")
	// ErrExportInProgress is returned while another export is running.
	ErrExportInProgress = errors.New("export: an export is already in progress")
)

const (
	DefaultName           = "document.pdf"
	DefaultDevanagariName = "hindi_document.pdf"
)

// DocumentGenerator renders a document into a temporary file.
type DocumentGenerator interface {
	Generate(ctx context.Context, req pdf.Request) (string, error)
}

// FontProvider supplies the path of a font to embed.
type FontProvider interface {
	Fetch(ctx context.Context) (string, error)
}

// FileStore owns the output directory.
type FileStore interface {
	EnsureDir() error
	Move(src, name string) (string, error)
}

// Recorder keeps the export history.
type Recorder interface {
	Record(path, name string)
}

// Request is one export attempt.
type Request struct {
	Text       string
	Markup     string
	FileName   string
	Devanagari bool
}

// Result describes a finished export.
type Result struct {
	Name string
	Path string
	// FontEmbedded is false when the font fetch failed and the
	// document fell back to the default font.
	FontEmbedded bool
}

// Service runs exports one at a time.
type Service struct {
	gen     DocumentGenerator
	store   FileStore
	fonts   FontProvider
	history Recorder
	log     *zap.Logger

	defaultName           string
	defaultDevanagariName string

	busy atomic.Bool
}

// Option configures a Service.
type Option func(*Service)

// WithFonts sets the provider used for Devanagari exports.
func WithFonts(p FontProvider) Option { return func(s *Service) { s.fonts = p } }

// WithHistory records successful exports.
func WithHistory(r Recorder) Option { return func(s *Service) { s.history = r } }

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option { return func(s *Service) { s.log = l } }

// WithDefaultNames overrides the names used when the request has none.
func WithDefaultNames(latin, devanagari string) Option {
	return func(s *Service) {
		if latin != "" {
			s.defaultName = latin
		}
		if devanagari != "" {
			s.defaultDevanagariName = devanagari
		}
	}
}

// New returns a Service writing through gen into store.
func New(gen DocumentGenerator, store FileStore, opts ...Option) *Service {
	s := &Service{
		gen:                   gen,
		store:                 store,
		log:                   zap.NewNop(),
		defaultName:           DefaultName,
		defaultDevanagariName: DefaultDevanagariName,
	}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// Busy reports whether an export is running.
func (s *Service) Busy() bool { return s.busy.Load() }

// Export generates the document and moves it into the output directory.
func (s *Service) Export(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.Text) == "" {
		return Result{}, ErrNoText
	}
	if !s.busy.CompareAndSwap(false, true) {
		return Result{}, ErrExportInProgress
	}
	defer s.busy.Store(false)

	def := s.defaultName
	if req.Devanagari {
		def = s.defaultDevanagariName
	}
	name := SanitizeFileName(req.FileName, def)
	log := s.log.With(zap.String("file", name), zap.Bool("devanagari", req.Devanagari))

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := s.store.EnsureDir(); err != nil {
		log.Error("output directory unavailable", zap.Error(err))
		return Result{}, fmt.Errorf("prepare output directory: %w", err)
	}

	docOpts := markup.DocumentOptions{Devanagari: req.Devanagari}
	var fontPaths []string
	if req.Devanagari {
		fontPaths, docOpts.FontData = s.fetchFont(ctx, log)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	tmp, err := s.gen.Generate(ctx, pdf.Request{
		Markup:            markup.Document(req.Markup, docOpts),
		FileName:          strings.TrimSuffix(name, ".pdf"),
		EmbeddedFontPaths: fontPaths,
	})
	if err != nil {
		log.Error("document generation failed", zap.Error(err))
		return Result{}, fmt.Errorf("generate %s: %w", name, err)
	}

	dest, err := s.store.Move(tmp, name)
	if err != nil {
		_ = os.Remove(tmp)
		log.Error("move into output directory failed", zap.Error(err))
		return Result{}, fmt.Errorf("save %s: %w", name, err)
	}
	if s.history != nil {
		s.history.Record(dest, name)
	}
	log.Info("exported", zap.String("path", dest))
	return Result{Name: name, Path: dest, FontEmbedded: len(fontPaths) > 0}, nil
}

// fetchFont returns the font path and bytes, or nothing when the font is
// unavailable.
func (s *Service) fetchFont(ctx context.Context, log *zap.Logger) ([]string, []byte) {
	if s.fonts == nil {
		log.Warn("no font provider configured")
		return nil, nil
	}
	path, err := s.fonts.Fetch(ctx)
	if err != nil {
		log.Warn("font unavailable, exporting without it", zap.Error(err))
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn("font unreadable, exporting without it", zap.String("font", path), zap.Error(err))
		return nil, nil
	}
	return []string{path}, data
}

var fileNameReplacer = strings.NewReplacer(
	`\`, "_", "/", "_", ":", "_", "*", "_", "?", "_",
	`"`, "_", "<", "_", ">", "_", "|", "_",
)

// SanitizeFileName replaces characters that are invalid in file names and
// appends ".pdf" when missing. A blank name yields def.
func SanitizeFileName(name, def string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = def
	}
	name = fileNameReplacer.Replace(name)
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	return name
}
