package pdf

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/kobzarvs/qscan/internal/markup"
)

const sample = `Plain <strong>bold</strong> <span style="background-color: #ADD8E6">marked</span>` +
	`<div style="text-align: center"><h1>Title</h1></div>` +
	`<div style="text-align: justify">A justified paragraph with enough words to wrap.</div>` +
	"\nlast line"

func readHeader(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if len(data) < 5 {
		t.Fatalf("file too short: %d bytes", len(data))
	}
	return data[:5]
}

func TestGenerateWritesPDF(t *testing.T) {
	dir := t.TempDir()
	g := &Generator{Dir: dir, DefaultAlign: "justify"}
	path, err := g.Generate(context.Background(), Request{
		Markup:   markup.Document(sample, markup.DocumentOptions{}),
		FileName: "report",
	})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if path != filepath.Join(dir, "report.pdf") {
		t.Fatalf("path = %q", path)
	}
	if got := readHeader(t, path); !bytes.Equal(got, []byte("%PDF-")) {
		t.Fatalf("header = %q, want %%PDF-", got)
	}
}

func TestGenerateEmbedsFont(t *testing.T) {
	fontPath := filepath.Join(t.TempDir(), "Go-Regular.ttf")
	if err := os.WriteFile(fontPath, goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	g := &Generator{Dir: t.TempDir()}
	path, err := g.Generate(context.Background(), Request{
		Markup:            markup.Document("Grüße, world", markup.DocumentOptions{Devanagari: true}),
		FileName:          "utf8.pdf",
		EmbeddedFontPaths: []string{fontPath},
	})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if filepath.Base(path) != "utf8.pdf" {
		t.Fatalf("path = %q, want utf8.pdf", path)
	}
}

func TestGenerateFallsBackOnMissingFont(t *testing.T) {
	g := &Generator{Dir: t.TempDir()}
	_, err := g.Generate(context.Background(), Request{
		Markup:            "hello",
		FileName:          "fallback",
		EmbeddedFontPaths: []string{filepath.Join(t.TempDir(), "missing.ttf")},
	})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
}

func TestGenerateEmptyMarkup(t *testing.T) {
	g := &Generator{Dir: t.TempDir()}
	_, err := g.Generate(context.Background(), Request{Markup: "  \n ", FileName: "x"})
	if !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("err = %v, want ErrEmptyDocument", err)
	}
}

func TestGenerateHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := &Generator{Dir: t.TempDir()}
	if _, err := g.Generate(ctx, Request{Markup: "hello"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestGenerateUsesTempDir(t *testing.T) {
	g := &Generator{}
	path, err := g.Generate(context.Background(), Request{Markup: "hello"})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	defer os.RemoveAll(filepath.Dir(path))
	if filepath.Base(path) != "document.pdf" {
		t.Fatalf("path = %q, want document.pdf", path)
	}
}

func TestRGB(t *testing.T) {
	if r, g, b := rgb("#0000FF", 1, 2, 3); r != 0 || g != 0 || b != 255 {
		t.Fatalf("rgb = %d,%d,%d, want 0,0,255", r, g, b)
	}
	if r, g, b := rgb("bogus", 1, 2, 3); r != 1 || g != 2 || b != 3 {
		t.Fatalf("rgb fallback = %d,%d,%d", r, g, b)
	}
}
