package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("%PDF-1.3"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestEnsureDirCreates(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Download", "Scanner")
	s := New(dir)
	if err := s.EnsureDir(); err != nil {
		t.Fatalf("EnsureDir error: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("dir not created: %v", err)
	}
	if err := s.EnsureDir(); err != nil {
		t.Fatalf("second EnsureDir error: %v", err)
	}
}

func TestEnsureDirRejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	touch(t, path)
	if err := New(path).EnsureDir(); err == nil {
		t.Fatalf("EnsureDir on a file should fail")
	}
}

func TestMoveReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	touch(t, filepath.Join(dir, "a.pdf"))

	src := filepath.Join(t.TempDir(), "tmp.pdf")
	if err := os.WriteFile(src, []byte("new"), 0o644); err != nil {
		t.Fatal(err)
	}
	dest, err := s.Move(src, "a.pdf")
	if err != nil {
		t.Fatalf("Move error: %v", err)
	}
	data, _ := os.ReadFile(dest)
	if string(data) != "new" {
		t.Fatalf("dest content = %q, want new", data)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("source still exists")
	}
}

func TestListPDFsFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"b.pdf", "a.PDF", "notes.txt"} {
		touch(t, filepath.Join(dir, n))
	}
	if err := os.Mkdir(filepath.Join(dir, "folder.pdf"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := New(dir).ListPDFs()
	if err != nil {
		t.Fatalf("ListPDFs error: %v", err)
	}
	if len(got) != 2 || got[0].Name != "a.PDF" || got[1].Name != "b.pdf" {
		t.Fatalf("entries = %+v, want a.PDF, b.pdf", got)
	}
	if got[1].Path != filepath.Join(dir, "b.pdf") || got[1].Size != 8 {
		t.Fatalf("entry = %+v", got[1])
	}
}

func TestListPDFsMissingDir(t *testing.T) {
	got, err := New(filepath.Join(t.TempDir(), "nope")).ListPDFs()
	if err != nil || len(got) != 0 {
		t.Fatalf("ListPDFs = %v, %v, want empty", got, err)
	}
}

func TestDeleteAndPathValidation(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	touch(t, filepath.Join(dir, "x.pdf"))
	if err := s.Delete("x.pdf"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := s.Delete("x.pdf"); !os.IsNotExist(err) {
		t.Fatalf("second Delete err = %v, want not exist", err)
	}
	for _, bad := range []string{"", "..", "../x.pdf", "sub/x.pdf"} {
		if err := s.Delete(bad); err == nil {
			t.Fatalf("Delete(%q) should fail", bad)
		}
	}
}

func TestOpenUsesOpener(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "x.pdf"))
	var opened string
	s := &Store{Dir: dir, Opener: func(p string) error { opened = p; return nil }}
	if err := s.Open("x.pdf"); err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if opened != filepath.Join(dir, "x.pdf") {
		t.Fatalf("opened = %q", opened)
	}
	if err := s.Open("missing.pdf"); err == nil {
		t.Fatalf("Open of a missing file should fail")
	}
}
