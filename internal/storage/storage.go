// Package storage manages the directory exported PDFs are written to.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"
)

// Entry describes one stored PDF.
type Entry struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// Store is rooted at Dir. Opener launches a file with the platform viewer;
// nil uses xdg-open (or open on darwin).
type Store struct {
	Dir    string
	Opener func(path string) error
}

// New returns a Store rooted at dir.
func New(dir string) *Store {
	return &Store{Dir: dir}
}

// EnsureDir creates the directory if it does not exist.
func (s *Store) EnsureDir() error {
	info, err := os.Stat(s.Dir)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", s.Dir)
		}
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return os.MkdirAll(s.Dir, 0o755)
}

// Move places src in the directory under name and returns the new path. An
// existing file with the same name is replaced. Rename is tried first, then
// copy and remove for cross-device moves.
func (s *Store) Move(src, name string) (string, error) {
	dest, err := s.Path(name)
	if err != nil {
		return "", err
	}
	if err := os.Rename(src, dest); err == nil {
		return dest, nil
	}
	if err := copyFile(src, dest); err != nil {
		_ = os.Remove(dest)
		return "", err
	}
	_ = os.Remove(src)
	return dest, nil
}

// ListPDFs returns the regular files with a .pdf extension, sorted by name.
func (s *Store) ListPDFs() ([]Entry, error) {
	dirents, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var out []Entry
	for _, d := range dirents {
		if d.IsDir() || !strings.EqualFold(filepath.Ext(d.Name()), ".pdf") {
			continue
		}
		info, err := d.Info()
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		out = append(out, Entry{
			Name:    d.Name(),
			Path:    filepath.Join(s.Dir, d.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	slices.SortFunc(out, func(a, b Entry) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

// Delete removes a stored file.
func (s *Store) Delete(name string) error {
	p, err := s.Path(name)
	if err != nil {
		return err
	}
	return os.Remove(p)
}

// Open launches the stored file with the platform viewer.
func (s *Store) Open(name string) error {
	p, err := s.Path(name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(p); err != nil {
		return err
	}
	if s.Opener != nil {
		return s.Opener(p)
	}
	return openWithSystem(p)
}

// Path resolves name inside Dir. Names with separators are rejected.
func (s *Store) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	return filepath.Join(s.Dir, name), nil
}

func openWithSystem(path string) error {
	cmd := "xdg-open"
	if runtime.GOOS == "darwin" {
		cmd = "open"
	}
	return exec.Command(cmd, path).Start()
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
