package session

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := Open(filepath.Join(t.TempDir(), "state", "session.json"), 0)
	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	m.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return m
}

func TestRecordNewestFirst(t *testing.T) {
	m := newTestManager(t)
	m.Record("/out/a.pdf", "a.pdf")
	m.Record("/out/b.pdf", "b.pdf")
	m.Record("/out/a.pdf", "a.pdf")

	var names []string
	for _, e := range m.Recent() {
		names = append(names, e.Name)
	}
	if diff := cmp.Diff([]string{"a.pdf", "b.pdf"}, names); diff != "" {
		t.Fatalf("recent mismatch (-want +got):\n%s", diff)
	}
	if got := m.LastFileName(); got != "a.pdf" {
		t.Fatalf("LastFileName = %q, want a.pdf", got)
	}
}

func TestRecordCapsHistory(t *testing.T) {
	m := newTestManager(t)
	for i := range MaxRecent + 5 {
		m.Record(fmt.Sprintf("/out/%d.pdf", i), fmt.Sprintf("%d.pdf", i))
	}
	recent := m.Recent()
	if len(recent) != MaxRecent {
		t.Fatalf("recent = %d, want %d", len(recent), MaxRecent)
	}
	if recent[0].Name != fmt.Sprintf("%d.pdf", MaxRecent+4) {
		t.Fatalf("newest = %q", recent[0].Name)
	}
}

func TestSaveAndReload(t *testing.T) {
	m := newTestManager(t)
	m.Record("/out/a.pdf", "a.pdf")
	if err := m.Stop(); err != nil {
		t.Fatalf("Stop error: %v", err)
	}
	if _, err := os.Stat(m.Path()); err != nil {
		t.Fatalf("state file missing: %v", err)
	}

	again := Open(m.Path(), 0)
	if diff := cmp.Diff(m.Recent(), again.Recent()); diff != "" {
		t.Fatalf("reloaded history mismatch (-want +got):\n%s", diff)
	}
	if again.LastFileName() != "a.pdf" {
		t.Fatalf("LastFileName = %q", again.LastFileName())
	}
}

func TestSaveSkipsWhenClean(t *testing.T) {
	m := newTestManager(t)
	if err := m.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if _, err := os.Stat(m.Path()); !os.IsNotExist(err) {
		t.Fatalf("clean session should not be written")
	}
}

func TestForget(t *testing.T) {
	m := newTestManager(t)
	m.Record("/out/a.pdf", "a.pdf")
	m.Record("/out/b.pdf", "b.pdf")
	m.Forget("/out/a.pdf")
	m.Forget("/out/missing.pdf")
	if got := m.Recent(); len(got) != 1 || got[0].Path != "/out/b.pdf" {
		t.Fatalf("recent = %+v, want only b.pdf", got)
	}
}

func TestCorruptStateIsIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	m := Open(path, 0)
	if len(m.Recent()) != 0 {
		t.Fatalf("corrupt state should load empty")
	}
}

func TestNewManagerUsesStateHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)
	m, err := NewManager()
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}
	defer m.Stop()
	if want := filepath.Join(dir, "qscan", "session.json"); m.Path() != want {
		t.Fatalf("Path = %q, want %q", m.Path(), want)
	}
}
