package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"
)

// MaxRecent bounds the export history.
const MaxRecent = 20

// Export records one successful export.
type Export struct {
	Name string    `json:"name"`
	Path string    `json:"path"`
	At   time.Time `json:"at"`
}

// Session stores the persisted state between runs
type Session struct {
	Exports      []Export  `json:"exports,omitempty"` // newest first
	LastFileName string    `json:"last_file_name,omitempty"`
	LastSaved    time.Time `json:"last_saved"`
}

// Manager handles session persistence
type Manager struct {
	mu       sync.RWMutex
	session  Session
	path     string
	dirty    bool
	now      func() time.Time
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewManager creates a session manager backed by the default state file
func NewManager() (*Manager, error) {
	path, err := sessionPath()
	if err != nil {
		return nil, err
	}
	return Open(path, 15*time.Second), nil
}

// Open loads the session stored at path. A positive interval starts the
// autosave loop.
func Open(path string, interval time.Duration) *Manager {
	m := &Manager{
		path:     path,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	m.load()
	if interval > 0 {
		go m.autosaveLoop(interval)
	}
	return m
}

func sessionPath() (string, error) {
	// XDG state directory
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		stateDir = filepath.Join(home, ".local", "state")
	}
	dir := filepath.Join(stateDir, "qscan")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.json"), nil
}

// Path returns the state file location.
func (m *Manager) Path() string { return m.path }

func (m *Manager) load() {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return // no saved session
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return
	}
	m.session = s
}

// Save persists the session to disk
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.dirty {
		return nil
	}

	m.session.LastSaved = m.now()
	data, err := json.MarshalIndent(m.session, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return err
	}

	m.dirty = false
	return nil
}

// ForceSave saves even if not dirty
func (m *Manager) ForceSave() error {
	m.mu.Lock()
	m.dirty = true
	m.mu.Unlock()
	return m.Save()
}

// Record adds an export to the front of the history. An older entry for
// the same path is replaced.
func (m *Manager) Record(path, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session.Exports = slices.DeleteFunc(m.session.Exports, func(e Export) bool { return e.Path == path })
	m.session.Exports = slices.Insert(m.session.Exports, 0, Export{Name: name, Path: path, At: m.now()})
	if len(m.session.Exports) > MaxRecent {
		m.session.Exports = m.session.Exports[:MaxRecent]
	}
	m.session.LastFileName = name
	m.dirty = true
}

// Forget drops path from the history after the file is deleted.
func (m *Manager) Forget(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.session.Exports)
	m.session.Exports = slices.DeleteFunc(m.session.Exports, func(e Export) bool { return e.Path == path })
	if len(m.session.Exports) != n {
		m.dirty = true
	}
}

// Recent returns the export history, newest first.
func (m *Manager) Recent() []Export {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.session.Exports)
}

// LastFileName returns the name used by the last export.
func (m *Manager) LastFileName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.LastFileName
}

func (m *Manager) autosaveLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = m.Save()
		case <-m.stopChan:
			return
		}
	}
}

// Stop stops the autosave loop and saves final state
func (m *Manager) Stop() error {
	m.stopOnce.Do(func() { close(m.stopChan) })
	return m.ForceSave()
}
