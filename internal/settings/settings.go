// Package settings persists invocation settings between runs so `generate`
// and `validate` can be re-invoked without repeating paths. The store is a
// single JSON document under the user's home directory; a missing or corrupt
// file degrades to defaults rather than failing a build.
package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	guideerrors "github.com/ArdonToonstra/simplifier-ig/internal/errors"
)

const (
	// DirName is the per-user settings directory under $HOME.
	DirName = ".simplifier-ig"
	// FileName is the settings document inside DirName.
	FileName = "settings.json"

	// DefaultOutputFolder is used when no output path is configured anywhere.
	DefaultOutputFolder = "guides"
)

// Environment variables override stored settings without touching the file.
// EnvHome relocates the settings directory itself.
const (
	EnvHome   = "SIMPLIFIER_IG_HOME"
	EnvInput  = "SIMPLIFIER_IG_INPUT"
	EnvOutput = "SIMPLIFIER_IG_OUTPUT"
)

// Settings is the persisted document. Zero values mean "not set"; resolution
// against flags and environment happens in the accessors, not here.
type Settings struct {
	InputPath           string     `json:"inputPath,omitempty"`
	DefaultOutputFolder string     `json:"defaultOutputFolder,omitempty"`
	LastRunID           string     `json:"lastRunId,omitempty"`
	LastRunAt           *time.Time `json:"lastRunAt,omitempty"`
}

// ResolveInput picks the input path for a command: explicit flag, then the
// environment override, then the stored path, then the working directory.
func (s *Settings) ResolveInput(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(EnvInput); env != "" {
		return env
	}
	if s != nil && s.InputPath != "" {
		return s.InputPath
	}
	return "."
}

// ResolveOutput picks the output path the same way, falling back to the
// default output folder under the working directory.
func (s *Settings) ResolveOutput(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(EnvOutput); env != "" {
		return env
	}
	if s != nil && s.DefaultOutputFolder != "" {
		return s.DefaultOutputFolder
	}
	return DefaultOutputFolder
}

// DefaultDir returns the settings directory: $SIMPLIFIER_IG_HOME when set,
// otherwise DirName under the user's home directory.
func DefaultDir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", guideerrors.Wrap(err, guideerrors.CategoryIO, guideerrors.SeverityFatal,
			"cannot determine home directory for settings")
	}
	return filepath.Join(home, DirName), nil
}

// Store reads and writes the settings document. Safe for concurrent use.
type Store struct {
	path string
	mu   sync.RWMutex
}

// Open creates the settings directory if needed and returns a store bound
// to the settings document inside it.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, guideerrors.MkdirFailed(dir, err)
	}
	return &Store{path: filepath.Join(dir, FileName)}, nil
}

// Path returns the absolute location of the settings document.
func (st *Store) Path() string { return st.path }

// Load reads the current settings. A missing file yields zero-value
// settings; an unreadable document does too, so a corrupt file can always
// be repaired by the next Save.
func (st *Store) Load() (*Settings, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.loadLocked()
}

func (st *Store) loadLocked() (*Settings, error) {
	data, err := os.ReadFile(st.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Settings{}, nil
		}
		return nil, guideerrors.Wrap(err, guideerrors.CategoryIO, guideerrors.SeverityFatal,
			"cannot read settings document").WithContext("path", st.path)
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return &Settings{}, nil
	}
	return &s, nil
}

// Save writes the settings atomically via a temporary file and rename.
func (st *Store) Save(s *Settings) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.saveLocked(s)
}

func (st *Store) saveLocked(s *Settings) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return guideerrors.InternalError("encode settings", err)
	}
	data = append(data, '\n')

	tmp := st.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return guideerrors.WriteFailed(tmp, err)
	}
	if err := os.Rename(tmp, st.path); err != nil {
		return guideerrors.WriteFailed(st.path, err)
	}
	return nil
}

// Update applies fn to the current settings under the write lock and saves
// the result. The saved settings are returned.
func (st *Store) Update(fn func(*Settings)) (*Settings, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, err := st.loadLocked()
	if err != nil {
		return nil, err
	}
	fn(s)
	if err := st.saveLocked(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Clear removes the settings document. Clearing an absent document is not
// an error.
func (st *Store) Clear() error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if err := os.Remove(st.path); err != nil && !os.IsNotExist(err) {
		return guideerrors.WriteFailed(st.path, err)
	}
	return nil
}
