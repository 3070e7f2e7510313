package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrLocked          = errors.New("credentials file is locked by another process")
)

// Store persists credential records keyed by profile name.
type Store interface {
	Load(profile string) (Record, error)
	Save(record Record) error
	List() ([]Record, error)
	Delete(profile string) (bool, error)
	Close() error
}

// Open returns the store for the given backend. An empty path selects the
// backend's default location under $HOME/.c6t.
func Open(backend, path string) (Store, error) {
	backend = strings.ToLower(strings.TrimSpace(backend))
	if backend == "" {
		backend = BackendFile
	}

	if strings.TrimSpace(path) == "" {
		defaultPath, err := DefaultPath(backend)
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	switch backend {
	case BackendFile:
		return NewFileStore(path), nil
	case BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create directory %q: %w", filepath.Dir(path), err)
		}
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unsupported credentials backend %q (valid: file, sqlite)", backend)
	}
}

// DefaultPath returns $HOME/.c6t/credentials.json or credentials.db.
func DefaultPath(backend string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	name := "credentials.json"
	if strings.EqualFold(strings.TrimSpace(backend), BackendSQLite) {
		name = "credentials.db"
	}
	return filepath.Join(home, ".c6t", name), nil
}
