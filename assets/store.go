package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
)

var (
	ErrInvalidBlobName = errors.New("invalid blob name")
	ErrNotInitialized  = errors.New("asset store not initialized")
)

// Store keeps named binary blobs as files of one directory
type Store struct {
	logger *log.Logger
	dir    string
}

func NewStore(logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}

	return &Store{logger: logger}
}

// Initialize creates dir if needed
func (s *Store) Initialize(dir string) error {
	if dir == "" {
		return errors.New("assets: empty directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("assets: %w", err)
	}

	s.dir = dir
	s.logger.Printf("[Assets] using %s", dir)

	return nil
}

// Finalize can be called several times
func (s *Store) Finalize() error {
	s.dir = ""
	return nil
}

func (s *Store) Dir() string {
	return s.dir
}

// LoadBlob reads the blob saved under name; it returns false if there is none
func (s *Store) LoadBlob(name string) ([]byte, bool, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("assets: %w", err)
	}

	return data, true, nil
}

// SaveBlob replaces the blob saved under name.
// The data is written to a temporary file first, a crash never leaves a partial blob.
func (s *Store) SaveBlob(name string, data []byte) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("assets: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("assets: write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("assets: sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("assets: close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("assets: %w", err)
	}

	return nil
}

func (s *Store) path(name string) (string, error) {
	if s.dir == "" {
		return "", ErrNotInitialized
	}
	if name == "" || name == "." || !filepath.IsLocal(name) || filepath.Base(name) != name {
		return "", fmt.Errorf("%w: %q", ErrInvalidBlobName, name)
	}

	return filepath.Join(s.dir, name), nil
}
