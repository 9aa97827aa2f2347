package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/setstore/internal/core/domain"
	"github.com/custodia-labs/setstore/internal/core/ports/driven"
)

// Ensure DocumentStorage implements the interface.
var _ driven.DocumentStorage = (*DocumentStorage)(nil)

// DefaultFileName is the document name used when only a directory is known.
const DefaultFileName = "settings.json"

// DocumentStorage keeps a settings document in a single file.
type DocumentStorage struct {
	path string
	mode os.FileMode
}

// NewDocumentStorage creates storage for the file at path.
// If path is empty, defaults to ~/.setstore/settings.json.
// The parent directory is created if needed; the file itself is not.
func NewDocumentStorage(path string) (*DocumentStorage, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".setstore", DefaultFileName)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating settings directory: %w", err)
	}

	return &DocumentStorage{path: path, mode: 0600}, nil
}

// Read returns the file content.
func (s *DocumentStorage) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, s.path)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Write replaces the file with data via a temp file, then rename.
func (s *DocumentStorage) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	// Best-effort cleanup if anything fails before rename.
	defer func() { _ = os.Remove(tmp) }()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Chmod(s.mode); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(tmp, s.path)
}

// Location returns the file path.
func (s *DocumentStorage) Location() string {
	return s.path
}
