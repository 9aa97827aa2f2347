package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/setstore/internal/core/domain"
	"github.com/custodia-labs/setstore/internal/core/ports/driven"
)

// Ensure DocumentStorage implements the interface.
var _ driven.DocumentStorage = (*DocumentStorage)(nil)

// DocumentStorage is an in-memory implementation of driven.DocumentStorage for testing.
type DocumentStorage struct {
	mu       sync.RWMutex
	data     []byte
	written  bool
	writes   int
	readErr  error
	writeErr error
}

// NewDocumentStorage creates empty in-memory storage.
func NewDocumentStorage() *DocumentStorage {
	return &DocumentStorage{}
}

// NewDocumentStorageWith creates storage that already holds data.
func NewDocumentStorageWith(data string) *DocumentStorage {
	return &DocumentStorage{data: []byte(data), written: true}
}

// Read returns a copy of the stored document.
func (s *DocumentStorage) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.readErr != nil {
		return nil, s.readErr
	}
	if !s.written {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), s.data...), nil
}

// Write replaces the stored document.
func (s *DocumentStorage) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writeErr != nil {
		return s.writeErr
	}
	s.data = append([]byte(nil), data...)
	s.written = true
	s.writes++
	return nil
}

// Location returns a placeholder location.
func (s *DocumentStorage) Location() string {
	return ":memory:"
}

// String returns the stored document.
func (s *DocumentStorage) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return string(s.data)
}

// Writes returns the number of successful writes.
func (s *DocumentStorage) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// FailReads makes subsequent reads return err. Pass nil to recover.
func (s *DocumentStorage) FailReads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readErr = err
}

// FailWrites makes subsequent writes return err. Pass nil to recover.
func (s *DocumentStorage) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}
