package driven

import "context"

// DocumentStorage is the backing location of a settings document.
// Implementations exist for files, SQLite and memory.
type DocumentStorage interface {
	// Read returns the stored document.
	// Returns an error wrapping domain.ErrNotFound if nothing was ever written.
	Read(ctx context.Context) ([]byte, error)

	// Write replaces the stored document with data.
	Write(ctx context.Context, data []byte) error

	// Location describes where the document lives (path or DSN).
	Location() string
}
