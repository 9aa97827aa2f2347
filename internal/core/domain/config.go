package domain

import "strings"

// StorageBackend identifies where the settings document is kept.
type StorageBackend string

// Available storage backends.
const (
	// StorageBackendFile keeps the document in a JSON file.
	StorageBackendFile StorageBackend = "file"

	// StorageBackendSQLite keeps the document in a SQLite database.
	StorageBackendSQLite StorageBackend = "sqlite"
)

// ParseStorageBackend parses a backend name case-insensitively.
// It returns false for unrecognised names.
func ParseStorageBackend(s string) (StorageBackend, bool) {
	b := StorageBackend(strings.ToLower(strings.TrimSpace(s)))
	return b, b.IsValid()
}

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageBackendFile, StorageBackendSQLite:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b StorageBackend) String() string {
	return string(b)
}

// AppConfig holds the command-line tool's own configuration.
type AppConfig struct {
	// StorePath is the location of the settings document.
	StorePath string

	// Backend selects the storage adapter for StorePath.
	Backend StorageBackend

	// Verbose enables debug logging.
	Verbose bool
}
