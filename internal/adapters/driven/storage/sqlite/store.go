package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/setstore/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/setstore/internal/core/domain"
	"github.com/custodia-labs/setstore/internal/core/ports/driven"
)

// DefaultDocumentName is the row name used by the command-line tool.
const DefaultDocumentName = "settings"

// Store is a SQLite database holding named settings documents.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the database at dbPath and runs migrations.
// If dbPath is empty, defaults to ~/.setstore/settings.db.
func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".setstore", "settings.db")
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// DocumentStorage returns a driven.DocumentStorage for the document called name.
func (s *Store) DocumentStorage(name string) driven.DocumentStorage {
	return &documentStorage{store: s, name: name}
}

// Revision returns the revision id of the last write of the named document.
func (s *Store) Revision(ctx context.Context, name string) (string, error) {
	var revision string
	err := s.db.QueryRowContext(ctx,
		"SELECT revision FROM settings_documents WHERE name = ?", name).Scan(&revision)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: document %q", domain.ErrNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("reading revision: %w", err)
	}
	return revision, nil
}

// migrate applies every .up.sql file newer than the recorded schema version.
func (s *Store) migrate(fsys fs.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_settings_documents.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}
		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Document Storage ====================

// Ensure documentStorage implements the interface.
var _ driven.DocumentStorage = (*documentStorage)(nil)

type documentStorage struct {
	store *Store
	name  string
}

func (d *documentStorage) Read(ctx context.Context) ([]byte, error) {
	var body []byte
	err := d.store.db.QueryRowContext(ctx,
		"SELECT body FROM settings_documents WHERE name = ?", d.name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: document %q", domain.ErrNotFound, d.name)
	}
	if err != nil {
		return nil, fmt.Errorf("reading document %q: %w", d.name, err)
	}
	return body, nil
}

func (d *documentStorage) Write(ctx context.Context, data []byte) error {
	_, err := d.store.db.ExecContext(ctx, `
		INSERT INTO settings_documents (name, body, revision, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET
			body = excluded.body,
			revision = excluded.revision,
			updated_at = excluded.updated_at
	`, d.name, data, uuid.NewString())
	if err != nil {
		return fmt.Errorf("writing document %q: %w", d.name, err)
	}
	return nil
}

func (d *documentStorage) Location() string {
	return d.store.path + "#" + d.name
}
