package cli

import (
	"context"
	"errors"
	"fmt"

	configfile "github.com/custodia-labs/setstore/internal/adapters/driven/config/file"
	"github.com/custodia-labs/setstore/internal/adapters/driven/settings/jsonstore"
	"github.com/custodia-labs/setstore/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/setstore/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/setstore/internal/core/domain"
	"github.com/custodia-labs/setstore/internal/core/ports/driven"
	"github.com/custodia-labs/setstore/internal/core/ports/driving"
	"github.com/custodia-labs/setstore/internal/core/services"
	"github.com/custodia-labs/setstore/internal/logger"
)

// session is an opened settings store for the duration of one command.
type session struct {
	service  driving.SettingsService
	types    *domain.TypeRegistry
	location string
	close    func() error

	// revision reports the id of the last stored document; nil when the
	// backend keeps no revisions.
	revision func(ctx context.Context) (string, error)
}

// Close releases the storage backing the session.
func (s *session) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// resolveConfig merges command line flags over the config file.
// Flags win when set; the backend falls back to file.
func resolveConfig(cfg driven.ConfigStore) (domain.AppConfig, error) {
	app := domain.AppConfig{
		StorePath: cfg.GetString(configfile.KeyStorePath),
		Backend:   domain.StorageBackendFile,
		Verbose:   verbose || cfg.GetBool(configfile.KeyLogVerbose),
	}
	if storePath != "" {
		app.StorePath = storePath
	}

	name := cfg.GetString(configfile.KeyStoreBackend)
	if backend != "" {
		name = backend
	}
	if name != "" {
		b, ok := domain.ParseStorageBackend(name)
		if !ok {
			return domain.AppConfig{}, fmt.Errorf("unknown backend %q (want file or sqlite)", name)
		}
		app.Backend = b
	}
	return app, nil
}

// openSession loads the config, opens the configured storage and loads the
// settings document from it.
func openSession(ctx context.Context) (*session, error) {
	cfg, err := configfile.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	app, err := resolveConfig(cfg)
	if err != nil {
		return nil, err
	}
	logger.SetVerbose(app.Verbose)
	logger.Debug("config: %s backend=%s path=%q", cfg.Path(), app.Backend, app.StorePath)

	s, storage, err := openStorage(app)
	if err != nil {
		return nil, err
	}

	store, err := jsonstore.Open(ctx, storage)
	if err != nil {
		return nil, errors.Join(err, s.Close())
	}

	s.service = services.NewSettingsService(store)
	s.types = store.Types()
	s.location = store.Location()
	return s, nil
}

// openStorage returns a session bound to the backend's lifecycle and the
// storage holding its document.
func openStorage(app domain.AppConfig) (*session, driven.DocumentStorage, error) {
	switch app.Backend {
	case domain.StorageBackendSQLite:
		db, err := sqlite.NewStore(app.StorePath)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", domain.ErrIOFailure, err)
		}
		s := &session{
			close: db.Close,
			revision: func(ctx context.Context) (string, error) {
				return db.Revision(ctx, sqlite.DefaultDocumentName)
			},
		}
		return s, db.DocumentStorage(sqlite.DefaultDocumentName), nil
	default:
		fs, err := file.NewDocumentStorage(app.StorePath)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", domain.ErrIOFailure, err)
		}
		return &session{}, fs, nil
	}
}

// withSession opens a session, runs fn and closes the session.
func withSession(ctx context.Context, fn func(*session) error) (err error) {
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, s.Close())
	}()
	return fn(s)
}

// persist writes the document after a mutation.
func (s *session) persist(ctx context.Context) error {
	if err := s.service.Store(ctx); err != nil {
		return fmt.Errorf("failed to save %s: %w", s.location, err)
	}
	if rev, ok, err := s.currentRevision(ctx); err == nil && ok {
		logger.Info("saved %s at revision %s", s.location, rev)
	}
	return nil
}

// currentRevision returns the revision of the stored document, if the
// backend keeps one and a document has been stored.
func (s *session) currentRevision(ctx context.Context) (string, bool, error) {
	if s.revision == nil {
		return "", false, nil
	}
	rev, err := s.revision(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return rev, true, nil
}
