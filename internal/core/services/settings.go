package services

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/custodia-labs/setstore/internal/core/domain"
	"github.com/custodia-labs/setstore/internal/core/ports/driven"
	"github.com/custodia-labs/setstore/internal/core/ports/driving"
	"github.com/custodia-labs/setstore/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// SettingsService coordinates access to a settings store.
// Operations the store declares unsafe to overlap run exclusively; the rest
// share the lock, so they overlap each other but never an exclusive one.
type SettingsService struct {
	mu    sync.RWMutex
	store driven.SettingsStore
	caps  domain.Capabilities
}

// NewSettingsService creates a new settings service around store.
func NewSettingsService(store driven.SettingsStore) *SettingsService {
	return &SettingsService{
		store: store,
		caps:  store.Capabilities(),
	}
}

// guard takes the lock for an operation and returns its release.
func (s *SettingsService) guard(concurrent bool) func() {
	if concurrent {
		s.mu.RLock()
		return s.mu.RUnlock
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// Capabilities returns the concurrency flags of the underlying store.
func (s *SettingsService) Capabilities() domain.Capabilities {
	return s.caps
}

// Register adds a setting.
func (s *SettingsService) Register(key string, typ reflect.Type, defaultValue, initialValue any) error {
	defer s.guard(s.caps.ConcurrentRegister)()

	if err := s.store.Register(key, typ, defaultValue, initialValue); err != nil {
		return err
	}
	logger.Debug("service: registered %q", key)
	return nil
}

// Get returns the current value of key.
func (s *SettingsService) Get(key string, typ reflect.Type) (any, error) {
	defer s.guard(true)()
	return s.store.Get(key, typ)
}

// Default returns the default value of key.
func (s *SettingsService) Default(key string, typ reflect.Type) (any, error) {
	defer s.guard(true)()
	return s.store.Default(key, typ)
}

// Set replaces the current value of key.
func (s *SettingsService) Set(key string, value any, typ reflect.Type) error {
	defer s.guard(s.caps.ConcurrentUpdate)()

	if err := s.store.Set(key, value, typ); err != nil {
		return err
	}
	logger.Debug("service: updated %q", key)
	return nil
}

// Reset restores the current value of key to its default.
// It is an update and is serialised like Set.
func (s *SettingsService) Reset(key string) error {
	defer s.guard(s.caps.ConcurrentUpdate)()

	typ, err := s.store.TypeOf(key)
	if err != nil {
		return err
	}
	def, err := s.store.Default(key, typ)
	if err != nil {
		return err
	}
	if err := s.store.Set(key, def, typ); err != nil {
		return fmt.Errorf("resetting %q: %w", key, err)
	}
	logger.Debug("service: reset %q to default", key)
	return nil
}

// TypeOf returns the declared type of key.
func (s *SettingsService) TypeOf(key string) (reflect.Type, error) {
	defer s.guard(true)()
	return s.store.TypeOf(key)
}

// IsRegistered reports whether key is registered.
func (s *SettingsService) IsRegistered(key string) bool {
	defer s.guard(true)()
	return s.store.IsRegistered(key)
}

// Unregister removes key.
func (s *SettingsService) Unregister(key string) error {
	defer s.guard(s.caps.ConcurrentUnregister)()

	if err := s.store.Unregister(key); err != nil {
		return err
	}
	logger.Debug("service: unregistered %q", key)
	return nil
}

// List returns every setting sorted by key.
func (s *SettingsService) List() []domain.Setting {
	defer s.guard(true)()
	return s.store.List()
}

// Store persists all settings. It shares the lock, so no exclusive
// operation is in flight while the store takes its snapshot.
func (s *SettingsService) Store(ctx context.Context) error {
	defer s.guard(true)()
	return s.store.Store(ctx)
}
