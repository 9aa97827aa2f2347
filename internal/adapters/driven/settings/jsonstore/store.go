package jsonstore

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/custodia-labs/setstore/internal/core/domain"
	"github.com/custodia-labs/setstore/internal/core/ports/driven"
	"github.com/custodia-labs/setstore/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.SettingsStore = (*Store)(nil)

// Store is a settings registry persisted to a driven.DocumentStorage.
type Store struct {
	mu       sync.RWMutex
	storage  driven.DocumentStorage
	types    *domain.TypeRegistry
	registry registry
}

// registry holds the three parallel maps. They always share one key set.
type registry struct {
	values   map[string]any
	defaults map[string]any
	types    map[string]reflect.Type
}

func newRegistry() registry {
	return registry{
		values:   make(map[string]any),
		defaults: make(map[string]any),
		types:    make(map[string]reflect.Type),
	}
}

// Option configures a Store before its document is loaded.
type Option func(*Store) error

// WithTypes makes custom types resolvable when loading a document.
func WithTypes(types ...reflect.Type) Option {
	return func(s *Store) error {
		for _, t := range types {
			if err := s.types.Add(t); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithTypeRegistry replaces the store's type registry.
func WithTypeRegistry(r *domain.TypeRegistry) Option {
	return func(s *Store) error {
		if r == nil {
			return errors.New("type registry is nil")
		}
		s.types = r
		return nil
	}
}

// Open creates a store backed by storage and loads any existing document.
// A location that holds no document yields an empty store.
func Open(ctx context.Context, storage driven.DocumentStorage, opts ...Option) (*Store, error) {
	if storage == nil {
		return nil, errors.New("document storage is nil")
	}

	s := &Store{
		storage:  storage,
		types:    domain.NewTypeRegistry(),
		registry: newRegistry(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if err := s.initialize(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// initialize loads the document once at construction.
func (s *Store) initialize(ctx context.Context) error {
	logger.Section("Load settings")

	data, err := s.storage.Read(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		logger.Debug("no settings document at %s, starting empty", s.storage.Location())
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: reading %s: %w", domain.ErrIOFailure, s.storage.Location(), err)
	}

	reg, err := decodeDocument(data, s.types)
	if err != nil {
		return fmt.Errorf("loading %s: %w", s.storage.Location(), err)
	}

	s.registry = reg
	logger.Info("loaded %d settings from %s", len(reg.values), s.storage.Location())
	return nil
}

// Capabilities reports that registrations and updates must be serialised
// while unregistrations may overlap each other.
func (s *Store) Capabilities() domain.Capabilities {
	return domain.Capabilities{
		ConcurrentRegister:   false,
		ConcurrentUnregister: true,
		ConcurrentUpdate:     false,
	}
}

// Location returns the storage location of the document.
func (s *Store) Location() string {
	return s.storage.Location()
}

// Types returns the registry used to name and resolve declared types.
func (s *Store) Types() *domain.TypeRegistry {
	return s.types
}

// Register adds a setting. Both values must be assignable to typ, and typ
// must be resolvable through the store's type registry so a stored document
// can be loaded again. Custom named types are added with WithTypes.
func (s *Store) Register(key string, typ reflect.Type, defaultValue, initialValue any) error {
	if typ == nil {
		return fmt.Errorf("%w: %q registered without a type", domain.ErrTypeMismatch, key)
	}
	if !domain.Assignable(defaultValue, typ) {
		return fmt.Errorf("%w: default of %q is %T, declared %s",
			domain.ErrTypeMismatch, key, defaultValue, domain.TypeName(typ))
	}
	if !domain.Assignable(initialValue, typ) {
		return fmt.Errorf("%w: initial value of %q is %T, declared %s",
			domain.ErrTypeMismatch, key, initialValue, domain.TypeName(typ))
	}
	if resolved, err := s.types.Resolve(domain.TypeName(typ)); err != nil || resolved != typ {
		return fmt.Errorf("%w: %q is declared as %s, which a loaded document could not name",
			domain.ErrUnknownType, key, domain.TypeName(typ))
	}
	defaultValue = typedNil(defaultValue, typ)
	initialValue = typedNil(initialValue, typ)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.registry.values[key]; exists {
		return fmt.Errorf("%w: %q", domain.ErrDuplicateKey, key)
	}

	s.registry.values[key] = initialValue
	s.registry.defaults[key] = defaultValue
	s.registry.types[key] = typ

	logger.Debug("registered %q as %s", key, domain.TypeName(typ))
	return nil
}

// IsRegistered reports whether key is registered.
func (s *Store) IsRegistered(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.registry.values[key]
	return ok
}

// Get returns the current value of key.
// typ must be identical to the declared type; a supertype such as any is rejected.
func (s *Store) Get(key string, typ reflect.Type) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkRequested(key, typ); err != nil {
		return nil, err
	}
	return s.registry.values[key], nil
}

// Default returns the default value of key, checked like Get.
func (s *Store) Default(key string, typ reflect.Type) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkRequested(key, typ); err != nil {
		return nil, err
	}
	return s.registry.defaults[key], nil
}

// checkRequested compares typ with the declared type (caller must hold lock).
func (s *Store) checkRequested(key string, typ reflect.Type) error {
	declared, ok := s.registry.types[key]
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrNotRegistered, key)
	}
	if typ != declared {
		return fmt.Errorf("%w: requested %s for %q, but it is declared %s",
			domain.ErrTypeMismatch, domain.TypeName(typ), key, domain.TypeName(declared))
	}
	return nil
}

// Set replaces the current value of key.
// value only has to be assignable to typ, but typ must equal the declared type.
func (s *Store) Set(key string, value any, typ reflect.Type) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	declared, ok := s.registry.types[key]
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrNotRegistered, key)
	}
	if !domain.Assignable(value, typ) {
		return fmt.Errorf("%w: value of type %T does not match %s",
			domain.ErrTypeMismatch, value, domain.TypeName(typ))
	}
	if typ != declared {
		return fmt.Errorf("%w: %s differs from the declared type %s of %q",
			domain.ErrTypeMismatch, domain.TypeName(typ), domain.TypeName(declared), key)
	}

	s.registry.values[key] = typedNil(value, typ)
	return nil
}

// typedNil turns an untyped nil into the zero value of t, matching what a
// reloaded document yields. Interface types keep the untyped nil.
func typedNil(value any, t reflect.Type) any {
	if value != nil {
		return value
	}
	return reflect.Zero(t).Interface()
}

// Unregister removes key from all three maps.
func (s *Store) Unregister(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, inValues := s.registry.values[key]
	_, inDefaults := s.registry.defaults[key]
	_, inTypes := s.registry.types[key]

	delete(s.registry.values, key)
	delete(s.registry.defaults, key)
	delete(s.registry.types, key)

	if !inValues || !inDefaults || !inTypes {
		return fmt.Errorf("%w: %q", domain.ErrNotRegistered, key)
	}

	logger.Debug("unregistered %q", key)
	return nil
}

// TypeOf returns the declared type of key.
func (s *Store) TypeOf(key string) (reflect.Type, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.registry.types[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrNotRegistered, key)
	}
	return t, nil
}

// List returns a snapshot of every setting sorted by key.
func (s *Store) List() []domain.Setting {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Setting, 0, len(s.registry.values))
	for key, value := range s.registry.values {
		result = append(result, domain.Setting{
			Key:     key,
			Type:    s.registry.types[key],
			Value:   value,
			Default: s.registry.defaults[key],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})
	return result
}

// Store writes the registry to storage, replacing the previous document.
// The registry is copied first; changes made while writing are not included.
// A failed write leaves the registry untouched.
func (s *Store) Store(ctx context.Context) error {
	logger.Section("Store settings")

	snap := s.snapshot()

	data, err := encodeDocument(snap)
	if err != nil {
		return err
	}

	if err := s.storage.Write(ctx, data); err != nil {
		return fmt.Errorf("%w: writing %s: %w", domain.ErrIOFailure, s.storage.Location(), err)
	}

	logger.Info("stored %d settings to %s", len(snap.values), s.storage.Location())
	return nil
}

// snapshot copies the three maps under the read lock.
func (s *Store) snapshot() registry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := registry{
		values:   make(map[string]any, len(s.registry.values)),
		defaults: make(map[string]any, len(s.registry.defaults)),
		types:    make(map[string]reflect.Type, len(s.registry.types)),
	}
	for k, v := range s.registry.values {
		snap.values[k] = v
	}
	for k, v := range s.registry.defaults {
		snap.defaults[k] = v
	}
	for k, v := range s.registry.types {
		snap.types[k] = v
	}
	return snap
}
