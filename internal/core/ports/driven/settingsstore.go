package driven

import (
	"context"
	"reflect"

	"github.com/custodia-labs/setstore/internal/core/domain"
)

// SettingsStore is the registry of typed settings a coordinator delegates to.
// Registry operations complete immediately; only Store performs I/O.
type SettingsStore interface {
	// Capabilities reports which operations may run concurrently.
	// The coordinator must serialise the others.
	Capabilities() domain.Capabilities

	// Register adds a setting with its declared type, default and initial value.
	// Returns domain.ErrDuplicateKey if the key is already registered.
	Register(key string, typ reflect.Type, defaultValue, initialValue any) error

	// IsRegistered reports whether key is registered.
	IsRegistered(key string) bool

	// Get returns the current value of key.
	// typ must equal the declared type exactly.
	Get(key string, typ reflect.Type) (any, error)

	// Set replaces the current value of key.
	// value must be assignable to typ and typ must equal the declared type.
	Set(key string, value any, typ reflect.Type) error

	// Unregister removes key together with its default and declared type.
	Unregister(key string) error

	// Store persists the whole registry.
	Store(ctx context.Context) error

	// Default returns the default value of key, checked like Get.
	Default(key string, typ reflect.Type) (any, error)

	// TypeOf returns the declared type of key.
	TypeOf(key string) (reflect.Type, error)

	// List returns a snapshot of every setting sorted by key.
	List() []domain.Setting
}
