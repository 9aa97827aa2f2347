package driving

import (
	"context"
	"reflect"

	"github.com/custodia-labs/setstore/internal/core/domain"
)

// SettingsService manages typed settings on behalf of callers.
// It serialises access to the underlying store according to the store's
// declared capabilities.
type SettingsService interface {
	// Register adds a setting. initialValue becomes the current value.
	Register(key string, typ reflect.Type, defaultValue, initialValue any) error

	// Get returns the current value of key as typ.
	Get(key string, typ reflect.Type) (any, error)

	// Default returns the default value of key as typ.
	Default(key string, typ reflect.Type) (any, error)

	// Set replaces the current value of key.
	Set(key string, value any, typ reflect.Type) error

	// Reset restores the current value of key to its default.
	Reset(key string) error

	// TypeOf returns the declared type of key.
	TypeOf(key string) (reflect.Type, error)

	// IsRegistered reports whether key is registered.
	IsRegistered(key string) bool

	// Unregister removes key.
	Unregister(key string) error

	// List returns every setting sorted by key.
	List() []domain.Setting

	// Store persists all settings.
	Store(ctx context.Context) error

	// Capabilities returns the concurrency flags of the underlying store.
	Capabilities() domain.Capabilities
}
