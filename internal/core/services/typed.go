package services

import (
	"fmt"

	"github.com/custodia-labs/setstore/internal/core/domain"
	"github.com/custodia-labs/setstore/internal/core/ports/driving"
)

// Register adds a setting of type T whose current value starts at its default.
func Register[T any](svc driving.SettingsService, key string, defaultValue T) error {
	return svc.Register(key, domain.TypeOf[T](), defaultValue, defaultValue)
}

// RegisterWithValue adds a setting of type T with a separate initial value.
func RegisterWithValue[T any](svc driving.SettingsService, key string, defaultValue, initialValue T) error {
	return svc.Register(key, domain.TypeOf[T](), defaultValue, initialValue)
}

// Get returns the current value of key. T must be the registered type.
func Get[T any](svc driving.SettingsService, key string) (T, error) {
	return cast[T](svc.Get(key, domain.TypeOf[T]()))
}

// GetDefault returns the default value of key. T must be the registered type.
func GetDefault[T any](svc driving.SettingsService, key string) (T, error) {
	return cast[T](svc.Default(key, domain.TypeOf[T]()))
}

// Set replaces the current value of key. T must be the registered type.
func Set[T any](svc driving.SettingsService, key string, value T) error {
	return svc.Set(key, value, domain.TypeOf[T]())
}

func cast[T any](value any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if value == nil {
		return zero, nil
	}
	v, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("%w: stored %T is not %s", domain.ErrTypeMismatch, value, domain.TypeName(domain.TypeOf[T]()))
	}
	return v, nil
}
