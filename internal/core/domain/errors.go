package domain

import "errors"

// Domain errors represent settings store failures.
// Callers match them with errors.Is; adapters wrap them with the offending key.
var (
	// ErrNotFound indicates a storage location holds no document yet.
	// The settings store treats it as an empty registry and never returns it.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey indicates a setting with the same key is already registered.
	ErrDuplicateKey = errors.New("setting already registered")

	// ErrNotRegistered indicates no setting is registered under the key.
	ErrNotRegistered = errors.New("setting not registered")

	// ErrTypeMismatch indicates a requested or supplied type does not match
	// the declared type of the setting.
	ErrTypeMismatch = errors.New("type mismatch")

	// Persistence Errors.

	// ErrCorruptDocument indicates the persisted document could not be decoded:
	// malformed content, an unknown section, or sections that disagree on keys.
	ErrCorruptDocument = errors.New("corrupt settings document")

	// ErrUnknownType indicates a type descriptor that is not in the type registry.
	// On load it is reported wrapped in ErrCorruptDocument.
	ErrUnknownType = errors.New("unknown type")

	// ErrIOFailure indicates the backing storage could not be read or written.
	ErrIOFailure = errors.New("storage i/o failure")
)
