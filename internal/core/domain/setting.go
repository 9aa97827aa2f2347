package domain

import "reflect"

// Setting is a read-only copy of one registered setting.
type Setting struct {
	// Key uniquely identifies the setting.
	Key string

	// Type is the declared type fixed at registration.
	Type reflect.Type

	// Value is the current value.
	Value any

	// Default is the value supplied at registration.
	Default any
}

// TypeName returns the descriptor of the declared type.
func (s Setting) TypeName() string {
	return TypeName(s.Type)
}
