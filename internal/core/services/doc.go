// Package services implements the driving port interfaces.
// Services contain the core logic and orchestrate
// calls to driven ports (adapters).
//
// SettingsService is the coordinator in front of a settings store: it applies
// the store's declared concurrency capabilities. The generic helpers
// (Register, Get, Set, ...) derive the declared type from their type
// parameter.
//
// Services are pure Go with no CGO or external dependencies.
package services
