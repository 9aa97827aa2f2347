// Package domain defines the core entities of the settings store.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Setting: A snapshot of one registered setting
//   - TypeRegistry: Resolves persisted type descriptors back to Go types
//   - Capabilities: Concurrency flags a store publishes to its coordinator
//   - AppConfig: Configuration of the command-line tool
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
