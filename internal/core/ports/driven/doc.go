// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - SettingsStore: Typed settings registry with document persistence
//   - DocumentStorage: Backing location of the settings document (file, SQLite, memory)
//   - ConfigStore: Configuration of the command-line tool
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
