// Package memory provides in-memory implementations of driven port interfaces.
// They back unit tests and never touch the filesystem.
//
// Adapters:
//   - DocumentStorage: settings document held in a byte slice, with failure injection
//   - ConfigStore: tool configuration held in a map
package memory
