// Package jsonstore provides the typed settings registry persisted as a JSON document.
//
// The registry keeps three key-aligned maps: current values, defaults and
// declared types. Every key is present in all three or in none.
//
// # Document Format
//
//	{
//	  "types":    { "<key>": "<type descriptor>" },
//	  "values":   { "<key>": <value> },
//	  "defaults": { "<key>": <value> }
//	}
//
// Sections are written in that order. On load they are processed in document
// order and values/defaults are decoded into the type recorded under "types",
// so a document with "values" ahead of "types" does not load. Unknown
// sections are rejected.
//
// # Thread Safety
//
// Each operation is atomic across the three maps. Ordering between operations
// is the caller's concern; Capabilities reports which operations may overlap.
// Store serialises a snapshot taken at the start of the call.
package jsonstore
