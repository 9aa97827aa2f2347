// Package file provides a filesystem implementation of driven.DocumentStorage.
//
// Documents are replaced atomically: the new content is written to a
// temporary file in the same directory and renamed over the target, so a
// failed write never leaves a truncated document behind.
package file
