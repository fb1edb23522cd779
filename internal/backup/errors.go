// Package backup serializes the dataset to and from the versioned JSON
// backup document, and manages backup files on disk.
package backup

import "errors"

var (
	// ErrVersionMismatch indicates the document's format version is not supported.
	ErrVersionMismatch = errors.New("backup version not supported")

	// ErrInvalidDocument indicates the document failed schema validation.
	ErrInvalidDocument = errors.New("invalid backup document")
)
