// Package id provides unique identifier generation for domain entities.
package id

import "github.com/google/uuid"

// New generates a random unique id.
//
// Ids are UUID-shaped because the backup interchange format carries them
// verbatim; a second id alphabet would leak into exported documents.
func New() string {
	return uuid.NewString()
}
