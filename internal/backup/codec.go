package backup

import (
	"encoding/json/v2"
	"fmt"

	"github.com/knowdeckapp/knowdeck/internal/domain"
	domainerrors "github.com/knowdeckapp/knowdeck/internal/errors"
	"github.com/knowdeckapp/knowdeck/internal/validation"
)

// FormatVersion is the backup document format generation. Any other value
// on import is rejected outright.
const FormatVersion = 1

// Document is the versioned JSON snapshot of the full (or filtered)
// dataset. Field names are the interchange format and must not change.
type Document struct {
	Version    int            `json:"version" validate:"eq=1"`
	ExportedAt int64          `json:"exportedAt" validate:"required"`
	Cards      []domain.Card  `json:"cards" validate:"dive"`
	Labels     []domain.Label `json:"labels" validate:"dive"`
}

// Encode builds a backup document from in-memory collections.
// Deterministic and total: order is preserved and nil slices become empty
// arrays in the output.
func Encode(cards []domain.Card, labels []domain.Label, exportedAt int64) *Document {
	if cards == nil {
		cards = []domain.Card{}
	}
	if labels == nil {
		labels = []domain.Label{}
	}
	return &Document{
		Version:    FormatVersion,
		ExportedAt: exportedAt,
		Cards:      cards,
		Labels:     labels,
	}
}

// Decode parses and validates a backup document. All-or-nothing: a wrong
// version or a single malformed card or label rejects the whole document.
func Decode(raw []byte, v *validation.Validator) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, domainerrors.ErrImportRejected.WithCause(fmt.Errorf("%w: %w", ErrInvalidDocument, err))
	}

	if doc.Version != FormatVersion {
		return nil, domainerrors.ErrImportRejected.WithCause(
			fmt.Errorf("%w: got version %d, want %d", ErrVersionMismatch, doc.Version, FormatVersion))
	}

	// Both collections must be present. Empty is fine, absent is not;
	// the `required` rule cannot make that distinction for slices.
	if doc.Cards == nil || doc.Labels == nil {
		return nil, domainerrors.ErrImportRejected.WithCause(
			fmt.Errorf("%w: cards and labels arrays are required", ErrInvalidDocument))
	}

	if err := v.Validate(&doc); err != nil {
		return nil, domainerrors.ErrImportRejected.WithCause(fmt.Errorf("%w: %w", ErrInvalidDocument, err))
	}

	return &doc, nil
}
