// Package domain defines the core types for the knowledge deck: cards,
// labels, and the inputs that cross the UI boundary.
package domain

import "time"

// Card is a user-authored note with a title, free-form body, and label
// associations. Timestamps are epoch milliseconds so that persisted records
// and backup documents share one representation.
type Card struct {
	ID        string   `json:"id" validate:"required"`
	Title     string   `json:"title" validate:"notblank"`
	Body      string   `json:"body"`
	LabelIDs  []string `json:"labelIds" validate:"dive,required"`
	CreatedAt int64    `json:"createdAt" validate:"required"`
	UpdatedAt int64    `json:"updatedAt" validate:"required"`
}

// Touch updates the UpdatedAt timestamp.
func (c *Card) Touch() {
	c.UpdatedAt = NowMillis()
}

// HasLabel reports whether the card references the given label.
// LabelIDs is ordered but treated as a set for membership.
func (c *Card) HasLabel(labelID string) bool {
	for _, id := range c.LabelIDs {
		if id == labelID {
			return true
		}
	}
	return false
}

// RemoveLabel strips every occurrence of the given label id and reports
// whether the card changed.
func (c *Card) RemoveLabel(labelID string) bool {
	if !c.HasLabel(labelID) {
		return false
	}
	kept := make([]string, 0, len(c.LabelIDs))
	for _, id := range c.LabelIDs {
		if id != labelID {
			kept = append(kept, id)
		}
	}
	c.LabelIDs = kept
	return true
}

// NowMillis returns the current time as epoch milliseconds.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
