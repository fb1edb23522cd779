package domain

// CreateCardInput carries the UI-supplied fields for a new card.
// The deck assigns the id and timestamps.
type CreateCardInput struct {
	Title    string   `json:"title" validate:"notblank"`
	Body     string   `json:"body"`
	LabelIDs []string `json:"labelIds" validate:"dive,required"`
}

// UpdateCardInput carries the mutable fields of an existing card.
// CreatedAt is never user-editable; UpdatedAt is refreshed by the deck.
type UpdateCardInput struct {
	ID       string   `json:"id" validate:"required"`
	Title    string   `json:"title" validate:"notblank"`
	Body     string   `json:"body"`
	LabelIDs []string `json:"labelIds" validate:"dive,required"`
}

// CreateLabelInput carries the fields for a new label. ID may be
// pre-generated by the caller; if empty the deck generates one. Color is
// optional and auto-assigned from the current label count when omitted.
type CreateLabelInput struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name" validate:"notblank"`
	Color string `json:"color,omitempty"`
}
