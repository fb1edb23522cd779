package domain

// Label is a named, colored tag attachable to many cards.
// Color may be empty on records migrated from the legacy flat storage,
// which predates color support.
type Label struct {
	ID    string `json:"id" validate:"required"`
	Name  string `json:"name" validate:"notblank"`
	Color string `json:"color"`
}
