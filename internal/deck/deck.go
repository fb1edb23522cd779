// Package deck holds the authoritative in-memory dataset and exposes the
// full command surface the UI layer consumes.
//
// Commands mutate in-memory state synchronously, then dispatch a
// whole-bucket snapshot to a background writer. The command returns once
// memory is updated; durability is best effort and only logged. Import is
// the exception: it awaits persistence so the user can be told whether it
// stuck.
package deck

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/knowdeckapp/knowdeck/internal/backup"
	"github.com/knowdeckapp/knowdeck/internal/color"
	"github.com/knowdeckapp/knowdeck/internal/domain"
	domainerrors "github.com/knowdeckapp/knowdeck/internal/errors"
	"github.com/knowdeckapp/knowdeck/internal/id"
	"github.com/knowdeckapp/knowdeck/internal/legacy"
	"github.com/knowdeckapp/knowdeck/internal/store"
	"github.com/knowdeckapp/knowdeck/internal/validation"
)

// Deck is the domain store: one authoritative in-memory mirror of the
// dataset plus the transient filter state, kept in sync with the durable
// bucket store after every mutation.
type Deck struct {
	store      *store.Store
	backups    *backup.Service
	validator  *validation.Validator
	legacyPath string
	logger     *slog.Logger

	mu               sync.RWMutex
	initialized      bool
	closed           bool
	cards            []domain.Card
	labels           []domain.Label
	selectedLabelIDs []string
	searchText       string

	cardWriter  *snapshotWriter[domain.Card]
	labelWriter *snapshotWriter[domain.Label]
}

// New creates a Deck. Call Initialize exactly once before issuing
// commands; commands before then operate on empty collections.
func New(s *store.Store, backups *backup.Service, v *validation.Validator, legacyPath string, logger *slog.Logger) *Deck {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Deck{
		store:      s,
		backups:    backups,
		validator:  v,
		legacyPath: legacyPath,
		logger:     logger,
	}
	d.cardWriter = newSnapshotWriter("cards", s.SaveCards, logger)
	d.labelWriter = newSnapshotWriter("labels", s.SaveLabels, logger)
	return d
}

// Initialize runs the one-shot legacy migration, then loads both buckets
// into memory. A failed migration is logged and initialization continues
// with whatever the durable store already holds. Calling it a second time
// is a logged no-op.
func (d *Deck) Initialize(ctx context.Context) {
	d.mu.Lock()
	if d.initialized {
		d.mu.Unlock()
		d.logger.Warn("deck already initialized")
		return
	}
	d.initialized = true
	d.mu.Unlock()

	if _, err := legacy.Migrate(ctx, d.store, d.legacyPath, d.validator, d.logger); err != nil {
		d.logger.Warn("legacy migration failed, continuing with durable store contents", "error", err)
	}

	cards := d.store.LoadCards(ctx)
	labels := d.store.LoadLabels(ctx)

	d.mu.Lock()
	d.cards = cards
	d.labels = labels
	d.mu.Unlock()

	d.logger.Info("deck initialized", "cards", len(cards), "labels", len(labels))
}

// Close flushes pending bucket writes and stops the background writers.
func (d *Deck) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	d.cardWriter.close()
	d.labelWriter.close()
}

// cloneCards copies cards along with their LabelIDs backing arrays, so a
// caller mutating the result cannot reach the authoritative state.
func cloneCards(cards []domain.Card) []domain.Card {
	out := slices.Clone(cards)
	for i := range out {
		out[i].LabelIDs = slices.Clone(out[i].LabelIDs)
	}
	return out
}

// Cards returns a copy of the card collection in insertion order.
func (d *Deck) Cards() []domain.Card {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return cloneCards(d.cards)
}

// Labels returns a copy of the label collection in insertion order.
func (d *Deck) Labels() []domain.Label {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.labels)
}

// CreateCard validates the input, assigns an id and timestamps, and
// appends the card. The title must be non-empty after trimming.
func (d *Deck) CreateCard(input domain.CreateCardInput) (*domain.Card, error) {
	if err := d.validator.Validate(&input); err != nil {
		d.logger.Warn("create card rejected", "error", err)
		return nil, err
	}

	now := domain.NowMillis()
	card := domain.Card{
		ID:        id.New(),
		Title:     input.Title,
		Body:      input.Body,
		LabelIDs:  slices.Clone(input.LabelIDs),
		CreatedAt: now,
		UpdatedAt: now,
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.cards = append(d.cards, card)
	d.persistCardsLocked()

	d.logger.Info("card created", "card_id", card.ID)
	card.LabelIDs = slices.Clone(card.LabelIDs)
	return &card, nil
}

// UpdateCard replaces the mutable fields of an existing card and
// refreshes its UpdatedAt. CreatedAt is untouched.
func (d *Deck) UpdateCard(input domain.UpdateCardInput) (*domain.Card, error) {
	if err := d.validator.Validate(&input); err != nil {
		d.logger.Warn("update card rejected", "error", err)
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.cards {
		if d.cards[i].ID != input.ID {
			continue
		}
		d.cards[i].Title = input.Title
		d.cards[i].Body = input.Body
		d.cards[i].LabelIDs = slices.Clone(input.LabelIDs)
		d.cards[i].Touch()

		card := d.cards[i]
		card.LabelIDs = slices.Clone(card.LabelIDs)
		d.persistCardsLocked()
		return &card, nil
	}
	return nil, domainerrors.NotFoundf("card %s not found", input.ID)
}

// DeleteCard removes the card if present. Deleting an unknown id is a
// no-op, not an error.
func (d *Deck) DeleteCard(cardID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	kept := make([]domain.Card, 0, len(d.cards))
	for i := range d.cards {
		if d.cards[i].ID != cardID {
			kept = append(kept, d.cards[i])
		}
	}
	if len(kept) == len(d.cards) {
		return
	}
	d.cards = kept
	d.persistCardsLocked()
	d.logger.Info("card deleted", "card_id", cardID)
}

// CreateLabel appends a new label. The id may be pre-generated by the
// caller; when absent one is generated. When color is omitted it is
// assigned deterministically from the current label count so that
// auto-assigned hues stay maximally spread.
func (d *Deck) CreateLabel(input domain.CreateLabelInput) (*domain.Label, error) {
	if err := d.validator.Validate(&input); err != nil {
		d.logger.Warn("create label rejected", "error", err)
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	label := domain.Label{ID: input.ID, Name: input.Name, Color: input.Color}
	if label.ID == "" {
		label.ID = id.New()
	}
	if label.Color == "" {
		label.Color = color.ForIndex(len(d.labels))
	}

	d.labels = append(d.labels, label)
	d.persistLabelsLocked()

	d.logger.Info("label created", "label_id", label.ID, "name", label.Name)
	return &label, nil
}

// UpdateLabel overwrites the full label record, name and color both; it
// is not a partial patch.
func (d *Deck) UpdateLabel(label domain.Label) error {
	if err := d.validator.Validate(&label); err != nil {
		d.logger.Warn("update label rejected", "error", err)
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.labels {
		if d.labels[i].ID != label.ID {
			continue
		}
		d.labels[i] = label
		d.persistLabelsLocked()
		return nil
	}
	return domainerrors.NotFoundf("label %s not found", label.ID)
}

// DeleteLabel removes the label and cascades: the id is scrubbed from
// every card's label set and from the active filter selection. The card
// snapshot is dispatched before the label snapshot so an interruption
// between the two leaves label-free cards rather than cards referencing a
// deleted label. The two bucket writes do not share a transaction.
func (d *Deck) DeleteLabel(labelID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cardsChanged := false
	for i := range d.cards {
		if d.cards[i].RemoveLabel(labelID) {
			cardsChanged = true
		}
	}

	keptLabels := make([]domain.Label, 0, len(d.labels))
	for i := range d.labels {
		if d.labels[i].ID != labelID {
			keptLabels = append(keptLabels, d.labels[i])
		}
	}
	labelChanged := len(keptLabels) != len(d.labels)
	d.labels = keptLabels

	if i := slices.Index(d.selectedLabelIDs, labelID); i >= 0 {
		d.selectedLabelIDs = slices.Delete(slices.Clone(d.selectedLabelIDs), i, i+1)
	}

	if cardsChanged {
		d.persistCardsLocked()
	}
	if labelChanged {
		d.persistLabelsLocked()
		d.logger.Info("label deleted", "label_id", labelID, "cards_updated", cardsChanged)
	}
}

// SetSearchText sets the active substring filter.
func (d *Deck) SetSearchText(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.searchText = text
}

// SearchText returns the active substring filter.
func (d *Deck) SearchText() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.searchText
}

// SetSelectedLabelIDs sets the active label filter set.
func (d *Deck) SetSelectedLabelIDs(ids []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.selectedLabelIDs = slices.Clone(ids)
}

// SelectedLabelIDs returns the active label filter set.
func (d *Deck) SelectedLabelIDs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.selectedLabelIDs)
}

// ResetFilters clears both the search text and the label selection.
func (d *Deck) ResetFilters() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.searchText = ""
	d.selectedLabelIDs = nil
}

// FilteredCards returns the cards passing the active filter, in insertion
// order. The same predicate drives the filtered export.
func (d *Deck) FilteredCards() []domain.Card {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []domain.Card
	for i := range d.cards {
		if matchesFilter(&d.cards[i], d.searchText, d.selectedLabelIDs) {
			out = append(out, d.cards[i])
		}
	}
	return cloneCards(out)
}

// persistCardsLocked dispatches the current card collection to the
// background writer. Caller must hold d.mu.
func (d *Deck) persistCardsLocked() {
	if d.closed {
		return
	}
	d.cardWriter.enqueue(slices.Clone(d.cards))
}

// persistLabelsLocked dispatches the current label collection to the
// background writer. Caller must hold d.mu.
func (d *Deck) persistLabelsLocked() {
	if d.closed {
		return
	}
	d.labelWriter.enqueue(slices.Clone(d.labels))
}
