package deck

import (
	"context"
	"fmt"
	"slices"

	"github.com/knowdeckapp/knowdeck/internal/backup"
	"github.com/knowdeckapp/knowdeck/internal/domain"
	domainerrors "github.com/knowdeckapp/knowdeck/internal/errors"
)

// ExportBackup writes the entire dataset to a backup file and returns its
// path. Pure read: no state mutation, no bucket write.
func (d *Deck) ExportBackup(_ context.Context) (string, error) {
	d.mu.RLock()
	doc := backup.Encode(slices.Clone(d.cards), slices.Clone(d.labels), domain.NowMillis())
	d.mu.RUnlock()

	path, err := d.backups.WriteFull(doc)
	if err != nil {
		return "", fmt.Errorf("export backup: %w", err)
	}
	return path, nil
}

// ExportFilteredBackup writes only the cards passing the currently active
// filter, plus the labels referenced by at least one of those cards. Same
// document shape as the full export.
func (d *Deck) ExportFilteredBackup(_ context.Context) (string, error) {
	d.mu.RLock()
	var cards []domain.Card
	referenced := make(map[string]struct{})
	for i := range d.cards {
		if matchesFilter(&d.cards[i], d.searchText, d.selectedLabelIDs) {
			cards = append(cards, d.cards[i])
			for _, labelID := range d.cards[i].LabelIDs {
				referenced[labelID] = struct{}{}
			}
		}
	}
	var labels []domain.Label
	for i := range d.labels {
		if _, ok := referenced[d.labels[i].ID]; ok {
			labels = append(labels, d.labels[i])
		}
	}
	doc := backup.Encode(cards, labels, domain.NowMillis())
	d.mu.RUnlock()

	path, err := d.backups.WriteFiltered(doc)
	if err != nil {
		return "", fmt.Errorf("export filtered backup: %w", err)
	}
	return path, nil
}

// ListBackups returns the backup files on disk, newest first.
func (d *Deck) ListBackups() ([]backup.Info, error) {
	return d.backups.List()
}

// ReadBackup returns the raw contents of a named backup file.
func (d *Deck) ReadBackup(name string) ([]byte, error) {
	return d.backups.Read(name)
}

// ImportBackup validates a backup document and, on success, wholesale
// replaces the in-memory dataset and both buckets. Fail-closed: a
// rejected document changes nothing, in memory or on disk. The label
// selection is cleared since it may reference labels that no longer
// exist; the search text is left as is. Persistence is awaited so the
// outcome can be reported to the user.
//
// The awaited saves go through the same per-bucket writers as every
// other command, so a snapshot dispatched before the import can never
// land after it.
func (d *Deck) ImportBackup(ctx context.Context, raw []byte) error {
	doc, err := backup.Decode(raw, d.validator)
	if err != nil {
		d.logger.Warn("backup import rejected", "error", err)
		return err
	}

	d.mu.Lock()
	d.cards = doc.Cards
	d.labels = doc.Labels
	d.selectedLabelIDs = nil
	cards := slices.Clone(d.cards)
	labels := slices.Clone(d.labels)

	var cardReply, labelReply chan error
	if !d.closed {
		cardReply = make(chan error, 1)
		labelReply = make(chan error, 1)
		d.cardWriter.dispatch(cards, cardReply)
		d.labelWriter.dispatch(labels, labelReply)
	}
	d.mu.Unlock()

	if cardReply == nil {
		// Writers are gone; fall back to direct saves.
		err = domainerrors.Join(
			d.store.SaveCards(ctx, cards),
			d.store.SaveLabels(ctx, labels),
		)
	} else {
		err = domainerrors.Join(<-cardReply, <-labelReply)
	}
	if err != nil {
		perr := domainerrors.ErrPersistence.WithCause(err)
		d.logger.Error("persisting imported backup failed", "error", perr)
		return perr
	}

	d.logger.Info("backup imported", "cards", len(cards), "labels", len(labels))
	return nil
}
