package deck_test

import (
	"context"
	"encoding/json/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowdeckapp/knowdeck/internal/backup"
	"github.com/knowdeckapp/knowdeck/internal/domain"
	domainerrors "github.com/knowdeckapp/knowdeck/internal/errors"
	"github.com/knowdeckapp/knowdeck/internal/validation"
)

func readDocument(t *testing.T, path string) *backup.Document {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	doc, err := backup.Decode(raw, validation.New())
	require.NoError(t, err)
	return doc
}

func TestExportBackup(t *testing.T) {
	ctx := context.Background()
	f := initialized(t)

	label := mustCreateLabel(t, f.deck, "Go")
	mustCreateCard(t, f.deck, "One", label.ID)
	mustCreateCard(t, f.deck, "Two")

	path, err := f.deck.ExportBackup(ctx)
	require.NoError(t, err)
	assert.Contains(t, filepath.Base(path), "knowledge-backup-")
	assert.NotContains(t, filepath.Base(path), "filtered")

	doc := readDocument(t, path)
	assert.Equal(t, backup.FormatVersion, doc.Version)
	assert.Len(t, doc.Cards, 2)
	assert.Len(t, doc.Labels, 1)

	t.Run("export ignores the active filter", func(t *testing.T) {
		f.deck.SetSearchText("One")
		path, err := f.deck.ExportBackup(ctx)
		require.NoError(t, err)
		assert.Len(t, readDocument(t, path).Cards, 2)
	})

	t.Run("empty deck exports empty arrays", func(t *testing.T) {
		g := initialized(t)
		path, err := g.deck.ExportBackup(ctx)
		require.NoError(t, err)
		doc := readDocument(t, path)
		assert.Empty(t, doc.Cards)
		assert.Empty(t, doc.Labels)
	})
}

func TestExportFilteredBackup(t *testing.T) {
	ctx := context.Background()
	f := initialized(t)

	go1 := mustCreateLabel(t, f.deck, "Go")
	db := mustCreateLabel(t, f.deck, "DB")
	unused := mustCreateLabel(t, f.deck, "Unused")

	mustCreateCard(t, f.deck, "Alpha", go1.ID)
	mustCreateCard(t, f.deck, "Beta", db.ID)

	f.deck.SetSearchText("Alpha")
	path, err := f.deck.ExportFilteredBackup(ctx)
	require.NoError(t, err)
	assert.Contains(t, filepath.Base(path), "knowledge-backup-filtered-")

	doc := readDocument(t, path)
	require.Len(t, doc.Cards, 1)
	assert.Equal(t, "Alpha", doc.Cards[0].Title)

	// Only labels referenced by an exported card are included.
	require.Len(t, doc.Labels, 1)
	assert.Equal(t, go1.ID, doc.Labels[0].ID)
	_ = unused
}

func TestImportBackup(t *testing.T) {
	ctx := context.Background()

	importedLabels := []domain.Label{{ID: "il1", Name: "Imported", Color: "hsl(0, 65%, 55%)"}}
	importedCards := []domain.Card{{ID: "ic1", Title: "Imported card", LabelIDs: []string{"il1"}, CreatedAt: 5, UpdatedAt: 5}}

	encode := func(t *testing.T) []byte {
		t.Helper()
		raw, err := json.Marshal(backup.Encode(importedCards, importedLabels, 99))
		require.NoError(t, err)
		return raw
	}

	t.Run("wholesale replace, selection cleared, search kept", func(t *testing.T) {
		f := initialized(t)
		old := mustCreateLabel(t, f.deck, "Old")
		mustCreateCard(t, f.deck, "Old card", old.ID)
		f.deck.SetSearchText("keep me")
		f.deck.SetSelectedLabelIDs([]string{old.ID})

		require.NoError(t, f.deck.ImportBackup(ctx, encode(t)))

		cards := f.deck.Cards()
		require.Len(t, cards, 1)
		assert.Equal(t, "ic1", cards[0].ID)
		require.Len(t, f.deck.Labels(), 1)

		assert.Empty(t, f.deck.SelectedLabelIDs(), "stale selection must be cleared")
		assert.Equal(t, "keep me", f.deck.SearchText())
	})

	t.Run("import is durable before returning", func(t *testing.T) {
		f := initialized(t)
		require.NoError(t, f.deck.ImportBackup(ctx, encode(t)))

		// No flush needed: import awaits persistence.
		assert.Len(t, f.store.LoadCards(ctx), 1)
		assert.Len(t, f.store.LoadLabels(ctx), 1)
	})

	t.Run("earlier pending writes never land after the import", func(t *testing.T) {
		f := initialized(t)
		// Each create dispatches a whole-bucket snapshot; with the
		// writers busy, most of these sit pending or in flight when the
		// import's save is dispatched.
		for i := 0; i < 20; i++ {
			mustCreateCard(t, f.deck, "Pre-import")
		}

		require.NoError(t, f.deck.ImportBackup(ctx, encode(t)))
		f.deck.Close()

		cards := f.store.LoadCards(ctx)
		require.Len(t, cards, 1, "disk must hold only the imported dataset")
		assert.Equal(t, "ic1", cards[0].ID)
	})

	t.Run("rejected document changes nothing", func(t *testing.T) {
		f := initialized(t)
		kept := mustCreateCard(t, f.deck, "Survivor")

		err := f.deck.ImportBackup(ctx, []byte(`{"version":99,"exportedAt":1,"cards":[],"labels":[]}`))
		require.Error(t, err)
		assert.True(t, domainerrors.Is(err, domainerrors.ErrImportRejected))

		cards := f.deck.Cards()
		require.Len(t, cards, 1)
		assert.Equal(t, kept.ID, cards[0].ID)
	})

	t.Run("round trip through export", func(t *testing.T) {
		f := initialized(t)
		label := mustCreateLabel(t, f.deck, "Go")
		card := mustCreateCard(t, f.deck, "Round trip", label.ID)

		path, err := f.deck.ExportBackup(ctx)
		require.NoError(t, err)
		raw, err := os.ReadFile(path)
		require.NoError(t, err)

		g := initialized(t)
		require.NoError(t, g.deck.ImportBackup(ctx, raw))

		cards := g.deck.Cards()
		require.Len(t, cards, 1)
		assert.Equal(t, card.ID, cards[0].ID)
		assert.Equal(t, card.Title, cards[0].Title)
		assert.Equal(t, card.CreatedAt, cards[0].CreatedAt)
		require.Len(t, g.deck.Labels(), 1)
		assert.Equal(t, label, g.deck.Labels()[0])
	})
}

func TestListBackups(t *testing.T) {
	ctx := context.Background()
	f := initialized(t)

	infos, err := f.deck.ListBackups()
	require.NoError(t, err)
	assert.Empty(t, infos)

	_, err = f.deck.ExportBackup(ctx)
	require.NoError(t, err)

	infos, err = f.deck.ListBackups()
	require.NoError(t, err)
	assert.Len(t, infos, 1)
}
