package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowdeckapp/knowdeck/internal/domain"
	domainerrors "github.com/knowdeckapp/knowdeck/internal/errors"
	"github.com/knowdeckapp/knowdeck/internal/validation"
)

func TestValidateCard(t *testing.T) {
	v := validation.New()

	t.Run("valid card passes", func(t *testing.T) {
		card := domain.Card{
			ID:        "c1",
			Title:     "Title",
			LabelIDs:  []string{"l1"},
			CreatedAt: 1700000000000,
			UpdatedAt: 1700000000000,
		}
		require.NoError(t, v.Validate(&card))
	})

	t.Run("card with no labels passes", func(t *testing.T) {
		card := domain.Card{
			ID:        "c1",
			Title:     "Title",
			LabelIDs:  []string{},
			CreatedAt: 1700000000000,
			UpdatedAt: 1700000000000,
		}
		require.NoError(t, v.Validate(&card))
	})

	t.Run("whitespace title rejected", func(t *testing.T) {
		card := domain.Card{
			ID:        "c1",
			Title:     "   ",
			CreatedAt: 1700000000000,
			UpdatedAt: 1700000000000,
		}
		err := v.Validate(&card)
		require.Error(t, err)
		assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

		var derr *domainerrors.Error
		require.True(t, domainerrors.As(err, &derr))
		assert.Contains(t, derr.Details, "title")
	})

	t.Run("empty label id element rejected", func(t *testing.T) {
		card := domain.Card{
			ID:        "c1",
			Title:     "Title",
			LabelIDs:  []string{"l1", ""},
			CreatedAt: 1700000000000,
			UpdatedAt: 1700000000000,
		}
		require.Error(t, v.Validate(&card))
	})
}

func TestValidateInputs(t *testing.T) {
	v := validation.New()

	t.Run("create card requires non-blank title", func(t *testing.T) {
		require.Error(t, v.Validate(&domain.CreateCardInput{Title: ""}))
		require.Error(t, v.Validate(&domain.CreateCardInput{Title: "\t\n"}))
		require.NoError(t, v.Validate(&domain.CreateCardInput{Title: "ok"}))
	})

	t.Run("update card requires id", func(t *testing.T) {
		require.Error(t, v.Validate(&domain.UpdateCardInput{Title: "ok"}))
		require.NoError(t, v.Validate(&domain.UpdateCardInput{ID: "c1", Title: "ok"}))
	})

	t.Run("create label allows short ids", func(t *testing.T) {
		// Imported labels carry caller-chosen ids, not generated ones.
		require.NoError(t, v.Validate(&domain.CreateLabelInput{ID: "L1", Name: "Go"}))
	})

	t.Run("create label requires name", func(t *testing.T) {
		err := v.Validate(&domain.CreateLabelInput{Name: " "})
		require.Error(t, err)

		var derr *domainerrors.Error
		require.True(t, domainerrors.As(err, &derr))
		assert.Equal(t, domainerrors.CodeValidation, derr.Code)
	})
}

func TestValidateLabel(t *testing.T) {
	v := validation.New()

	require.NoError(t, v.Validate(&domain.Label{ID: "l1", Name: "Go", Color: "hsl(0, 65%, 55%)"}))
	require.Error(t, v.Validate(&domain.Label{ID: "", Name: "Go"}))
	require.Error(t, v.Validate(&domain.Label{ID: "l1", Name: ""}))
}
