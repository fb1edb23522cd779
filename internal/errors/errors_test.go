package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowdeckapp/knowdeck/internal/errors"
)

func TestIsMatchesByCode(t *testing.T) {
	err := errors.NotFoundf("card %s not found", "c1")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.False(t, errors.Is(err, errors.ErrValidation))
}

func TestWrappedCauseStaysReachable(t *testing.T) {
	cause := stderrors.New("disk full")
	err := errors.ErrPersistence.WithCause(cause)

	assert.True(t, errors.Is(err, errors.ErrPersistence))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "disk full")
}

func TestIsMatchesThroughFmtWrapping(t *testing.T) {
	err := fmt.Errorf("save labels: %w", errors.StorageUnavailable("no data dir"))
	assert.True(t, errors.Is(err, errors.ErrStorageUnavailable))
}

func TestAsExtractsDetails(t *testing.T) {
	err := errors.ValidationWithDetails("validation failed", map[string]string{"title": "is required"})

	var derr *errors.Error
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, errors.CodeValidation, derr.Code)
	assert.Contains(t, derr.Details, "title")
}
