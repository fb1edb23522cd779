package backup_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowdeckapp/knowdeck/internal/backup"
)

func TestServiceWrite(t *testing.T) {
	dir := t.TempDir()
	svc := backup.NewService(dir, nil)

	doc := backup.Encode(nil, nil, 1700000000000)

	t.Run("full backup file name carries the export timestamp", func(t *testing.T) {
		path, err := svc.WriteFull(doc)
		require.NoError(t, err)
		assert.Equal(t, "knowledge-backup-1700000000000.json", filepath.Base(path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"version":1`)
	})

	t.Run("filtered backup gets its own prefix", func(t *testing.T) {
		path, err := svc.WriteFiltered(doc)
		require.NoError(t, err)
		assert.Equal(t, "knowledge-backup-filtered-1700000000000.json", filepath.Base(path))
	})

	t.Run("missing directory is created", func(t *testing.T) {
		nested := backup.NewService(filepath.Join(dir, "deep", "er"), nil)
		_, err := nested.WriteFull(doc)
		require.NoError(t, err)
	})
}

func TestServiceList(t *testing.T) {
	dir := t.TempDir()
	svc := backup.NewService(dir, nil)

	t.Run("empty on missing directory", func(t *testing.T) {
		missing := backup.NewService(filepath.Join(dir, "nope"), nil)
		infos, err := missing.List()
		require.NoError(t, err)
		assert.Empty(t, infos)
	})

	_, err := svc.WriteFull(backup.Encode(nil, nil, 1))
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	_, err = svc.WriteFiltered(backup.Encode(nil, nil, 2))
	require.NoError(t, err)

	// Unrelated files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	infos, err := svc.List()
	require.NoError(t, err)
	require.Len(t, infos, 2)

	assert.True(t, infos[0].Filtered, "newest backup listed first")
	assert.False(t, infos[1].Filtered)
	for _, info := range infos {
		assert.NotZero(t, info.Size)
		assert.NotZero(t, info.CreatedAt)
	}
}
