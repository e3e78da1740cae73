package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactStoreSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "content", "text")
	store := NewArtifactStore(dir)

	path, err := store.Save(context.Background(), "141fbc787408", "Bună ziua, București!")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "141fbc787408.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Bună ziua, București!", string(data))
}

func TestArtifactStoreIsWriteOnce(t *testing.T) {
	store := NewArtifactStore(t.TempDir())
	ctx := context.Background()

	path, err := store.Save(ctx, "141fbc787408", "first")
	require.NoError(t, err)
	again, err := store.Save(ctx, "141fbc787408", "second")
	require.NoError(t, err)
	assert.Equal(t, path, again)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestArtifactStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewArtifactStore(dir)
	_, err := store.Save(context.Background(), "abc", "body")
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestArtifactStoreRejectsPathIDs(t *testing.T) {
	store := NewArtifactStore(t.TempDir())
	for _, id := range []string{"", "..", "../escape", `a\b`} {
		_, err := store.Save(context.Background(), id, "x")
		assert.Error(t, err, id)
	}
}
