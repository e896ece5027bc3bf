package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sana-care/sana-cli/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "sana/auth/accessToken", "secret-value"))

	got, err := store.Get(ctx, "sana/auth/accessToken")
	require.NoError(t, err)
	assert.Equal(t, "secret-value", got)

	require.NoError(t, store.Delete(ctx, "sana/auth/accessToken"))

	_, err = store.Get(ctx, "sana/auth/accessToken")
	require.ErrorIs(t, err, ports.ErrSecretNotFound)
}

func TestStorePutOverwrites(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "key", "first"))
	require.NoError(t, store.Put(ctx, "key", "second"))

	got, err := store.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "second", got)
}

func TestStoreRestrictsPermissions(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := NewStore(root)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "sana/auth/accessToken", "secret-value"))

	info, err := os.Stat(filepath.Join(root, "sana", "auth", "accessToken"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	dirInfo, err := os.Stat(filepath.Join(root, "sana", "auth"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), dirInfo.Mode().Perm())
}

func TestStoreDeleteOfMissingKeyIsANoop(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	assert.NoError(t, store.Delete(context.Background(), "never-stored"))
}

func TestStoreRejectsTraversalKeys(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	ctx := context.Background()

	for _, key := range []string{"", "   ", "..", "../outside", "/etc/passwd", "."} {
		assert.Error(t, store.Put(ctx, key, "x"), "key %q", key)
	}
}

func TestStoreNoTempFilesLeftBehind(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := NewStore(root)

	require.NoError(t, store.Put(context.Background(), "key", "value"))

	matches, err := filepath.Glob(filepath.Join(root, ".secret-*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}
