package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/setstore/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.db")

	store, err := NewStore(path)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, path, store.Path())
	assert.FileExists(t, path)
}

func TestNewStore_MigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.db")

	first, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, first.DocumentStorage("a").Write(context.Background(), []byte(`{}`)))
	require.NoError(t, first.Close())

	second, err := NewStore(path)
	require.NoError(t, err)
	defer second.Close()

	data, err := second.DocumentStorage("a").Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}

func TestDocumentStorage_ReadMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.DocumentStorage(DefaultDocumentName).Read(context.Background())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStorage_WriteReplaces(t *testing.T) {
	store := newTestStore(t)
	storage := store.DocumentStorage(DefaultDocumentName)
	ctx := context.Background()

	require.NoError(t, storage.Write(ctx, []byte(`{"types":{}}`)))
	require.NoError(t, storage.Write(ctx, []byte(`{"values":{}}`)))

	data, err := storage.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"values":{}}`, string(data))
}

func TestDocumentStorage_NamesAreIndependent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.DocumentStorage("a").Write(ctx, []byte(`"a"`)))
	require.NoError(t, store.DocumentStorage("b").Write(ctx, []byte(`"b"`)))

	a, err := store.DocumentStorage("a").Read(ctx)
	require.NoError(t, err)
	b, err := store.DocumentStorage("b").Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, `"a"`, string(a))
	assert.Equal(t, `"b"`, string(b))
}

func TestDocumentStorage_Location(t *testing.T) {
	store := newTestStore(t)

	assert.Equal(t, store.Path()+"#settings", store.DocumentStorage("settings").Location())
}

func TestStore_RevisionChangesOnWrite(t *testing.T) {
	store := newTestStore(t)
	storage := store.DocumentStorage(DefaultDocumentName)
	ctx := context.Background()

	_, err := store.Revision(ctx, DefaultDocumentName)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, storage.Write(ctx, []byte(`{}`)))
	first, err := store.Revision(ctx, DefaultDocumentName)
	require.NoError(t, err)
	_, err = uuid.Parse(first)
	require.NoError(t, err)

	require.NoError(t, storage.Write(ctx, []byte(`{}`)))
	second, err := store.Revision(ctx, DefaultDocumentName)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
