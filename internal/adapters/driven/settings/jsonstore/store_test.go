package jsonstore

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/setstore/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/setstore/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/setstore/internal/core/domain"
)

var (
	intType    = domain.TypeOf[int]()
	stringType = domain.TypeOf[string]()
	anyType    = domain.TypeOf[any]()
)

type theme struct {
	Name string `json:"name"`
	Dark bool   `json:"dark"`
}

func openMemory(t *testing.T) (*Store, *memory.DocumentStorage) {
	t.Helper()
	storage := memory.NewDocumentStorage()
	store, err := Open(context.Background(), storage)
	require.NoError(t, err)
	return store, storage
}

func openFile(t *testing.T, path string, opts ...Option) *Store {
	t.Helper()
	storage, err := file.NewDocumentStorage(path)
	require.NoError(t, err)
	store, err := Open(context.Background(), storage, opts...)
	require.NoError(t, err)
	return store
}

func TestOpen_NilStorage(t *testing.T) {
	_, err := Open(context.Background(), nil)
	assert.Error(t, err)
}

func TestOpen_MissingFileStartsEmpty(t *testing.T) {
	store := openFile(t, filepath.Join(t.TempDir(), "settings.json"))

	assert.False(t, store.IsRegistered("count"))
	assert.Empty(t, store.List())
}

func TestOpen_EmptyDocumentStartsEmpty(t *testing.T) {
	store, err := Open(context.Background(), memory.NewDocumentStorageWith("  \n"))

	require.NoError(t, err)
	assert.Empty(t, store.List())
}

func TestOpen_ReadFailure(t *testing.T) {
	storage := memory.NewDocumentStorage()
	storage.FailReads(errors.New("permission denied"))

	_, err := Open(context.Background(), storage)

	assert.ErrorIs(t, err, domain.ErrIOFailure)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestOpen_WithTypeRegistryNil(t *testing.T) {
	_, err := Open(context.Background(), memory.NewDocumentStorage(), WithTypeRegistry(nil))
	assert.Error(t, err)
}

func TestStore_Capabilities(t *testing.T) {
	store, _ := openMemory(t)

	caps := store.Capabilities()

	assert.False(t, caps.ConcurrentRegister)
	assert.True(t, caps.ConcurrentUnregister)
	assert.False(t, caps.ConcurrentUpdate)
}

func TestStore_RegisterAndGet(t *testing.T) {
	store, _ := openMemory(t)

	require.NoError(t, store.Register("count", intType, 0, 7))

	assert.True(t, store.IsRegistered("count"))
	val, err := store.Get("count", intType)
	require.NoError(t, err)
	assert.Equal(t, 7, val)

	def, err := store.Default("count", intType)
	require.NoError(t, err)
	assert.Equal(t, 0, def)

	typ, err := store.TypeOf("count")
	require.NoError(t, err)
	assert.Equal(t, intType, typ)
}

func TestStore_RegisterDuplicateLeavesRegistryUnchanged(t *testing.T) {
	store, _ := openMemory(t)
	require.NoError(t, store.Register("name", stringType, "", "x"))

	err := store.Register("name", intType, 1, 2)

	assert.ErrorIs(t, err, domain.ErrDuplicateKey)
	val, err := store.Get("name", stringType)
	require.NoError(t, err)
	assert.Equal(t, "x", val)
	def, err := store.Default("name", stringType)
	require.NoError(t, err)
	assert.Equal(t, "", def)
}

func TestStore_RegisterRejectsMistypedValues(t *testing.T) {
	store, _ := openMemory(t)

	assert.ErrorIs(t, store.Register("a", intType, "zero", 0), domain.ErrTypeMismatch)
	assert.ErrorIs(t, store.Register("b", intType, 0, "one"), domain.ErrTypeMismatch)
	assert.ErrorIs(t, store.Register("c", nil, 0, 0), domain.ErrTypeMismatch)
	assert.ErrorIs(t, store.Register("d", intType, nil, 0), domain.ErrTypeMismatch)

	assert.Empty(t, store.List())
}

func TestStore_RegisterNilForNilableType(t *testing.T) {
	store, _ := openMemory(t)

	require.NoError(t, store.Register("object", anyType, nil, nil))

	val, err := store.Get("object", anyType)
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestStore_GetNotRegistered(t *testing.T) {
	store, _ := openMemory(t)

	_, err := store.Get("missing", intType)
	assert.ErrorIs(t, err, domain.ErrNotRegistered)

	_, err = store.Default("missing", intType)
	assert.ErrorIs(t, err, domain.ErrNotRegistered)

	_, err = store.TypeOf("missing")
	assert.ErrorIs(t, err, domain.ErrNotRegistered)
}

func TestStore_GetRequiresExactType(t *testing.T) {
	store, _ := openMemory(t)
	require.NoError(t, store.Register("count", intType, 0, 0))

	_, err := store.Get("count", stringType)
	assert.ErrorIs(t, err, domain.ErrTypeMismatch)

	// a supertype is still a different type
	_, err = store.Get("count", anyType)
	assert.ErrorIs(t, err, domain.ErrTypeMismatch)

	_, err = store.Default("count", anyType)
	assert.ErrorIs(t, err, domain.ErrTypeMismatch)
}

func TestStore_SetReplacesValueOnly(t *testing.T) {
	store, _ := openMemory(t)
	require.NoError(t, store.Register("count", intType, 0, 0))

	require.NoError(t, store.Set("count", 42, intType))

	val, err := store.Get("count", intType)
	require.NoError(t, err)
	assert.Equal(t, 42, val)
	def, err := store.Default("count", intType)
	require.NoError(t, err)
	assert.Equal(t, 0, def)
}

func TestStore_SetNotRegistered(t *testing.T) {
	store, _ := openMemory(t)

	err := store.Set("missing", 1, intType)

	assert.ErrorIs(t, err, domain.ErrNotRegistered)
	assert.False(t, store.IsRegistered("missing"))
}

func TestStore_SetRejectsMismatches(t *testing.T) {
	store, _ := openMemory(t)
	require.NoError(t, store.Register("count", intType, 0, 3))

	tests := []struct {
		name  string
		value any
		typ   reflect.Type
	}{
		{"value not assignable to type", "four", intType},
		{"type differs from declared", "four", stringType},
		{"assignable to a supertype of the declared type", 4, anyType},
		{"nil for a non-nilable type", nil, intType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Set("count", tt.value, tt.typ)

			assert.ErrorIs(t, err, domain.ErrTypeMismatch)
			val, err := store.Get("count", intType)
			require.NoError(t, err)
			assert.Equal(t, 3, val)
		})
	}
}

// Set checks assignability while Get checks equality. A setting declared as
// any accepts an int on write, but reading it back as int is refused.
func TestStore_ReadWriteCheckAsymmetry(t *testing.T) {
	store, _ := openMemory(t)
	require.NoError(t, store.Register("object", anyType, nil, nil))

	require.NoError(t, store.Set("object", 5, anyType))

	_, err := store.Get("object", intType)
	assert.ErrorIs(t, err, domain.ErrTypeMismatch)

	val, err := store.Get("object", anyType)
	require.NoError(t, err)
	assert.Equal(t, 5, val)
}

func TestStore_UnregisterThenRegisterAgain(t *testing.T) {
	store, _ := openMemory(t)
	require.NoError(t, store.Register("count", intType, 1, 2))

	require.NoError(t, store.Unregister("count"))
	assert.False(t, store.IsRegistered("count"))
	_, err := store.TypeOf("count")
	assert.ErrorIs(t, err, domain.ErrNotRegistered)

	require.NoError(t, store.Register("count", stringType, "a", "b"))
	val, err := store.Get("count", stringType)
	require.NoError(t, err)
	assert.Equal(t, "b", val)
	def, err := store.Default("count", stringType)
	require.NoError(t, err)
	assert.Equal(t, "a", def)
}

func TestStore_UnregisterNotRegistered(t *testing.T) {
	store, _ := openMemory(t)

	assert.ErrorIs(t, store.Unregister("missing"), domain.ErrNotRegistered)
}

func TestStore_ListSortedSnapshot(t *testing.T) {
	store, _ := openMemory(t)
	require.NoError(t, store.Register("b", intType, 1, 2))
	require.NoError(t, store.Register("a", stringType, "x", "y"))

	list := store.List()

	require.Len(t, list, 2)
	assert.Equal(t, domain.Setting{Key: "a", Type: stringType, Value: "y", Default: "x"}, list[0])
	assert.Equal(t, domain.Setting{Key: "b", Type: intType, Value: 2, Default: 1}, list[1])
	assert.Equal(t, "string", list[0].TypeName())
}

func TestStore_StoreWriteFailureKeepsRegistry(t *testing.T) {
	store, storage := openMemory(t)
	require.NoError(t, store.Register("count", intType, 0, 1))
	storage.FailWrites(errors.New("disk full"))

	err := store.Store(context.Background())

	assert.ErrorIs(t, err, domain.ErrIOFailure)
	assert.Contains(t, err.Error(), "disk full")
	assert.True(t, store.IsRegistered("count"))
	assert.Equal(t, 0, storage.Writes())

	storage.FailWrites(nil)
	require.NoError(t, store.Store(context.Background()))
	assert.Equal(t, 1, storage.Writes())
}

func TestStore_ExampleScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	ctx := context.Background()

	first := openFile(t, path)
	require.NoError(t, first.Register("count", intType, 0, 0))
	require.NoError(t, first.Register("name", stringType, "", "x"))
	require.NoError(t, first.Store(ctx))

	second := openFile(t, path)

	count, err := second.Get("count", intType)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	name, err := second.Get("name", stringType)
	require.NoError(t, err)
	assert.Equal(t, "x", name)
	assert.True(t, second.IsRegistered("count"))
}

func TestStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	ctx := context.Background()
	themeType := domain.TypeOf[theme]()

	first := openFile(t, path, WithTypes(themeType))
	require.NoError(t, first.Register("integer", intType, 0, 0))
	require.NoError(t, first.Register("string", stringType, "string", "string"))
	require.NoError(t, first.Register("object", anyType, nil, nil))
	require.NoError(t, first.Register("ratio", domain.TypeOf[float64](), 0.5, 0.5))
	require.NoError(t, first.Register("enabled", domain.TypeOf[bool](), false, false))
	require.NoError(t, first.Register("timeout", domain.TypeOf[time.Duration](), time.Second, time.Second))
	require.NoError(t, first.Register("tags", domain.TypeOf[[]string](), []string(nil), []string{"a"}))
	require.NoError(t, first.Register("limits", domain.TypeOf[map[string]int](), map[string]int{}, map[string]int{"x": 1}))
	require.NoError(t, first.Register("theme", themeType, theme{Name: "light"}, theme{Name: "light"}))
	require.NoError(t, first.Set("enabled", true, domain.TypeOf[bool]()))
	require.NoError(t, first.Set("timeout", 1500*time.Millisecond, domain.TypeOf[time.Duration]()))
	require.NoError(t, first.Set("theme", theme{Name: "solarized", Dark: true}, themeType))
	require.NoError(t, first.Store(ctx))

	second := openFile(t, path, WithTypes(themeType))

	assert.Equal(t, first.List(), second.List())
}

func TestStore_RoundTripInterfaceLosesConcreteNumberType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	first := openFile(t, path)
	require.NoError(t, first.Register("object", anyType, nil, 5))
	require.NoError(t, first.Store(context.Background()))

	second := openFile(t, path)

	val, err := second.Get("object", anyType)
	require.NoError(t, err)
	assert.Equal(t, float64(5), val)
}

func TestStore_LoadRequiresCustomTypes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	first := openFile(t, path, WithTypes(domain.TypeOf[theme]()))
	require.NoError(t, first.Register("theme", domain.TypeOf[theme](), theme{}, theme{}))
	require.NoError(t, first.Store(context.Background()))

	storage, err := file.NewDocumentStorage(path)
	require.NoError(t, err)
	_, err = Open(context.Background(), storage)

	assert.ErrorIs(t, err, domain.ErrCorruptDocument)
	assert.ErrorIs(t, err, domain.ErrUnknownType)
}

func TestStore_StoreOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	ctx := context.Background()
	store := openFile(t, path)
	require.NoError(t, store.Register("a", intType, 0, 0))
	require.NoError(t, store.Register("b", intType, 0, 0))
	require.NoError(t, store.Store(ctx))

	require.NoError(t, store.Unregister("a"))
	require.NoError(t, store.Store(ctx))

	reopened := openFile(t, path)
	assert.False(t, reopened.IsRegistered("a"))
	assert.True(t, reopened.IsRegistered("b"))
}

func TestStore_RegisterRequiresNameableType(t *testing.T) {
	store, _ := openMemory(t)

	tests := []struct {
		name string
		typ  reflect.Type
	}{
		{"custom type not added", domain.TypeOf[theme]()},
		{"slice of custom type", domain.TypeOf[[]theme]()},
		{"anonymous struct", domain.TypeOf[struct{ A int }]()},
		{"func", domain.TypeOf[func()]()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zero := reflect.Zero(tt.typ).Interface()
			assert.ErrorIs(t, store.Register("key", tt.typ, zero, zero), domain.ErrUnknownType)
		})
	}

	assert.Empty(t, store.List())
}

func TestStore_RoundTripCompositeTypes(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewDocumentStorage()
	one := 1

	first, err := Open(ctx, storage, WithTypes(domain.TypeOf[theme]()))
	require.NoError(t, err)
	require.NoError(t, first.Register("pointer", domain.TypeOf[*int](), nil, &one))
	require.NoError(t, first.Register("durations", domain.TypeOf[[]time.Duration](), nil, []time.Duration{time.Second}))
	require.NoError(t, first.Register("flags", domain.TypeOf[map[string]bool](), map[string]bool{}, map[string]bool{"a": true}))
	require.NoError(t, first.Register("pair", domain.TypeOf[[2]string](), [2]string{}, [2]string{"x", "y"}))
	require.NoError(t, first.Register("themes", domain.TypeOf[map[string][]*theme](), nil, map[string][]*theme{"dark": {{Name: "night", Dark: true}}}))
	require.NoError(t, first.Store(ctx))

	second, err := Open(ctx, storage, WithTypes(domain.TypeOf[theme]()))
	require.NoError(t, err)

	assert.Equal(t, first.List(), second.List())

	p, err := second.Get("pointer", domain.TypeOf[*int]())
	require.NoError(t, err)
	assert.Equal(t, 1, *p.(*int))

	d, err := second.Get("durations", domain.TypeOf[[]time.Duration]())
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{time.Second}, d)
}

func TestStore_NilIsStoredAsTypedZero(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewDocumentStorage()
	sliceType := domain.TypeOf[[]string]()
	pointerType := domain.TypeOf[*int]()

	first, err := Open(ctx, storage)
	require.NoError(t, err)
	require.NoError(t, first.Register("tags", sliceType, nil, nil))
	require.NoError(t, first.Register("limit", pointerType, nil, nil))
	require.NoError(t, first.Register("object", anyType, nil, nil))

	tags, err := first.Get("tags", sliceType)
	require.NoError(t, err)
	assert.Equal(t, []string(nil), tags)
	limit, err := first.Get("limit", pointerType)
	require.NoError(t, err)
	assert.Equal(t, (*int)(nil), limit)

	require.NoError(t, first.Set("tags", []string{"a"}, sliceType))
	require.NoError(t, first.Set("tags", nil, sliceType))
	tags, err = first.Get("tags", sliceType)
	require.NoError(t, err)
	assert.Equal(t, []string(nil), tags)

	require.NoError(t, first.Store(ctx))
	second, err := Open(ctx, storage)
	require.NoError(t, err)

	assert.Equal(t, first.List(), second.List())
	obj, err := second.Get("object", anyType)
	require.NoError(t, err)
	assert.Nil(t, obj)
}
