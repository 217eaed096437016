package simplesurface

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *LedgerStore {
	t.Helper()
	store, err := OpenLedgerStore(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLedgerStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	records := []OverrideLedgerRecord{
		{Path: StructuralPath{0}, Slots: SlotMaterialSnapshot{0: "x", 1: ""}},
		{Path: StructuralPath{1, 0}, Slots: SlotMaterialSnapshot{0: "y"}},
		{Path: StructuralPath{10}, Slots: SlotMaterialSnapshot{2: "z"}},
	}

	require.NoError(t, store.Save(ctx, "A", records))
	loaded, err := store.Load(ctx, "A")
	require.NoError(t, err)

	assert.Equal(t, records, loaded)
}

func TestLedgerStore_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.Save(ctx, "A", []OverrideLedgerRecord{
		{Path: StructuralPath{0}, Slots: SlotMaterialSnapshot{0: "x"}},
		{Path: StructuralPath{1}, Slots: SlotMaterialSnapshot{0: "y"}},
	}))
	require.NoError(t, store.Save(ctx, "B", []OverrideLedgerRecord{
		{Path: StructuralPath{0}, Slots: SlotMaterialSnapshot{0: "b"}},
	}))
	require.NoError(t, store.Save(ctx, "A", []OverrideLedgerRecord{
		{Path: StructuralPath{2}, Slots: SlotMaterialSnapshot{1: "w"}},
	}))

	loaded, err := store.Load(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, []OverrideLedgerRecord{
		{Path: StructuralPath{2}, Slots: SlotMaterialSnapshot{1: "w"}},
	}, loaded)

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, keys)
}

func TestLedgerStore_MissingAndDelete(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	loaded, err := store.Load(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, loaded)

	require.NoError(t, store.Save(ctx, "A", []OverrideLedgerRecord{
		{Path: StructuralPath{0}, Slots: SlotMaterialSnapshot{0: "x"}},
	}))
	require.NoError(t, store.Delete(ctx, "A"))

	loaded, err = store.Load(ctx, "A")
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestLedgerStore_RootPath(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.Save(ctx, "A", []OverrideLedgerRecord{
		{Path: StructuralPath{}, Slots: SlotMaterialSnapshot{0: "root"}},
	}))
	loaded, err := store.Load(ctx, "A")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Empty(t, loaded[0].Path)
	assert.Equal(t, AssetId("root"), loaded[0].Slots[0])
}

func TestLedgerStore_RecordWithoutSlots(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	records := []OverrideLedgerRecord{
		{Path: StructuralPath{0}, Slots: SlotMaterialSnapshot{0: "x"}},
		{Path: StructuralPath{1}, Slots: SlotMaterialSnapshot{}},
	}

	require.NoError(t, store.Save(ctx, "A", records))
	loaded, err := store.Load(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, records, loaded)
}

func TestLedgerStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")
	s := newTestScene()
	a, _ := s.actorWithMesh("A")
	ledger := NewMaterialOverrideLedger(s.assets, nil)
	ledger.Capture(a, s.override(nil))

	store, err := OpenLedgerStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, a.Name(), ledger.Serialize()))
	require.NoError(t, store.Close())

	store, err = OpenLedgerStore(path)
	require.NoError(t, err)
	defer store.Close()
	loaded, err := store.Load(ctx, a.Name())
	require.NoError(t, err)
	assert.Equal(t, ledger.Serialize(), loaded)
}

func TestLessPath(t *testing.T) {
	assert.True(t, lessPath(StructuralPath{}, StructuralPath{0}))
	assert.True(t, lessPath(StructuralPath{0, 5}, StructuralPath{1}))
	assert.True(t, lessPath(StructuralPath{2}, StructuralPath{10}))
	assert.False(t, lessPath(StructuralPath{1}, StructuralPath{1}))
}
