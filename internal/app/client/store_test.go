package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contafeira/internal/domain/catalog"
	"contafeira/internal/domain/money"
	"contafeira/internal/utils/logger"
)

func newTestStore(t *testing.T, tenantID string) *LocalStore {
	t.Helper()
	store, err := OpenStore(t.TempDir(), tenantID, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testProduct(id, name string) catalog.Product {
	return catalog.Product{
		ID:        id,
		Name:      name,
		Price:     money.MustParse("10.50"),
		Cost:      money.MustParse("4.00"),
		Category:  catalog.DefaultCategory,
		TenantID:  "tenant-1",
		Dirty:     true,
		UpdatedAt: time.Now().UTC(),
	}
}

func TestStoreMigrations(t *testing.T) {
	store := newTestStore(t, "tenant-1")

	var version int
	err := store.db.QueryRow("PRAGMA user_version").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 3, version)

	// Reopening the same file must be a no-op, not a failure.
	dir := t.TempDir()
	first, err := OpenStore(dir, "tenant-2", logger.Discard())
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := OpenStore(dir, "tenant-2", logger.Discard())
	require.NoError(t, err)
	defer second.Close()

	err = second.db.QueryRow("PRAGMA user_version").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 3, version)
}

func TestStoreProductRoundTrip(t *testing.T) {
	store := newTestStore(t, "tenant-1")

	p := testProduct("p1", "Bolo de Milho")
	require.NoError(t, store.PutProduct(&p))

	got, err := store.GetProduct("p1")
	require.NoError(t, err)
	assert.Equal(t, "Bolo de Milho", got.Name)
	assert.True(t, got.Price.Equal(money.MustParse("10.50")))
	assert.True(t, got.Dirty)
	assert.Nil(t, got.Stock)

	byName, err := store.GetProductByName("Bolo de Milho")
	require.NoError(t, err)
	assert.Equal(t, "p1", byName.ID)

	_, err = store.GetProduct("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreWatermarks(t *testing.T) {
	store := newTestStore(t, "tenant-1")

	// Fresh store has zero watermarks everywhere.
	for _, c := range SyncedCollections {
		wm, err := store.Watermark(c)
		require.NoError(t, err)
		assert.True(t, wm.IsZero(), "collection %s", c)
	}

	ts := time.Date(2026, 8, 29, 12, 30, 0, 0, time.UTC)
	require.NoError(t, store.SetWatermark(CollectionSales, ts))

	wm, err := store.Watermark(CollectionSales)
	require.NoError(t, err)
	assert.True(t, wm.Equal(ts))

	// Other collections are untouched.
	wm, err = store.Watermark(CollectionProducts)
	require.NoError(t, err)
	assert.True(t, wm.IsZero())

	require.NoError(t, store.ResetWatermarks())
	wm, err = store.Watermark(CollectionSales)
	require.NoError(t, err)
	assert.True(t, wm.IsZero())
}

func TestStoreClearDirtyGuardsOnVersion(t *testing.T) {
	store := newTestStore(t, "tenant-1")

	p := testProduct("p1", "Pastel")
	require.NoError(t, store.PutProduct(&p))

	uploadedAt := p.UpdatedAt

	// The row changes again after the upload snapshot was taken.
	p.Name = "Pastel de Queijo"
	p.UpdatedAt = uploadedAt.Add(2 * time.Second)
	require.NoError(t, store.PutProduct(&p))

	require.NoError(t, store.ClearProductDirty(map[string]time.Time{"p1": uploadedAt}))

	got, err := store.GetProduct("p1")
	require.NoError(t, err)
	assert.True(t, got.Dirty, "newer local edit must stay dirty")

	// Clearing with the matching version works.
	require.NoError(t, store.ClearProductDirty(map[string]time.Time{"p1": p.UpdatedAt}))
	got, err = store.GetProduct("p1")
	require.NoError(t, err)
	assert.False(t, got.Dirty)
}

func TestStoreBulkPutIsAtomic(t *testing.T) {
	store := newTestStore(t, "tenant-1")

	products := []catalog.Product{
		testProduct("p1", "Caldo de Cana"),
		testProduct("p2", "Tapioca"),
		testProduct("p3", "Acaraje"),
	}
	require.NoError(t, store.BulkPutProducts(products))

	list, err := store.ListProducts()
	require.NoError(t, err)
	assert.Len(t, list, 3)

	dirty, err := store.DirtyProducts()
	require.NoError(t, err)
	assert.Len(t, dirty, 3)
}

func TestStoreLastFullSync(t *testing.T) {
	store := newTestStore(t, "tenant-1")

	last, err := store.LastFullSync()
	require.NoError(t, err)
	assert.True(t, last.IsZero())

	ts := time.Date(2026, 8, 29, 18, 0, 0, 0, time.UTC)
	require.NoError(t, store.SetLastFullSync(ts))

	last, err = store.LastFullSync()
	require.NoError(t, err)
	assert.True(t, last.Equal(ts))
}

func TestGuestStoreInMemory(t *testing.T) {
	guest, err := OpenGuestStore(logger.Discard())
	require.NoError(t, err)
	defer guest.Close()

	assert.Empty(t, guest.TenantID())

	p := testProduct("p1", "Cuscuz")
	p.TenantID = ""
	require.NoError(t, guest.PutProduct(&p))

	got, err := guest.GetProduct("p1")
	require.NoError(t, err)
	assert.Equal(t, "Cuscuz", got.Name)
}
