package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contafeira/internal/utils/logger"
)

func TestRegistryTenantIsolation(t *testing.T) {
	reg := NewStoreRegistry(t.TempDir(), logger.Discard())
	defer reg.Invalidate()

	storeA, err := reg.Resolve("tenant-a")
	require.NoError(t, err)
	storeB, err := reg.Resolve("tenant-b")
	require.NoError(t, err)

	p := testProduct("p1", "Pastel")
	p.TenantID = "tenant-a"
	require.NoError(t, storeA.PutProduct(&p))

	// Same id through the other tenant's store resolves to nothing.
	_, err = storeB.GetProduct("p1")
	assert.ErrorIs(t, err, ErrNotFound)

	listB, err := storeB.ListProducts()
	require.NoError(t, err)
	assert.Empty(t, listB)
}

func TestRegistryCachesPerTenant(t *testing.T) {
	reg := NewStoreRegistry(t.TempDir(), logger.Discard())
	defer reg.Invalidate()

	first, err := reg.Resolve("tenant-a")
	require.NoError(t, err)
	second, err := reg.Resolve("tenant-a")
	require.NoError(t, err)
	assert.Same(t, first, second, "repeated resolution reuses the handle")

	cached, ok := reg.Cached("tenant-a")
	assert.True(t, ok)
	assert.Same(t, first, cached)

	_, ok = reg.Cached("tenant-b")
	assert.False(t, ok)
}

func TestRegistryGuestNeverCached(t *testing.T) {
	reg := NewStoreRegistry(t.TempDir(), logger.Discard())
	defer reg.Invalidate()

	first, err := reg.Resolve("")
	require.NoError(t, err)
	defer first.Close()
	second, err := reg.Resolve("")
	require.NoError(t, err)
	defer second.Close()

	assert.NotSame(t, first, second, "each anonymous session gets a fresh store")

	// Data written through one guest handle is invisible to the next.
	p := testProduct("p1", "Pastel")
	p.TenantID = ""
	require.NoError(t, first.PutProduct(&p))

	_, err = second.GetProduct("p1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, ok := reg.Cached("")
	assert.False(t, ok)
}

func TestRegistryInvalidateClosesStores(t *testing.T) {
	dir := t.TempDir()
	reg := NewStoreRegistry(dir, logger.Discard())

	store, err := reg.Resolve("tenant-a")
	require.NoError(t, err)

	p := testProduct("p1", "Pastel")
	p.TenantID = "tenant-a"
	require.NoError(t, store.PutProduct(&p))

	reg.Invalidate()
	_, ok := reg.Cached("tenant-a")
	assert.False(t, ok)

	// The database file survives; a later login sees the same data.
	reopened, err := reg.Resolve("tenant-a")
	require.NoError(t, err)
	defer reg.Invalidate()

	got, err := reopened.GetProduct("p1")
	require.NoError(t, err)
	assert.Equal(t, "Pastel", got.Name)
}
