package client

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contafeira/internal/domain/catalog"
	"contafeira/internal/domain/money"
	"contafeira/internal/utils/logger"
)

func newTestCatalog(t *testing.T) (*Catalog, *LocalStore) {
	t.Helper()
	store := newTestStore(t, "tenant-1")
	return NewCatalog(store, logger.Discard()), store
}

func TestCreateProduct(t *testing.T) {
	c, _ := newTestCatalog(t)

	p, err := c.CreateProduct("Pastel", money.MustParse("8.00"), money.MustParse("3.00"), int64Ptr(20), "Salgados")
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Salgados", p.Category)
	assert.Equal(t, "tenant-1", p.TenantID)
	assert.True(t, p.Dirty)

	t.Run("empty name rejected", func(t *testing.T) {
		_, err := c.CreateProduct("", money.MustParse("1.00"), decimal.Zero, nil, "")
		assert.ErrorIs(t, err, catalog.ErrNameRequired)
	})

	t.Run("negative price rejected", func(t *testing.T) {
		_, err := c.CreateProduct("Gratis", money.MustParse("-1.00"), decimal.Zero, nil, "")
		assert.ErrorIs(t, err, catalog.ErrInvalidPrice)
	})
}

func TestQuickAdd(t *testing.T) {
	c, _ := newTestCatalog(t)

	p, err := c.QuickAdd("Suco", money.MustParse("4.50"))
	require.NoError(t, err)

	assert.Equal(t, catalog.DefaultCategory, p.Category)
	assert.True(t, p.Cost.IsZero())
	assert.Nil(t, p.Stock, "quick-added products are untracked")
}

func TestSetStock(t *testing.T) {
	c, store := newTestCatalog(t)

	p, err := c.QuickAdd("Suco", money.MustParse("4.50"))
	require.NoError(t, err)

	require.NoError(t, c.SetStock(p.ID, int64Ptr(15)))
	got, err := store.GetProduct(p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Stock)
	assert.EqualValues(t, 15, *got.Stock)

	// Clearing the stock turns tracking off again.
	require.NoError(t, c.SetStock(p.ID, nil))
	got, err = store.GetProduct(p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Stock)
}

func TestLowStock(t *testing.T) {
	c, _ := newTestCatalog(t)

	mk := func(name string, stock *int64) {
		_, err := c.CreateProduct(name, money.MustParse("5.00"), decimal.Zero, stock, "")
		require.NoError(t, err)
	}
	mk("Quase Acabando", int64Ptr(2))
	mk("Sobrando", int64Ptr(50))
	mk("Sem Controle", nil)

	low, err := c.LowStock(5)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "Quase Acabando", low[0].Name)
}

func TestSaveConfiguration(t *testing.T) {
	c, store := newTestCatalog(t)

	kept, err := c.QuickAdd("Fica", money.MustParse("3.00"))
	require.NoError(t, err)
	dropped, err := c.QuickAdd("Sai", money.MustParse("2.00"))
	require.NoError(t, err)

	newList := []catalog.Product{
		*kept,
		{Name: "Entra", Price: money.MustParse("6.00")},
	}
	require.NoError(t, c.SaveConfiguration("Barraca da Maria", newList))

	cfg, err := c.Configuration()
	require.NoError(t, err)
	assert.Equal(t, "Barraca da Maria", cfg.BusinessName)
	assert.True(t, cfg.Dirty)

	products, err := c.Products()
	require.NoError(t, err)
	require.Len(t, products, 2)

	_, err = store.GetProduct(dropped.ID)
	assert.ErrorIs(t, err, ErrNotFound, "product absent from the new list is removed")

	added, err := store.GetProductByName("Entra")
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID, "new products get an id assigned")
	assert.Equal(t, catalog.DefaultCategory, added.Category)

	t.Run("empty business name rejected", func(t *testing.T) {
		err := c.SaveConfiguration("", nil)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestExpenses(t *testing.T) {
	store := newTestStore(t, "tenant-1")
	e := NewExpenses(store, logger.Discard())

	exp, err := e.Add("Gelo", money.MustParse("15.00"), "", "")
	require.NoError(t, err)
	assert.NotEmpty(t, exp.ID)
	assert.NotEmpty(t, exp.Date, "date defaults to today")
	assert.True(t, exp.Dirty)

	_, err = e.Add("", money.MustParse("1.00"), "", "")
	assert.ErrorIs(t, err, ErrValidation)

	list, err := e.List()
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, e.Remove(exp.ID))
	list, err = e.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}
