package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contafeira/internal/domain/ledger"
	"contafeira/internal/domain/money"
	"contafeira/internal/utils/logger"
)

func newTestLedger(t *testing.T) (*Ledger, *LocalStore) {
	t.Helper()
	store := newTestStore(t, "tenant-1")
	return NewLedger(store, logger.Discard()), store
}

func seedProduct(t *testing.T, store *LocalStore, id, name, price, cost string, stock *int64) {
	t.Helper()
	p := testProduct(id, name)
	p.Price = money.MustParse(price)
	p.Cost = money.MustParse(cost)
	p.Stock = stock
	require.NoError(t, store.PutProduct(&p))
}

func int64Ptr(v int64) *int64 { return &v }

func strPtr(s string) *string { return &s }

func TestRegisterSale(t *testing.T) {
	l, store := newTestLedger(t)
	seedProduct(t, store, "p1", "Pastel", "8.00", "3.00", int64Ptr(10))

	sale, err := l.RegisterSale("p1", ledger.PaymentPix, 3, nil)
	require.NoError(t, err)

	assert.Equal(t, "Pastel", sale.ProductName)
	assert.True(t, sale.Amount.Equal(money.MustParse("24.00")), "amount is price times quantity")
	assert.True(t, sale.Dirty)
	assert.Nil(t, sale.SummaryID)
	assert.Equal(t, "tenant-1", sale.TenantID)

	// Stock decremented in the same transaction, product re-flagged dirty.
	p, err := store.GetProduct("p1")
	require.NoError(t, err)
	require.NotNil(t, p.Stock)
	assert.EqualValues(t, 7, *p.Stock)
	assert.True(t, p.Dirty)
}

func TestRegisterSaleUntrackedProduct(t *testing.T) {
	l, store := newTestLedger(t)
	seedProduct(t, store, "p1", "Caldo", "5.00", "2.00", nil)

	_, err := l.RegisterSale("p1", ledger.PaymentCash, 2, nil)
	require.NoError(t, err)

	p, err := store.GetProduct("p1")
	require.NoError(t, err)
	assert.Nil(t, p.Stock, "untracked product stays untracked")
}

func TestRegisterSaleOversellGoesNegative(t *testing.T) {
	l, store := newTestLedger(t)
	seedProduct(t, store, "p1", "Tapioca", "6.00", "2.00", int64Ptr(1))

	_, err := l.RegisterSale("p1", ledger.PaymentCard, 5, nil)
	require.NoError(t, err)

	p, err := store.GetProduct("p1")
	require.NoError(t, err)
	assert.EqualValues(t, -4, *p.Stock, "oversell is recorded, not blocked")
}

func TestRegisterSaleValidation(t *testing.T) {
	l, store := newTestLedger(t)
	seedProduct(t, store, "p1", "Pastel", "8.00", "3.00", nil)

	t.Run("zero quantity", func(t *testing.T) {
		_, err := l.RegisterSale("p1", ledger.PaymentPix, 0, nil)
		assert.ErrorIs(t, err, ledger.ErrInvalidQuantity)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown payment method", func(t *testing.T) {
		_, err := l.RegisterSale("p1", ledger.PaymentMethod("cheque"), 1, nil)
		assert.ErrorIs(t, err, ledger.ErrInvalidPayment)
	})

	t.Run("credit tab requires customer", func(t *testing.T) {
		_, err := l.RegisterSale("p1", ledger.PaymentCreditTab, 1, nil)
		assert.ErrorIs(t, err, ledger.ErrCustomerRequired)

		_, err = l.RegisterSale("p1", ledger.PaymentCreditTab, 1, strPtr(""))
		assert.ErrorIs(t, err, ledger.ErrCustomerRequired)

		sale, err := l.RegisterSale("p1", ledger.PaymentCreditTab, 1, strPtr("Dona Maria"))
		require.NoError(t, err)
		assert.Equal(t, "Dona Maria", *sale.CustomerName)
	})

	t.Run("missing product", func(t *testing.T) {
		_, err := l.RegisterSale("missing", ledger.PaymentPix, 1, nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("foreign tenant product", func(t *testing.T) {
		p := testProduct("p-foreign", "Alheio")
		p.TenantID = "tenant-2"
		require.NoError(t, store.PutProduct(&p))

		_, err := l.RegisterSale("p-foreign", ledger.PaymentPix, 1, nil)
		assert.ErrorIs(t, err, ledger.ErrTenantMismatch)
	})
}

func TestCancelSaleRestoresStock(t *testing.T) {
	l, store := newTestLedger(t)
	seedProduct(t, store, "p1", "Acaraje", "12.00", "5.00", int64Ptr(10))

	sale, err := l.RegisterSale("p1", ledger.PaymentCash, 4, nil)
	require.NoError(t, err)

	require.NoError(t, l.CancelSale(sale.ID))

	_, err = store.GetSale(sale.ID)
	assert.ErrorIs(t, err, ErrNotFound, "cancelled sale is gone")

	p, err := store.GetProduct("p1")
	require.NoError(t, err)
	assert.EqualValues(t, 10, *p.Stock, "stock conserved after register then cancel")
}

func TestCancelSaleArchivedFails(t *testing.T) {
	l, store := newTestLedger(t)
	seedProduct(t, store, "p1", "Cuscuz", "7.00", "3.00", nil)

	sale, err := l.RegisterSale("p1", ledger.PaymentPix, 1, nil)
	require.NoError(t, err)

	_, err = l.CloseDay()
	require.NoError(t, err)

	err = l.CancelSale(sale.ID)
	assert.ErrorIs(t, err, ledger.ErrSaleArchived)

	_, err = store.GetSale(sale.ID)
	assert.NoError(t, err, "archived sale survives the failed cancel")
}

func TestCloseDay(t *testing.T) {
	l, store := newTestLedger(t)
	seedProduct(t, store, "p1", "Pastel", "8.00", "3.00", nil)
	seedProduct(t, store, "p2", "Caldo de Cana", "5.00", "1.50", nil)

	_, err := l.RegisterSale("p1", ledger.PaymentPix, 2, nil)      // 16.00
	require.NoError(t, err)
	_, err = l.RegisterSale("p2", ledger.PaymentCash, 1, nil)      // 5.00
	require.NoError(t, err)
	_, err = l.RegisterSale("p1", ledger.PaymentCard, 1, nil)      // 8.00
	require.NoError(t, err)
	_, err = l.RegisterSale("p2", ledger.PaymentCreditTab, 2, strPtr("Zé")) // 10.00
	require.NoError(t, err)

	summary, err := l.CloseDay()
	require.NoError(t, err)
	require.NotNil(t, summary)

	assert.True(t, summary.Total.Equal(money.MustParse("39.00")))
	assert.True(t, summary.TotalPix.Equal(money.MustParse("16.00")))
	assert.True(t, summary.TotalCash.Equal(money.MustParse("5.00")))
	assert.True(t, summary.TotalCard.Equal(money.MustParse("8.00")))
	assert.True(t, summary.TotalFiado.Equal(money.MustParse("10.00")))

	// Total is exactly the sum of the per-method buckets.
	buckets := money.Sum(summary.TotalPix, summary.TotalCash, summary.TotalCard, summary.TotalFiado)
	assert.True(t, summary.Total.Equal(buckets))

	// Cost: 3×3.00 for pastel, 3×1.50 for caldo.
	assert.True(t, summary.TotalCost.Equal(money.MustParse("13.50")))
	assert.EqualValues(t, 4, summary.SaleCount)
	assert.True(t, summary.Dirty)

	// All sales are archived under the summary and stay dirty for upload.
	archived, err := store.SalesForSummary(summary.ID)
	require.NoError(t, err)
	assert.Len(t, archived, 4)
	for _, s := range archived {
		assert.True(t, s.Dirty)
	}

	open, err := l.TodayOpenSales()
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestCloseDayNoOpenSales(t *testing.T) {
	l, _ := newTestLedger(t)

	summary, err := l.CloseDay()
	require.NoError(t, err)
	assert.Nil(t, summary, "closing an empty day is a no-op")
}

func TestCloseDayTwiceCreatesOneSummary(t *testing.T) {
	l, store := newTestLedger(t)
	seedProduct(t, store, "p1", "Pastel", "8.00", "3.00", nil)

	_, err := l.RegisterSale("p1", ledger.PaymentPix, 1, nil)
	require.NoError(t, err)

	first, err := l.CloseDay()
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := l.CloseDay()
	require.NoError(t, err)
	assert.Nil(t, second, "second close finds no open sales")

	summaries, err := store.ListSummaries()
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
}

func TestCloseDayOnlyTouchesCurrentDate(t *testing.T) {
	l, store := newTestLedger(t)
	seedProduct(t, store, "p1", "Pastel", "8.00", "3.00", nil)

	// A leftover open sale from an earlier date.
	yesterday := ledger.Sale{
		ID:            "old-sale",
		ProductName:   "Pastel",
		Amount:        money.MustParse("8.00"),
		Quantity:      1,
		PaymentMethod: ledger.PaymentCash,
		BusinessDate:  "2020-01-01",
		TimeOfDay:     "10:00",
		TenantID:      "tenant-1",
		Dirty:         true,
		UpdatedAt:     time.Now().UTC(),
	}
	require.NoError(t, store.PutSale(&yesterday))

	_, err := l.RegisterSale("p1", ledger.PaymentPix, 1, nil)
	require.NoError(t, err)

	summary, err := l.CloseDay()
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.EqualValues(t, 1, summary.SaleCount)

	old, err := store.GetSale("old-sale")
	require.NoError(t, err)
	assert.True(t, old.Open(), "stale sale from another date is untouched")
}

func TestTodayStats(t *testing.T) {
	l, store := newTestLedger(t)
	seedProduct(t, store, "p1", "Pastel", "8.00", "3.00", nil)

	_, err := l.RegisterSale("p1", ledger.PaymentPix, 2, nil)
	require.NoError(t, err)
	_, err = l.RegisterSale("p1", ledger.PaymentPix, 1, nil)
	require.NoError(t, err)
	_, err = l.RegisterSale("p1", ledger.PaymentCash, 1, nil)
	require.NoError(t, err)

	stats, err := l.TodayStats()
	require.NoError(t, err)

	assert.True(t, stats.Total.Equal(money.MustParse("32.00")))
	assert.True(t, stats.ByMethod[ledger.PaymentPix].Equal(money.MustParse("24.00")))
	assert.True(t, stats.ByMethod[ledger.PaymentCash].Equal(money.MustParse("8.00")))
	assert.True(t, stats.ByMethod[ledger.PaymentCard].IsZero())
	assert.EqualValues(t, 4, stats.Quantity)
	assert.EqualValues(t, 3, stats.SaleCount)
}
