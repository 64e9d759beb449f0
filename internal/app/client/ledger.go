package client

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slog"

	"contafeira/internal/domain/catalog"
	"contafeira/internal/domain/ledger"
	"contafeira/internal/domain/money"
)

// Ledger is the transactional core: it registers sales, keeps stock
// consistent and performs the day-end cash closing. Every operation succeeds
// or fails locally, independent of network state.
type Ledger struct {
	store *LocalStore
	log   *slog.Logger
	now   func() time.Time
}

func NewLedger(store *LocalStore, log *slog.Logger) *Ledger {
	return &Ledger{
		store: store,
		log:   log.With("component", "ledger"),
		now:   time.Now,
	}
}

// RegisterSale records a sale of the given product. Amount is unit price
// times quantity at time of sale; the product name is snapshotted onto the
// sale row. Tracked stock is decremented and may go negative: oversell is
// flagged by the low-stock read model, never blocked here. Sale insert and
// stock update commit in one transaction.
func (l *Ledger) RegisterSale(productID string, method ledger.PaymentMethod, quantity int64, customer *string) (*ledger.Sale, error) {
	if quantity < 1 {
		return nil, validationErr(ledger.ErrInvalidQuantity)
	}
	if !method.Valid() {
		return nil, validationErr(ledger.ErrInvalidPayment)
	}
	if method.RequiresCustomer() && (customer == nil || *customer == "") {
		return nil, validationErr(ledger.ErrCustomerRequired)
	}

	product, err := l.store.GetProduct(productID)
	if err != nil {
		return nil, err
	}
	if product.TenantID != l.store.TenantID() {
		return nil, validationErr(ledger.ErrTenantMismatch)
	}

	now := l.now().UTC()
	sale := &ledger.Sale{
		ID:            uuid.NewString(),
		ProductName:   product.Name,
		Amount:        product.Price.Mul(decimal.NewFromInt(quantity)),
		Quantity:      quantity,
		PaymentMethod: method,
		CustomerName:  customer,
		BusinessDate:  ledger.BusinessDate(now),
		TimeOfDay:     ledger.TimeOfDay(now),
		TenantID:      l.store.TenantID(),
		Dirty:         true,
		UpdatedAt:     now,
	}

	err = l.store.withTx(func(tx *sql.Tx) error {
		if err := putSaleTx(tx, sale); err != nil {
			return err
		}
		if product.Tracked() {
			remaining := *product.Stock - quantity
			product.Stock = &remaining
			product.Dirty = true
			product.UpdatedAt = now
			return putProductTx(tx, product)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.store.bus.Publish(CollectionSales)
	if product.Tracked() {
		l.store.bus.Publish(CollectionProducts)
	}

	l.log.Info("sale registered",
		"sale_id", sale.ID,
		"product", sale.ProductName,
		"amount", money.Format(sale.Amount),
		"method", string(method))
	return sale, nil
}

// CancelSale deletes an open sale outright and restores stock if the product
// still exists with tracking enabled. Archived sales are not cancellable.
func (l *Ledger) CancelSale(saleID string) error {
	sale, err := l.store.GetSale(saleID)
	if err != nil {
		return err
	}
	if !sale.Open() {
		return validationErr(ledger.ErrSaleArchived)
	}

	now := l.now().UTC()

	// The product may have been renamed or deleted since the sale; the
	// reference is a name snapshot, so a miss just skips restoration.
	product, err := l.store.GetProductByName(sale.ProductName)
	restoreStock := err == nil && product.Tracked()

	err = l.store.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM sales WHERE id = ?", sale.ID); err != nil {
			return storageErr("delete sale", err)
		}
		if restoreStock {
			restored := *product.Stock + sale.Quantity
			product.Stock = &restored
			product.Dirty = true
			product.UpdatedAt = now
			return putProductTx(tx, product)
		}
		return nil
	})
	if err != nil {
		return err
	}

	l.store.bus.Publish(CollectionSales)
	if restoreStock {
		l.store.bus.Publish(CollectionProducts)
	}

	l.log.Info("sale cancelled", "sale_id", saleID, "stock_restored", restoreStock)
	return nil
}

// CloseDay consolidates the current business date's open sales into one
// immutable DailySummary and archives the sales under it. With no open sales
// it is a no-op returning nil. The open-sales filter is re-checked on every
// row write, so a retry after partial failure converges instead of
// double-counting.
func (l *Ledger) CloseDay() (*ledger.DailySummary, error) {
	now := l.now().UTC()
	businessDate := ledger.BusinessDate(now)

	open, err := l.store.OpenSales(businessDate)
	if err != nil {
		return nil, err
	}
	if len(open) == 0 {
		return nil, nil
	}

	summary := &ledger.DailySummary{
		ID:           uuid.NewString(),
		BusinessDate: businessDate,
		Total:        decimal.Zero,
		TotalPix:     decimal.Zero,
		TotalCash:    decimal.Zero,
		TotalCard:    decimal.Zero,
		TotalFiado:   decimal.Zero,
		TotalCost:    decimal.Zero,
		SaleCount:    int64(len(open)),
		TenantID:     l.store.TenantID(),
		Dirty:        true,
		UpdatedAt:    now,
	}

	for _, sale := range open {
		summary.Total = summary.Total.Add(sale.Amount)
		switch sale.PaymentMethod {
		case ledger.PaymentPix:
			summary.TotalPix = summary.TotalPix.Add(sale.Amount)
		case ledger.PaymentCash:
			summary.TotalCash = summary.TotalCash.Add(sale.Amount)
		case ledger.PaymentCard:
			summary.TotalCard = summary.TotalCard.Add(sale.Amount)
		case ledger.PaymentCreditTab:
			summary.TotalFiado = summary.TotalFiado.Add(sale.Amount)
		}

		// Cost is the product's last known cost at aggregation time, not
		// cost-at-sale-time. Accepted approximation.
		product, err := l.store.GetProductByName(sale.ProductName)
		if err == nil {
			summary.TotalCost = summary.TotalCost.Add(
				product.Cost.Mul(decimal.NewFromInt(sale.Quantity)))
		}
	}

	err = l.store.withTx(func(tx *sql.Tx) error {
		if err := putSummaryTx(tx, summary); err != nil {
			return err
		}
		for _, sale := range open {
			// summary_id IS NULL guard: a sale archived by a concurrent or
			// earlier partial run is left untouched.
			_, err := tx.Exec(
				"UPDATE sales SET summary_id = ?, dirty = 1, updated_at = ? WHERE id = ? AND summary_id IS NULL",
				summary.ID, formatTime(now), sale.ID)
			if err != nil {
				return storageErr("archive sale", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.store.bus.Publish(CollectionSummaries)
	l.store.bus.Publish(CollectionSales)

	l.log.Info("day closed",
		"summary_id", summary.ID,
		"business_date", businessDate,
		"total", money.Format(summary.Total),
		"sales", summary.SaleCount)
	return summary, nil
}

// TodayOpenSales returns the open sales of the current business date.
func (l *Ledger) TodayOpenSales() ([]ledger.Sale, error) {
	return l.store.OpenSales(ledger.BusinessDate(l.now().UTC()))
}

// DayStats aggregates the open sales of the current business date for the
// dashboard read model.
type DayStats struct {
	Total     decimal.Decimal
	ByMethod  map[ledger.PaymentMethod]decimal.Decimal
	Quantity  int64
	SaleCount int64
}

func (l *Ledger) TodayStats() (*DayStats, error) {
	open, err := l.TodayOpenSales()
	if err != nil {
		return nil, err
	}

	stats := &DayStats{
		Total:    decimal.Zero,
		ByMethod: make(map[ledger.PaymentMethod]decimal.Decimal, len(ledger.PaymentMethods)),
	}
	for _, m := range ledger.PaymentMethods {
		stats.ByMethod[m] = decimal.Zero
	}
	for _, sale := range open {
		stats.Total = stats.Total.Add(sale.Amount)
		stats.ByMethod[sale.PaymentMethod] = stats.ByMethod[sale.PaymentMethod].Add(sale.Amount)
		stats.Quantity += sale.Quantity
		stats.SaleCount++
	}
	return stats, nil
}

// History returns closed-day summaries, most recent first.
func (l *Ledger) History() ([]ledger.DailySummary, error) {
	return l.store.ListSummaries()
}

// LiveOpenSales is the reactive "today's open sales" read model.
func (l *Ledger) LiveOpenSales() *LiveQuery[[]ledger.Sale] {
	return NewLiveQuery(l.store.bus, l.TodayOpenSales, CollectionSales)
}

// LiveHistory is the reactive closing-history read model.
func (l *Ledger) LiveHistory() *LiveQuery[[]ledger.DailySummary] {
	return NewLiveQuery(l.store.bus, l.History, CollectionSummaries)
}

// LiveProducts is the reactive catalog read model. It re-evaluates on sales
// too so stock decrements made by RegisterSale are reflected immediately.
func (l *Ledger) LiveProducts() *LiveQuery[[]catalog.Product] {
	return NewLiveQuery(l.store.bus, l.store.ListProducts, CollectionProducts, CollectionSales)
}
