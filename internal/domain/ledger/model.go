package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is one settled transaction. ProductName is a value snapshot, not a
// foreign key: renaming or deleting the product later must not rewrite
// history, so no referential integrity is enforced on it.
type Sale struct {
	ID            string          `json:"id"`
	ProductName   string          `json:"product_name"`
	Amount        decimal.Decimal `json:"amount"`
	Quantity      int64           `json:"quantity"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	CustomerName  *string         `json:"customer_name,omitempty"`
	BusinessDate  string          `json:"business_date"`
	TimeOfDay     string          `json:"time_of_day"`
	TenantID      string          `json:"tenant_id"`
	SummaryID     *string         `json:"summary_id,omitempty"`
	Dirty         bool            `json:"dirty"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Open reports whether the sale has not yet been archived into a daily
// summary. Only open sales appear in "today" views and only open sales are
// cancellable.
func (s *Sale) Open() bool {
	return s.SummaryID == nil
}

// DailySummary is the immutable result of a cash closing: one row per
// closeDay call, never mutated afterwards.
type DailySummary struct {
	ID           string          `json:"id"`
	BusinessDate string          `json:"business_date"`
	Total        decimal.Decimal `json:"total"`
	TotalPix     decimal.Decimal `json:"total_pix"`
	TotalCash    decimal.Decimal `json:"total_cash"`
	TotalCard    decimal.Decimal `json:"total_card"`
	TotalFiado   decimal.Decimal `json:"total_fiado"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	SaleCount    int64           `json:"sale_count"`
	TenantID     string          `json:"tenant_id"`
	Dirty        bool            `json:"dirty"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// MethodTotal returns the summary bucket for the given payment method.
func (d *DailySummary) MethodTotal(m PaymentMethod) decimal.Decimal {
	switch m {
	case PaymentPix:
		return d.TotalPix
	case PaymentCash:
		return d.TotalCash
	case PaymentCard:
		return d.TotalCard
	case PaymentCreditTab:
		return d.TotalFiado
	}
	return decimal.Zero
}

// BusinessDate returns the logical trading day for t as a calendar date
// string. Sales group by this value, not by full timestamps, so a market day
// that drifts across midnight in another zone still closes as one day.
func BusinessDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// TimeOfDay returns the clock time snapshot recorded on a sale.
func TimeOfDay(t time.Time) string {
	return t.Format("15:04")
}
