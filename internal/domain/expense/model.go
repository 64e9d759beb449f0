package expense

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound            = errors.New("expense not found")
	ErrDescriptionRequired = errors.New("expense description is required")
	ErrInvalidAmount       = errors.New("expense amount must be positive")
)

// Expense is an out-of-pocket cost a merchant records against a trading day.
type Expense struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Date        string          `json:"date"`
	TenantID    string          `json:"tenant_id"`
	Dirty       bool            `json:"dirty"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (e *Expense) Validate() error {
	if strings.TrimSpace(e.Description) == "" {
		return ErrDescriptionRequired
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}
