package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCategory is assigned when a product is created without one.
const DefaultCategory = "General"

// Product is a sellable item in a merchant's catalog. Stock is nil for
// products whose inventory is not tracked.
type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Cost      decimal.Decimal `json:"cost"`
	Stock     *int64          `json:"stock,omitempty"`
	Category  string          `json:"category"`
	TenantID  string          `json:"tenant_id"`
	Dirty     bool            `json:"dirty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Validate checks the invariants every stored product must hold.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	if !p.Price.IsPositive() {
		return ErrInvalidPrice
	}
	if p.Cost.IsNegative() {
		return ErrInvalidCost
	}
	return nil
}

// Tracked reports whether the product carries numeric stock tracking.
func (p *Product) Tracked() bool {
	return p.Stock != nil
}

// Configuration holds the single per-tenant business configuration row.
type Configuration struct {
	ID           string    `json:"id"`
	BusinessName string    `json:"business_name"`
	TenantID     string    `json:"tenant_id"`
	Dirty        bool      `json:"dirty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ConfigurationID is the fixed id of the active configuration row.
const ConfigurationID = "config"
