package client

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slog"

	"contafeira/internal/domain/catalog"
)

// Catalog manages products and the business configuration for the active
// tenant.
type Catalog struct {
	store *LocalStore
	log   *slog.Logger
	now   func() time.Time
}

func NewCatalog(store *LocalStore, log *slog.Logger) *Catalog {
	return &Catalog{
		store: store,
		log:   log.With("component", "catalog"),
		now:   time.Now,
	}
}

// CreateProduct adds a product to the catalog.
func (c *Catalog) CreateProduct(name string, price, cost decimal.Decimal, stock *int64, category string) (*catalog.Product, error) {
	if category == "" {
		category = catalog.DefaultCategory
	}

	product := &catalog.Product{
		ID:        uuid.NewString(),
		Name:      name,
		Price:     price,
		Cost:      cost,
		Stock:     stock,
		Category:  category,
		TenantID:  c.store.TenantID(),
		Dirty:     true,
		UpdatedAt: c.now().UTC(),
	}
	if err := product.Validate(); err != nil {
		return nil, validationErr(err)
	}

	if err := c.store.PutProduct(product); err != nil {
		return nil, err
	}
	c.log.Info("product created", "product_id", product.ID, "name", product.Name)
	return product, nil
}

// QuickAdd creates a product from just a name and price, the fast path used
// mid-sale: default category, zero cost, untracked stock.
func (c *Catalog) QuickAdd(name string, price decimal.Decimal) (*catalog.Product, error) {
	return c.CreateProduct(name, price, decimal.Zero, nil, "")
}

// UpdateProduct overwrites an existing product's attributes.
func (c *Catalog) UpdateProduct(p *catalog.Product) error {
	if err := p.Validate(); err != nil {
		return validationErr(err)
	}
	if _, err := c.store.GetProduct(p.ID); err != nil {
		return err
	}

	p.TenantID = c.store.TenantID()
	p.Dirty = true
	p.UpdatedAt = c.now().UTC()
	return c.store.PutProduct(p)
}

// SetStock sets (or clears, with nil) a product's tracked stock level.
func (c *Catalog) SetStock(productID string, stock *int64) error {
	p, err := c.store.GetProduct(productID)
	if err != nil {
		return err
	}
	p.Stock = stock
	p.Dirty = true
	p.UpdatedAt = c.now().UTC()
	return c.store.PutProduct(p)
}

// DeleteProduct removes a product. Sales referencing it keep their name
// snapshot; nothing blocks the deletion.
func (c *Catalog) DeleteProduct(id string) error {
	if _, err := c.store.GetProduct(id); err != nil {
		return err
	}
	return c.store.DeleteProduct(id)
}

// Products returns the tenant's catalog.
func (c *Catalog) Products() ([]catalog.Product, error) {
	return c.store.ListProducts()
}

// LowStock returns tracked products at or below the threshold.
func (c *Catalog) LowStock(threshold int64) ([]catalog.Product, error) {
	return c.store.LowStockProducts(threshold)
}

// Configuration returns the active configuration row.
func (c *Catalog) Configuration() (*catalog.Configuration, error) {
	return c.store.GetConfiguration()
}

// SaveConfiguration replaces the business configuration and reconciles the
// product list against the provided one: products absent from the new list
// are deleted, the rest are upserted. The configuration row itself is
// replaced, not patched.
func (c *Catalog) SaveConfiguration(businessName string, products []catalog.Product) error {
	if businessName == "" {
		return validationErr(catalog.ErrNameRequired)
	}

	now := c.now().UTC()
	tenantID := c.store.TenantID()

	keep := make(map[string]bool, len(products))
	for i := range products {
		p := &products[i]
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if p.Category == "" {
			p.Category = catalog.DefaultCategory
		}
		p.TenantID = tenantID
		p.Dirty = true
		p.UpdatedAt = now
		if err := p.Validate(); err != nil {
			return validationErr(err)
		}
		keep[p.ID] = true
	}

	existing, err := c.store.ListProducts()
	if err != nil {
		return err
	}
	var remove []string
	for _, p := range existing {
		if !keep[p.ID] {
			remove = append(remove, p.ID)
		}
	}

	cfg := &catalog.Configuration{
		ID:           catalog.ConfigurationID,
		BusinessName: businessName,
		TenantID:     tenantID,
		Dirty:        true,
		UpdatedAt:    now,
	}

	err = c.store.withTx(func(tx *sql.Tx) error {
		if err := replaceConfigurationTx(tx, cfg); err != nil {
			return err
		}
		for _, id := range remove {
			if _, err := tx.Exec("DELETE FROM products WHERE id = ?", id); err != nil {
				return storageErr("delete product", err)
			}
		}
		for i := range products {
			if err := putProductTx(tx, &products[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.store.bus.Publish(CollectionConfiguration)
	c.store.bus.Publish(CollectionProducts)

	c.log.Info("configuration saved",
		"business_name", businessName,
		"products", len(products),
		"removed", len(remove))
	return nil
}

// LiveLowStock is the reactive oversell-warning read model.
func (c *Catalog) LiveLowStock(threshold int64) *LiveQuery[[]catalog.Product] {
	return NewLiveQuery(c.store.bus, func() ([]catalog.Product, error) {
		return c.store.LowStockProducts(threshold)
	}, CollectionProducts, CollectionSales)
}
