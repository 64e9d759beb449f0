package client

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"contafeira/internal/domain/catalog"
)

func parseMoney(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("corrupt monetary value %q: %w", raw, err)
	}
	return d, nil
}

const productColumns = "id, name, price, cost, stock, category, tenant_id, dirty, updated_at"

func scanProduct(row interface{ Scan(...any) error }) (*catalog.Product, error) {
	var (
		p               catalog.Product
		price, cost     string
		stock           sql.NullInt64
		dirty           int
		updatedAt       string
		errPrice, errCo error
	)
	if err := row.Scan(&p.ID, &p.Name, &price, &cost, &stock, &p.Category,
		&p.TenantID, &dirty, &updatedAt); err != nil {
		return nil, err
	}
	p.Price, errPrice = parseMoney(price)
	p.Cost, errCo = parseMoney(cost)
	if errPrice != nil {
		return nil, errPrice
	}
	if errCo != nil {
		return nil, errCo
	}
	if stock.Valid {
		v := stock.Int64
		p.Stock = &v
	}
	p.Dirty = dirty != 0
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}

// GetProduct returns the product by id, or ErrNotFound.
func (s *LocalStore) GetProduct(id string) (*catalog.Product, error) {
	row := s.db.QueryRow(
		"SELECT "+productColumns+" FROM products WHERE id = ?", id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get product", err)
	}
	return p, nil
}

// GetProductByName resolves a product by its exact name. Sales reference
// products this way (value snapshot, not a foreign key).
func (s *LocalStore) GetProductByName(name string) (*catalog.Product, error) {
	row := s.db.QueryRow(
		"SELECT "+productColumns+" FROM products WHERE name = ? LIMIT 1", name)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get product by name", err)
	}
	return p, nil
}

// ListProducts returns the tenant's catalog ordered by name.
func (s *LocalStore) ListProducts() ([]catalog.Product, error) {
	return s.queryProducts("SELECT " + productColumns + " FROM products ORDER BY name")
}

// DirtyProducts returns the rows pending upload.
func (s *LocalStore) DirtyProducts() ([]catalog.Product, error) {
	return s.queryProducts("SELECT " + productColumns + " FROM products WHERE dirty = 1")
}

// LowStockProducts returns tracked products at or under the threshold; feeds
// the oversell warning read model.
func (s *LocalStore) LowStockProducts(threshold int64) ([]catalog.Product, error) {
	return s.queryProducts(
		"SELECT "+productColumns+" FROM products WHERE stock IS NOT NULL AND stock <= ? ORDER BY stock",
		threshold)
}

func (s *LocalStore) queryProducts(query string, args ...any) ([]catalog.Product, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, storageErr("list products", err)
	}
	defer rows.Close()

	var products []catalog.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, storageErr("scan product", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// PutProduct upserts the product by id. The struct is written verbatim:
// callers decide dirty and updated_at; local mutators set both, the sync
// download path writes clean rows.
func (s *LocalStore) PutProduct(p *catalog.Product) error {
	err := s.withTx(func(tx *sql.Tx) error {
		return putProductTx(tx, p)
	})
	if err != nil {
		return err
	}
	s.bus.Publish(CollectionProducts)
	return nil
}

// BulkPutProducts upserts all products in one transaction.
func (s *LocalStore) BulkPutProducts(products []catalog.Product) error {
	if len(products) == 0 {
		return nil
	}
	err := s.withTx(func(tx *sql.Tx) error {
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
	s.bus.Publish(CollectionProducts)
	return nil
}

func putProductTx(tx *sql.Tx, p *catalog.Product) error {
	var stock any
	if p.Stock != nil {
		stock = *p.Stock
	}
	_, err := tx.Exec(`
		INSERT INTO products (id, name, price, cost, stock, category, tenant_id, dirty, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			price = excluded.price,
			cost = excluded.cost,
			stock = excluded.stock,
			category = excluded.category,
			tenant_id = excluded.tenant_id,
			dirty = excluded.dirty,
			updated_at = excluded.updated_at`,
		p.ID, p.Name, p.Price.String(), p.Cost.String(), stock, p.Category,
		p.TenantID, boolToInt(p.Dirty), formatTime(p.UpdatedAt))
	if err != nil {
		return storageErr("put product", err)
	}
	return nil
}

// DeleteProduct removes the product by id; deleting an absent id is a no-op.
func (s *LocalStore) DeleteProduct(id string) error {
	if _, err := s.db.Exec("DELETE FROM products WHERE id = ?", id); err != nil {
		return storageErr("delete product", err)
	}
	s.bus.Publish(CollectionProducts)
	return nil
}

// BulkDeleteProducts removes all given ids in one transaction.
func (s *LocalStore) BulkDeleteProducts(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	err := s.withTx(func(tx *sql.Tx) error {
		for _, id := range ids {
			if _, err := tx.Exec("DELETE FROM products WHERE id = ?", id); err != nil {
				return storageErr("delete product", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.bus.Publish(CollectionProducts)
	return nil
}

// ClearProductDirty marks the given uploaded rows clean (updated_at guarded).
func (s *LocalStore) ClearProductDirty(uploaded map[string]time.Time) error {
	return s.clearDirty("products", uploaded)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
