package client

import (
	"database/sql"
	"time"

	"contafeira/internal/domain/ledger"
)

const saleColumns = "id, product_name, amount, quantity, payment_method, customer_name, business_date, time_of_day, tenant_id, summary_id, dirty, updated_at"

func scanSale(row interface{ Scan(...any) error }) (*ledger.Sale, error) {
	var (
		sale      ledger.Sale
		amount    string
		customer  sql.NullString
		summaryID sql.NullString
		method    string
		dirty     int
		updatedAt string
	)
	if err := row.Scan(&sale.ID, &sale.ProductName, &amount, &sale.Quantity,
		&method, &customer, &sale.BusinessDate, &sale.TimeOfDay,
		&sale.TenantID, &summaryID, &dirty, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	sale.Amount, err = parseMoney(amount)
	if err != nil {
		return nil, err
	}
	sale.PaymentMethod = ledger.PaymentMethod(method)
	if customer.Valid {
		v := customer.String
		sale.CustomerName = &v
	}
	if summaryID.Valid {
		v := summaryID.String
		sale.SummaryID = &v
	}
	sale.Dirty = dirty != 0
	sale.UpdatedAt = parseTime(updatedAt)
	return &sale, nil
}

// GetSale returns the sale by id, or ErrNotFound.
func (s *LocalStore) GetSale(id string) (*ledger.Sale, error) {
	row := s.db.QueryRow("SELECT "+saleColumns+" FROM sales WHERE id = ?", id)
	sale, err := scanSale(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get sale", err)
	}
	return sale, nil
}

// OpenSales returns the still-uncommitted sales for a business date. This
// query is the single source of truth for "today's open sales": archival
// re-evaluates it rather than reusing an earlier snapshot, which is what
// makes closeDay idempotent under retry.
func (s *LocalStore) OpenSales(businessDate string) ([]ledger.Sale, error) {
	return s.querySales(
		"SELECT "+saleColumns+" FROM sales WHERE business_date = ? AND summary_id IS NULL ORDER BY updated_at",
		businessDate)
}

// SalesForSummary returns the archived detail rows of a closed day.
func (s *LocalStore) SalesForSummary(summaryID string) ([]ledger.Sale, error) {
	return s.querySales(
		"SELECT "+saleColumns+" FROM sales WHERE summary_id = ? ORDER BY updated_at",
		summaryID)
}

// DirtySales returns the rows pending upload.
func (s *LocalStore) DirtySales() ([]ledger.Sale, error) {
	return s.querySales("SELECT " + saleColumns + " FROM sales WHERE dirty = 1")
}

func (s *LocalStore) querySales(query string, args ...any) ([]ledger.Sale, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, storageErr("list sales", err)
	}
	defer rows.Close()

	var sales []ledger.Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, storageErr("scan sale", err)
		}
		sales = append(sales, *sale)
	}
	return sales, rows.Err()
}

// PutSale upserts the sale by id.
func (s *LocalStore) PutSale(sale *ledger.Sale) error {
	err := s.withTx(func(tx *sql.Tx) error {
		return putSaleTx(tx, sale)
	})
	if err != nil {
		return err
	}
	s.bus.Publish(CollectionSales)
	return nil
}

// BulkPutSales upserts all sales in one transaction.
func (s *LocalStore) BulkPutSales(sales []ledger.Sale) error {
	if len(sales) == 0 {
		return nil
	}
	err := s.withTx(func(tx *sql.Tx) error {
		for i := range sales {
			if err := putSaleTx(tx, &sales[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.bus.Publish(CollectionSales)
	return nil
}

func putSaleTx(tx *sql.Tx, sale *ledger.Sale) error {
	_, err := tx.Exec(`
		INSERT INTO sales (id, product_name, amount, quantity, payment_method,
			customer_name, business_date, time_of_day, tenant_id, summary_id, dirty, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			product_name = excluded.product_name,
			amount = excluded.amount,
			quantity = excluded.quantity,
			payment_method = excluded.payment_method,
			customer_name = excluded.customer_name,
			business_date = excluded.business_date,
			time_of_day = excluded.time_of_day,
			tenant_id = excluded.tenant_id,
			summary_id = excluded.summary_id,
			dirty = excluded.dirty,
			updated_at = excluded.updated_at`,
		sale.ID, sale.ProductName, sale.Amount.String(), sale.Quantity,
		string(sale.PaymentMethod), nullableString(sale.CustomerName),
		sale.BusinessDate, sale.TimeOfDay, sale.TenantID,
		nullableString(sale.SummaryID), boolToInt(sale.Dirty), formatTime(sale.UpdatedAt))
	if err != nil {
		return storageErr("put sale", err)
	}
	return nil
}

// DeleteSale removes the sale outright. Cancellation is a hard delete: the
// row was never archived, so nothing references it.
func (s *LocalStore) DeleteSale(id string) error {
	if _, err := s.db.Exec("DELETE FROM sales WHERE id = ?", id); err != nil {
		return storageErr("delete sale", err)
	}
	s.bus.Publish(CollectionSales)
	return nil
}

// ClearSaleDirty marks the given uploaded rows clean (updated_at guarded).
func (s *LocalStore) ClearSaleDirty(uploaded map[string]time.Time) error {
	return s.clearDirty("sales", uploaded)
}
