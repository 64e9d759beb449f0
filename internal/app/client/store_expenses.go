package client

import (
	"database/sql"
	"time"

	"contafeira/internal/domain/expense"
)

const expenseColumns = "id, description, amount, category, date, tenant_id, dirty, updated_at"

func scanExpense(row interface{ Scan(...any) error }) (*expense.Expense, error) {
	var (
		e         expense.Expense
		amount    string
		dirty     int
		updatedAt string
	)
	if err := row.Scan(&e.ID, &e.Description, &amount, &e.Category, &e.Date,
		&e.TenantID, &dirty, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if e.Amount, err = parseMoney(amount); err != nil {
		return nil, err
	}
	e.Dirty = dirty != 0
	e.UpdatedAt = parseTime(updatedAt)
	return &e, nil
}

// GetExpense returns the expense by id, or ErrNotFound.
func (s *LocalStore) GetExpense(id string) (*expense.Expense, error) {
	row := s.db.QueryRow("SELECT "+expenseColumns+" FROM expenses WHERE id = ?", id)
	e, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get expense", err)
	}
	return e, nil
}

// ListExpenses returns all expenses, newest date first.
func (s *LocalStore) ListExpenses() ([]expense.Expense, error) {
	return s.queryExpenses(
		"SELECT " + expenseColumns + " FROM expenses ORDER BY date DESC, updated_at DESC")
}

// DirtyExpenses returns the rows pending upload.
func (s *LocalStore) DirtyExpenses() ([]expense.Expense, error) {
	return s.queryExpenses("SELECT " + expenseColumns + " FROM expenses WHERE dirty = 1")
}

func (s *LocalStore) queryExpenses(query string, args ...any) ([]expense.Expense, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, storageErr("list expenses", err)
	}
	defer rows.Close()

	var expenses []expense.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, storageErr("scan expense", err)
		}
		expenses = append(expenses, *e)
	}
	return expenses, rows.Err()
}

// PutExpense upserts the expense by id.
func (s *LocalStore) PutExpense(e *expense.Expense) error {
	err := s.withTx(func(tx *sql.Tx) error {
		return putExpenseTx(tx, e)
	})
	if err != nil {
		return err
	}
	s.bus.Publish(CollectionExpenses)
	return nil
}

// BulkPutExpenses upserts all expenses in one transaction.
func (s *LocalStore) BulkPutExpenses(expenses []expense.Expense) error {
	if len(expenses) == 0 {
		return nil
	}
	err := s.withTx(func(tx *sql.Tx) error {
		for i := range expenses {
			if err := putExpenseTx(tx, &expenses[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.bus.Publish(CollectionExpenses)
	return nil
}

func putExpenseTx(tx *sql.Tx, e *expense.Expense) error {
	_, err := tx.Exec(`
		INSERT INTO expenses (id, description, amount, category, date, tenant_id, dirty, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			description = excluded.description,
			amount = excluded.amount,
			category = excluded.category,
			date = excluded.date,
			tenant_id = excluded.tenant_id,
			dirty = excluded.dirty,
			updated_at = excluded.updated_at`,
		e.ID, e.Description, e.Amount.String(), e.Category, e.Date,
		e.TenantID, boolToInt(e.Dirty), formatTime(e.UpdatedAt))
	if err != nil {
		return storageErr("put expense", err)
	}
	return nil
}

// DeleteExpense removes the expense by id.
func (s *LocalStore) DeleteExpense(id string) error {
	if _, err := s.db.Exec("DELETE FROM expenses WHERE id = ?", id); err != nil {
		return storageErr("delete expense", err)
	}
	s.bus.Publish(CollectionExpenses)
	return nil
}

// ClearExpenseDirty marks the given uploaded rows clean (updated_at guarded).
func (s *LocalStore) ClearExpenseDirty(uploaded map[string]time.Time) error {
	return s.clearDirty("expenses", uploaded)
}
