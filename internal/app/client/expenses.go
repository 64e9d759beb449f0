package client

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slog"

	"contafeira/internal/domain/expense"
	"contafeira/internal/domain/ledger"
)

// Expenses records out-of-pocket costs against trading days.
type Expenses struct {
	store *LocalStore
	log   *slog.Logger
	now   func() time.Time
}

func NewExpenses(store *LocalStore, log *slog.Logger) *Expenses {
	return &Expenses{
		store: store,
		log:   log.With("component", "expenses"),
		now:   time.Now,
	}
}

// Add records an expense dated today unless a date is given.
func (e *Expenses) Add(description string, amount decimal.Decimal, category, date string) (*expense.Expense, error) {
	now := e.now().UTC()
	if date == "" {
		date = ledger.BusinessDate(now)
	}
	if category == "" {
		category = "General"
	}

	exp := &expense.Expense{
		ID:          uuid.NewString(),
		Description: description,
		Amount:      amount,
		Category:    category,
		Date:        date,
		TenantID:    e.store.TenantID(),
		Dirty:       true,
		UpdatedAt:   now,
	}
	if err := exp.Validate(); err != nil {
		return nil, validationErr(err)
	}

	if err := e.store.PutExpense(exp); err != nil {
		return nil, err
	}
	e.log.Info("expense recorded", "expense_id", exp.ID, "amount", amount.StringFixed(2))
	return exp, nil
}

// Remove deletes an expense by id.
func (e *Expenses) Remove(id string) error {
	if _, err := e.store.GetExpense(id); err != nil {
		return err
	}
	return e.store.DeleteExpense(id)
}

// List returns all recorded expenses, newest first.
func (e *Expenses) List() ([]expense.Expense, error) {
	return e.store.ListExpenses()
}

// LiveExpenses is the reactive expense read model.
func (e *Expenses) LiveExpenses() *LiveQuery[[]expense.Expense] {
	return NewLiveQuery(e.store.bus, e.List, CollectionExpenses)
}
