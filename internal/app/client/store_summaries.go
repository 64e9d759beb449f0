package client

import (
	"database/sql"
	"time"

	"contafeira/internal/domain/ledger"
)

const summaryColumns = "id, business_date, total, total_pix, total_cash, total_card, total_fiado, total_cost, sale_count, tenant_id, dirty, updated_at"

func scanSummary(row interface{ Scan(...any) error }) (*ledger.DailySummary, error) {
	var (
		sum                                 ledger.DailySummary
		total, pix, cash, card, fiado, cost string
		dirty                               int
		updatedAt                           string
	)
	if err := row.Scan(&sum.ID, &sum.BusinessDate, &total, &pix, &cash, &card,
		&fiado, &cost, &sum.SaleCount, &sum.TenantID, &dirty, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if sum.Total, err = parseMoney(total); err != nil {
		return nil, err
	}
	if sum.TotalPix, err = parseMoney(pix); err != nil {
		return nil, err
	}
	if sum.TotalCash, err = parseMoney(cash); err != nil {
		return nil, err
	}
	if sum.TotalCard, err = parseMoney(card); err != nil {
		return nil, err
	}
	if sum.TotalFiado, err = parseMoney(fiado); err != nil {
		return nil, err
	}
	if sum.TotalCost, err = parseMoney(cost); err != nil {
		return nil, err
	}
	sum.Dirty = dirty != 0
	sum.UpdatedAt = parseTime(updatedAt)
	return &sum, nil
}

// GetSummary returns the daily summary by id, or ErrNotFound.
func (s *LocalStore) GetSummary(id string) (*ledger.DailySummary, error) {
	row := s.db.QueryRow("SELECT "+summaryColumns+" FROM summaries WHERE id = ?", id)
	sum, err := scanSummary(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get summary", err)
	}
	return sum, nil
}

// ListSummaries returns the closing history, most recent trading day first.
func (s *LocalStore) ListSummaries() ([]ledger.DailySummary, error) {
	return s.querySummaries(
		"SELECT " + summaryColumns + " FROM summaries ORDER BY business_date DESC, updated_at DESC")
}

// DirtySummaries returns the rows pending upload.
func (s *LocalStore) DirtySummaries() ([]ledger.DailySummary, error) {
	return s.querySummaries("SELECT " + summaryColumns + " FROM summaries WHERE dirty = 1")
}

func (s *LocalStore) querySummaries(query string, args ...any) ([]ledger.DailySummary, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, storageErr("list summaries", err)
	}
	defer rows.Close()

	var summaries []ledger.DailySummary
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, storageErr("scan summary", err)
		}
		summaries = append(summaries, *sum)
	}
	return summaries, rows.Err()
}

// PutSummary upserts the summary by id. Summaries are immutable in the
// domain; upsert semantics exist only for the sync download path.
func (s *LocalStore) PutSummary(sum *ledger.DailySummary) error {
	err := s.withTx(func(tx *sql.Tx) error {
		return putSummaryTx(tx, sum)
	})
	if err != nil {
		return err
	}
	s.bus.Publish(CollectionSummaries)
	return nil
}

// BulkPutSummaries upserts all summaries in one transaction.
func (s *LocalStore) BulkPutSummaries(summaries []ledger.DailySummary) error {
	if len(summaries) == 0 {
		return nil
	}
	err := s.withTx(func(tx *sql.Tx) error {
		for i := range summaries {
			if err := putSummaryTx(tx, &summaries[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.bus.Publish(CollectionSummaries)
	return nil
}

func putSummaryTx(tx *sql.Tx, sum *ledger.DailySummary) error {
	_, err := tx.Exec(`
		INSERT INTO summaries (id, business_date, total, total_pix, total_cash,
			total_card, total_fiado, total_cost, sale_count, tenant_id, dirty, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			business_date = excluded.business_date,
			total = excluded.total,
			total_pix = excluded.total_pix,
			total_cash = excluded.total_cash,
			total_card = excluded.total_card,
			total_fiado = excluded.total_fiado,
			total_cost = excluded.total_cost,
			sale_count = excluded.sale_count,
			tenant_id = excluded.tenant_id,
			dirty = excluded.dirty,
			updated_at = excluded.updated_at`,
		sum.ID, sum.BusinessDate, sum.Total.String(), sum.TotalPix.String(),
		sum.TotalCash.String(), sum.TotalCard.String(), sum.TotalFiado.String(),
		sum.TotalCost.String(), sum.SaleCount, sum.TenantID,
		boolToInt(sum.Dirty), formatTime(sum.UpdatedAt))
	if err != nil {
		return storageErr("put summary", err)
	}
	return nil
}

// ClearSummaryDirty marks the given uploaded rows clean (updated_at guarded).
func (s *LocalStore) ClearSummaryDirty(uploaded map[string]time.Time) error {
	return s.clearDirty("summaries", uploaded)
}
