package client

import (
	"database/sql"
	"fmt"
	"path/filepath"
	gosync "sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/exp/slog"
)

// timeLayout is the canonical timestamp encoding for the local store: UTC
// ISO-8601 with fixed-width milliseconds, so lexicographic order in SQL
// matches chronological order. Watermark comparisons depend on this.
const timeLayout = "2006-01-02T15:04:05.000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		// Older rows synced from other devices may carry plain RFC3339.
		t, _ = time.Parse(time.RFC3339, s)
	}
	return t
}

// LocalStore is the durable per-tenant store for the six record collections.
// It survives process restarts without network access; every row it holds
// belongs to exactly one tenant, enforced by namespace (one database file per
// tenant), not by row filtering.
type LocalStore struct {
	db       *sql.DB
	tenantID string
	bus      *ChangeBus
	log      *slog.Logger

	// Serializes writers; SQLite handles concurrent readers fine but
	// interleaved write transactions from ledger and sync would contend.
	writeMu gosync.Mutex
}

// OpenStore opens (creating if needed) the store for the given tenant inside
// dataDir. The file name is derived exclusively from the tenant id.
func OpenStore(dataDir, tenantID string, log *slog.Logger) (*LocalStore, error) {
	path := filepath.Join(dataDir, fmt.Sprintf("store_%s.db", tenantID))
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	return openStore(dsn, tenantID, log)
}

// OpenGuestStore returns a non-persistent store under a random namespace. It
// must never be cached or reused across calls; a fresh database per call is
// what prevents leakage between anonymous sessions.
func OpenGuestStore(log *slog.Logger) (*LocalStore, error) {
	name := "guest_" + uuid.NewString()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	return openStore(dsn, "", log)
}

func openStore(dsn, tenantID string, log *slog.Logger) (*LocalStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, storageErr("open database", err)
	}

	s := &LocalStore{
		db:       db,
		tenantID: tenantID,
		bus:      NewChangeBus(),
		log:      log.With("component", "local_store"),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, storageErr("migrate schema", err)
	}

	return s, nil
}

// migrate applies additive schema steps. Steps only ever add tables, columns
// or indexes; rows written by older versions stay readable.
func (s *LocalStore) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return err
	}

	steps := []string{
		// v1: base schema.
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			price TEXT NOT NULL,
			cost TEXT NOT NULL DEFAULT '0',
			stock INTEGER,
			category TEXT NOT NULL DEFAULT 'General',
			tenant_id TEXT NOT NULL,
			dirty INTEGER NOT NULL DEFAULT 1,
			updated_at TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS sales (
			id TEXT PRIMARY KEY,
			product_name TEXT NOT NULL,
			amount TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			payment_method TEXT NOT NULL,
			customer_name TEXT,
			business_date TEXT NOT NULL,
			time_of_day TEXT NOT NULL,
			tenant_id TEXT NOT NULL,
			summary_id TEXT,
			dirty INTEGER NOT NULL DEFAULT 1,
			updated_at TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS summaries (
			id TEXT PRIMARY KEY,
			business_date TEXT NOT NULL,
			total TEXT NOT NULL,
			total_pix TEXT NOT NULL,
			total_cash TEXT NOT NULL,
			total_card TEXT NOT NULL,
			total_cost TEXT NOT NULL DEFAULT '0',
			sale_count INTEGER NOT NULL,
			tenant_id TEXT NOT NULL,
			dirty INTEGER NOT NULL DEFAULT 1,
			updated_at TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS expenses (
			id TEXT PRIMARY KEY,
			description TEXT NOT NULL,
			amount TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT 'General',
			date TEXT NOT NULL,
			tenant_id TEXT NOT NULL,
			dirty INTEGER NOT NULL DEFAULT 1,
			updated_at TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS configuration (
			id TEXT PRIMARY KEY,
			business_name TEXT NOT NULL,
			tenant_id TEXT NOT NULL,
			dirty INTEGER NOT NULL DEFAULT 1,
			updated_at TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			plan TEXT NOT NULL,
			subscription_status TEXT NOT NULL,
			subscription_expires_at TEXT,
			updated_at TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS sync_watermarks (
			collection TEXT PRIMARY KEY,
			watermark TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS sync_meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_sales_business_date ON sales(business_date);
		CREATE INDEX IF NOT EXISTS idx_products_dirty ON products(dirty);
		CREATE INDEX IF NOT EXISTS idx_sales_dirty ON sales(dirty);`,

		// v2: fiado bucket on summaries.
		`ALTER TABLE summaries ADD COLUMN total_fiado TEXT NOT NULL DEFAULT '0';`,

		// v3: open-sales views filter on summary_id.
		`CREATE INDEX IF NOT EXISTS idx_sales_summary ON sales(summary_id);
		CREATE INDEX IF NOT EXISTS idx_summaries_date ON summaries(business_date);`,
	}

	for i := version; i < len(steps); i++ {
		if _, err := s.db.Exec(steps[i]); err != nil {
			return fmt.Errorf("schema step %d: %w", i+1, err)
		}
		if _, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			return fmt.Errorf("bump schema version to %d: %w", i+1, err)
		}
	}

	return nil
}

// TenantID returns the tenant this store is bound to; empty for guest stores.
func (s *LocalStore) TenantID() string {
	return s.tenantID
}

// Bus exposes the change bus so read models can build live queries on it.
func (s *LocalStore) Bus() *ChangeBus {
	return s.bus
}

func (s *LocalStore) Close() error {
	return s.db.Close()
}

// withTx runs fn in a single write transaction. Bulk mutations use this so a
// failure never leaves a batch half-applied.
func (s *LocalStore) withTx(fn func(tx *sql.Tx) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return storageErr("begin transaction", err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return storageErr("commit transaction", err)
	}
	return nil
}

// Watermark returns the newest remote updated_at already pulled for the
// collection, or the zero time when nothing was pulled yet.
func (s *LocalStore) Watermark(c Collection) (time.Time, error) {
	var raw string
	err := s.db.QueryRow(
		"SELECT watermark FROM sync_watermarks WHERE collection = ?", string(c),
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, storageErr("read watermark", err)
	}
	return parseTime(raw), nil
}

// SetWatermark persists the pull watermark for the collection.
func (s *LocalStore) SetWatermark(c Collection, t time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO sync_watermarks (collection, watermark) VALUES (?, ?)
		ON CONFLICT(collection) DO UPDATE SET watermark = excluded.watermark`,
		string(c), formatTime(t))
	if err != nil {
		return storageErr("write watermark", err)
	}
	return nil
}

// ResetWatermarks drops all watermarks. Called on tenant transitions so a
// watermark recorded for one tenant is never reused for another.
func (s *LocalStore) ResetWatermarks() error {
	if _, err := s.db.Exec("DELETE FROM sync_watermarks"); err != nil {
		return storageErr("reset watermarks", err)
	}
	return nil
}

const metaLastFullSync = "last_full_sync"

// LastFullSync returns when a full sync cycle last completed for this store.
func (s *LocalStore) LastFullSync() (time.Time, error) {
	var raw string
	err := s.db.QueryRow(
		"SELECT value FROM sync_meta WHERE key = ?", metaLastFullSync,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, storageErr("read last full sync", err)
	}
	return parseTime(raw), nil
}

func (s *LocalStore) SetLastFullSync(t time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO sync_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		metaLastFullSync, formatTime(t))
	if err != nil {
		return storageErr("write last full sync", err)
	}
	return nil
}

// clearDirty resets the dirty flag for exactly the uploaded rows. The
// updated_at guard keeps a concurrent local mutation dirty: if the row
// changed after the upload snapshot was taken, its flag stays set and the
// next cycle re-uploads it.
func (s *LocalStore) clearDirty(table string, uploaded map[string]time.Time) error {
	if len(uploaded) == 0 {
		return nil
	}
	return s.withTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(fmt.Sprintf(
			"UPDATE %s SET dirty = 0 WHERE id = ? AND updated_at = ?", table))
		if err != nil {
			return storageErr("prepare dirty clear", err)
		}
		defer stmt.Close()

		for id, at := range uploaded {
			if _, err := stmt.Exec(id, formatTime(at)); err != nil {
				return storageErr("clear dirty flag", err)
			}
		}
		return nil
	})
}

func nullableString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullableTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return formatTime(*p)
}
