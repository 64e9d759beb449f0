package client

import (
	"database/sql"
	"time"

	"contafeira/internal/domain/catalog"
	"contafeira/internal/domain/tenant"
)

// GetConfiguration returns the tenant's active configuration row, or
// ErrNotFound when the merchant has not completed setup yet.
func (s *LocalStore) GetConfiguration() (*catalog.Configuration, error) {
	var (
		cfg       catalog.Configuration
		dirty     int
		updatedAt string
	)
	err := s.db.QueryRow(
		"SELECT id, business_name, tenant_id, dirty, updated_at FROM configuration LIMIT 1",
	).Scan(&cfg.ID, &cfg.BusinessName, &cfg.TenantID, &dirty, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get configuration", err)
	}
	cfg.Dirty = dirty != 0
	cfg.UpdatedAt = parseTime(updatedAt)
	return &cfg, nil
}

// DirtyConfigurations returns configuration rows pending upload (zero or one).
func (s *LocalStore) DirtyConfigurations() ([]catalog.Configuration, error) {
	rows, err := s.db.Query(
		"SELECT id, business_name, tenant_id, dirty, updated_at FROM configuration WHERE dirty = 1")
	if err != nil {
		return nil, storageErr("list configuration", err)
	}
	defer rows.Close()

	var configs []catalog.Configuration
	for rows.Next() {
		var (
			cfg       catalog.Configuration
			dirty     int
			updatedAt string
		)
		if err := rows.Scan(&cfg.ID, &cfg.BusinessName, &cfg.TenantID, &dirty, &updatedAt); err != nil {
			return nil, storageErr("scan configuration", err)
		}
		cfg.Dirty = dirty != 0
		cfg.UpdatedAt = parseTime(updatedAt)
		configs = append(configs, cfg)
	}
	return configs, rows.Err()
}

// PutConfiguration upserts the configuration row.
func (s *LocalStore) PutConfiguration(cfg *catalog.Configuration) error {
	err := s.withTx(func(tx *sql.Tx) error {
		return putConfigurationTx(tx, cfg)
	})
	if err != nil {
		return err
	}
	s.bus.Publish(CollectionConfiguration)
	return nil
}

// BulkPutConfigurations applies downloaded configuration rows. The table
// holds a single row, so only the last row in the batch survives.
func (s *LocalStore) BulkPutConfigurations(configs []catalog.Configuration) error {
	if len(configs) == 0 {
		return nil
	}
	err := s.withTx(func(tx *sql.Tx) error {
		return replaceConfigurationTx(tx, &configs[len(configs)-1])
	})
	if err != nil {
		return err
	}
	s.bus.Publish(CollectionConfiguration)
	return nil
}

func putConfigurationTx(tx *sql.Tx, cfg *catalog.Configuration) error {
	_, err := tx.Exec(`
		INSERT INTO configuration (id, business_name, tenant_id, dirty, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			business_name = excluded.business_name,
			tenant_id = excluded.tenant_id,
			dirty = excluded.dirty,
			updated_at = excluded.updated_at`,
		cfg.ID, cfg.BusinessName, cfg.TenantID, boolToInt(cfg.Dirty),
		formatTime(cfg.UpdatedAt))
	if err != nil {
		return storageErr("put configuration", err)
	}
	return nil
}

// ClearConfigurationDirty marks uploaded configuration rows clean.
func (s *LocalStore) ClearConfigurationDirty(uploaded map[string]time.Time) error {
	return s.clearDirty("configuration", uploaded)
}

// replaceConfigurationTx swaps the configuration row wholesale: the original
// app deletes and recreates rather than patching.
func replaceConfigurationTx(tx *sql.Tx, cfg *catalog.Configuration) error {
	if _, err := tx.Exec("DELETE FROM configuration"); err != nil {
		return storageErr("clear configuration", err)
	}
	return putConfigurationTx(tx, cfg)
}

// GetProfile returns the locally cached tenant profile, or ErrNotFound.
func (s *LocalStore) GetProfile(id string) (*tenant.Profile, error) {
	var (
		p         tenant.Profile
		plan      string
		status    string
		expires   sql.NullString
		updatedAt string
	)
	err := s.db.QueryRow(
		"SELECT id, plan, subscription_status, subscription_expires_at, updated_at FROM profiles WHERE id = ?",
		id,
	).Scan(&p.ID, &plan, &status, &expires, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get profile", err)
	}
	p.Plan = tenant.Plan(plan)
	p.SubscriptionStatus = tenant.SubscriptionStatus(status)
	if expires.Valid {
		t := parseTime(expires.String)
		p.SubscriptionExpiresAt = &t
	}
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}

// PutProfile caches the remote profile locally so plan gating works offline.
func (s *LocalStore) PutProfile(p *tenant.Profile) error {
	_, err := s.db.Exec(`
		INSERT INTO profiles (id, plan, subscription_status, subscription_expires_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			plan = excluded.plan,
			subscription_status = excluded.subscription_status,
			subscription_expires_at = excluded.subscription_expires_at,
			updated_at = excluded.updated_at`,
		p.ID, string(p.Plan), string(p.SubscriptionStatus),
		nullableTime(p.SubscriptionExpiresAt), formatTime(p.UpdatedAt))
	if err != nil {
		return storageErr("put profile", err)
	}
	s.bus.Publish(CollectionProfiles)
	return nil
}

// PurgeProfiles drops every cached profile. Called when the resolved tenant
// identity no longer matches a cached profile, before any UI read sees it.
func (s *LocalStore) PurgeProfiles() error {
	if _, err := s.db.Exec("DELETE FROM profiles"); err != nil {
		return storageErr("purge profiles", err)
	}
	s.bus.Publish(CollectionProfiles)
	return nil
}
