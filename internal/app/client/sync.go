package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/exp/slog"

	"contafeira/internal/domain/catalog"
	"contafeira/internal/domain/expense"
	"contafeira/internal/domain/ledger"
	"contafeira/internal/domain/tenant"
)

// SyncState is the externally visible state of the engine.
type SyncState string

const (
	StateOffline SyncState = "offline"
	StateSyncing SyncState = "syncing"
	StateSynced  SyncState = "synced"
)

// SyncStats summarizes one full cycle.
type SyncStats struct {
	Uploaded   int
	Downloaded int
	Discarded  int
	FinishedAt time.Time
}

// SyncEngine reconciles one tenant's local store with the remote record
// store. A cycle uploads dirty rows first, then downloads remote changes
// past each collection's watermark, resolving conflicts by newest
// updated_at. Cycles never overlap: a trigger while one is running is a
// no-op.
type SyncEngine struct {
	store   *LocalStore
	remote  *httpClient
	log     *slog.Logger
	profile func() *tenant.Profile
	now     func() time.Time

	runMu sync.Mutex

	mu        sync.RWMutex
	state     SyncState
	lastStats SyncStats
	lastErr   error
}

func NewSyncEngine(store *LocalStore, remote *httpClient, profile func() *tenant.Profile, log *slog.Logger) *SyncEngine {
	return &SyncEngine{
		store:   store,
		remote:  remote,
		profile: profile,
		log:     log.With("component", "sync", "tenant_id", store.TenantID()),
		now:     time.Now,
		state:   StateOffline,
	}
}

// State reports the engine state as of the last finished or running cycle.
func (e *SyncEngine) State() SyncState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// LastStats reports the totals of the last completed cycle.
func (e *SyncEngine) LastStats() (SyncStats, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastStats, e.lastErr
}

func (e *SyncEngine) setState(s SyncState) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// Sync runs one full cycle over all synced collections. It returns nil
// without doing anything when a cycle is already in flight, when the store
// is a guest store, or when the tenant's plan does not include cloud sync.
func (e *SyncEngine) Sync(ctx context.Context) error {
	if !e.runMu.TryLock() {
		e.log.Debug("sync already in progress, skipping")
		return nil
	}
	defer e.runMu.Unlock()

	if e.store.TenantID() == "" {
		return nil
	}
	if p := e.profile(); p == nil || !p.SyncEnabled(e.now()) {
		e.log.Debug("cloud sync not available on current plan")
		e.setState(StateSynced)
		return nil
	}

	e.setState(StateSyncing)
	e.log.Info("sync cycle started")

	var (
		total SyncStats
		errs  []error
	)
	for _, run := range e.collections() {
		stats, err := run(ctx)
		total.Uploaded += stats.Uploaded
		total.Downloaded += stats.Downloaded
		total.Discarded += stats.Discarded
		if err != nil {
			errs = append(errs, err)
		}
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
	}
	total.FinishedAt = e.now()

	err := errors.Join(errs...)
	e.mu.Lock()
	e.lastStats = total
	e.lastErr = err
	e.mu.Unlock()

	if err != nil {
		e.setState(StateOffline)
		e.log.Error("sync cycle failed", "error", err,
			"uploaded", total.Uploaded, "downloaded", total.Downloaded)
		return err
	}

	if err := e.store.SetLastFullSync(total.FinishedAt); err != nil {
		e.log.Error("failed to record sync time", "error", err)
	}
	e.setState(StateSynced)
	e.log.Info("sync cycle finished",
		"uploaded", total.Uploaded,
		"downloaded", total.Downloaded,
		"discarded", total.Discarded)
	return nil
}

// collections returns one runner per synced collection. Each collection
// syncs independently so a failure in one does not block the others.
func (e *SyncEngine) collections() []func(context.Context) (SyncStats, error) {
	return []func(context.Context) (SyncStats, error){
		func(ctx context.Context) (SyncStats, error) {
			return syncCollection(ctx, e, collectionOps[catalog.Product, productWire]{
				collection: CollectionProducts,
				dirty:      e.store.DirtyProducts,
				getLocal:   e.store.GetProduct,
				bulkPut:    e.store.BulkPutProducts,
				clearDirty: e.store.ClearProductDirty,
				toWire:     productToWire,
				fromWire:   productFromWire,
				localID:    func(p catalog.Product) string { return p.ID },
				localTime:  func(p catalog.Product) time.Time { return p.UpdatedAt },
				wireID:     func(w productWire) string { return w.ID },
				wireTime:   func(w productWire) time.Time { return w.UpdatedAt },
			})
		},
		func(ctx context.Context) (SyncStats, error) {
			return syncCollection(ctx, e, collectionOps[ledger.Sale, saleWire]{
				collection: CollectionSales,
				dirty:      e.store.DirtySales,
				getLocal:   e.store.GetSale,
				bulkPut:    e.store.BulkPutSales,
				clearDirty: e.store.ClearSaleDirty,
				toWire:     saleToWire,
				fromWire:   saleFromWire,
				localID:    func(s ledger.Sale) string { return s.ID },
				localTime:  func(s ledger.Sale) time.Time { return s.UpdatedAt },
				wireID:     func(w saleWire) string { return w.ID },
				wireTime:   func(w saleWire) time.Time { return w.UpdatedAt },
			})
		},
		func(ctx context.Context) (SyncStats, error) {
			return syncCollection(ctx, e, collectionOps[ledger.DailySummary, summaryWire]{
				collection: CollectionSummaries,
				dirty:      e.store.DirtySummaries,
				getLocal:   e.store.GetSummary,
				bulkPut:    e.store.BulkPutSummaries,
				clearDirty: e.store.ClearSummaryDirty,
				toWire:     summaryToWire,
				fromWire:   summaryFromWire,
				localID:    func(s ledger.DailySummary) string { return s.ID },
				localTime:  func(s ledger.DailySummary) time.Time { return s.UpdatedAt },
				wireID:     func(w summaryWire) string { return w.ID },
				wireTime:   func(w summaryWire) time.Time { return w.UpdatedAt },
			})
		},
		func(ctx context.Context) (SyncStats, error) {
			return syncCollection(ctx, e, collectionOps[expense.Expense, expenseWire]{
				collection: CollectionExpenses,
				dirty:      e.store.DirtyExpenses,
				getLocal:   e.store.GetExpense,
				bulkPut:    e.store.BulkPutExpenses,
				clearDirty: e.store.ClearExpenseDirty,
				toWire:     expenseToWire,
				fromWire:   expenseFromWire,
				localID:    func(x expense.Expense) string { return x.ID },
				localTime:  func(x expense.Expense) time.Time { return x.UpdatedAt },
				wireID:     func(w expenseWire) string { return w.ID },
				wireTime:   func(w expenseWire) time.Time { return w.UpdatedAt },
			})
		},
		func(ctx context.Context) (SyncStats, error) {
			return syncCollection(ctx, e, collectionOps[catalog.Configuration, configWire]{
				collection: CollectionConfiguration,
				dirty:      e.store.DirtyConfigurations,
				getLocal:   func(string) (*catalog.Configuration, error) { return e.store.GetConfiguration() },
				bulkPut:    e.store.BulkPutConfigurations,
				clearDirty: e.store.ClearConfigurationDirty,
				toWire:     configToWire,
				fromWire:   configFromWire,
				localID:    func(c catalog.Configuration) string { return c.ID },
				localTime:  func(c catalog.Configuration) time.Time { return c.UpdatedAt },
				wireID:     func(w configWire) string { return w.ID },
				wireTime:   func(w configWire) time.Time { return w.UpdatedAt },
			})
		},
	}
}

// collectionOps binds one local collection to its wire form.
type collectionOps[L any, W any] struct {
	collection Collection
	dirty      func() ([]L, error)
	getLocal   func(id string) (*L, error)
	bulkPut    func([]L) error
	clearDirty func(map[string]time.Time) error
	toWire     func(L) W
	fromWire   func(W) L
	localID    func(L) string
	localTime  func(L) time.Time
	wireID     func(W) string
	wireTime   func(W) time.Time
}

// syncCollection runs upload then download for one collection. Upload
// clears the dirty flag only for the exact row versions that were sent;
// a row changed mid-upload stays dirty for the next cycle. Download
// applies a remote row only when its updated_at is strictly newer than
// the local one, then advances the watermark to the newest timestamp seen.
func syncCollection[L any, W any](ctx context.Context, e *SyncEngine, ops collectionOps[L, W]) (SyncStats, error) {
	var stats SyncStats
	name := remoteName(ops.collection)

	dirty, err := ops.dirty()
	if err != nil {
		return stats, fmt.Errorf("%s: list dirty: %w", name, err)
	}
	if len(dirty) > 0 {
		wires := make([]W, 0, len(dirty))
		uploaded := make(map[string]time.Time, len(dirty))
		for _, row := range dirty {
			wires = append(wires, ops.toWire(row))
			uploaded[ops.localID(row)] = ops.localTime(row)
		}
		if err := e.remote.upsertRows(ctx, name, wires); err != nil {
			return stats, fmt.Errorf("%s: upload: %w", name, err)
		}
		if err := ops.clearDirty(uploaded); err != nil {
			return stats, fmt.Errorf("%s: clear dirty: %w", name, err)
		}
		stats.Uploaded = len(dirty)
	}

	since, err := e.store.Watermark(ops.collection)
	if err != nil {
		return stats, fmt.Errorf("%s: read watermark: %w", name, err)
	}
	remoteRows, err := fetchRows[W](e.remote, ctx, name, since)
	if err != nil {
		return stats, fmt.Errorf("%s: download: %w", name, err)
	}

	var accepted []L
	high := since
	for _, w := range remoteRows {
		ts := ops.wireTime(w)
		if ts.After(high) {
			high = ts
		}

		local, err := ops.getLocal(ops.wireID(w))
		switch {
		case errors.Is(err, ErrNotFound):
			accepted = append(accepted, ops.fromWire(w))
		case err != nil:
			return stats, fmt.Errorf("%s: read local row: %w", name, err)
		case ts.After(ops.localTime(*local)):
			accepted = append(accepted, ops.fromWire(w))
		default:
			stats.Discarded++
			e.log.Debug("discarding remote row, local copy is newer or equal",
				"collection", name, "id", ops.wireID(w))
		}
	}

	if len(accepted) > 0 {
		if err := ops.bulkPut(accepted); err != nil {
			return stats, fmt.Errorf("%s: apply remote rows: %w", name, err)
		}
		stats.Downloaded = len(accepted)
	}
	if high.After(since) {
		if err := e.store.SetWatermark(ops.collection, high); err != nil {
			return stats, fmt.Errorf("%s: advance watermark: %w", name, err)
		}
	}
	return stats, nil
}
