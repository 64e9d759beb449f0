package client

import (
	gosync "sync"

	"golang.org/x/exp/slog"
)

// StoreRegistry is the tenant isolation manager: it resolves a tenant
// identity to a LocalStore whose namespace is derived exclusively from that
// identity. Handles are cached per tenant for the life of the process;
// resolution never falls through silently into another tenant's namespace.
type StoreRegistry struct {
	mu      gosync.Mutex
	stores  map[string]*LocalStore
	dataDir string
	log     *slog.Logger
}

func NewStoreRegistry(dataDir string, log *slog.Logger) *StoreRegistry {
	return &StoreRegistry{
		stores:  make(map[string]*LocalStore),
		dataDir: dataDir,
		log:     log.With("component", "store_registry"),
	}
}

// Resolve returns the store bound to tenantID, opening it on first use. With
// no tenant (anonymous session) it returns a fresh non-persistent store under
// a random namespace, which is deliberately never cached: reuse across
// anonymous sessions would leak data between them.
func (r *StoreRegistry) Resolve(tenantID string) (*LocalStore, error) {
	if tenantID == "" {
		r.log.Debug("resolving guest store")
		return OpenGuestStore(r.log)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if store, ok := r.stores[tenantID]; ok {
		return store, nil
	}

	store, err := OpenStore(r.dataDir, tenantID, r.log)
	if err != nil {
		return nil, err
	}
	r.stores[tenantID] = store
	r.log.Debug("opened tenant store", "tenant_id", tenantID)
	return store, nil
}

// Cached returns the already-open store for tenantID without opening one.
func (r *StoreRegistry) Cached(tenantID string) (*LocalStore, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	store, ok := r.stores[tenantID]
	return store, ok
}

// Invalidate closes and discards every cached handle. Called on logout so no
// state, including guest handles held elsewhere, survives into the next
// session.
func (r *StoreRegistry) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for tenantID, store := range r.stores {
		if err := store.Close(); err != nil {
			r.log.Warn("failed to close tenant store", "tenant_id", tenantID, "error", err)
		}
		delete(r.stores, tenantID)
	}
}
