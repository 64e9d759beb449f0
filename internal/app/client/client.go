package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/exp/slog"

	"contafeira/internal/app/client/config"
	"contafeira/internal/domain/tenant"
)

// session is what survives a restart: the bearer token and the tenant it
// belongs to. It lives in a 0600 file under the config directory.
type session struct {
	Token    string `json:"token"`
	TenantID string `json:"tenant_id"`
}

// App owns the per-tenant service graph: the local store resolved through
// the registry, the domain services on top of it, and the sync machinery.
// Without a session it runs against a throwaway guest store and never
// touches the network for data.
type App struct {
	cfg      *config.Config
	log      *slog.Logger
	remote   *httpClient
	registry *StoreRegistry

	mu       sync.RWMutex
	tenantID string
	profile  *tenant.Profile
	store    *LocalStore
	ledger   *Ledger
	catalog  *Catalog
	expenses *Expenses
	engine   *SyncEngine
	monitor  *Monitor
	cancel   context.CancelFunc
}

func NewApp(cfg *config.Config, log *slog.Logger) *App {
	return &App{
		cfg:      cfg,
		log:      log,
		remote:   newHTTPClient(cfg, log),
		registry: NewStoreRegistry(cfg.DataDir, log),
	}
}

// Start restores the saved session if one exists, otherwise drops into
// guest mode. It never fails on connectivity: a stored session works fully
// offline against the tenant's local store.
func (a *App) Start(ctx context.Context) error {
	s, err := a.loadSession()
	if err != nil {
		a.log.Warn("could not restore session, starting as guest", "error", err)
	}

	tenantID := ""
	if s != nil {
		a.remote.SetToken(s.Token)
		tenantID = s.TenantID
	}
	if err := a.activate(ctx, tenantID); err != nil {
		return err
	}
	if s != nil {
		a.refreshProfile(ctx)
	}
	return nil
}

// Login opens a session, switches to the tenant's store and kicks off a
// first sync cycle in the background.
func (a *App) Login(ctx context.Context, login, password string) error {
	resp, err := a.remote.Login(ctx, login, password)
	if err != nil {
		return err
	}
	return a.openSession(ctx, resp)
}

// Register creates an account and opens a session like Login.
func (a *App) Register(ctx context.Context, login, password string) error {
	resp, err := a.remote.Register(ctx, login, password)
	if err != nil {
		return err
	}
	return a.openSession(ctx, resp)
}

func (a *App) openSession(ctx context.Context, resp *sessionResponse) error {
	s := &session{Token: resp.Token, TenantID: resp.TenantID}
	if err := a.saveSession(s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if err := a.activate(ctx, s.TenantID); err != nil {
		return err
	}
	a.refreshProfile(ctx)
	go a.SyncNow(context.WithoutCancel(ctx))
	return nil
}

// Logout drops the session, closes every cached store and returns to guest
// mode. Local databases stay on disk for the next login.
func (a *App) Logout(ctx context.Context) error {
	a.remote.SetToken("")
	if err := os.Remove(a.cfg.TokenPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	a.registry.Invalidate()
	a.mu.Lock()
	a.profile = nil
	a.mu.Unlock()
	return a.activate(ctx, "")
}

// activate rebuilds the service graph for the tenant. An empty id means
// guest mode.
func (a *App) activate(ctx context.Context, tenantID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}

	store, err := a.registry.Resolve(tenantID)
	if err != nil {
		return fmt.Errorf("open local store: %w", err)
	}

	a.tenantID = tenantID
	a.store = store
	a.ledger = NewLedger(store, a.log)
	a.catalog = NewCatalog(store, a.log)
	a.expenses = NewExpenses(store, a.log)
	a.engine = NewSyncEngine(store, a.remote, a.currentProfile, a.log)

	if tenantID != "" {
		a.monitor = NewMonitor(a.remote,
			time.Duration(a.cfg.ProbeInterval)*time.Second,
			time.Duration(a.cfg.SyncInterval)*time.Second,
			func(ctx context.Context) { a.SyncNow(ctx) },
			a.log)
		runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		a.cancel = cancel
		go a.monitor.Run(runCtx)
	} else {
		a.monitor = nil
	}

	a.log.Info("store activated", "tenant_id", tenantID, "guest", tenantID == "")
	return nil
}

// refreshProfile pulls the tenant profile from the remote side, caching it
// locally so plan gating survives restarts while offline.
func (a *App) refreshProfile(ctx context.Context) {
	p, err := a.remote.FetchProfile(ctx)
	if err != nil {
		if !errors.Is(err, ErrConnectivity) {
			a.log.Warn("profile fetch rejected", "error", err)
		}
		a.mu.RLock()
		store, tenantID := a.store, a.tenantID
		a.mu.RUnlock()
		if cached, err := store.GetProfile(tenantID); err == nil {
			a.mu.Lock()
			a.profile = cached
			a.mu.Unlock()
		}
		return
	}

	a.mu.Lock()
	if p.ID != a.tenantID {
		// The token answers for a different tenant than the session file
		// claims. Trust the remote side and rebind.
		a.log.Warn("session tenant mismatch, rebinding", "session", a.tenantID, "remote", p.ID)
		a.mu.Unlock()
		_ = a.saveSession(&session{Token: a.remote.token, TenantID: p.ID})
		if err := a.activate(ctx, p.ID); err != nil {
			a.log.Error("rebind failed", "error", err)
			return
		}
		a.mu.Lock()
	}
	a.profile = p
	store := a.store
	a.mu.Unlock()

	if err := store.PutProfile(p); err != nil {
		a.log.Warn("could not cache profile", "error", err)
	}
}

func (a *App) currentProfile() *tenant.Profile {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.profile
}

// SyncNow runs one sync cycle immediately. Guests and already running
// cycles make it a silent no-op.
func (a *App) SyncNow(ctx context.Context) error {
	a.mu.RLock()
	engine := a.engine
	a.mu.RUnlock()
	if engine == nil {
		return ErrNoSession
	}
	return engine.Sync(ctx)
}

func (a *App) SyncState() SyncState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.engine == nil {
		return StateOffline
	}
	return a.engine.State()
}

// LastSyncStats reports the outcome of the most recent sync cycle.
func (a *App) LastSyncStats() (SyncStats, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.engine == nil {
		return SyncStats{}, nil
	}
	return a.engine.LastStats()
}

func (a *App) Online() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.monitor != nil && a.monitor.Online()
}

func (a *App) TenantID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.tenantID
}

func (a *App) IsGuest() bool {
	return a.TenantID() == ""
}

func (a *App) Profile() *tenant.Profile {
	return a.currentProfile()
}

// LowStockThreshold is the configured stock level at or below which a
// product counts as running out.
func (a *App) LowStockThreshold() int64 {
	return a.cfg.LowStockThreshold
}

func (a *App) Ledger() *Ledger {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.ledger
}

func (a *App) Catalog() *Catalog {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.catalog
}

func (a *App) Expenses() *Expenses {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.expenses
}

// Close stops background work and releases every open store.
func (a *App) Close() error {
	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.mu.Unlock()
	a.registry.Invalidate()
	return nil
}

func (a *App) loadSession() (*session, error) {
	data, err := os.ReadFile(a.cfg.TokenPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("corrupt session file: %w", err)
	}
	if s.Token == "" || s.TenantID == "" {
		return nil, errors.New("incomplete session file")
	}
	return &s, nil
}

func (a *App) saveSession(s *session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(a.cfg.TokenPath, data, 0600)
}
