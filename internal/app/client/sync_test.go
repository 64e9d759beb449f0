package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contafeira/internal/app/client/config"
	"contafeira/internal/domain/ledger"
	"contafeira/internal/domain/money"
	"contafeira/internal/domain/tenant"
	"contafeira/internal/utils/logger"
)

// fakeRemote is an in-process stand-in for the remote record store. It
// keeps rows per collection keyed by id and resolves concurrent upserts by
// newest updated_at, like the real side does.
type fakeRemote struct {
	mu          sync.Mutex
	collections map[string]map[string]fakeRow
	requests    int
}

type fakeRow struct {
	payload   map[string]any
	updatedAt time.Time
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{collections: make(map[string]map[string]fakeRow)}
}

func parseWireTime(t *testing.T, raw any) time.Time {
	t.Helper()
	s, ok := raw.(string)
	if !ok {
		t.Fatalf("updated_at is not a string: %v", raw)
	}
	ts, err := time.Parse(time.RFC3339Nano, s)
	require.NoError(t, err)
	return ts
}

func (f *fakeRemote) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/v1/sync/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.requests++

		name := strings.TrimPrefix(r.URL.Path, "/api/v1/sync/")
		if f.collections[name] == nil {
			f.collections[name] = make(map[string]fakeRow)
		}

		switch r.Method {
		case http.MethodPost:
			var body struct {
				Rows []map[string]any `json:"rows"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			for _, row := range body.Rows {
				id := row["id"].(string)
				ts := parseWireTime(t, row["updated_at"])
				if cur, ok := f.collections[name][id]; !ok || ts.After(cur.updatedAt) {
					f.collections[name][id] = fakeRow{payload: row, updatedAt: ts}
				}
			}
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("{}"))
		case http.MethodGet:
			var since time.Time
			if raw := r.URL.Query().Get("updated_after"); raw != "" {
				parsed, err := time.Parse(time.RFC3339Nano, raw)
				require.NoError(t, err)
				since = parsed
			}
			rows := make([]map[string]any, 0)
			for _, row := range f.collections[name] {
				if row.updatedAt.After(since) {
					rows = append(rows, row.payload)
				}
			}
			json.NewEncoder(w).Encode(map[string]any{"rows": rows})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	return mux
}

func (f *fakeRemote) count(collection string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.collections[collection])
}

func (f *fakeRemote) row(collection, id string) (map[string]any, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.collections[collection][id]
	return row.payload, ok
}

func proProfile() *tenant.Profile {
	return &tenant.Profile{
		ID:                 "tenant-1",
		Plan:               tenant.PlanPro,
		SubscriptionStatus: tenant.StatusActive,
		UpdatedAt:          time.Now().UTC(),
	}
}

func newTestEngine(t *testing.T, store *LocalStore, serverURL string, profile *tenant.Profile) *SyncEngine {
	t.Helper()
	cfg := &config.Config{ServerAddress: strings.TrimPrefix(serverURL, "http://")}
	remote := newHTTPClient(cfg, logger.Discard())
	return NewSyncEngine(store, remote, func() *tenant.Profile { return profile }, logger.Discard())
}

func TestSyncUploadsDirtyAndClears(t *testing.T) {
	fake := newFakeRemote()
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	store := newTestStore(t, "tenant-1")
	engine := newTestEngine(t, store, srv.URL, proProfile())

	p := testProduct("p1", "Pastel")
	require.NoError(t, store.PutProduct(&p))

	require.NoError(t, engine.Sync(context.Background()))
	assert.Equal(t, StateSynced, engine.State())

	// The row reached the remote side with its original Portuguese names.
	row, ok := fake.row("produtos", "p1")
	require.True(t, ok)
	assert.Equal(t, "Pastel", row["nome"])

	got, err := store.GetProduct("p1")
	require.NoError(t, err)
	assert.False(t, got.Dirty, "uploaded row is clean")

	stats, err := engine.LastStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Uploaded)

	last, err := store.LastFullSync()
	require.NoError(t, err)
	assert.False(t, last.IsZero())
}

func TestSyncConvergenceAcrossDevices(t *testing.T) {
	fake := newFakeRemote()
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	deviceA := newTestStore(t, "tenant-1")
	deviceB := newTestStore(t, "tenant-1")
	engineA := newTestEngine(t, deviceA, srv.URL, proProfile())
	engineB := newTestEngine(t, deviceB, srv.URL, proProfile())

	base := time.Now().UTC().Truncate(time.Millisecond)

	p := testProduct("p1", "Pastel")
	p.UpdatedAt = base
	require.NoError(t, deviceA.PutProduct(&p))
	require.NoError(t, engineA.Sync(context.Background()))

	// Device B picks up A's product.
	require.NoError(t, engineB.Sync(context.Background()))
	got, err := deviceB.GetProduct("p1")
	require.NoError(t, err)
	assert.Equal(t, "Pastel", got.Name)
	assert.False(t, got.Dirty, "downloaded row is clean")

	// B edits the product later; the edit must win everywhere.
	got.Name = "Pastel de Carne"
	got.Price = money.MustParse("9.00")
	got.Dirty = true
	got.UpdatedAt = base.Add(5 * time.Second)
	require.NoError(t, deviceB.PutProduct(got))
	require.NoError(t, engineB.Sync(context.Background()))

	require.NoError(t, engineA.Sync(context.Background()))
	final, err := deviceA.GetProduct("p1")
	require.NoError(t, err)
	assert.Equal(t, "Pastel de Carne", final.Name)
	assert.True(t, final.Price.Equal(money.MustParse("9.00")))
	assert.False(t, final.Dirty)
}

func TestSyncStaleRemoteRowDiscarded(t *testing.T) {
	fake := newFakeRemote()
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	store := newTestStore(t, "tenant-1")
	engine := newTestEngine(t, store, srv.URL, proProfile())

	base := time.Now().UTC().Truncate(time.Millisecond)

	// Remote has an older version of the row than the local edit.
	stale := testProduct("p1", "Nome Antigo")
	stale.Dirty = false
	stale.UpdatedAt = base
	fake.collections["produtos"] = map[string]fakeRow{
		"p1": {payload: wireToMap(t, productToWire(stale)), updatedAt: base},
	}

	local := testProduct("p1", "Nome Novo")
	local.UpdatedAt = base.Add(time.Minute)
	require.NoError(t, store.PutProduct(&local))

	require.NoError(t, engine.Sync(context.Background()))

	got, err := store.GetProduct("p1")
	require.NoError(t, err)
	assert.Equal(t, "Nome Novo", got.Name, "newer local row survives")

	stats, err := engine.LastStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Discarded)
}

func wireToMap(t *testing.T, v any) map[string]any {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestSyncWatermarkSkipsAlreadySeenRows(t *testing.T) {
	fake := newFakeRemote()
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	store := newTestStore(t, "tenant-1")
	engine := newTestEngine(t, store, srv.URL, proProfile())

	base := time.Now().UTC().Truncate(time.Millisecond)
	remote := testProduct("p1", "Pastel")
	remote.Dirty = false
	remote.UpdatedAt = base
	fake.collections["produtos"] = map[string]fakeRow{
		"p1": {payload: wireToMap(t, productToWire(remote)), updatedAt: base},
	}

	require.NoError(t, engine.Sync(context.Background()))
	stats, err := engine.LastStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Downloaded)

	wm, err := store.Watermark(CollectionProducts)
	require.NoError(t, err)
	assert.True(t, wm.Equal(base), "watermark advanced to newest seen row")

	// A second cycle fetches past the watermark and sees nothing new.
	require.NoError(t, engine.Sync(context.Background()))
	stats, err = engine.LastStats()
	require.NoError(t, err)
	assert.Zero(t, stats.Downloaded)
	assert.Zero(t, stats.Discarded)
}

func TestSyncOfflineKeepsDirtyRows(t *testing.T) {
	store := newTestStore(t, "tenant-1")
	// Nothing listens here.
	engine := newTestEngine(t, store, "http://127.0.0.1:1", proProfile())

	p := testProduct("p1", "Pastel")
	require.NoError(t, store.PutProduct(&p))

	err := engine.Sync(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnectivity)
	assert.Equal(t, StateOffline, engine.State())

	got, err := store.GetProduct("p1")
	require.NoError(t, err)
	assert.True(t, got.Dirty, "failed upload leaves the row dirty for retry")

	last, err := store.LastFullSync()
	require.NoError(t, err)
	assert.True(t, last.IsZero(), "failed cycle does not count as a full sync")
}

func TestSyncPlanGating(t *testing.T) {
	fake := newFakeRemote()
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	store := newTestStore(t, "tenant-1")
	essential := proProfile()
	essential.Plan = tenant.PlanEssential
	engine := newTestEngine(t, store, srv.URL, essential)

	p := testProduct("p1", "Pastel")
	require.NoError(t, store.PutProduct(&p))

	require.NoError(t, engine.Sync(context.Background()))
	assert.Equal(t, StateSynced, engine.State(), "engine idles without the entitlement")
	assert.Zero(t, fake.count("produtos"), "no data leaves the device")

	t.Run("expired subscription", func(t *testing.T) {
		expired := proProfile()
		expired.SubscriptionStatus = tenant.StatusExpired
		engine := newTestEngine(t, store, srv.URL, expired)

		require.NoError(t, engine.Sync(context.Background()))
		assert.Zero(t, fake.count("produtos"))
	})

	t.Run("no profile yet", func(t *testing.T) {
		engine := newTestEngine(t, store, srv.URL, nil)
		require.NoError(t, engine.Sync(context.Background()))
		assert.Zero(t, fake.count("produtos"))
	})
}

func TestSyncNotReentrant(t *testing.T) {
	fake := newFakeRemote()
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	store := newTestStore(t, "tenant-1")
	engine := newTestEngine(t, store, srv.URL, proProfile())

	p := testProduct("p1", "Pastel")
	require.NoError(t, store.PutProduct(&p))

	// While a cycle holds the lock, a second trigger is a silent no-op.
	engine.runMu.Lock()
	require.NoError(t, engine.Sync(context.Background()))
	engine.runMu.Unlock()

	got, err := store.GetProduct("p1")
	require.NoError(t, err)
	assert.True(t, got.Dirty, "skipped cycle did nothing")
}

func TestSyncGuestStoreNoOp(t *testing.T) {
	fake := newFakeRemote()
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	guest, err := OpenGuestStore(logger.Discard())
	require.NoError(t, err)
	defer guest.Close()

	engine := newTestEngine(t, guest, srv.URL, proProfile())
	require.NoError(t, engine.Sync(context.Background()))
	assert.Zero(t, fake.requests, "guest store never talks to the remote side")
}

func TestSyncSalesAndSummariesRoundTrip(t *testing.T) {
	fake := newFakeRemote()
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	deviceA := newTestStore(t, "tenant-1")
	deviceB := newTestStore(t, "tenant-1")
	engineA := newTestEngine(t, deviceA, srv.URL, proProfile())
	engineB := newTestEngine(t, deviceB, srv.URL, proProfile())

	ledgerA := NewLedger(deviceA, logger.Discard())
	seedProduct(t, deviceA, "p1", "Pastel", "8.00", "3.00", nil)

	_, err := ledgerA.RegisterSale("p1", ledger.PaymentPix, 2, nil)
	require.NoError(t, err)
	summary, err := ledgerA.CloseDay()
	require.NoError(t, err)
	require.NotNil(t, summary)

	require.NoError(t, engineA.Sync(context.Background()))
	require.NoError(t, engineB.Sync(context.Background()))

	summaries, err := deviceB.ListSummaries()
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.True(t, summaries[0].Total.Equal(money.MustParse("16.00")))
	assert.True(t, summaries[0].TotalPix.Equal(money.MustParse("16.00")))

	archived, err := deviceB.SalesForSummary(summaries[0].ID)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.False(t, archived[0].Open())
	assert.False(t, archived[0].Dirty)
}
