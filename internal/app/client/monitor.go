package client

import (
	"context"
	"sync"
	"time"

	"golang.org/x/exp/slog"
)

// Monitor watches reachability of the remote store and drives the sync
// engine: a probe flipping the link from down to up triggers an immediate
// cycle, and a slower ticker triggers periodic cycles while the link stays
// up. Probes are cheap health requests, not sync cycles.
type Monitor struct {
	remote        *httpClient
	log           *slog.Logger
	probeInterval time.Duration
	syncInterval  time.Duration
	trigger       func(context.Context)

	mu     sync.RWMutex
	online bool
}

func NewMonitor(remote *httpClient, probeInterval, syncInterval time.Duration, trigger func(context.Context), log *slog.Logger) *Monitor {
	return &Monitor{
		remote:        remote,
		log:           log.With("component", "monitor"),
		probeInterval: probeInterval,
		syncInterval:  syncInterval,
		trigger:       trigger,
	}
}

// Online reports the result of the most recent probe.
func (m *Monitor) Online() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// Run probes until ctx is cancelled. It blocks; callers start it in a
// goroutine.
func (m *Monitor) Run(ctx context.Context) {
	m.probe(ctx)

	probeTick := time.NewTicker(m.probeInterval)
	defer probeTick.Stop()
	syncTick := time.NewTicker(m.syncInterval)
	defer syncTick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-probeTick.C:
			m.probe(ctx)
		case <-syncTick.C:
			if m.Online() {
				m.trigger(ctx)
			}
		}
	}
}

func (m *Monitor) probe(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err := m.remote.Health(probeCtx)
	cancel()

	up := err == nil

	m.mu.Lock()
	wasOnline := m.online
	m.online = up
	m.mu.Unlock()

	switch {
	case up && !wasOnline:
		m.log.Info("remote store reachable, triggering sync")
		m.trigger(ctx)
	case !up && wasOnline:
		m.log.Warn("remote store unreachable", "error", err)
	}
}
