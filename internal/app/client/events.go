package client

import (
	gosync "sync"
)

// Collection names one of the local record collections.
type Collection string

const (
	CollectionProducts      Collection = "products"
	CollectionSales         Collection = "sales"
	CollectionSummaries     Collection = "summaries"
	CollectionExpenses      Collection = "expenses"
	CollectionConfiguration Collection = "configuration"
	CollectionProfiles      Collection = "profiles"
)

// SyncedCollections are the collections the sync engine reconciles. Profiles
// are excluded: the remote side is their single source of truth.
var SyncedCollections = []Collection{
	CollectionProducts,
	CollectionSales,
	CollectionSummaries,
	CollectionExpenses,
	CollectionConfiguration,
}

// ChangeBus notifies subscribers whenever records in a collection change.
// Every local-store mutation publishes here; live queries re-evaluate on
// notification, so UI read models never poll after a mutation.
type ChangeBus struct {
	mu     gosync.RWMutex
	subs   map[int]*subscription
	nextID int
}

type subscription struct {
	scope map[Collection]bool // empty scope means all collections
	ch    chan Collection
}

func NewChangeBus() *ChangeBus {
	return &ChangeBus{subs: make(map[int]*subscription)}
}

// Subscribe registers interest in the given collections (all if none given).
// The returned cancel func must be called to release the subscription.
func (b *ChangeBus) Subscribe(collections ...Collection) (<-chan Collection, func()) {
	scope := make(map[Collection]bool, len(collections))
	for _, c := range collections {
		scope[c] = true
	}

	sub := &subscription{
		scope: scope,
		ch:    make(chan Collection, 16),
	}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = sub
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if s, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(s.ch)
		}
		b.mu.Unlock()
	}

	return sub.ch, cancel
}

// Publish tells subscribers that records in c changed. Slow subscribers whose
// buffers are full miss the signal for this round; a notification is a hint
// to re-query, not a change log, so dropping is safe.
func (b *ChangeBus) Publish(c Collection) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		if len(sub.scope) > 0 && !sub.scope[c] {
			continue
		}
		select {
		case sub.ch <- c:
		default:
		}
	}
}

// LiveQuery re-runs a query whenever its collections change and delivers the
// fresh result set. It is the client-side counterpart of the UI's reactive
// read models: stock levels, today's sales and catalogs stay consistent after
// every mutation with no manual refresh.
type LiveQuery[T any] struct {
	results chan Result[T]
	cancel  func()
	done    chan struct{}
	once    gosync.Once
}

// Result carries one query evaluation. Err is set when the underlying read
// failed; the query keeps running.
type Result[T any] struct {
	Value T
	Err   error
}

// NewLiveQuery evaluates run immediately and again after each change
// notification for the given collections.
func NewLiveQuery[T any](bus *ChangeBus, run func() (T, error), collections ...Collection) *LiveQuery[T] {
	notify, cancel := bus.Subscribe(collections...)

	q := &LiveQuery[T]{
		results: make(chan Result[T], 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go func() {
		defer close(q.results)

		q.deliver(run)
		for {
			select {
			case <-q.done:
				return
			case _, ok := <-notify:
				if !ok {
					return
				}
				q.deliver(run)
			}
		}
	}()

	return q
}

func (q *LiveQuery[T]) deliver(run func() (T, error)) {
	v, err := run()
	res := Result[T]{Value: v, Err: err}

	// Replace a stale pending result instead of blocking the bus.
	select {
	case q.results <- res:
	default:
		select {
		case <-q.results:
		default:
		}
		select {
		case q.results <- res:
		default:
		}
	}
}

// Updates returns the stream of query results, most recent last.
func (q *LiveQuery[T]) Updates() <-chan Result[T] {
	return q.results
}

// Close stops re-evaluation and releases the bus subscription.
func (q *LiveQuery[T]) Close() {
	q.once.Do(func() {
		close(q.done)
		q.cancel()
	})
}
