package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contafeira/internal/domain/ledger"
	"contafeira/internal/utils/logger"
)

func TestChangeBusScopedSubscription(t *testing.T) {
	bus := NewChangeBus()

	sales, cancel := bus.Subscribe(CollectionSales)
	defer cancel()

	bus.Publish(CollectionProducts)
	bus.Publish(CollectionSales)

	select {
	case c := <-sales:
		assert.Equal(t, CollectionSales, c)
	case <-time.After(time.Second):
		t.Fatal("expected a sales notification")
	}

	select {
	case c := <-sales:
		t.Fatalf("unexpected notification for %s", c)
	default:
	}
}

func TestChangeBusCancelStopsDelivery(t *testing.T) {
	bus := NewChangeBus()

	ch, cancel := bus.Subscribe(CollectionSales)
	cancel()

	// Publishing after cancel must not panic or deliver.
	bus.Publish(CollectionSales)

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel is closed after cancel")
	case <-time.After(time.Second):
		t.Fatal("expected channel close")
	}
}

func waitForResult[T any](t *testing.T, q *LiveQuery[T]) T {
	t.Helper()
	select {
	case res, ok := <-q.Updates():
		require.True(t, ok, "query closed unexpectedly")
		require.NoError(t, res.Err)
		return res.Value
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a query result")
		panic("unreachable")
	}
}

func TestLiveQueryReEvaluatesOnChange(t *testing.T) {
	store := newTestStore(t, "tenant-1")
	l := NewLedger(store, logger.Discard())
	seedProduct(t, store, "p1", "Pastel", "8.00", "3.00", nil)

	q := l.LiveOpenSales()
	defer q.Close()

	first := waitForResult(t, q)
	assert.Empty(t, first, "initial evaluation sees no sales")

	_, err := l.RegisterSale("p1", ledger.PaymentPix, 1, nil)
	require.NoError(t, err)

	deadline := time.After(2 * time.Second)
	for {
		var sales []ledger.Sale
		select {
		case res := <-q.Updates():
			require.NoError(t, res.Err)
			sales = res.Value
		case <-deadline:
			t.Fatal("live query never reflected the new sale")
		}
		if len(sales) == 1 {
			assert.Equal(t, "Pastel", sales[0].ProductName)
			return
		}
	}
}

func TestLiveQueryCloseStopsStream(t *testing.T) {
	store := newTestStore(t, "tenant-1")
	l := NewLedger(store, logger.Discard())

	q := l.LiveHistory()
	waitForResult(t, q)
	q.Close()
	q.Close() // idempotent

	// The stream drains and closes.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-q.Updates():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("stream did not close")
		}
	}
}
