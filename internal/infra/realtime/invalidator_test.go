package realtime_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cuide-se/cuidese-api/internal/infra/realtime"
	"github.com/cuide-se/cuidese-api/internal/port"

	"go.uber.org/zap"
)

// mockFeed fans hand-fed events out to subscribers.
type mockFeed struct {
	mu   sync.Mutex
	subs map[string][]chan port.ChangeEvent
}

func newMockFeed() *mockFeed {
	return &mockFeed{subs: make(map[string][]chan port.ChangeEvent)}
}

func (m *mockFeed) Subscribe(ctx context.Context, table string) (<-chan port.ChangeEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan port.ChangeEvent, 64)
	m.subs[table] = append(m.subs[table], ch)
	return ch, nil
}

func (m *mockFeed) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, chans := range m.subs {
		for _, ch := range chans {
			close(ch)
		}
	}
	m.subs = make(map[string][]chan port.ChangeEvent)
	return nil
}

func (m *mockFeed) emit(table string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < n; i++ {
		for _, ch := range m.subs[table] {
			ch <- port.ChangeEvent{Table: table, Type: "UPDATE"}
		}
	}
}

func TestInvalidator_BurstCollapsesToOneRefetch(t *testing.T) {
	feed := newMockFeed()
	var refetches atomic.Int32

	inv := realtime.NewInvalidator(feed, "orders", 50*time.Millisecond, func() {
		refetches.Add(1)
	}, zap.NewNop())

	if err := inv.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer inv.Stop()

	// A burst of 10 notifications inside the window must yield exactly 1.
	feed.emit("orders", 10)

	time.Sleep(200 * time.Millisecond)
	if got := refetches.Load(); got != 1 {
		t.Errorf("expected exactly 1 refetch for the burst, got %d", got)
	}
}

func TestInvalidator_SeparatedEventsEachRefetch(t *testing.T) {
	feed := newMockFeed()
	var refetches atomic.Int32

	inv := realtime.NewInvalidator(feed, "clients", 30*time.Millisecond, func() {
		refetches.Add(1)
	}, zap.NewNop())

	if err := inv.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer inv.Stop()

	feed.emit("clients", 1)
	time.Sleep(120 * time.Millisecond)
	feed.emit("clients", 1)
	time.Sleep(120 * time.Millisecond)

	if got := refetches.Load(); got != 2 {
		t.Errorf("expected 2 refetches for separated events, got %d", got)
	}
}

func TestInvalidator_StopFlushesPending(t *testing.T) {
	feed := newMockFeed()
	var refetches atomic.Int32

	inv := realtime.NewInvalidator(feed, "products", time.Second, func() {
		refetches.Add(1)
	}, zap.NewNop())

	if err := inv.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	feed.emit("products", 3)
	time.Sleep(20 * time.Millisecond) // let the loop absorb the burst
	inv.Stop()

	if got := refetches.Load(); got != 1 {
		t.Errorf("expected pending refetch to flush on stop, got %d", got)
	}
}
