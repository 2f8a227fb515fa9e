package realtime_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cuide-se/cuidese-api/internal/infra/realtime"
)

// wsEcho upgrades the connection and counts the join frames it reads.
type wsEcho struct {
	upgrader websocket.Upgrader
	mu       sync.Mutex
	joins    map[string]int
}

func (s *wsEcho) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		var msg struct {
			Topic string          `json:"topic"`
			Event string          `json:"event"`
			Ref   string          `json:"ref"`
			Raw   json.RawMessage `json:"payload"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Event == "phx_join" {
			s.mu.Lock()
			s.joins[msg.Topic]++
			s.mu.Unlock()
		}
	}
}

func dialTestFeed(t *testing.T) (*realtime.Feed, *wsEcho) {
	t.Helper()
	echo := &wsEcho{joins: make(map[string]int)}
	srv := httptest.NewServer(echo)
	t.Cleanup(srv.Close)

	wsURL := strings.Replace(srv.URL, "http", "ws", 1)
	feed, err := realtime.Dial(context.Background(), wsURL, "anon", zap.NewNop())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { feed.Close() })
	return feed, echo
}

func TestFeed_ConcurrentSubscribesWriteSafely(t *testing.T) {
	feed, echo := dialTestFeed(t)

	// Each first subscription for a table sends a join frame; fire them
	// from parallel goroutines so the writes overlap.
	const tables = 8
	var wg sync.WaitGroup
	errs := make(chan error, tables)
	for i := 0; i < tables; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := feed.Subscribe(context.Background(), fmt.Sprintf("table_%d", i)); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("subscribe: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		echo.mu.Lock()
		got := len(echo.joins)
		echo.mu.Unlock()
		if got == tables {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server saw %d joins, want %d", got, tables)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestFeed_SecondSubscriberSharesTheJoin(t *testing.T) {
	feed, echo := dialTestFeed(t)

	if _, err := feed.Subscribe(context.Background(), "orders"); err != nil {
		t.Fatalf("first subscribe: %v", err)
	}
	if _, err := feed.Subscribe(context.Background(), "orders"); err != nil {
		t.Fatalf("second subscribe: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		echo.mu.Lock()
		got := echo.joins["realtime:public:orders"]
		echo.mu.Unlock()
		if got >= 1 {
			if got > 1 {
				t.Fatalf("expected one join for the table, got %d", got)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("server never received the join")
		}
		time.Sleep(time.Millisecond)
	}
}
