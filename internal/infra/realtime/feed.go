// Package realtime subscribes to the Supabase realtime websocket and
// turns change notifications into debounced refetch triggers.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cuide-se/cuidese-api/internal/port"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	heartbeatInterval = 30 * time.Second
	writeTimeout      = 10 * time.Second
)

// phxMessage is the phoenix-channel envelope used by the realtime server.
type phxMessage struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Ref     string          `json:"ref"`
}

// changePayload is the part of a postgres_changes payload we care about.
type changePayload struct {
	Type  string `json:"type"`
	Table string `json:"table"`
}

// Feed is a websocket connection to the realtime endpoint multiplexing
// per-table subscriptions. Close tears down the connection and every
// subscriber channel; leaving a feed open past its owner leaks the
// connection.
type Feed struct {
	conn   *websocket.Conn
	logger *zap.Logger

	// writeMu serializes frames: gorilla/websocket allows one concurrent
	// writer, and both heartbeat and Subscribe joins write.
	writeMu sync.Mutex

	mu     sync.Mutex
	subs   map[string][]chan port.ChangeEvent
	closed bool
	done   chan struct{}
	ref    int
}

// Dial connects to the realtime websocket of the given Supabase project.
func Dial(ctx context.Context, baseWSURL, apiKey string, logger *zap.Logger) (*Feed, error) {
	url := fmt.Sprintf("%s/realtime/v1/websocket?apikey=%s&vsn=1.0.0", baseWSURL, apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial realtime: %w", err)
	}

	f := &Feed{
		conn:   conn,
		logger: logger,
		subs:   make(map[string][]chan port.ChangeEvent),
		done:   make(chan struct{}),
	}
	go f.readPump()
	go f.heartbeat()
	return f, nil
}

// Subscribe joins the change topic for one table and returns a channel of
// its events. The channel closes when the feed closes or ctx is done.
func (f *Feed) Subscribe(ctx context.Context, table string) (<-chan port.ChangeEvent, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil, fmt.Errorf("feed is closed")
	}
	ch := make(chan port.ChangeEvent, 16)
	first := len(f.subs[table]) == 0
	f.subs[table] = append(f.subs[table], ch)
	f.mu.Unlock()

	if first {
		if err := f.send(phxMessage{
			Topic:   "realtime:public:" + table,
			Event:   "phx_join",
			Payload: json.RawMessage(`{}`),
			Ref:     f.nextRef(),
		}); err != nil {
			f.unsubscribe(table, ch)
			return nil, fmt.Errorf("join %s: %w", table, err)
		}
		f.logger.Info("realtime: subscribed", zap.String("table", table))
	}

	go func() {
		select {
		case <-ctx.Done():
		case <-f.done:
		}
		f.unsubscribe(table, ch)
	}()

	return ch, nil
}

// Close tears down the connection and all subscriber channels.
func (f *Feed) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	close(f.done)
	for table, chans := range f.subs {
		for _, ch := range chans {
			close(ch)
		}
		delete(f.subs, table)
	}
	f.mu.Unlock()
	return f.conn.Close()
}

func (f *Feed) unsubscribe(table string, ch chan port.ChangeEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	chans := f.subs[table]
	for i, c := range chans {
		if c == ch {
			f.subs[table] = append(chans[:i], chans[i+1:]...)
			close(c)
			break
		}
	}
}

func (f *Feed) send(msg phxMessage) error {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()
	f.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return f.conn.WriteJSON(msg)
}

func (f *Feed) nextRef() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ref++
	return fmt.Sprintf("%d", f.ref)
}

// readPump dispatches incoming change events to the table's subscribers.
// Slow subscribers drop events rather than block the pump; the consumer
// is an invalidator that refetches anyway, so a dropped event costs
// nothing once another event lands in the same window.
func (f *Feed) readPump() {
	defer f.Close()
	for {
		var msg phxMessage
		if err := f.conn.ReadJSON(&msg); err != nil {
			select {
			case <-f.done:
			default:
				f.logger.Warn("realtime: read failed", zap.Error(err))
			}
			return
		}

		switch msg.Event {
		case "INSERT", "UPDATE", "DELETE":
		default:
			continue // phx_reply, heartbeat acks, presence...
		}

		var payload changePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			continue
		}
		table := payload.Table
		if table == "" {
			// Fall back to the topic: realtime:public:<table>
			if n := len("realtime:public:"); len(msg.Topic) > n {
				table = msg.Topic[n:]
			}
		}

		ev := port.ChangeEvent{Table: table, Type: msg.Event}
		f.mu.Lock()
		for _, ch := range f.subs[table] {
			select {
			case ch <- ev:
			default:
			}
		}
		f.mu.Unlock()
	}
}

func (f *Feed) heartbeat() {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-f.done:
			return
		case <-ticker.C:
			if err := f.send(phxMessage{
				Topic:   "phoenix",
				Event:   "heartbeat",
				Payload: json.RawMessage(`{}`),
				Ref:     f.nextRef(),
			}); err != nil {
				f.logger.Warn("realtime: heartbeat failed", zap.Error(err))
				return
			}
		}
	}
}
