package realtime

import (
	"context"
	"time"

	"github.com/cuide-se/cuidese-api/internal/port"

	"go.uber.org/zap"
)

// DefaultDebounce is the window within which a burst of change
// notifications collapses into a single refetch.
const DefaultDebounce = 300 * time.Millisecond

// Invalidator watches one table's change feed and invokes a refetch
// callback. Bursts are debounced: N notifications inside the window
// trigger exactly one callback, fired when the window goes quiet.
type Invalidator struct {
	feed     port.ChangeFeed
	table    string
	debounce time.Duration
	onChange func()
	logger   *zap.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewInvalidator creates an invalidator for table. A non-positive
// debounce falls back to DefaultDebounce.
func NewInvalidator(feed port.ChangeFeed, table string, debounce time.Duration, onChange func(), logger *zap.Logger) *Invalidator {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Invalidator{
		feed:     feed,
		table:    table,
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
	}
}

// Start subscribes and runs the debounce loop until Stop or ctx is done.
func (inv *Invalidator) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	events, err := inv.feed.Subscribe(ctx, inv.table)
	if err != nil {
		cancel()
		return err
	}
	inv.cancel = cancel
	inv.done = make(chan struct{})

	go inv.loop(ctx, events)
	return nil
}

// Stop tears the subscription down and waits for the loop to exit. A
// pending (already debounced) refetch still fires before the loop exits
// so a final remote change is never silently dropped.
func (inv *Invalidator) Stop() {
	if inv.cancel == nil {
		return
	}
	inv.cancel()
	<-inv.done
}

func (inv *Invalidator) loop(ctx context.Context, events <-chan port.ChangeEvent) {
	defer close(inv.done)

	var timer *time.Timer
	var fire <-chan time.Time
	pending := 0

	flush := func() {
		inv.logger.Debug("realtime: refetch",
			zap.String("table", inv.table),
			zap.Int("collapsed_events", pending),
		)
		pending = 0
		fire = nil
		inv.onChange()
	}

	for {
		select {
		case <-ctx.Done():
			if pending > 0 {
				flush()
			}
			if timer != nil {
				timer.Stop()
			}
			return

		case _, ok := <-events:
			if !ok {
				if pending > 0 {
					flush()
				}
				return
			}
			pending++
			if timer == nil {
				timer = time.NewTimer(inv.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(inv.debounce)
			}
			fire = timer.C

		case <-fire:
			flush()
		}
	}
}
