package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/cuide-se/cuidese-api/internal/domain"
	"github.com/cuide-se/cuidese-api/internal/listview"
	"github.com/cuide-se/cuidese-api/internal/port"
)

var boardTracer = otel.Tracer("service/board")

// BoardService serves the reception board: the live listing of open
// comandas everyone at the front desk watches. One View backs the whole
// process; the realtime invalidators refresh it whenever the orders or
// order_items tables change, so readers get the cached rows instead of
// hitting the store on every poll.
type BoardService struct {
	view   *listview.View[domain.Order]
	logger *zap.Logger
}

// NewBoardService creates the board over the open-orders listing. The
// view starts idle; the first Snapshot loads it.
func NewBoardService(store port.OrderStore, logger *zap.Logger) *BoardService {
	view := listview.New(func(ctx context.Context) ([]domain.Order, error) {
		return store.ListOrders(ctx, port.ListOptions{Status: domain.OrderStatusOpen})
	}, logger)
	return &BoardService{view: view, logger: logger}
}

// Snapshot returns the open comandas and the view state. An idle view
// is loaded on first read; after that the rows come from the view and
// only invalidations refetch. An errored view still returns its last
// good rows alongside the error.
func (s *BoardService) Snapshot(ctx context.Context) ([]domain.Order, listview.State, error) {
	ctx, span := boardTracer.Start(ctx, "BoardService.Snapshot")
	defer span.End()

	_, state, _ := s.view.Snapshot()
	if state == listview.StateIdle {
		if err := s.view.Refresh(ctx); err != nil {
			s.logger.Warn("board: initial load failed", zap.Error(err))
		}
	}
	return s.view.Snapshot()
}

// Invalidate refetches the board. Wired to the realtime change feed for
// the orders and order_items tables.
func (s *BoardService) Invalidate(ctx context.Context) {
	ctx, span := boardTracer.Start(ctx, "BoardService.Invalidate")
	defer span.End()

	// The view logs the failure and goes errored; the next
	// invalidation or read retries.
	_ = s.view.Refresh(ctx)
}

// Close disposes the view on shutdown.
func (s *BoardService) Close() {
	s.view.Close()
}
