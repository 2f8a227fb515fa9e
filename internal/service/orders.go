package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/cuide-se/cuidese-api/internal/domain"
	"github.com/cuide-se/cuidese-api/internal/infra/observability"
	"github.com/cuide-se/cuidese-api/internal/port"
)

var orderTracer = otel.Tracer("service/orders")

// Points earned per real spent on a closed order.
const loyaltyPointsPerReal = 1.0

// OrderService manages comandas: the running tab of a client visit.
// Closing an order is the financial event of the system: it records the
// income transaction and awards loyalty points.
type OrderService struct {
	orders  port.OrderStore
	finance port.FinanceStore
	loyalty port.LoyaltyStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(orders port.OrderStore, finance port.FinanceStore, loyalty port.LoyaltyStore, metrics *observability.Metrics, logger *zap.Logger) *OrderService {
	return &OrderService{
		orders:  orders,
		finance: finance,
		loyalty: loyalty,
		metrics: metrics,
		logger:  logger,
	}
}

func (s *OrderService) ListOrders(ctx context.Context, opts port.ListOptions) ([]domain.Order, error) {
	ctx, span := orderTracer.Start(ctx, "OrderService.ListOrders")
	defer span.End()

	return s.orders.ListOrders(ctx, opts)
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	ctx, span := orderTracer.Start(ctx, "OrderService.GetOrder")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", id))

	return s.orders.GetOrder(ctx, id)
}

func (s *OrderService) OpenOrder(ctx context.Context, in *domain.OrderInput) (*domain.Order, error) {
	ctx, span := orderTracer.Start(ctx, "OrderService.OpenOrder")
	defer span.End()

	fields := map[string]string{}
	if in.ClientID == "" {
		fields["client_id"] = "required"
	}
	if in.ProfessionalID == "" {
		fields["professional_id"] = "required"
	}
	if in.Discount < 0 {
		fields["discount"] = "must not be negative"
	}
	if len(fields) > 0 {
		return nil, &domain.ErrValidation{Fields: fields}
	}

	order, err := s.orders.CreateOrder(ctx, in)
	if err != nil {
		s.logger.Error("failed to open order", zap.String("client_id", in.ClientID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("order opened",
		zap.String("order_id", order.ID),
		zap.String("client_id", order.ClientID),
	)
	return order, nil
}

func (s *OrderService) UpdateOrder(ctx context.Context, id string, in *domain.OrderInput) (*domain.Order, error) {
	ctx, span := orderTracer.Start(ctx, "OrderService.UpdateOrder")
	defer span.End()

	if err := s.requireOpen(ctx, id); err != nil {
		return nil, err
	}
	if in.Discount < 0 {
		return nil, domain.NewFieldError("discount", "must not be negative")
	}
	return s.orders.UpdateOrder(ctx, id, in)
}

func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	ctx, span := orderTracer.Start(ctx, "OrderService.DeleteOrder")
	defer span.End()

	return s.orders.DeleteOrder(ctx, id)
}

// CloseOrder closes an open order, records the income transaction and
// awards loyalty points on the paid total. The close itself is the
// authoritative step; bookkeeping failures after it are logged, not
// rolled back.
func (s *OrderService) CloseOrder(ctx context.Context, id, paymentMethod string) (*domain.Order, error) {
	ctx, span := orderTracer.Start(ctx, "OrderService.CloseOrder")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", id))

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("close_order", time.Since(start)) }()

	order, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.OrderStatusOpen {
		return nil, &domain.ErrOrderClosed{OrderID: id, Status: order.Status}
	}
	if len(order.Items) == 0 {
		return nil, domain.NewFieldError("items", "cannot close an empty order")
	}
	if paymentMethod == "" {
		return nil, domain.NewFieldError("payment_method", "required")
	}

	now := time.Now()
	if err := s.orders.SetOrderStatus(ctx, id, domain.OrderStatusClosed, &now); err != nil {
		s.logger.Error("failed to close order", zap.String("order_id", id), zap.Error(err))
		return nil, err
	}

	total := order.Total()

	if _, txErr := s.finance.CreateTransaction(ctx, &domain.TransactionInput{
		Kind:        domain.TransactionIncome,
		Category:    "atendimento",
		Description: fmt.Sprintf("Comanda %s - %s", order.ID, order.ClientName),
		Amount:      total,
		Method:      paymentMethod,
		Date:        now.Format("2006-01-02"),
		OrderID:     order.ID,
	}); txErr != nil {
		s.logger.Error("failed to record order income",
			zap.String("order_id", id),
			zap.Error(txErr),
		)
	}

	points := int(math.Floor(total * loyaltyPointsPerReal))
	if points > 0 {
		if _, lErr := s.loyalty.AddLoyaltyEntry(ctx, &domain.LoyaltyEntry{
			ClientID: order.ClientID,
			Points:   points,
			Reason:   "order_closed",
			OrderID:  order.ID,
		}); lErr != nil {
			s.logger.Error("failed to award loyalty points",
				zap.String("order_id", id),
				zap.String("client_id", order.ClientID),
				zap.Error(lErr),
			)
		}
	}

	s.logger.Info("order closed",
		zap.String("order_id", id),
		zap.Float64("total", total),
		zap.String("payment_method", paymentMethod),
		zap.Int("loyalty_points", points),
	)

	return s.orders.GetOrder(ctx, id)
}

// CancelOrder cancels an open order. Nothing financial happens: a
// canceled comanda never produced revenue.
func (s *OrderService) CancelOrder(ctx context.Context, id string) (*domain.Order, error) {
	ctx, span := orderTracer.Start(ctx, "OrderService.CancelOrder")
	defer span.End()

	order, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.OrderStatusOpen {
		return nil, &domain.ErrOrderClosed{OrderID: id, Status: order.Status}
	}

	now := time.Now()
	if err := s.orders.SetOrderStatus(ctx, id, domain.OrderStatusCanceled, &now); err != nil {
		return nil, err
	}
	s.logger.Info("order canceled", zap.String("order_id", id))
	return s.orders.GetOrder(ctx, id)
}

// ============================================================
// Order items
// ============================================================

func (s *OrderService) AddItem(ctx context.Context, orderID string, in *domain.OrderItemInput) (*domain.OrderItem, error) {
	ctx, span := orderTracer.Start(ctx, "OrderService.AddItem")
	defer span.End()

	if err := s.requireOpen(ctx, orderID); err != nil {
		return nil, err
	}

	fields := map[string]string{}
	if in.Kind != "service" && in.Kind != "product" {
		fields["kind"] = "must be service or product"
	}
	if in.RefID == "" {
		fields["ref_id"] = "required"
	}
	if in.Quantity <= 0 {
		fields["quantity"] = "must be positive"
	}
	if in.UnitPrice < 0 {
		fields["unit_price"] = "must not be negative"
	}
	if len(fields) > 0 {
		return nil, &domain.ErrValidation{Fields: fields}
	}

	return s.orders.AddOrderItem(ctx, orderID, in)
}

func (s *OrderService) RemoveItem(ctx context.Context, orderID, itemID string) error {
	ctx, span := orderTracer.Start(ctx, "OrderService.RemoveItem")
	defer span.End()

	if err := s.requireOpen(ctx, orderID); err != nil {
		return err
	}
	return s.orders.DeleteOrderItem(ctx, orderID, itemID)
}

func (s *OrderService) requireOpen(ctx context.Context, orderID string) error {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != domain.OrderStatusOpen {
		return &domain.ErrOrderClosed{OrderID: orderID, Status: order.Status}
	}
	return nil
}
