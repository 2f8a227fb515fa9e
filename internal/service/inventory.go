package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/cuide-se/cuidese-api/internal/domain"
	"github.com/cuide-se/cuidese-api/internal/infra/observability"
	"github.com/cuide-se/cuidese-api/internal/port"
)

var inventoryTracer = otel.Tracer("service/inventory")

// InventoryService manages products and stock. Stock only changes
// through movements; product updates never touch the balance.
type InventoryService struct {
	store   port.InventoryStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewInventoryService creates a new inventory service.
func NewInventoryService(store port.InventoryStore, metrics *observability.Metrics, logger *zap.Logger) *InventoryService {
	return &InventoryService{store: store, metrics: metrics, logger: logger}
}

func (s *InventoryService) ListProducts(ctx context.Context, opts port.ListOptions) ([]domain.Product, error) {
	ctx, span := inventoryTracer.Start(ctx, "InventoryService.ListProducts")
	defer span.End()

	return s.store.ListProducts(ctx, opts)
}

// ListLowStock returns products at or below their minimum stock level.
func (s *InventoryService) ListLowStock(ctx context.Context) ([]domain.Product, error) {
	ctx, span := inventoryTracer.Start(ctx, "InventoryService.ListLowStock")
	defer span.End()

	products, err := s.store.ListProducts(ctx, port.ListOptions{Status: "active"})
	if err != nil {
		return nil, err
	}
	low := make([]domain.Product, 0)
	for _, p := range products {
		if p.LowStock() {
			low = append(low, p)
		}
	}
	return low, nil
}

func (s *InventoryService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := inventoryTracer.Start(ctx, "InventoryService.GetProduct")
	defer span.End()

	return s.store.GetProduct(ctx, id)
}

func (s *InventoryService) CreateProduct(ctx context.Context, in *domain.ProductInput) (*domain.Product, error) {
	ctx, span := inventoryTracer.Start(ctx, "InventoryService.CreateProduct")
	defer span.End()

	if err := validateProduct(in); err != nil {
		return nil, err
	}

	product, err := s.store.CreateProduct(ctx, in)
	if err != nil {
		s.logger.Error("failed to create product", zap.String("sku", in.SKU), zap.Error(err))
		return nil, err
	}
	s.logger.Info("product created", zap.String("product_id", product.ID), zap.String("sku", product.SKU))
	return product, nil
}

func (s *InventoryService) UpdateProduct(ctx context.Context, id string, in *domain.ProductInput) (*domain.Product, error) {
	ctx, span := inventoryTracer.Start(ctx, "InventoryService.UpdateProduct")
	defer span.End()

	if err := validateProduct(in); err != nil {
		return nil, err
	}
	return s.store.UpdateProduct(ctx, id, in)
}

func (s *InventoryService) DeleteProduct(ctx context.Context, id string) error {
	ctx, span := inventoryTracer.Start(ctx, "InventoryService.DeleteProduct")
	defer span.End()

	return s.store.DeleteProduct(ctx, id)
}

func (s *InventoryService) ListStockMovements(ctx context.Context, productID string, opts port.ListOptions) ([]domain.StockMovement, error) {
	ctx, span := inventoryTracer.Start(ctx, "InventoryService.ListStockMovements")
	defer span.End()

	return s.store.ListStockMovements(ctx, productID, opts)
}

// AdjustStock applies a stock movement through the database function so
// the balance change and the audit row stay consistent. A movement that
// would drive stock negative is rejected.
func (s *InventoryService) AdjustStock(ctx context.Context, adj *domain.StockAdjustment) (*domain.Product, error) {
	ctx, span := inventoryTracer.Start(ctx, "InventoryService.AdjustStock")
	defer span.End()
	span.SetAttributes(
		attribute.String("product.id", adj.ProductID),
		attribute.Int("stock.delta", adj.Delta),
	)

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("adjust_stock", time.Since(start)) }()

	fields := map[string]string{}
	if adj.ProductID == "" {
		fields["product_id"] = "required"
	}
	if adj.Delta == 0 {
		fields["delta"] = "must not be zero"
	}
	if adj.Reason == "" {
		fields["reason"] = "required"
	}
	if len(fields) > 0 {
		return nil, &domain.ErrValidation{Fields: fields}
	}

	product, err := s.store.AdjustStock(ctx, adj)
	if err != nil {
		s.logger.Warn("stock adjustment rejected",
			zap.String("product_id", adj.ProductID),
			zap.Int("delta", adj.Delta),
			zap.Error(err),
		)
		return nil, err
	}

	if product.LowStock() {
		s.logger.Warn("product at or below minimum stock",
			zap.String("product_id", product.ID),
			zap.Int("stock", product.Stock),
			zap.Int("min_stock", product.MinStock),
		)
	}
	return product, nil
}

func validateProduct(in *domain.ProductInput) error {
	fields := map[string]string{}
	if in.Name == "" {
		fields["name"] = "required"
	}
	if in.SKU == "" {
		fields["sku"] = "required"
	}
	if in.MinStock < 0 {
		fields["min_stock"] = "must not be negative"
	}
	if in.CostPrice < 0 {
		fields["cost_price"] = "must not be negative"
	}
	if in.SalePrice < 0 {
		fields["sale_price"] = "must not be negative"
	}
	if len(fields) > 0 {
		return &domain.ErrValidation{Fields: fields}
	}
	return nil
}
