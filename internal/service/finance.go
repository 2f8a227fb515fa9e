package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/cuide-se/cuidese-api/internal/domain"
	"github.com/cuide-se/cuidese-api/internal/infra/observability"
	"github.com/cuide-se/cuidese-api/internal/port"
)

var financeTracer = otel.Tracer("service/finance")

// FinanceService manages financial transactions and the running balance.
type FinanceService struct {
	store   port.FinanceStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewFinanceService creates a new finance service.
func NewFinanceService(store port.FinanceStore, metrics *observability.Metrics, logger *zap.Logger) *FinanceService {
	return &FinanceService{store: store, metrics: metrics, logger: logger}
}

func (s *FinanceService) ListTransactions(ctx context.Context, f domain.TransactionFilter, opts port.ListOptions) ([]domain.Transaction, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.ListTransactions")
	defer span.End()

	return s.store.ListTransactions(ctx, f, opts)
}

func (s *FinanceService) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.GetTransaction")
	defer span.End()

	return s.store.GetTransaction(ctx, id)
}

func (s *FinanceService) CreateTransaction(ctx context.Context, in *domain.TransactionInput) (*domain.Transaction, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.CreateTransaction")
	defer span.End()

	if err := validateTransaction(in); err != nil {
		return nil, err
	}

	tx, err := s.store.CreateTransaction(ctx, in)
	if err != nil {
		s.logger.Error("failed to create transaction", zap.String("kind", in.Kind), zap.Error(err))
		return nil, err
	}
	s.logger.Info("transaction created",
		zap.String("transaction_id", tx.ID),
		zap.String("kind", tx.Kind),
		zap.Float64("amount", tx.Amount),
	)
	return tx, nil
}

func (s *FinanceService) UpdateTransaction(ctx context.Context, id string, in *domain.TransactionInput) (*domain.Transaction, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.UpdateTransaction")
	defer span.End()

	if err := validateTransaction(in); err != nil {
		return nil, err
	}
	return s.store.UpdateTransaction(ctx, id, in)
}

func (s *FinanceService) DeleteTransaction(ctx context.Context, id string) error {
	ctx, span := financeTracer.Start(ctx, "FinanceService.DeleteTransaction")
	defer span.End()

	return s.store.DeleteTransaction(ctx, id)
}

// GetBalance returns the current balance as computed server-side by the
// calcular_saldo_atual database function.
func (s *FinanceService) GetBalance(ctx context.Context) (*domain.Balance, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.GetBalance")
	defer span.End()

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("get_balance", time.Since(start)) }()

	return s.store.GetBalance(ctx)
}

func validateTransaction(in *domain.TransactionInput) error {
	fields := map[string]string{}
	if in.Kind != domain.TransactionIncome && in.Kind != domain.TransactionExpense {
		fields["kind"] = "must be income or expense"
	}
	if in.Category == "" {
		fields["category"] = "required"
	}
	if in.Amount <= 0 {
		fields["amount"] = "must be positive"
	}
	if in.Date == "" {
		fields["date"] = "required"
	} else if _, err := time.Parse("2006-01-02", in.Date); err != nil {
		fields["date"] = "must be YYYY-MM-DD"
	}
	if len(fields) > 0 {
		return &domain.ErrValidation{Fields: fields}
	}
	return nil
}
