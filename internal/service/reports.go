package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cuide-se/cuidese-api/internal/domain"
	"github.com/cuide-se/cuidese-api/internal/infra/observability"
	"github.com/cuide-se/cuidese-api/internal/port"
)

var reportsTracer = otel.Tracer("service/reports")

// ReportsService builds the dashboard and period reports by aggregating
// the underlying rows. Nothing here is persisted; every summary is
// recomputed from source data on each build (cache aside).
type ReportsService struct {
	orders        port.OrderStore
	finance       port.FinanceStore
	clients       port.ClientStore
	professionals port.ProfessionalStore
	inventory     port.InventoryStore
	cache         port.Cache[*domain.DashboardSummary]
	metrics       *observability.Metrics
	logger        *zap.Logger
}

// NewReportsService creates a new reports service.
func NewReportsService(
	orders port.OrderStore,
	finance port.FinanceStore,
	clients port.ClientStore,
	professionals port.ProfessionalStore,
	inventory port.InventoryStore,
	cache port.Cache[*domain.DashboardSummary],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *ReportsService {
	return &ReportsService{
		orders:        orders,
		finance:       finance,
		clients:       clients,
		professionals: professionals,
		inventory:     inventory,
		cache:         cache,
		metrics:       metrics,
		logger:        logger,
	}
}

// GetDashboard builds the admin landing-page summary for the last
// periodDays days. Source listings are fetched concurrently; the result
// is cached briefly since the dashboard is polled.
func (s *ReportsService) GetDashboard(ctx context.Context, periodDays int) (*domain.DashboardSummary, error) {
	ctx, span := reportsTracer.Start(ctx, "ReportsService.GetDashboard")
	defer span.End()
	span.SetAttributes(attribute.Int("period.days", periodDays))

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("dashboard", time.Since(start)) }()

	if periodDays <= 0 {
		periodDays = 30
	}
	period := fmt.Sprintf("%dd", periodDays)

	cacheKey := fmt.Sprintf("dashboard:%s", period)
	if cached, ok := s.cache.Get(cacheKey); ok {
		s.metrics.IncrCacheHit("dashboard")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("dashboard")

	since := time.Now().AddDate(0, 0, -periodDays)
	sinceDate := since.Format("2006-01-02")

	var (
		transactions []domain.Transaction
		orders       []domain.Order
		clients      []domain.Client
		products     []domain.Product
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		transactions, err = s.finance.ListTransactions(gCtx,
			domain.TransactionFilter{DateFrom: sinceDate}, port.ListOptions{})
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = s.orders.ListOrders(gCtx, port.ListOptions{})
		return err
	})
	g.Go(func() error {
		var err error
		clients, err = s.clients.ListClients(gCtx, port.ListOptions{})
		return err
	})
	g.Go(func() error {
		var err error
		products, err = s.inventory.ListProducts(gCtx, port.ListOptions{Status: "active"})
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("failed to build dashboard", zap.Error(err))
		return nil, err
	}

	summary := &domain.DashboardSummary{
		Period:          period,
		RevenueByMethod: map[string]float64{},
	}

	for _, tx := range transactions {
		if tx.Kind == domain.TransactionIncome {
			summary.TotalRevenue += tx.Amount
			if tx.Method != "" {
				summary.RevenueByMethod[tx.Method] += tx.Amount
			}
		} else {
			summary.TotalExpenses += tx.Amount
		}
	}
	summary.NetResult = summary.TotalRevenue - summary.TotalExpenses

	serviceCounts := map[string]*domain.ServiceRanking{}
	for i := range orders {
		o := &orders[i]
		switch o.Status {
		case domain.OrderStatusOpen:
			summary.OrdersOpen++
		case domain.OrderStatusClosed:
			if o.ClosedAt == nil || o.ClosedAt.Before(since) {
				continue
			}
			summary.OrdersClosed++
			for _, item := range o.Items {
				if item.Kind != "service" {
					continue
				}
				rank, ok := serviceCounts[item.RefID]
				if !ok {
					rank = &domain.ServiceRanking{ServiceID: item.RefID, Name: item.RefName}
					serviceCounts[item.RefID] = rank
				}
				rank.Count += item.Quantity
				rank.Revenue += item.UnitPrice * float64(item.Quantity)
			}
		}
	}

	for _, c := range clients {
		if c.CreatedAt.After(since) {
			summary.NewClients++
		}
	}
	for i := range products {
		if products[i].LowStock() {
			summary.LowStockProducts++
		}
	}

	summary.TopServices = rankServices(serviceCounts, 5)

	s.cache.Set(cacheKey, summary)
	return summary, nil
}

// InvalidateDashboard drops every cached summary. Called when the change
// feed reports a write on a table the dashboard aggregates.
func (s *ReportsService) InvalidateDashboard() {
	s.cache.Flush()
}

// GetProfessionalReports summarizes each professional's closed orders in
// the last periodDays days, including the commission owed.
func (s *ReportsService) GetProfessionalReports(ctx context.Context, periodDays int) ([]domain.ProfessionalReport, error) {
	ctx, span := reportsTracer.Start(ctx, "ReportsService.GetProfessionalReports")
	defer span.End()

	if periodDays <= 0 {
		periodDays = 30
	}
	since := time.Now().AddDate(0, 0, -periodDays)

	var (
		orders []domain.Order
		pros   []domain.Professional
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = s.orders.ListOrders(gCtx, port.ListOptions{Status: domain.OrderStatusClosed})
		return err
	})
	g.Go(func() error {
		var err error
		pros, err = s.professionals.ListProfessionals(gCtx, port.ListOptions{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byPro := map[string]*domain.ProfessionalReport{}
	rates := map[string]float64{}
	for _, p := range pros {
		byPro[p.ID] = &domain.ProfessionalReport{ProfessionalID: p.ID, Name: p.Name}
		rates[p.ID] = p.CommissionRate
	}

	for i := range orders {
		o := &orders[i]
		if o.ClosedAt == nil || o.ClosedAt.Before(since) {
			continue
		}
		rep, ok := byPro[o.ProfessionalID]
		if !ok {
			continue
		}
		rep.OrdersClosed++
		rep.GrossRevenue += o.Total()
	}

	out := make([]domain.ProfessionalReport, 0, len(byPro))
	for id, rep := range byPro {
		rep.Commission = rep.GrossRevenue * rates[id]
		out = append(out, *rep)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GrossRevenue > out[j].GrossRevenue })
	return out, nil
}

func rankServices(counts map[string]*domain.ServiceRanking, top int) []domain.ServiceRanking {
	ranked := make([]domain.ServiceRanking, 0, len(counts))
	for _, r := range counts {
		ranked = append(ranked, *r)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Revenue > ranked[j].Revenue
	})
	if len(ranked) > top {
		ranked = ranked[:top]
	}
	return ranked
}
