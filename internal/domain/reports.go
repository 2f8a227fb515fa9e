package domain

// ============================================================
// Reports / dashboard aggregates
// ============================================================

// DashboardSummary is the admin landing-page snapshot. All figures are
// recomputed from the underlying rows on every build; nothing here is
// persisted.
type DashboardSummary struct {
	Period           string             `json:"period"` // e.g. "30d"
	TotalRevenue     float64            `json:"total_revenue"`
	TotalExpenses    float64            `json:"total_expenses"`
	NetResult        float64            `json:"net_result"`
	OrdersOpen       int                `json:"orders_open"`
	OrdersClosed     int                `json:"orders_closed"`
	NewClients       int                `json:"new_clients"`
	LowStockProducts int                `json:"low_stock_products"`
	RevenueByMethod  map[string]float64 `json:"revenue_by_method"`
	TopServices      []ServiceRanking   `json:"top_services"`
}

// ServiceRanking is one row of the top-services table.
type ServiceRanking struct {
	ServiceID string  `json:"service_id"`
	Name      string  `json:"name"`
	Count     int     `json:"count"`
	Revenue   float64 `json:"revenue"`
}

// MetricsSnapshot is the operational-counters readback exposed on
// GET /v1/metrics/summary.
type MetricsSnapshot struct {
	TotalRequests  int64   `json:"total_requests"`
	ErrorRate      float64 `json:"error_rate"`
	CacheHitRate   float64 `json:"cache_hit_rate"`
	SupabaseErrors int64   `json:"supabase_errors"`
	Period         string  `json:"period"`
}

// ProfessionalReport summarizes one professional's production in a period.
type ProfessionalReport struct {
	ProfessionalID string  `json:"professional_id"`
	Name           string  `json:"name"`
	OrdersClosed   int     `json:"orders_closed"`
	GrossRevenue   float64 `json:"gross_revenue"`
	Commission     float64 `json:"commission"`
}

// ServiceHealth is one dependency's status inside the health report.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latency_ms"`
	LastChecked string `json:"last_checked"`
}

// HealthReport is the GET /healthz response body.
type HealthReport struct {
	Status    string          `json:"status"`
	Timestamp string          `json:"timestamp"`
	Services  []ServiceHealth `json:"services"`
}
