package handler

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/cuide-se/cuidese-api/internal/infra/observability"
	"github.com/cuide-se/cuidese-api/internal/service"
)

// ============================================================
// Dashboard & reports
// ============================================================

func dashboardHandler(svc *service.ReportsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/reports/dashboard")
		defer span.End()

		summary, err := svc.GetDashboard(ctx, parsePeriodDays(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

func professionalReportsHandler(svc *service.ReportsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/reports/professionals")
		defer span.End()

		reports, err := svc.GetProfessionalReports(ctx, parsePeriodDays(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, reports)
	}
}

func metricsSummaryHandler(metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetSnapshot())
	}
}

func parsePeriodDays(r *http.Request) int {
	if v := r.URL.Query().Get("period_days"); v != "" {
		if d, err := strconv.Atoi(v); err == nil && d > 0 && d <= 365 {
			return d
		}
	}
	return 30
}
