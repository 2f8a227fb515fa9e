package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestZapLoggerMiddleware_FeedsRequestCounters(t *testing.T) {
	metrics := NewMetrics()
	mw := ZapLoggerMiddleware(zap.NewNop(), metrics)

	ok := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	boom := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	ok.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/clients", nil))
	boom.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/orders", nil))

	snap := metrics.GetSnapshot()
	if snap.TotalRequests != 2 {
		t.Fatalf("TotalRequests = %d, want 2", snap.TotalRequests)
	}
	if snap.ErrorRate != 0.5 {
		t.Errorf("ErrorRate = %v, want 0.5", snap.ErrorRate)
	}
}

func TestZapLoggerMiddleware_CountsClientErrorsAsErrors(t *testing.T) {
	metrics := NewMetrics()
	mw := ZapLoggerMiddleware(zap.NewNop(), metrics)

	notFound := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	notFound.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/clients/nope", nil))

	snap := metrics.GetSnapshot()
	if snap.TotalRequests != 1 || snap.ErrorRate != 1 {
		t.Errorf("snapshot = %d requests / %v error rate, want 1 / 1", snap.TotalRequests, snap.ErrorRate)
	}
}

func TestZapLoggerMiddleware_NilMetricsDoesNotPanic(t *testing.T) {
	mw := ZapLoggerMiddleware(zap.NewNop(), nil)
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
}
