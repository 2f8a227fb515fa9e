package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cuide-se/cuidese-api/internal/domain"
	"github.com/cuide-se/cuidese-api/internal/infra/observability"
	"github.com/cuide-se/cuidese-api/internal/infra/resilience"
	"github.com/cuide-se/cuidese-api/internal/port"

	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.Client(), srv.URL, "anon", "service", resilience.NewCircuitBreaker("test"), resilience.NewBulkhead(8), observability.NewMetrics(), zap.NewNop())
}

func TestUpdateClient_NeverPatchesIdentifierOrCreatedAt(t *testing.T) {
	var patched map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Fatalf("expected PATCH, got %s", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &patched); err != nil {
			t.Fatalf("bad patch body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"c1","name":"Ana","status":"active"}]`))
	})

	_, err := client.UpdateClient(context.Background(), "c1", &domain.ClientInput{
		Name: "Ana", Email: "ana@x.com", Phone: "+551199999999",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := patched["id"]; ok {
		t.Error("update payload must not carry the id")
	}
	if _, ok := patched["created_at"]; ok {
		t.Error("update payload must not carry created_at")
	}
	if patched["name"] != "Ana" {
		t.Errorf("expected name in payload, got %v", patched["name"])
	}
}

func TestDeleteClient_MissingIDReportsError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// PostgREST returns an empty set when the delete matched nothing.
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	})

	err := client.DeleteClient(context.Background(), "missing")
	if err == nil {
		t.Fatal("deleting a non-existent id must report an error")
	}
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Errorf("expected ErrNotFound, got %T: %v", err, err)
	}
}

func TestCreateClient_ReturnsServerRepresentation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("Prefer"); got != "return=representation" {
			t.Errorf("expected return=representation, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"srv-assigned","name":"Ana","email":"ana@x.com","phone":"+551199999999","status":"active","created_at":"2026-08-01T10:00:00Z"}]`))
	})

	created, err := client.CreateClient(context.Background(), &domain.ClientInput{
		Name: "Ana", Email: "ana@x.com", Phone: "+551199999999",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != "srv-assigned" {
		t.Errorf("expected server-assigned id, got %q", created.ID)
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected server-assigned created_at")
	}
}

func TestListProfessionals_StatusFilterForwarded(t *testing.T) {
	var path string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"p1","name":"A","status":"active"},{"id":"p2","name":"B","status":"active"},{"id":"p3","name":"C","status":"active"}]`))
	})

	pros, err := client.ListProfessionals(context.Background(), port.ListOptions{Status: "active"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pros) != 3 {
		t.Errorf("expected 3 professionals, got %d", len(pros))
	}
	if want := "status=eq.active"; !strings.Contains(path, want) {
		t.Errorf("expected %q in query %q", want, path)
	}
}

func TestAdjustStock_NegativeResultIsInsufficientStock(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.Contains(r.URL.Path, "/rpc/update_product_stock"):
			w.Write([]byte(`-1`))
		case strings.Contains(r.URL.Path, "/products"):
			w.Write([]byte(`[{"id":"prod-1","name":"Shampoo","stock":2,"min_stock":1}]`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	_, err := client.AdjustStock(context.Background(), &domain.StockAdjustment{
		ProductID: "prod-1", Delta: -5, Reason: "sale",
	})
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	var insufficient *domain.ErrInsufficientStock
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected ErrInsufficientStock, got %T: %v", err, err)
	}
	if insufficient.Available != 2 {
		t.Errorf("expected available=2, got %d", insufficient.Available)
	}
}

func TestFailedRequestsFeedTheErrorSnapshot(t *testing.T) {
	metrics := observability.NewMetrics()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	client := NewClient(srv.Client(), srv.URL, "anon", "service",
		resilience.NewCircuitBreaker("test"), resilience.NewBulkhead(8), metrics, zap.NewNop())

	if _, err := client.ListClients(context.Background(), port.ListOptions{}); err == nil {
		t.Fatal("expected an error from the failing backend")
	}
	if _, err := client.GetClient(context.Background(), "c1"); err == nil {
		t.Fatal("expected an error from the failing backend")
	}

	if got := metrics.GetSnapshot().SupabaseErrors; got != 2 {
		t.Errorf("SupabaseErrors = %d, want 2", got)
	}
}
