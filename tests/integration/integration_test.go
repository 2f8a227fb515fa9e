package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/cuide-se/cuidese-api/internal/domain"
	"github.com/cuide-se/cuidese-api/internal/handler"
	"github.com/cuide-se/cuidese-api/internal/infra/cache"
	"github.com/cuide-se/cuidese-api/internal/infra/observability"
	"github.com/cuide-se/cuidese-api/internal/infra/resilience"
	"github.com/cuide-se/cuidese-api/internal/infra/supabase"
	"github.com/cuide-se/cuidese-api/internal/service"
)

// postgrestStub is a small stateful fake of the PostgREST surface the
// store layer talks to. It keeps rows as loose maps and echoes them back
// the way the real server would (arrays, return=representation).
type postgrestStub struct {
	mu           sync.Mutex
	user         map[string]any
	credHash     string
	orders       map[string]map[string]any
	clients      []map[string]any
	items        []map[string]any
	transactions []map[string]any
	loyalty      []map[string]any
	nextID       int
}

func newPostgrestStub(passwordHash string) *postgrestStub {
	return &postgrestStub{
		user: map[string]any{
			"id":        "u1",
			"email":     "admin@cuidese.app",
			"full_name": "Admin",
			"role":      "admin",
			"active":    true,
		},
		credHash: passwordHash,
		orders:   make(map[string]map[string]any),
	}
}

func (s *postgrestStub) genID(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func writeRows(w http.ResponseWriter, rows any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rows)
}

func eqParam(r *http.Request, name string) string {
	return strings.TrimPrefix(r.URL.Query().Get(name), "eq.")
}

func (s *postgrestStub) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		table := strings.TrimPrefix(r.URL.Path, "/rest/v1/")
		var body map[string]any
		if r.Body != nil {
			json.NewDecoder(r.Body).Decode(&body)
		}

		switch {
		case table == "users":
			if r.Method == http.MethodGet || r.Method == http.MethodPatch {
				writeRows(w, []any{s.user})
				return
			}

		case table == "user_credentials" && r.Method == http.MethodGet:
			writeRows(w, []any{map[string]any{
				"user_id":       "u1",
				"password_hash": s.credHash,
			}})
			return

		case table == "refresh_tokens":
			switch r.Method {
			case http.MethodPost:
				body["id"] = s.genID("rt")
				writeRows(w, []any{body})
			default:
				writeRows(w, []any{})
			}
			return

		case table == "orders":
			switch r.Method {
			case http.MethodPost:
				body["id"] = s.genID("o")
				body["created_at"] = time.Now().Format(time.RFC3339)
				s.orders[body["id"].(string)] = body
				writeRows(w, []any{body})
			case http.MethodGet:
				if id := eqParam(r, "id"); id != "" {
					if row, ok := s.orders[id]; ok {
						writeRows(w, []any{row})
					} else {
						writeRows(w, []any{})
					}
					return
				}
				rows := []any{}
				for _, row := range s.orders {
					rows = append(rows, row)
				}
				writeRows(w, rows)
			case http.MethodPatch:
				id := eqParam(r, "id")
				row, ok := s.orders[id]
				if !ok {
					writeRows(w, []any{})
					return
				}
				for k, v := range body {
					row[k] = v
				}
				writeRows(w, []any{row})
			}
			return

		case table == "order_items":
			switch r.Method {
			case http.MethodPost:
				body["id"] = s.genID("it")
				s.items = append(s.items, body)
				writeRows(w, []any{body})
			case http.MethodGet:
				orderID := eqParam(r, "order_id")
				rows := []any{}
				for _, it := range s.items {
					if it["order_id"] == orderID {
						rows = append(rows, it)
					}
				}
				writeRows(w, rows)
			}
			return

		case table == "clients" && r.Method == http.MethodPost:
			body["id"] = s.genID("c")
			body["created_at"] = time.Now().Format(time.RFC3339)
			s.clients = append(s.clients, body)
			writeRows(w, []any{body})
			return

		case table == "transactions" && r.Method == http.MethodPost:
			body["id"] = s.genID("tx")
			s.transactions = append(s.transactions, body)
			writeRows(w, []any{body})
			return

		case table == "loyalty_entries" && r.Method == http.MethodPost:
			body["id"] = s.genID("le")
			s.loyalty = append(s.loyalty, body)
			writeRows(w, []any{body})
			return
		}

		writeRows(w, []any{})
	}
}

func newTestServer(t *testing.T, stub *postgrestStub) http.Handler {
	t.Helper()

	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	store := supabase.NewClient(
		srv.Client(),
		srv.URL,
		"anon",
		"service",
		resilience.NewCircuitBreaker("integration"),
		resilience.NewBulkhead(8),
		metrics,
		logger,
	)

	return handler.NewRouter(handler.Services{
		Salon:     service.NewSalonService(store, store, store, metrics, logger),
		Orders:    service.NewOrderService(store, store, store, metrics, logger),
		Board:     service.NewBoardService(store, logger),
		Intake:    service.NewIntakeService(store, logger),
		Inventory: service.NewInventoryService(store, metrics, logger),
		Finance:   service.NewFinanceService(store, metrics, logger),
		Loyalty:   service.NewLoyaltyService(store, store, metrics, logger),
		Reports: service.NewReportsService(
			store, store, store, store, store,
			cache.New[*domain.DashboardSummary](time.Minute),
			metrics, logger,
		),
		Auth:    service.NewAuthService(store, "integration-secret", 15*time.Minute, 24*time.Hour, logger),
		Users:   service.NewUserService(store, logger),
		Uploads: service.NewUploadService(supabase.NewStorage(store, "uploads"), logger),
	}, metrics, logger, "*")
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&buf).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// TestIntegration_LoginOpenAndCloseOrder walks the main flow: sign in,
// open a comanda, add lines, close it, and verify the close produced
// the income transaction and the loyalty credit.
func TestIntegration_LoginOpenAndCloseOrder(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("senha-forte"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	stub := newPostgrestStub(string(hash))
	router := newTestServer(t, stub)

	// --- Login ---
	rec := doJSON(t, router, http.MethodPost, "/v1/auth/login", "", domain.LoginRequest{
		Email: "admin@cuidese.app", Password: "senha-forte",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}
	var session domain.LoginResponse
	if err := json.NewDecoder(rec.Body).Decode(&session); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if session.AccessToken == "" {
		t.Fatal("expected an access token")
	}
	token := session.AccessToken

	// --- Open an order ---
	rec = doJSON(t, router, http.MethodPost, "/v1/orders", token, domain.OrderInput{
		ClientID: "c1", ProfessionalID: "p1", Discount: 20,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("open order: expected 201, got %d. Body: %s", rec.Code, rec.Body.String())
	}
	var opened domain.Order
	json.NewDecoder(rec.Body).Decode(&opened)
	if opened.ID == "" {
		t.Fatal("expected a server-assigned order id")
	}
	if opened.Status != domain.OrderStatusOpen {
		t.Fatalf("expected open status, got %q", opened.Status)
	}

	// --- Add a line ---
	rec = doJSON(t, router, http.MethodPost, "/v1/orders/"+opened.ID+"/items", token, domain.OrderItemInput{
		Kind: "service", RefID: "s1", Quantity: 1, UnitPrice: 120,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add item: expected 201, got %d. Body: %s", rec.Code, rec.Body.String())
	}

	// --- Close ---
	rec = doJSON(t, router, http.MethodPost, "/v1/orders/"+opened.ID+"/close", token, map[string]string{
		"payment_method": "pix",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("close order: expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}
	var closed domain.Order
	json.NewDecoder(rec.Body).Decode(&closed)
	if closed.Status != domain.OrderStatusClosed {
		t.Errorf("expected closed status, got %q", closed.Status)
	}

	// The close must have produced exactly one income transaction for the
	// discounted total and one loyalty credit.
	stub.mu.Lock()
	defer stub.mu.Unlock()
	if len(stub.transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(stub.transactions))
	}
	tx := stub.transactions[0]
	if tx["kind"] != "income" {
		t.Errorf("expected income transaction, got %v", tx["kind"])
	}
	if amount, _ := tx["amount"].(float64); amount != 100 {
		t.Errorf("expected amount 100 (120 - 20 discount), got %v", tx["amount"])
	}
	if len(stub.loyalty) != 1 {
		t.Fatalf("expected 1 loyalty entry, got %d", len(stub.loyalty))
	}
	if points, _ := stub.loyalty[0]["points"].(float64); points != 100 {
		t.Errorf("expected 100 loyalty points, got %v", stub.loyalty[0]["points"])
	}
}

// TestIntegration_ClosedOrderRejectsChanges verifies that a closed
// comanda cannot be closed again or receive new lines.
func TestIntegration_ClosedOrderRejectsChanges(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("senha-forte"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	stub := newPostgrestStub(string(hash))
	router := newTestServer(t, stub)

	rec := doJSON(t, router, http.MethodPost, "/v1/auth/login", "", domain.LoginRequest{
		Email: "admin@cuidese.app", Password: "senha-forte",
	})
	var session domain.LoginResponse
	json.NewDecoder(rec.Body).Decode(&session)
	token := session.AccessToken

	rec = doJSON(t, router, http.MethodPost, "/v1/orders", token, domain.OrderInput{
		ClientID: "c1", ProfessionalID: "p1",
	})
	var opened domain.Order
	json.NewDecoder(rec.Body).Decode(&opened)

	doJSON(t, router, http.MethodPost, "/v1/orders/"+opened.ID+"/items", token, domain.OrderItemInput{
		Kind: "service", RefID: "s1", Quantity: 1, UnitPrice: 50,
	})
	rec = doJSON(t, router, http.MethodPost, "/v1/orders/"+opened.ID+"/close", token, map[string]string{
		"payment_method": "cash",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("close order: expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/orders/"+opened.ID+"/close", token, map[string]string{
		"payment_method": "cash",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("re-close: expected 422, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/orders/"+opened.ID+"/items", token, domain.OrderItemInput{
		Kind: "product", RefID: "pr1", Quantity: 1, UnitPrice: 10,
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("add item after close: expected 422, got %d", rec.Code)
	}

	stub.mu.Lock()
	defer stub.mu.Unlock()
	if len(stub.transactions) != 1 {
		t.Errorf("expected the close to be charged once, got %d transactions", len(stub.transactions))
	}
}

// TestIntegration_ValidationErrorsCarryFieldMessages verifies the 400
// body exposes per-field messages the form layer can attach to inputs.
func TestIntegration_ValidationErrorsCarryFieldMessages(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("senha-forte"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	stub := newPostgrestStub(string(hash))
	router := newTestServer(t, stub)

	rec := doJSON(t, router, http.MethodPost, "/v1/auth/login", "", domain.LoginRequest{
		Email: "admin@cuidese.app", Password: "senha-forte",
	})
	var session domain.LoginResponse
	json.NewDecoder(rec.Body).Decode(&session)

	rec = doJSON(t, router, http.MethodPost, "/v1/clients", session.AccessToken, domain.ClientInput{
		Email: "ana@x.com",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d. Body: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if resp.Fields["name"] == "" {
		t.Errorf("expected a message for the name field, got %v", resp.Fields)
	}
}

// TestIntegration_ReceptionRoleCannotReachManagement verifies the
// admin shell: a non-admin session keeps its session endpoints but is
// turned away from every management route.
func TestIntegration_ReceptionRoleCannotReachManagement(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("senha-forte"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	stub := newPostgrestStub(string(hash))
	stub.user["role"] = "reception"
	stub.user["email"] = "recepcao@cuidese.app"
	router := newTestServer(t, stub)

	rec := doJSON(t, router, http.MethodPost, "/v1/auth/login", "", domain.LoginRequest{
		Email: "recepcao@cuidese.app", Password: "senha-forte",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}
	var session domain.LoginResponse
	json.NewDecoder(rec.Body).Decode(&session)
	token := session.AccessToken

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/v1/clients"},
		{http.MethodDelete, "/v1/transactions/tx-1"},
		{http.MethodDelete, "/v1/products/p1"},
		{http.MethodDelete, "/v1/professionals/pr1"},
	} {
		rec = doJSON(t, router, route.method, route.path, token, nil)
		if rec.Code != http.StatusForbidden {
			t.Errorf("%s %s as reception: expected 403, got %d", route.method, route.path, rec.Code)
		}
	}

	// Logging out is session upkeep, not management.
	rec = doJSON(t, router, http.MethodPost, "/v1/auth/logout", token, map[string]string{
		"refresh_token": session.RefreshToken,
	})
	if rec.Code == http.StatusForbidden {
		t.Errorf("logout as reception: expected the route to be reachable, got 403")
	}
}

// TestIntegration_BoardListsOpenOrders verifies the live board
// endpoint serves the open comandas from its view.
func TestIntegration_BoardListsOpenOrders(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("senha-forte"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	stub := newPostgrestStub(string(hash))
	router := newTestServer(t, stub)

	rec := doJSON(t, router, http.MethodPost, "/v1/auth/login", "", domain.LoginRequest{
		Email: "admin@cuidese.app", Password: "senha-forte",
	})
	var session domain.LoginResponse
	json.NewDecoder(rec.Body).Decode(&session)
	token := session.AccessToken

	rec = doJSON(t, router, http.MethodPost, "/v1/orders", token, domain.OrderInput{
		ClientID: "c1", ProfessionalID: "p1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("open order: expected 201, got %d. Body: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/orders/board", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("board: expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}
	var board struct {
		Orders []domain.Order `json:"orders"`
		State  string         `json:"state"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&board); err != nil {
		t.Fatalf("decode board: %v", err)
	}
	if board.State != "ready" {
		t.Errorf("board state = %q, want ready", board.State)
	}
	if len(board.Orders) != 1 {
		t.Errorf("board orders = %d, want 1", len(board.Orders))
	}
}

// TestIntegration_IntakeDraftFlow runs the front-desk intake flow end
// to end: open, fill, fail validation, fix, submit.
func TestIntegration_IntakeDraftFlow(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("senha-forte"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	stub := newPostgrestStub(string(hash))
	router := newTestServer(t, stub)

	rec := doJSON(t, router, http.MethodPost, "/v1/auth/login", "", domain.LoginRequest{
		Email: "admin@cuidese.app", Password: "senha-forte",
	})
	var session domain.LoginResponse
	json.NewDecoder(rec.Body).Decode(&session)
	token := session.AccessToken

	rec = doJSON(t, router, http.MethodPost, "/v1/intake/clients", token, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("open draft: expected 201, got %d. Body: %s", rec.Code, rec.Body.String())
	}
	var draft struct {
		DraftID string            `json:"draft_id"`
		Values  map[string]string `json:"values"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&draft); err != nil {
		t.Fatalf("decode draft: %v", err)
	}
	if draft.DraftID == "" {
		t.Fatal("expected a draft id")
	}

	// Submitting a blank draft reports the missing fields and keeps
	// the draft open.
	rec = doJSON(t, router, http.MethodPost, "/v1/intake/clients/"+draft.DraftID+"/submit", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank submit: expected 400, got %d. Body: %s", rec.Code, rec.Body.String())
	}
	var problem struct {
		Fields map[string]string `json:"fields"`
	}
	json.NewDecoder(rec.Body).Decode(&problem)
	if problem.Fields["name"] == "" || problem.Fields["phone"] == "" {
		t.Errorf("fields = %v, want messages for name and phone", problem.Fields)
	}

	rec = doJSON(t, router, http.MethodPut, "/v1/intake/clients/"+draft.DraftID, token, map[string]string{
		"name":  "Maria Souza",
		"phone": "11 99999-0000",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("set fields: expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/intake/clients/"+draft.DraftID+"/submit", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit: expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}

	stub.mu.Lock()
	defer stub.mu.Unlock()
	if len(stub.clients) != 1 {
		t.Fatalf("expected 1 created client, got %d", len(stub.clients))
	}
	if stub.clients[0]["name"] != "Maria Souza" {
		t.Errorf("created client = %v, want Maria Souza", stub.clients[0]["name"])
	}
}
