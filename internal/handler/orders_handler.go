package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/cuide-se/cuidese-api/internal/domain"
	"github.com/cuide-se/cuidese-api/internal/service"
)

// ============================================================
// Orders (comandas)
// ============================================================

func listOrdersHandler(svc *service.OrderService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/orders")
		defer span.End()

		orders, err := svc.ListOrders(ctx, parseListOptions(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if orders == nil {
			orders = []domain.Order{}
		}
		writeJSON(w, http.StatusOK, orders)
	}
}

// orderView mirrors the order plus its derived total, so every reader
// sees the same figure the close step charged.
type orderView struct {
	domain.Order
	Total float64 `json:"total"`
}

func getOrderHandler(svc *service.OrderService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/orders/{orderId}")
		defer span.End()

		orderID := chi.URLParam(r, "orderId")
		span.SetAttributes(attribute.String("order.id", orderID))

		order, err := svc.GetOrder(ctx, orderID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, orderView{Order: *order, Total: order.Total()})
	}
}

func openOrderHandler(svc *service.OrderService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/orders")
		defer span.End()

		var in domain.OrderInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		order, err := svc.OpenOrder(ctx, &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, order)
	}
}

func updateOrderHandler(svc *service.OrderService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/orders/{orderId}")
		defer span.End()

		var in domain.OrderInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		order, err := svc.UpdateOrder(ctx, chi.URLParam(r, "orderId"), &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, order)
	}
}

func closeOrderHandler(svc *service.OrderService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/orders/{orderId}/close")
		defer span.End()

		var req struct {
			PaymentMethod string `json:"payment_method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		order, err := svc.CloseOrder(ctx, chi.URLParam(r, "orderId"), req.PaymentMethod)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, orderView{Order: *order, Total: order.Total()})
	}
}

func cancelOrderHandler(svc *service.OrderService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/orders/{orderId}/cancel")
		defer span.End()

		order, err := svc.CancelOrder(ctx, chi.URLParam(r, "orderId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, order)
	}
}

func deleteOrderHandler(svc *service.OrderService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/orders/{orderId}")
		defer span.End()

		if err := svc.DeleteOrder(ctx, chi.URLParam(r, "orderId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

// ============================================================
// Order items
// ============================================================

func addOrderItemHandler(svc *service.OrderService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/orders/{orderId}/items")
		defer span.End()

		var in domain.OrderItemInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		item, err := svc.AddItem(ctx, chi.URLParam(r, "orderId"), &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, item)
	}
}

func removeOrderItemHandler(svc *service.OrderService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/orders/{orderId}/items/{itemId}")
		defer span.End()

		err := svc.RemoveItem(ctx, chi.URLParam(r, "orderId"), chi.URLParam(r, "itemId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

// boardResponse pairs the rows with the view state, so the front desk
// can render "loading" or a stale-data warning without losing the last
// good rows.
type boardResponse struct {
	Orders []domain.Order `json:"orders"`
	State  string         `json:"state"`
	Error  string         `json:"error,omitempty"`
}

func orderBoardHandler(svc *service.BoardService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/orders/board")
		defer span.End()

		orders, state, err := svc.Snapshot(ctx)
		if err != nil && len(orders) == 0 {
			handleServiceError(w, err, logger)
			return
		}

		resp := boardResponse{Orders: orders, State: state.String()}
		if orders == nil {
			resp.Orders = []domain.Order{}
		}
		if err != nil {
			resp.Error = err.Error()
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
