package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/cuide-se/cuidese-api/internal/domain"
	"github.com/cuide-se/cuidese-api/internal/service"
)

// ============================================================
// Products & stock
// ============================================================

func listProductsHandler(svc *service.InventoryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/products")
		defer span.End()

		products, err := svc.ListProducts(ctx, parseListOptions(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if products == nil {
			products = []domain.Product{}
		}
		writeJSON(w, http.StatusOK, products)
	}
}

func listLowStockHandler(svc *service.InventoryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/products/low-stock")
		defer span.End()

		products, err := svc.ListLowStock(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, products)
	}
}

func getProductHandler(svc *service.InventoryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/products/{productId}")
		defer span.End()

		product, err := svc.GetProduct(ctx, chi.URLParam(r, "productId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, product)
	}
}

func createProductHandler(svc *service.InventoryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/products")
		defer span.End()

		var in domain.ProductInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		product, err := svc.CreateProduct(ctx, &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, product)
	}
}

func updateProductHandler(svc *service.InventoryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/products/{productId}")
		defer span.End()

		var in domain.ProductInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		product, err := svc.UpdateProduct(ctx, chi.URLParam(r, "productId"), &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, product)
	}
}

func deleteProductHandler(svc *service.InventoryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/products/{productId}")
		defer span.End()

		if err := svc.DeleteProduct(ctx, chi.URLParam(r, "productId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

func listStockMovementsHandler(svc *service.InventoryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/products/{productId}/movements")
		defer span.End()

		movements, err := svc.ListStockMovements(ctx, chi.URLParam(r, "productId"), parseListOptions(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if movements == nil {
			movements = []domain.StockMovement{}
		}
		writeJSON(w, http.StatusOK, movements)
	}
}

func adjustStockHandler(svc *service.InventoryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/products/{productId}/movements")
		defer span.End()

		var adj domain.StockAdjustment
		if err := json.NewDecoder(r.Body).Decode(&adj); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		adj.ProductID = chi.URLParam(r, "productId")

		product, err := svc.AdjustStock(ctx, &adj)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, product)
	}
}
