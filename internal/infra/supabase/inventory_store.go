package supabase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cuide-se/cuidese-api/internal/domain"
	"github.com/cuide-se/cuidese-api/internal/port"
)

// ============================================================
// Inventory — products, stock movements, update_product_stock RPC
// ============================================================

func (c *Client) ListProducts(ctx context.Context, opts port.ListOptions) ([]domain.Product, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListProducts")
	defer span.End()

	q := NewQuery("products").
		Eq("active", activeFilter(opts.Status)).
		Ilike("name", opts.Search).
		OrderBy("name", false).
		Page(opts.Page, opts.PageSize)
	return selectRows[domain.Product](ctx, c, q)
}

func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetProduct")
	defer span.End()

	return selectOne[domain.Product](ctx, c, "products", "product", id)
}

func (c *Client) CreateProduct(ctx context.Context, in *domain.ProductInput) (*domain.Product, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateProduct")
	defer span.End()

	data := productPayload(in)
	data["stock"] = 0 // stock only moves through movements
	return insertRow[domain.Product](ctx, c, "products", data)
}

func (c *Client) UpdateProduct(ctx context.Context, id string, in *domain.ProductInput) (*domain.Product, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateProduct")
	defer span.End()

	return updateRow[domain.Product](ctx, c, "products", "product", id, productPayload(in))
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteProduct")
	defer span.End()

	return c.deleteByID(ctx, "products", "product", id)
}

func productPayload(in *domain.ProductInput) map[string]any {
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	return map[string]any{
		"name":       in.Name,
		"sku":        in.SKU,
		"category":   in.Category,
		"min_stock":  in.MinStock,
		"cost_price": in.CostPrice,
		"sale_price": in.SalePrice,
		"active":     active,
	}
}

// --- Stock movements ---

func (c *Client) ListStockMovements(ctx context.Context, productID string, opts port.ListOptions) ([]domain.StockMovement, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListStockMovements")
	defer span.End()

	q := NewQuery("stock_movements").
		Eq("product_id", productID).
		OrderBy("created_at", true).
		Page(opts.Page, opts.PageSize)
	return selectRows[domain.StockMovement](ctx, c, q)
}

// AdjustStock applies a stock delta through the update_product_stock
// database function and records the movement row, then re-fetches the
// product so the caller sees the confirmed balance.
func (c *Client) AdjustStock(ctx context.Context, adj *domain.StockAdjustment) (*domain.Product, error) {
	ctx, span := tracer.Start(ctx, "Supabase.AdjustStock")
	defer span.End()

	body, err := c.callRPC(ctx, "update_product_stock", map[string]any{
		"p_product_id": adj.ProductID,
		"p_delta":      adj.Delta,
	})
	if err != nil {
		return nil, err
	}

	// The function returns the new stock level, or -1 when the movement
	// would go negative.
	var newStock int
	if err := json.Unmarshal(body, &newStock); err != nil {
		return nil, fmt.Errorf("decode update_product_stock result: %w", err)
	}
	if newStock < 0 {
		product, getErr := c.GetProduct(ctx, adj.ProductID)
		available := 0
		if getErr == nil {
			available = product.Stock
		}
		return nil, &domain.ErrInsufficientStock{
			ProductID: adj.ProductID,
			Available: available,
			Requested: -adj.Delta,
		}
	}

	if _, err := insertRow[domain.StockMovement](ctx, c, "stock_movements", map[string]any{
		"product_id": adj.ProductID,
		"delta":      adj.Delta,
		"reason":     adj.Reason,
	}); err != nil {
		return nil, err
	}

	return c.GetProduct(ctx, adj.ProductID)
}
