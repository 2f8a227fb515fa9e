package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cuide-se/cuidese-api/internal/domain"
	"github.com/cuide-se/cuidese-api/internal/port"
)

// ============================================================
// Orders (comandas) — CRUD with joined labels and item lines
// ============================================================

// orderRow mirrors the orders table plus the embedded label resources
// PostgREST returns for the declared joins.
type orderRow struct {
	domain.Order
	Client       *labelRow `json:"clients,omitempty"`
	Professional *labelRow `json:"professionals,omitempty"`
}

type labelRow struct {
	Name string `json:"name"`
}

func (r *orderRow) toDomain() domain.Order {
	o := r.Order
	if r.Client != nil {
		o.ClientName = r.Client.Name
	}
	if r.Professional != nil {
		o.ProfessionalName = r.Professional.Name
	}
	return o
}

const orderSelect = "*,clients(name),professionals(name)"

func (c *Client) ListOrders(ctx context.Context, opts port.ListOptions) ([]domain.Order, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListOrders")
	defer span.End()

	q := NewQuery("orders").
		Select(orderSelect).
		Eq("status", opts.Status).
		OrderBy("created_at", true).
		Page(opts.Page, opts.PageSize)
	rows, err := selectRows[orderRow](ctx, c, q)
	if err != nil {
		return nil, err
	}
	orders := make([]domain.Order, 0, len(rows))
	for i := range rows {
		orders = append(orders, rows[i].toDomain())
	}
	return orders, nil
}

func (c *Client) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetOrder")
	defer span.End()

	q := NewQuery("orders").Select(orderSelect).Eq("id", id).Limit(1)
	rows, err := selectRows[orderRow](ctx, c, q)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "order", ID: id}
	}
	order := rows[0].toDomain()

	items, err := c.ListOrderItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return &order, nil
}

func (c *Client) CreateOrder(ctx context.Context, in *domain.OrderInput) (*domain.Order, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateOrder")
	defer span.End()

	return insertRow[domain.Order](ctx, c, "orders", map[string]any{
		"client_id":       in.ClientID,
		"professional_id": in.ProfessionalID,
		"status":          domain.OrderStatusOpen,
		"discount":        in.Discount,
		"payment_method":  in.PaymentMethod,
	})
}

func (c *Client) UpdateOrder(ctx context.Context, id string, in *domain.OrderInput) (*domain.Order, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateOrder")
	defer span.End()

	return updateRow[domain.Order](ctx, c, "orders", "order", id, map[string]any{
		"client_id":       in.ClientID,
		"professional_id": in.ProfessionalID,
		"discount":        in.Discount,
		"payment_method":  in.PaymentMethod,
	})
}

func (c *Client) SetOrderStatus(ctx context.Context, id, status string, closedAt *time.Time) error {
	ctx, span := tracer.Start(ctx, "Supabase.SetOrderStatus")
	defer span.End()

	data := map[string]any{"status": status}
	if closedAt != nil {
		data["closed_at"] = closedAt.Format(time.RFC3339)
	}
	_, err := updateRow[domain.Order](ctx, c, "orders", "order", id, data)
	return err
}

func (c *Client) DeleteOrder(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteOrder")
	defer span.End()

	// Items first; the table has no cascade.
	if _, err := c.doDelete(ctx, fmt.Sprintf("order_items?order_id=eq.%s", id)); err != nil {
		return err
	}
	return c.deleteByID(ctx, "orders", "order", id)
}

// --- Items ---

func (c *Client) ListOrderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListOrderItems")
	defer span.End()

	q := NewQuery("order_items").Eq("order_id", orderID).OrderBy("created_at", false)
	return selectRows[domain.OrderItem](ctx, c, q)
}

func (c *Client) AddOrderItem(ctx context.Context, orderID string, in *domain.OrderItemInput) (*domain.OrderItem, error) {
	ctx, span := tracer.Start(ctx, "Supabase.AddOrderItem")
	defer span.End()

	return insertRow[domain.OrderItem](ctx, c, "order_items", map[string]any{
		"order_id":   orderID,
		"kind":       in.Kind,
		"ref_id":     in.RefID,
		"quantity":   in.Quantity,
		"unit_price": in.UnitPrice,
	})
}

func (c *Client) DeleteOrderItem(ctx context.Context, orderID, itemID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteOrderItem")
	defer span.End()

	body, err := c.doDelete(ctx, fmt.Sprintf("order_items?id=eq.%s&order_id=eq.%s", itemID, orderID))
	if err != nil {
		return err
	}
	var rows []json.RawMessage
	if len(body) > 0 {
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("decode delete response: %w", err)
		}
	}
	if len(rows) == 0 {
		return &domain.ErrNotFound{Resource: "order item", ID: itemID}
	}
	return nil
}
