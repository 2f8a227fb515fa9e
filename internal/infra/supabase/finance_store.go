package supabase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cuide-se/cuidese-api/internal/domain"
	"github.com/cuide-se/cuidese-api/internal/port"
)

// ============================================================
// Finance — transactions and calcular_saldo_atual RPC
// ============================================================

func (c *Client) ListTransactions(ctx context.Context, f domain.TransactionFilter, opts port.ListOptions) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListTransactions")
	defer span.End()

	q := NewQuery("transactions").
		Eq("kind", f.Kind).
		Eq("category", f.Category).
		Range("date", f.DateFrom, f.DateTo).
		OrderBy("date", true).
		Page(opts.Page, opts.PageSize)
	return selectRows[domain.Transaction](ctx, c, q)
}

func (c *Client) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetTransaction")
	defer span.End()

	return selectOne[domain.Transaction](ctx, c, "transactions", "transaction", id)
}

func (c *Client) CreateTransaction(ctx context.Context, in *domain.TransactionInput) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateTransaction")
	defer span.End()

	return insertRow[domain.Transaction](ctx, c, "transactions", transactionPayload(in))
}

func (c *Client) UpdateTransaction(ctx context.Context, id string, in *domain.TransactionInput) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateTransaction")
	defer span.End()

	return updateRow[domain.Transaction](ctx, c, "transactions", "transaction", id, transactionPayload(in))
}

func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteTransaction")
	defer span.End()

	return c.deleteByID(ctx, "transactions", "transaction", id)
}

func transactionPayload(in *domain.TransactionInput) map[string]any {
	return map[string]any{
		"kind":        in.Kind,
		"category":    in.Category,
		"description": in.Description,
		"amount":      in.Amount,
		"method":      in.Method,
		"date":        in.Date,
		"order_id":    in.OrderID,
	}
}

// GetBalance returns the current balance as computed by the
// calcular_saldo_atual database function.
func (c *Client) GetBalance(ctx context.Context) (*domain.Balance, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetBalance")
	defer span.End()

	body, err := c.callRPC(ctx, "calcular_saldo_atual", map[string]any{})
	if err != nil {
		return nil, err
	}

	var bal domain.Balance
	if err := json.Unmarshal(body, &bal); err != nil {
		return nil, fmt.Errorf("decode calcular_saldo_atual result: %w", err)
	}
	return &bal, nil
}
