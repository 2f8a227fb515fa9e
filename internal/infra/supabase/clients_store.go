package supabase

import (
	"context"

	"github.com/cuide-se/cuidese-api/internal/domain"
	"github.com/cuide-se/cuidese-api/internal/port"
)

// ============================================================
// Clients — CRUD via PostgREST
// ============================================================

func (c *Client) ListClients(ctx context.Context, opts port.ListOptions) ([]domain.Client, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListClients")
	defer span.End()

	q := NewQuery("clients").
		Eq("status", opts.Status).
		Ilike("name", opts.Search).
		OrderBy("name", false).
		Page(opts.Page, opts.PageSize)
	return selectRows[domain.Client](ctx, c, q)
}

func (c *Client) GetClient(ctx context.Context, id string) (*domain.Client, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetClient")
	defer span.End()

	return selectOne[domain.Client](ctx, c, "clients", "client", id)
}

func (c *Client) CreateClient(ctx context.Context, in *domain.ClientInput) (*domain.Client, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateClient")
	defer span.End()

	return insertRow[domain.Client](ctx, c, "clients", clientPayload(in))
}

func (c *Client) UpdateClient(ctx context.Context, id string, in *domain.ClientInput) (*domain.Client, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateClient")
	defer span.End()

	return updateRow[domain.Client](ctx, c, "clients", "client", id, clientPayload(in))
}

func (c *Client) DeleteClient(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteClient")
	defer span.End()

	return c.deleteByID(ctx, "clients", "client", id)
}

// clientPayload maps the editable fields to table columns. Full-field
// overwrite: every editable column is always written.
func clientPayload(in *domain.ClientInput) map[string]any {
	status := in.Status
	if status == "" {
		status = "active"
	}
	return map[string]any{
		"name":       in.Name,
		"email":      in.Email,
		"phone":      in.Phone,
		"birth_date": in.BirthDate,
		"notes":      in.Notes,
		"status":     status,
	}
}
