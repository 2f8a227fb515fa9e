package supabase

import (
	"context"

	"github.com/cuide-se/cuidese-api/internal/domain"
	"github.com/cuide-se/cuidese-api/internal/port"
)

// ============================================================
// Professionals — CRUD via PostgREST
// ============================================================

func (c *Client) ListProfessionals(ctx context.Context, opts port.ListOptions) ([]domain.Professional, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListProfessionals")
	defer span.End()

	q := NewQuery("professionals").
		Eq("status", opts.Status).
		Ilike("name", opts.Search).
		OrderBy("name", false).
		Page(opts.Page, opts.PageSize)
	return selectRows[domain.Professional](ctx, c, q)
}

func (c *Client) GetProfessional(ctx context.Context, id string) (*domain.Professional, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetProfessional")
	defer span.End()

	return selectOne[domain.Professional](ctx, c, "professionals", "professional", id)
}

func (c *Client) CreateProfessional(ctx context.Context, in *domain.ProfessionalInput) (*domain.Professional, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateProfessional")
	defer span.End()

	return insertRow[domain.Professional](ctx, c, "professionals", professionalPayload(in))
}

func (c *Client) UpdateProfessional(ctx context.Context, id string, in *domain.ProfessionalInput) (*domain.Professional, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateProfessional")
	defer span.End()

	return updateRow[domain.Professional](ctx, c, "professionals", "professional", id, professionalPayload(in))
}

func (c *Client) DeleteProfessional(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteProfessional")
	defer span.End()

	return c.deleteByID(ctx, "professionals", "professional", id)
}

func professionalPayload(in *domain.ProfessionalInput) map[string]any {
	status := in.Status
	if status == "" {
		status = "active"
	}
	return map[string]any{
		"name":            in.Name,
		"specialty":       in.Specialty,
		"email":           in.Email,
		"phone":           in.Phone,
		"commission_rate": in.CommissionRate,
		"status":          status,
	}
}
