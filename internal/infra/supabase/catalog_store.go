package supabase

import (
	"context"

	"github.com/cuide-se/cuidese-api/internal/domain"
	"github.com/cuide-se/cuidese-api/internal/port"
)

// ============================================================
// Catalog — services and service packages
// ============================================================

func (c *Client) ListServices(ctx context.Context, opts port.ListOptions) ([]domain.Service, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListServices")
	defer span.End()

	q := NewQuery("services").
		Eq("active", activeFilter(opts.Status)).
		Ilike("name", opts.Search).
		OrderBy("name", false).
		Page(opts.Page, opts.PageSize)
	return selectRows[domain.Service](ctx, c, q)
}

func (c *Client) GetService(ctx context.Context, id string) (*domain.Service, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetService")
	defer span.End()

	return selectOne[domain.Service](ctx, c, "services", "service", id)
}

func (c *Client) CreateService(ctx context.Context, in *domain.ServiceInput) (*domain.Service, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateService")
	defer span.End()

	return insertRow[domain.Service](ctx, c, "services", servicePayload(in))
}

func (c *Client) UpdateService(ctx context.Context, id string, in *domain.ServiceInput) (*domain.Service, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateService")
	defer span.End()

	return updateRow[domain.Service](ctx, c, "services", "service", id, servicePayload(in))
}

func (c *Client) DeleteService(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteService")
	defer span.End()

	return c.deleteByID(ctx, "services", "service", id)
}

// activeFilter maps the screens' status slot (active/inactive/all) onto
// the boolean active column.
func activeFilter(status string) string {
	switch status {
	case "active":
		return "true"
	case "inactive":
		return "false"
	default:
		return All
	}
}

func servicePayload(in *domain.ServiceInput) map[string]any {
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	return map[string]any{
		"name":             in.Name,
		"category":         in.Category,
		"duration_minutes": in.DurationMinutes,
		"price":            in.Price,
		"active":           active,
	}
}

// --- Packages ---

func (c *Client) ListPackages(ctx context.Context, opts port.ListOptions) ([]domain.ServicePackage, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListPackages")
	defer span.End()

	q := NewQuery("service_packages").
		Ilike("name", opts.Search).
		OrderBy("name", false).
		Page(opts.Page, opts.PageSize)
	return selectRows[domain.ServicePackage](ctx, c, q)
}

func (c *Client) GetPackage(ctx context.Context, id string) (*domain.ServicePackage, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetPackage")
	defer span.End()

	return selectOne[domain.ServicePackage](ctx, c, "service_packages", "package", id)
}

func (c *Client) CreatePackage(ctx context.Context, in *domain.ServicePackageInput) (*domain.ServicePackage, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreatePackage")
	defer span.End()

	return insertRow[domain.ServicePackage](ctx, c, "service_packages", packagePayload(in))
}

func (c *Client) UpdatePackage(ctx context.Context, id string, in *domain.ServicePackageInput) (*domain.ServicePackage, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdatePackage")
	defer span.End()

	return updateRow[domain.ServicePackage](ctx, c, "service_packages", "package", id, packagePayload(in))
}

func (c *Client) DeletePackage(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeletePackage")
	defer span.End()

	return c.deleteByID(ctx, "service_packages", "package", id)
}

func packagePayload(in *domain.ServicePackageInput) map[string]any {
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	return map[string]any{
		"name":          in.Name,
		"service_ids":   in.ServiceIDs,
		"session_count": in.SessionCount,
		"price":         in.Price,
		"validity_days": in.ValidityDays,
		"active":        active,
	}
}
