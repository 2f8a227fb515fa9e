package supabase

import (
	"context"
	"time"

	"github.com/cuide-se/cuidese-api/internal/domain"
	"github.com/cuide-se/cuidese-api/internal/port"
)

// ============================================================
// Users — staff accounts, credentials and refresh tokens.
// Single session source of truth: all auth data lives in these
// tables, there is no second identity provider.
// ============================================================

func (c *Client) ListUsers(ctx context.Context, opts port.ListOptions) ([]domain.User, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListUsers")
	defer span.End()

	q := NewQuery("users").
		Eq("role", opts.Status). // the users screen filters by role
		Ilike("full_name", opts.Search).
		OrderBy("full_name", false).
		Page(opts.Page, opts.PageSize)
	return selectRows[domain.User](ctx, c, q)
}

func (c *Client) GetUser(ctx context.Context, id string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetUser")
	defer span.End()

	return selectOne[domain.User](ctx, c, "users", "user", id)
}

func (c *Client) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetUserByEmail")
	defer span.End()

	q := NewQuery("users").Eq("email", email).Limit(1)
	rows, err := selectRows[domain.User](ctx, c, q)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil // absent user is not an error for login flows
	}
	return &rows[0], nil
}

func (c *Client) CreateUser(ctx context.Context, in *domain.UserInput, passwordHash string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateUser")
	defer span.End()

	active := true
	if in.Active != nil {
		active = *in.Active
	}
	user, err := insertRow[domain.User](ctx, c, "users", map[string]any{
		"email":     in.Email,
		"full_name": in.FullName,
		"role":      in.Role,
		"active":    active,
	})
	if err != nil {
		return nil, err
	}
	if err := c.SetCredential(ctx, user.ID, passwordHash); err != nil {
		return nil, err
	}
	return user, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, in *domain.UserInput) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateUser")
	defer span.End()

	data := map[string]any{
		"email":     in.Email,
		"full_name": in.FullName,
		"role":      in.Role,
	}
	if in.Active != nil {
		data["active"] = *in.Active
	}
	return updateRow[domain.User](ctx, c, "users", "user", id, data)
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteUser")
	defer span.End()

	return c.deleteByID(ctx, "users", "user", id)
}

func (c *Client) RecordLogin(ctx context.Context, id string, at time.Time) error {
	ctx, span := tracer.Start(ctx, "Supabase.RecordLogin")
	defer span.End()

	_, err := updateRow[domain.User](ctx, c, "users", "user", id, map[string]any{
		"last_login_at": at.Format(time.RFC3339),
	})
	return err
}

// --- Credentials ---

func (c *Client) GetCredential(ctx context.Context, userID string) (*domain.Credential, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetCredential")
	defer span.End()

	q := NewQuery("user_credentials").Eq("user_id", userID).Limit(1)
	rows, err := selectRows[domain.Credential](ctx, c, q)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil // absent credential is an auth decision, not a 404
	}
	return &rows[0], nil
}

func (c *Client) SetCredential(ctx context.Context, userID, passwordHash string) error {
	ctx, span := tracer.Start(ctx, "Supabase.SetCredential")
	defer span.End()

	// Upsert: delete then insert keeps one credential row per user.
	if _, err := c.doDelete(ctx, "user_credentials?user_id=eq."+userID); err != nil {
		return err
	}
	_, err := c.doPost(ctx, "user_credentials", map[string]any{
		"user_id":       userID,
		"password_hash": passwordHash,
	})
	return err
}

// --- Refresh tokens ---

func (c *Client) StoreRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	ctx, span := tracer.Start(ctx, "Supabase.StoreRefreshToken")
	defer span.End()

	_, err := c.doPost(ctx, "refresh_tokens", map[string]any{
		"user_id":    userID,
		"token_hash": tokenHash,
		"expires_at": expiresAt.Format(time.RFC3339),
		"revoked":    false,
	})
	return err
}

func (c *Client) GetRefreshToken(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetRefreshToken")
	defer span.End()

	q := NewQuery("refresh_tokens").
		Eq("token_hash", tokenHash).
		Eq("revoked", "false").
		Limit(1)
	rows, err := selectRows[domain.RefreshToken](ctx, c, q)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (c *Client) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	ctx, span := tracer.Start(ctx, "Supabase.RevokeRefreshToken")
	defer span.End()

	_, err := c.doPatch(ctx, "refresh_tokens?token_hash=eq."+tokenHash, map[string]any{
		"revoked": true,
	})
	return err
}

func (c *Client) RevokeAllRefreshTokens(ctx context.Context, userID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.RevokeAllRefreshTokens")
	defer span.End()

	_, err := c.doPatch(ctx, "refresh_tokens?user_id=eq."+userID, map[string]any{
		"revoked": true,
	})
	return err
}
