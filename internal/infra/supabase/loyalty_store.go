package supabase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cuide-se/cuidese-api/internal/domain"
	"github.com/cuide-se/cuidese-api/internal/port"
)

// ============================================================
// Loyalty — points, referrals (calcular_recompensas RPC),
// promotions and notifications
// ============================================================

func (c *Client) ListLoyaltyEntries(ctx context.Context, clientID string) ([]domain.LoyaltyEntry, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListLoyaltyEntries")
	defer span.End()

	q := NewQuery("loyalty_entries").Eq("client_id", clientID).OrderBy("created_at", true)
	return selectRows[domain.LoyaltyEntry](ctx, c, q)
}

func (c *Client) AddLoyaltyEntry(ctx context.Context, entry *domain.LoyaltyEntry) (*domain.LoyaltyEntry, error) {
	ctx, span := tracer.Start(ctx, "Supabase.AddLoyaltyEntry")
	defer span.End()

	return insertRow[domain.LoyaltyEntry](ctx, c, "loyalty_entries", map[string]any{
		"client_id": entry.ClientID,
		"points":    entry.Points,
		"reason":    entry.Reason,
		"order_id":  entry.OrderID,
	})
}

// GetLoyaltyBalance sums the client's entries. Recomputed from the rows
// on every call, not persisted.
func (c *Client) GetLoyaltyBalance(ctx context.Context, clientID string) (*domain.LoyaltyBalance, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetLoyaltyBalance")
	defer span.End()

	entries, err := c.ListLoyaltyEntries(ctx, clientID)
	if err != nil {
		return nil, err
	}
	bal := &domain.LoyaltyBalance{ClientID: clientID}
	for _, e := range entries {
		bal.Points += e.Points
	}
	return bal, nil
}

// --- Referrals ---

func (c *Client) ListReferrals(ctx context.Context, opts port.ListOptions) ([]domain.Referral, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListReferrals")
	defer span.End()

	q := NewQuery("referrals").
		Eq("status", opts.Status).
		OrderBy("created_at", true).
		Page(opts.Page, opts.PageSize)
	return selectRows[domain.Referral](ctx, c, q)
}

func (c *Client) CreateReferral(ctx context.Context, ref *domain.Referral) (*domain.Referral, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateReferral")
	defer span.End()

	return insertRow[domain.Referral](ctx, c, "referrals", map[string]any{
		"referrer_client_id": ref.ReferrerClientID,
		"referred_client_id": ref.ReferredClientID,
		"status":             "pending",
	})
}

// ComputeReferralRewards invokes the calcular_recompensas database
// function and returns the points awarded.
func (c *Client) ComputeReferralRewards(ctx context.Context, referrerClientID string) (int, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ComputeReferralRewards")
	defer span.End()

	body, err := c.callRPC(ctx, "calcular_recompensas", map[string]any{
		"p_client_id": referrerClientID,
	})
	if err != nil {
		return 0, err
	}

	var points int
	if err := json.Unmarshal(body, &points); err != nil {
		return 0, fmt.Errorf("decode calcular_recompensas result: %w", err)
	}
	return points, nil
}

// --- Promotions ---

func (c *Client) ListPromotions(ctx context.Context, opts port.ListOptions) ([]domain.Promotion, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListPromotions")
	defer span.End()

	q := NewQuery("promotions").
		Eq("active", activeFilter(opts.Status)).
		OrderBy("start_date", true).
		Page(opts.Page, opts.PageSize)
	return selectRows[domain.Promotion](ctx, c, q)
}

func (c *Client) CreatePromotion(ctx context.Context, in *domain.PromotionInput) (*domain.Promotion, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreatePromotion")
	defer span.End()

	return insertRow[domain.Promotion](ctx, c, "promotions", promotionPayload(in))
}

func (c *Client) UpdatePromotion(ctx context.Context, id string, in *domain.PromotionInput) (*domain.Promotion, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdatePromotion")
	defer span.End()

	return updateRow[domain.Promotion](ctx, c, "promotions", "promotion", id, promotionPayload(in))
}

func (c *Client) DeletePromotion(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeletePromotion")
	defer span.End()

	return c.deleteByID(ctx, "promotions", "promotion", id)
}

func promotionPayload(in *domain.PromotionInput) map[string]any {
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	return map[string]any{
		"title":            in.Title,
		"description":      in.Description,
		"discount_percent": in.DiscountPercent,
		"start_date":       in.StartDate,
		"end_date":         in.EndDate,
		"active":           active,
	}
}

// --- Notifications ---

func (c *Client) ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListNotifications")
	defer span.End()

	q := NewQuery("notifications").Eq("user_id", userID).OrderBy("created_at", true)
	if unreadOnly {
		q.Eq("read", "false")
	}
	return selectRows[domain.Notification](ctx, c, q)
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.MarkNotificationRead")
	defer span.End()

	_, err := updateRow[domain.Notification](ctx, c, "notifications", "notification", id, map[string]any{
		"read": true,
	})
	return err
}
