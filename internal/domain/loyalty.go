package domain

import "time"

// ============================================================
// Loyalty points & referrals
// ============================================================

// LoyaltyEntry is one points movement on a client's loyalty balance.
type LoyaltyEntry struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"client_id"`
	Points    int       `json:"points"` // positive = earned, negative = redeemed
	Reason    string    `json:"reason"`
	OrderID   string    `json:"order_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// LoyaltyBalance aggregates a client's loyalty standing.
type LoyaltyBalance struct {
	ClientID string `json:"client_id"`
	Points   int    `json:"points"`
}

// Referral links a referring client to a referred one. Rewards are
// computed by the calcular_recompensas database function.
type Referral struct {
	ID               string    `json:"id"`
	ReferrerClientID string    `json:"referrer_client_id"`
	ReferredClientID string    `json:"referred_client_id"`
	RewardPoints     int       `json:"reward_points"`
	Status           string    `json:"status"` // pending | rewarded
	CreatedAt        time.Time `json:"created_at"`
}

// ============================================================
// Promotions & notifications
// ============================================================

// Promotion is a time-bounded discount campaign.
type Promotion struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	DiscountPercent float64   `json:"discount_percent"`
	StartDate       string    `json:"start_date"`
	EndDate         string    `json:"end_date"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PromotionInput holds the editable fields of a promotion.
type PromotionInput struct {
	Title           string  `json:"title"`
	Description     string  `json:"description,omitempty"`
	DiscountPercent float64 `json:"discount_percent"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	Active          *bool   `json:"active,omitempty"`
}

// Notification is an in-app message for a user.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
