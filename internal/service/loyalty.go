package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/cuide-se/cuidese-api/internal/domain"
	"github.com/cuide-se/cuidese-api/internal/infra/observability"
	"github.com/cuide-se/cuidese-api/internal/port"
)

var loyaltyTracer = otel.Tracer("service/loyalty")

// LoyaltyService manages points, referrals, promotions and notifications.
type LoyaltyService struct {
	store   port.LoyaltyStore
	clients port.ClientStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewLoyaltyService creates a new loyalty service.
func NewLoyaltyService(store port.LoyaltyStore, clients port.ClientStore, metrics *observability.Metrics, logger *zap.Logger) *LoyaltyService {
	return &LoyaltyService{store: store, clients: clients, metrics: metrics, logger: logger}
}

// ============================================================
// Points
// ============================================================

func (s *LoyaltyService) ListEntries(ctx context.Context, clientID string) ([]domain.LoyaltyEntry, error) {
	ctx, span := loyaltyTracer.Start(ctx, "LoyaltyService.ListEntries")
	defer span.End()

	return s.store.ListLoyaltyEntries(ctx, clientID)
}

func (s *LoyaltyService) GetBalance(ctx context.Context, clientID string) (*domain.LoyaltyBalance, error) {
	ctx, span := loyaltyTracer.Start(ctx, "LoyaltyService.GetBalance")
	defer span.End()
	span.SetAttributes(attribute.String("client.id", clientID))

	return s.store.GetLoyaltyBalance(ctx, clientID)
}

// RedeemPoints debits points from a client's balance. The balance can
// never go negative.
func (s *LoyaltyService) RedeemPoints(ctx context.Context, clientID string, points int, reason string) (*domain.LoyaltyEntry, error) {
	ctx, span := loyaltyTracer.Start(ctx, "LoyaltyService.RedeemPoints")
	defer span.End()

	if points <= 0 {
		return nil, domain.NewFieldError("points", "must be positive")
	}

	balance, err := s.store.GetLoyaltyBalance(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if balance.Points < points {
		return nil, &domain.ErrValidation{
			Fields:  map[string]string{"points": "insufficient balance"},
			Message: "insufficient loyalty balance",
		}
	}

	entry, err := s.store.AddLoyaltyEntry(ctx, &domain.LoyaltyEntry{
		ClientID: clientID,
		Points:   -points,
		Reason:   reason,
	})
	if err != nil {
		s.logger.Error("failed to redeem points", zap.String("client_id", clientID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("points redeemed",
		zap.String("client_id", clientID),
		zap.Int("points", points),
	)
	return entry, nil
}

// ============================================================
// Referrals
// ============================================================

func (s *LoyaltyService) ListReferrals(ctx context.Context, opts port.ListOptions) ([]domain.Referral, error) {
	ctx, span := loyaltyTracer.Start(ctx, "LoyaltyService.ListReferrals")
	defer span.End()

	return s.store.ListReferrals(ctx, opts)
}

func (s *LoyaltyService) CreateReferral(ctx context.Context, ref *domain.Referral) (*domain.Referral, error) {
	ctx, span := loyaltyTracer.Start(ctx, "LoyaltyService.CreateReferral")
	defer span.End()

	fields := map[string]string{}
	if ref.ReferrerClientID == "" {
		fields["referrer_client_id"] = "required"
	}
	if ref.ReferredClientID == "" {
		fields["referred_client_id"] = "required"
	}
	if ref.ReferrerClientID != "" && ref.ReferrerClientID == ref.ReferredClientID {
		fields["referred_client_id"] = "cannot refer yourself"
	}
	if len(fields) > 0 {
		return nil, &domain.ErrValidation{Fields: fields}
	}

	// Both ends must exist before the link is recorded.
	if _, err := s.clients.GetClient(ctx, ref.ReferrerClientID); err != nil {
		return nil, err
	}
	if _, err := s.clients.GetClient(ctx, ref.ReferredClientID); err != nil {
		return nil, err
	}

	return s.store.CreateReferral(ctx, ref)
}

// ComputeRewards runs the calcular_recompensas database function for a
// referrer and returns the points awarded.
func (s *LoyaltyService) ComputeRewards(ctx context.Context, referrerClientID string) (int, error) {
	ctx, span := loyaltyTracer.Start(ctx, "LoyaltyService.ComputeRewards")
	defer span.End()
	span.SetAttributes(attribute.String("client.id", referrerClientID))

	points, err := s.store.ComputeReferralRewards(ctx, referrerClientID)
	if err != nil {
		s.logger.Error("failed to compute referral rewards",
			zap.String("client_id", referrerClientID),
			zap.Error(err),
		)
		return 0, err
	}
	s.logger.Info("referral rewards computed",
		zap.String("client_id", referrerClientID),
		zap.Int("points", points),
	)
	return points, nil
}

// ============================================================
// Promotions
// ============================================================

func (s *LoyaltyService) ListPromotions(ctx context.Context, opts port.ListOptions) ([]domain.Promotion, error) {
	ctx, span := loyaltyTracer.Start(ctx, "LoyaltyService.ListPromotions")
	defer span.End()

	return s.store.ListPromotions(ctx, opts)
}

func (s *LoyaltyService) CreatePromotion(ctx context.Context, in *domain.PromotionInput) (*domain.Promotion, error) {
	ctx, span := loyaltyTracer.Start(ctx, "LoyaltyService.CreatePromotion")
	defer span.End()

	if err := validatePromotion(in); err != nil {
		return nil, err
	}
	return s.store.CreatePromotion(ctx, in)
}

func (s *LoyaltyService) UpdatePromotion(ctx context.Context, id string, in *domain.PromotionInput) (*domain.Promotion, error) {
	ctx, span := loyaltyTracer.Start(ctx, "LoyaltyService.UpdatePromotion")
	defer span.End()

	if err := validatePromotion(in); err != nil {
		return nil, err
	}
	return s.store.UpdatePromotion(ctx, id, in)
}

func (s *LoyaltyService) DeletePromotion(ctx context.Context, id string) error {
	ctx, span := loyaltyTracer.Start(ctx, "LoyaltyService.DeletePromotion")
	defer span.End()

	return s.store.DeletePromotion(ctx, id)
}

func validatePromotion(in *domain.PromotionInput) error {
	fields := map[string]string{}
	if in.Title == "" {
		fields["title"] = "required"
	}
	if in.DiscountPercent <= 0 || in.DiscountPercent > 100 {
		fields["discount_percent"] = "must be between 0 and 100"
	}
	if in.StartDate == "" {
		fields["start_date"] = "required"
	}
	if in.EndDate == "" {
		fields["end_date"] = "required"
	}
	if in.StartDate != "" && in.EndDate != "" && in.EndDate < in.StartDate {
		fields["end_date"] = "must not precede start_date"
	}
	if len(fields) > 0 {
		return &domain.ErrValidation{Fields: fields}
	}
	return nil
}

// ============================================================
// Notifications
// ============================================================

func (s *LoyaltyService) ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error) {
	ctx, span := loyaltyTracer.Start(ctx, "LoyaltyService.ListNotifications")
	defer span.End()

	return s.store.ListNotifications(ctx, userID, unreadOnly)
}

func (s *LoyaltyService) MarkNotificationRead(ctx context.Context, id string) error {
	ctx, span := loyaltyTracer.Start(ctx, "LoyaltyService.MarkNotificationRead")
	defer span.End()

	return s.store.MarkNotificationRead(ctx, id)
}
