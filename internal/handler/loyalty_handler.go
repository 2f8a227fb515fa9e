package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/cuide-se/cuidese-api/internal/domain"
	"github.com/cuide-se/cuidese-api/internal/service"
)

// ============================================================
// Loyalty points
// ============================================================

func listLoyaltyEntriesHandler(svc *service.LoyaltyService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/clients/{clientId}/loyalty")
		defer span.End()

		entries, err := svc.ListEntries(ctx, chi.URLParam(r, "clientId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if entries == nil {
			entries = []domain.LoyaltyEntry{}
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

func loyaltyBalanceHandler(svc *service.LoyaltyService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/clients/{clientId}/loyalty/balance")
		defer span.End()

		balance, err := svc.GetBalance(ctx, chi.URLParam(r, "clientId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, balance)
	}
}

func redeemPointsHandler(svc *service.LoyaltyService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/clients/{clientId}/loyalty/redeem")
		defer span.End()

		var req struct {
			Points int    `json:"points"`
			Reason string `json:"reason"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Reason == "" {
			req.Reason = "resgate"
		}

		entry, err := svc.RedeemPoints(ctx, chi.URLParam(r, "clientId"), req.Points, req.Reason)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, entry)
	}
}

// ============================================================
// Referrals
// ============================================================

func listReferralsHandler(svc *service.LoyaltyService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/referrals")
		defer span.End()

		referrals, err := svc.ListReferrals(ctx, parseListOptions(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if referrals == nil {
			referrals = []domain.Referral{}
		}
		writeJSON(w, http.StatusOK, referrals)
	}
}

func createReferralHandler(svc *service.LoyaltyService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/referrals")
		defer span.End()

		var ref domain.Referral
		if err := json.NewDecoder(r.Body).Decode(&ref); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		created, err := svc.CreateReferral(ctx, &ref)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func computeRewardsHandler(svc *service.LoyaltyService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/referrals/{clientId}/rewards")
		defer span.End()

		points, err := svc.ComputeRewards(ctx, chi.URLParam(r, "clientId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"points_awarded": points})
	}
}

// ============================================================
// Promotions
// ============================================================

func listPromotionsHandler(svc *service.LoyaltyService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/promotions")
		defer span.End()

		promos, err := svc.ListPromotions(ctx, parseListOptions(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if promos == nil {
			promos = []domain.Promotion{}
		}
		writeJSON(w, http.StatusOK, promos)
	}
}

func createPromotionHandler(svc *service.LoyaltyService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/promotions")
		defer span.End()

		var in domain.PromotionInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		promo, err := svc.CreatePromotion(ctx, &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, promo)
	}
}

func updatePromotionHandler(svc *service.LoyaltyService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/promotions/{promotionId}")
		defer span.End()

		var in domain.PromotionInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		promo, err := svc.UpdatePromotion(ctx, chi.URLParam(r, "promotionId"), &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, promo)
	}
}

func deletePromotionHandler(svc *service.LoyaltyService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/promotions/{promotionId}")
		defer span.End()

		if err := svc.DeletePromotion(ctx, chi.URLParam(r, "promotionId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

// ============================================================
// Notifications
// ============================================================

func listNotificationsHandler(svc *service.LoyaltyService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/notifications")
		defer span.End()

		unreadOnly := r.URL.Query().Get("unread") == "true"
		notifications, err := svc.ListNotifications(ctx, UserIDFromContext(ctx), unreadOnly)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if notifications == nil {
			notifications = []domain.Notification{}
		}
		writeJSON(w, http.StatusOK, notifications)
	}
}

func markNotificationReadHandler(svc *service.LoyaltyService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/notifications/{notificationId}/read")
		defer span.End()

		if err := svc.MarkNotificationRead(ctx, chi.URLParam(r, "notificationId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}
