package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/cuide-se/cuidese-api/internal/domain"
	"github.com/cuide-se/cuidese-api/internal/infra/observability"
	"github.com/cuide-se/cuidese-api/internal/port"
	"github.com/cuide-se/cuidese-api/internal/service"
)

var tracer = otel.Tracer("handler")

// Services bundles everything the router serves. Keeps NewRouter's
// signature readable as the surface grows.
type Services struct {
	Salon     *service.SalonService
	Orders    *service.OrderService
	Board     *service.BoardService
	Intake    *service.IntakeService
	Inventory *service.InventoryService
	Finance   *service.FinanceService
	Loyalty   *service.LoyaltyService
	Reports   *service.ReportsService
	Auth      *service.AuthService
	Users     *service.UserService
	Uploads   *service.UploadService
}

// NewRouter creates the HTTP router with all routes and middleware.
// Everything under /v1 except the auth endpoints requires a valid
// access token, and the management routes are the admin shell: they
// additionally require the admin role. Only session upkeep (logout,
// password change) is open to every authenticated role.
func NewRouter(svcs Services, metrics *observability.Metrics, logger *zap.Logger, corsOrigin string) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger, metrics))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{corsOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svcs.Salon, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// Public: session bootstrap.
		r.Post("/auth/login", authLoginHandler(svcs.Auth, logger))
		r.Post("/auth/refresh", authRefreshHandler(svcs.Auth, logger))

		// Everything below requires an access token.
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svcs.Auth, logger))

			// Session upkeep is the only surface open to every
			// authenticated role.
			r.Post("/auth/logout", authLogoutHandler(svcs.Auth, logger))
			r.Post("/auth/password", authChangePasswordHandler(svcs.Auth, logger))

			// The admin shell: every management route is gated on
			// the admin role.
			r.Group(func(r chi.Router) {
				r.Use(RequireRole(domain.RoleAdmin, logger))

				// =============================================
				// Cadastros: clientes, profissionais, serviços, pacotes
				// =============================================
				r.Get("/clients", listClientsHandler(svcs.Salon, logger))
				r.Post("/clients", createClientHandler(svcs.Salon, logger))
				r.Get("/clients/{clientId}", getClientHandler(svcs.Salon, logger))
				r.Put("/clients/{clientId}", updateClientHandler(svcs.Salon, logger))
				r.Delete("/clients/{clientId}", deleteClientHandler(svcs.Salon, logger))

				r.Get("/professionals", listProfessionalsHandler(svcs.Salon, logger))
				r.Post("/professionals", createProfessionalHandler(svcs.Salon, logger))
				r.Get("/professionals/{professionalId}", getProfessionalHandler(svcs.Salon, logger))
				r.Put("/professionals/{professionalId}", updateProfessionalHandler(svcs.Salon, logger))
				r.Delete("/professionals/{professionalId}", deleteProfessionalHandler(svcs.Salon, logger))

				r.Get("/services", listServicesHandler(svcs.Salon, logger))
				r.Post("/services", createServiceHandler(svcs.Salon, logger))
				r.Get("/services/{serviceId}", getServiceHandler(svcs.Salon, logger))
				r.Put("/services/{serviceId}", updateServiceHandler(svcs.Salon, logger))
				r.Delete("/services/{serviceId}", deleteServiceHandler(svcs.Salon, logger))

				r.Get("/packages", listPackagesHandler(svcs.Salon, logger))
				r.Post("/packages", createPackageHandler(svcs.Salon, logger))
				r.Get("/packages/{packageId}", getPackageHandler(svcs.Salon, logger))
				r.Put("/packages/{packageId}", updatePackageHandler(svcs.Salon, logger))
				r.Delete("/packages/{packageId}", deletePackageHandler(svcs.Salon, logger))

				// Front-desk client intake drafts.
				r.Post("/intake/clients", openIntakeDraftHandler(svcs.Intake, logger))
				r.Put("/intake/clients/{draftId}", setIntakeFieldsHandler(svcs.Intake, logger))
				r.Post("/intake/clients/{draftId}/submit", submitIntakeDraftHandler(svcs.Intake, logger))
				r.Delete("/intake/clients/{draftId}", discardIntakeDraftHandler(svcs.Intake, logger))

				// =============================================
				// Comandas
				// =============================================
				r.Get("/orders", listOrdersHandler(svcs.Orders, logger))
				r.Post("/orders", openOrderHandler(svcs.Orders, logger))
				r.Get("/orders/board", orderBoardHandler(svcs.Board, logger))
				r.Get("/orders/{orderId}", getOrderHandler(svcs.Orders, logger))
				r.Put("/orders/{orderId}", updateOrderHandler(svcs.Orders, logger))
				r.Delete("/orders/{orderId}", deleteOrderHandler(svcs.Orders, logger))
				r.Post("/orders/{orderId}/close", closeOrderHandler(svcs.Orders, logger))
				r.Post("/orders/{orderId}/cancel", cancelOrderHandler(svcs.Orders, logger))
				r.Post("/orders/{orderId}/items", addOrderItemHandler(svcs.Orders, logger))
				r.Delete("/orders/{orderId}/items/{itemId}", removeOrderItemHandler(svcs.Orders, logger))

				// =============================================
				// Estoque
				// =============================================
				r.Get("/products", listProductsHandler(svcs.Inventory, logger))
				r.Post("/products", createProductHandler(svcs.Inventory, logger))
				r.Get("/products/low-stock", listLowStockHandler(svcs.Inventory, logger))
				r.Get("/products/{productId}", getProductHandler(svcs.Inventory, logger))
				r.Put("/products/{productId}", updateProductHandler(svcs.Inventory, logger))
				r.Delete("/products/{productId}", deleteProductHandler(svcs.Inventory, logger))
				r.Get("/products/{productId}/movements", listStockMovementsHandler(svcs.Inventory, logger))
				r.Post("/products/{productId}/movements", adjustStockHandler(svcs.Inventory, logger))

				// =============================================
				// Financeiro
				// =============================================
				r.Get("/transactions", listTransactionsHandler(svcs.Finance, logger))
				r.Post("/transactions", createTransactionHandler(svcs.Finance, logger))
				r.Get("/transactions/{transactionId}", getTransactionHandler(svcs.Finance, logger))
				r.Put("/transactions/{transactionId}", updateTransactionHandler(svcs.Finance, logger))
				r.Delete("/transactions/{transactionId}", deleteTransactionHandler(svcs.Finance, logger))
				r.Get("/finance/balance", getBalanceHandler(svcs.Finance, logger))

				// =============================================
				// Fidelidade, indicações, promoções
				// =============================================
				r.Get("/clients/{clientId}/loyalty", listLoyaltyEntriesHandler(svcs.Loyalty, logger))
				r.Get("/clients/{clientId}/loyalty/balance", loyaltyBalanceHandler(svcs.Loyalty, logger))
				r.Post("/clients/{clientId}/loyalty/redeem", redeemPointsHandler(svcs.Loyalty, logger))

				r.Get("/referrals", listReferralsHandler(svcs.Loyalty, logger))
				r.Post("/referrals", createReferralHandler(svcs.Loyalty, logger))
				r.Post("/referrals/{clientId}/rewards", computeRewardsHandler(svcs.Loyalty, logger))

				r.Get("/promotions", listPromotionsHandler(svcs.Loyalty, logger))
				r.Post("/promotions", createPromotionHandler(svcs.Loyalty, logger))
				r.Put("/promotions/{promotionId}", updatePromotionHandler(svcs.Loyalty, logger))
				r.Delete("/promotions/{promotionId}", deletePromotionHandler(svcs.Loyalty, logger))

				r.Get("/notifications", listNotificationsHandler(svcs.Loyalty, logger))
				r.Post("/notifications/{notificationId}/read", markNotificationReadHandler(svcs.Loyalty, logger))

				// =============================================
				// Relatórios & métricas
				// =============================================
				r.Get("/reports/dashboard", dashboardHandler(svcs.Reports, logger))
				r.Get("/reports/professionals", professionalReportsHandler(svcs.Reports, logger))
				r.Get("/metrics/summary", metricsSummaryHandler(metrics, logger))

				// =============================================
				// Uploads
				// =============================================
				r.Post("/uploads/{folder}", uploadHandler(svcs.Uploads, logger))

				// =============================================
				// Usuários
				// =============================================
				r.Get("/users", listUsersHandler(svcs.Users, logger))
				r.Post("/users", createUserHandler(svcs.Users, logger))
				r.Get("/users/{userId}", getUserHandler(svcs.Users, logger))
				r.Put("/users/{userId}", updateUserHandler(svcs.Users, logger))
				r.Delete("/users/{userId}", deleteUserHandler(svcs.Users, logger))
			})
		})
	})

	return r
}

// ============================================================
// Operational handlers
// ============================================================

func healthzHandler(salonSvc *service.SalonService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "cuidese-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		overall := "healthy"
		if salonSvc != nil {
			start := time.Now()
			_, err := salonSvc.ListClients(ctx, port.ListOptions{Page: 1, PageSize: 1})
			latency := time.Since(start).Milliseconds()
			status := "healthy"
			if err != nil {
				status = "degraded"
				overall = "degraded"
				logger.Warn("health check against supabase failed", zap.Error(err))
			}
			services = append(services, domain.ServiceHealth{
				Name: "supabase", Status: status, LatencyMs: latency, LastChecked: now,
			})
		}

		writeJSON(w, http.StatusOK, domain.HealthReport{
			Status:    overall,
			Timestamp: now,
			Services:  services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
