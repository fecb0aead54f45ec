package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mleong/mangobox-backend/api/controllers"
	"github.com/mleong/mangobox-backend/api/middleware"
	"github.com/mleong/mangobox-backend/internal/admins"
	"github.com/mleong/mangobox-backend/internal/catalog"
	"github.com/mleong/mangobox-backend/internal/orders"
	"github.com/mleong/mangobox-backend/internal/promos"
	"github.com/mleong/mangobox-backend/internal/settings"
	"github.com/mleong/mangobox-backend/pkg/config"
	"github.com/mleong/mangobox-backend/pkg/db"
	"github.com/mleong/mangobox-backend/pkg/enums"
	"github.com/mleong/mangobox-backend/pkg/logger"
	"github.com/mleong/mangobox-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	adminService admins.Service,
	catalogService catalog.Service,
	promoService promos.Service,
	settingsService settings.Service,
	orderService orders.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	promoCheckPolicy := middleware.NewRateLimitPolicy(
		"promo-check",
		cfg.PromoCheck.Window,
		cfg.PromoCheck.IPLimit,
	)
	loginPolicy := middleware.NewRateLimitPolicy(
		"admin-login",
		cfg.AdminLogin.Window,
		cfg.AdminLogin.IPLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", controllers.StorefrontProducts(catalogService, logg))
		r.Get("/delivery-options", controllers.DeliveryOptions(settingsService, logg))
		r.Get("/payment-methods", controllers.PaymentMethods(settingsService, logg))

		r.With(middleware.RateLimit(promoCheckPolicy, redisClient, logg)).
			Post("/promos/check", controllers.PromoCheck(promoService, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/quote", controllers.Quote(orderService, logg))
			r.With(middleware.Idempotency(redisClient, logg)).
				Post("/", controllers.PlaceOrder(orderService, logg))
			r.Get("/{number}", controllers.TrackOrder(orderService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.With(middleware.RateLimit(loginPolicy, redisClient, logg)).
			Post("/auth/login", controllers.AdminLogin(adminService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.RequireAnyRole(logg, enums.AdminRoleOwner, enums.AdminRoleStaff))

			ownerOnly := middleware.RequireRole(enums.AdminRoleOwner, logg)

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.AdminListProducts(catalogService, logg))
				r.Post("/", controllers.AdminCreateProduct(catalogService, logg))
				r.Get("/{productId}", controllers.AdminGetProduct(catalogService, logg))
				r.Put("/{productId}", controllers.AdminUpdateProduct(catalogService, logg))
				r.With(ownerOnly).Delete("/{productId}", controllers.AdminDeleteProduct(catalogService, logg))
			})

			r.Route("/promos", func(r chi.Router) {
				r.Get("/", controllers.AdminListPromos(promoService, logg))
				r.Post("/", controllers.AdminCreatePromo(promoService, logg))
				r.Get("/{promoId}", controllers.AdminGetPromo(promoService, logg))
				r.Put("/{promoId}", controllers.AdminUpdatePromo(promoService, logg))
				r.With(ownerOnly).Delete("/{promoId}", controllers.AdminDeletePromo(promoService, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminListOrders(orderService, logg))
				r.Get("/export", controllers.AdminExportOrders(orderService, logg))
				r.Get("/{orderId}", controllers.AdminGetOrder(orderService, logg))
				r.Put("/{orderId}", controllers.AdminUpdateOrder(orderService, logg))
				r.Post("/{orderId}/status", controllers.AdminUpdateOrderStatus(orderService, logg))
				r.Post("/{orderId}/payment", controllers.AdminRecordPayment(orderService, logg))
				r.With(ownerOnly).Delete("/{orderId}", controllers.AdminDeleteOrder(orderService, logg))
			})

			r.Route("/settings", func(r chi.Router) {
				r.Put("/delivery-options/{optionId}", controllers.AdminUpdateDeliveryOption(settingsService, logg))
				r.Get("/area-fees", controllers.AdminAreaFees(settingsService, logg))
				r.Post("/area-fees", controllers.AdminSetAreaFee(settingsService, logg))
				r.Delete("/area-fees/{feeId}", controllers.AdminRemoveAreaFee(settingsService, logg))
			})
		})
	})

	return r
}
