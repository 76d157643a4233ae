package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/saigonmart/backend/api/controllers"
	"github.com/saigonmart/backend/api/middleware"
	internalauth "github.com/saigonmart/backend/internal/auth"
	"github.com/saigonmart/backend/internal/cart"
	"github.com/saigonmart/backend/internal/catalog"
	"github.com/saigonmart/backend/internal/chat"
	"github.com/saigonmart/backend/internal/coupons"
	"github.com/saigonmart/backend/internal/customers"
	"github.com/saigonmart/backend/internal/orders"
	"github.com/saigonmart/backend/internal/settings"
	"github.com/saigonmart/backend/pkg/auth/session"
	"github.com/saigonmart/backend/pkg/config"
	"github.com/saigonmart/backend/pkg/db"
	"github.com/saigonmart/backend/pkg/enums"
	"github.com/saigonmart/backend/pkg/logger"
	"github.com/saigonmart/backend/pkg/metrics"
	pkgredis "github.com/saigonmart/backend/pkg/redis"
)

// Services bundles everything the router mounts. Chat is optional and its
// route is omitted when nil.
type Services struct {
	OTP       *internalauth.OTPService
	Admin     *internalauth.AdminService
	Catalog   catalog.Service
	Cart      cart.Service
	Orders    orders.Service
	Coupons   coupons.Service
	Customers customers.Service
	Settings  settings.Service
	Chat      *chat.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	httpMetrics *metrics.HTTPMetrics,
	dbP db.Pinger,
	redisClient *pkgredis.Client,
	sessionManager session.AccessSessionChecker,
	svcs Services,
) http.Handler {
	// typed-nil guard so middlewares see a nil interface when redis is absent
	var idemStore pkgredis.IdempotencyStore
	var redisPinger pkgredis.Pinger
	var rlStore middleware.RateLimiterStore
	if redisClient != nil {
		idemStore = redisClient
		redisPinger = redisClient
		rlStore = redisClient
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"admin-login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger))
	})

	r.Method(http.MethodGet, "/metrics", httpMetrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// public storefront surface
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/products", controllers.CatalogListProducts(svcs.Catalog, logg))
			r.Get("/products/{slug}", controllers.CatalogProductBySlug(svcs.Catalog, logg))
			r.Post("/products/{slug}/quote", controllers.CatalogQuote(svcs.Catalog, logg))
			r.Get("/categories", controllers.CatalogCategories(svcs.Catalog, logg))
		})
		r.Get("/settings", controllers.SettingsShow(svcs.Settings, logg))
		r.Post("/coupons/preview", controllers.CouponPreview(svcs.Cart, logg))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/otp/request", controllers.OTPRequest(svcs.OTP, logg))
			r.Post("/otp/verify", controllers.OTPVerify(svcs.OTP, logg))
		})

		if svcs.Chat != nil {
			r.Post("/chat", controllers.ChatAsk(svcs.Chat, logg))
		}

		// authenticated customer surface
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
			r.Use(middleware.RequireRole(string(enums.ActorRoleCustomer), logg))
			r.Use(middleware.Idempotency(idemStore, logg))

			r.Post("/auth/logout", controllers.CustomerLogout(svcs.OTP, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(svcs.Cart, logg))
				r.Put("/", controllers.CartReplace(svcs.Cart, logg))
				r.Post("/items", controllers.CartAddItem(svcs.Cart, logg))
				r.Patch("/items/{itemId}", controllers.CartUpdateItem(svcs.Cart, logg))
				r.Delete("/items/{itemId}", controllers.CartRemoveItem(svcs.Cart, logg))
				r.Post("/coupon", controllers.CartApplyCoupon(svcs.Cart, logg))
				r.Delete("/coupon", controllers.CartRemoveCoupon(svcs.Cart, logg))
			})

			r.Post("/checkout", controllers.Checkout(svcs.Orders, logg))
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrdersList(svcs.Orders, logg))
				r.Get("/{orderId}", controllers.OrderDetail(svcs.Orders, logg))
				r.Post("/{orderId}/cancel", controllers.OrderCancel(svcs.Orders, logg))
			})

			r.Get("/me", controllers.MeShow(svcs.Customers, logg))
			r.Put("/me", controllers.MeUpdate(svcs.Customers, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, rlStore, logg)).
			Post("/auth/login", controllers.AdminLogin(svcs.Admin, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
			r.Use(middleware.RequireRole(string(enums.ActorRoleAdmin), logg))

			r.Post("/auth/logout", controllers.AdminLogout(svcs.Admin, logg))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.AdminProductsList(svcs.Catalog, logg))
				r.Post("/", controllers.AdminProductCreate(svcs.Catalog, logg))
				r.Get("/{productId}", controllers.AdminProductDetail(svcs.Catalog, logg))
				r.Put("/{productId}", controllers.AdminProductUpdate(svcs.Catalog, logg))
				r.Delete("/{productId}", controllers.AdminProductDelete(svcs.Catalog, logg))
				r.Put("/{productId}/options", controllers.AdminProductReplaceOptions(svcs.Catalog, logg))
				r.Put("/{productId}/rules", controllers.AdminProductReplaceRules(svcs.Catalog, logg))
				r.Get("/{productId}/combinations", controllers.AdminProductCombinations(svcs.Catalog, logg))
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", controllers.CatalogCategories(svcs.Catalog, logg))
				r.Post("/", controllers.AdminCategoryCreate(svcs.Catalog, logg))
				r.Put("/{categoryId}", controllers.AdminCategoryUpdate(svcs.Catalog, logg))
				r.Delete("/{categoryId}", controllers.AdminCategoryDelete(svcs.Catalog, logg))
			})

			r.Route("/coupons", func(r chi.Router) {
				r.Get("/", controllers.AdminCouponsList(svcs.Coupons, logg))
				r.Post("/", controllers.AdminCouponCreate(svcs.Coupons, logg))
				r.Get("/{couponId}", controllers.AdminCouponDetail(svcs.Coupons, logg))
				r.Patch("/{couponId}", controllers.AdminCouponUpdate(svcs.Coupons, logg))
				r.Delete("/{couponId}", controllers.AdminCouponDelete(svcs.Coupons, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminOrdersList(svcs.Orders, logg))
				r.Get("/{orderId}", controllers.AdminOrderDetail(svcs.Orders, logg))
				r.Post("/{orderId}/status", controllers.AdminOrderStatus(svcs.Orders, logg))
			})

			r.Route("/customers", func(r chi.Router) {
				r.Get("/", controllers.AdminCustomersList(svcs.Customers, logg))
				r.Get("/{customerId}", controllers.AdminCustomerDetail(svcs.Customers, logg))
			})

			r.Get("/settings", controllers.SettingsShow(svcs.Settings, logg))
			r.Put("/settings", controllers.AdminSettingsUpdate(svcs.Settings, logg))
		})
	})

	return r
}
