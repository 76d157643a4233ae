package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/saigonmart/backend/api/routes"
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
	"github.com/saigonmart/backend/pkg/env"
	"github.com/saigonmart/backend/pkg/logger"
	"github.com/saigonmart/backend/pkg/metrics"
	"github.com/saigonmart/backend/pkg/migrate"
	pkgredis "github.com/saigonmart/backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := pkgredis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gdb := dbClient.DB()

	catalogService, err := catalog.NewService(catalog.NewRepository(gdb), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	couponService, err := coupons.NewService(coupons.NewRepository(gdb))
	if err != nil {
		logg.Error(context.Background(), "failed to create coupon service", err)
		os.Exit(1)
	}

	customerService, err := customers.NewService(customers.NewRepository(gdb))
	if err != nil {
		logg.Error(context.Background(), "failed to create customer service", err)
		os.Exit(1)
	}

	settingsService, err := settings.NewService(settings.NewRepository(gdb))
	if err != nil {
		logg.Error(context.Background(), "failed to create settings service", err)
		os.Exit(1)
	}

	cartRepo := cart.NewRepository(gdb)
	cartService, err := cart.NewService(cartRepo, dbClient, catalogService, couponService, settingsService)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(orders.NewRepository(gdb), cartRepo, dbClient, catalogService, couponService, settingsService)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	otpService, err := internalauth.NewOTPService(
		redisClient,
		internalauth.NewLogSender(logg),
		customerService,
		sessionManager,
		cfg.JWT,
		cfg.OTP,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create otp service", err)
		os.Exit(1)
	}

	adminService, err := internalauth.NewAdminService(internalauth.NewAdminRepository(gdb), sessionManager, cfg.JWT, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create admin service", err)
		os.Exit(1)
	}

	if err := adminService.Bootstrap(context.Background(), cfg.AdminBootstrap.Email, cfg.AdminBootstrap.Password, cfg.AdminBootstrap.Name); err != nil {
		logg.Error(context.Background(), "failed to bootstrap admin account", err)
		os.Exit(1)
	}

	var chatService *chat.Service
	if cfg.Assistant.Enabled() {
		chatClient, err := chat.NewClient(cfg.Assistant)
		if err != nil {
			logg.Error(context.Background(), "failed to create assistant client", err)
			os.Exit(1)
		}
		chatService, err = chat.NewService(chatClient, settingsService)
		if err != nil {
			logg.Error(context.Background(), "failed to create assistant service", err)
			os.Exit(1)
		}
	}

	httpMetrics := metrics.NewHTTPMetrics()

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, httpMetrics, dbClient, redisClient, sessionManager, routes.Services{
			OTP:       otpService,
			Admin:     adminService,
			Catalog:   catalogService,
			Cart:      cartService,
			Orders:    orderService,
			Coupons:   couponService,
			Customers: customerService,
			Settings:  settingsService,
			Chat:      chatService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
