package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gescom-app/gescom/internal/app"
	"github.com/gescom-app/gescom/internal/auth"
	"github.com/gescom-app/gescom/internal/caisse"
	"github.com/gescom-app/gescom/internal/catalog"
	"github.com/gescom-app/gescom/internal/fournisseurs"
	"github.com/gescom-app/gescom/internal/observability"
	"github.com/gescom-app/gescom/internal/orders"
	"github.com/gescom-app/gescom/internal/platform/cache"
	"github.com/gescom-app/gescom/internal/platform/db"
	"github.com/gescom-app/gescom/internal/shared"
	"github.com/gescom-app/gescom/internal/users"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "gescom_session", cfg.SessionTTL, cfg.IsProduction())
	metrics := observability.NewMetrics()

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService)

	authService := auth.NewService(usersRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager)

	catalogRepo := catalog.NewRepository(pool)
	catalogService := catalog.NewService(catalogRepo)
	catalogHandler := catalog.NewHandler(logger, catalogService)

	fournisseurRepo := fournisseurs.NewRepository(pool)
	fournisseurService := fournisseurs.NewService(fournisseurRepo)
	fournisseurHandler := fournisseurs.NewHandler(logger, fournisseurService)

	caisseRepo := caisse.NewRepository(pool)
	caisseService := caisse.NewService(logger, caisseRepo, usersRepo, catalogRepo, caisse.ServiceConfig{
		PriceSource: caisse.PriceSource(cfg.CaissePriceSource),
	})
	caisseStats := caisse.NewStats(caisseRepo, redisClient, cfg.CaisseStatsTTL)
	caisseHandler := caisse.NewHandler(logger, caisseService, caisseStats)

	ordersRepo := orders.NewRepository(pool)
	ordersService := orders.NewService(ordersRepo, catalogRepo)
	ordersService.SetSettler(caisseService)
	ordersHandler := orders.NewHandler(logger, ordersService)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		Metrics:        metrics,

		AuthHandler:        authHandler,
		UsersHandler:       usersHandler,
		CatalogHandler:     catalogHandler,
		FournisseurHandler: fournisseurHandler,
		OrdersHandler:      ordersHandler,
		CaisseHandler:      caisseHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server run", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
