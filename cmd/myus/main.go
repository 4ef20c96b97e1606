package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/demus23/myus-delivery-app-sub002/internal/app"
	"github.com/demus23/myus-delivery-app-sub002/internal/auth"
	"github.com/demus23/myus-delivery-app-sub002/internal/carriers"
	"github.com/demus23/myus-delivery-app-sub002/internal/invoices"
	"github.com/demus23/myus-delivery-app-sub002/internal/linktoken"
	"github.com/demus23/myus-delivery-app-sub002/internal/observability"
	"github.com/demus23/myus-delivery-app-sub002/internal/packages"
	"github.com/demus23/myus-delivery-app-sub002/internal/platform/cache"
	"github.com/demus23/myus-delivery-app-sub002/internal/platform/db"
	"github.com/demus23/myus-delivery-app-sub002/internal/quotes"
	"github.com/demus23/myus-delivery-app-sub002/internal/users"
	"github.com/demus23/myus-delivery-app-sub002/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		// Rate-card reads fall back to Postgres when Redis is away.
		logger.Warn("redis unavailable", slog.Any("error", err))
		redisClient = nil
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("asynq client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo, cfg.JWTSecret, cfg.JWTTTL)
	authHandler := auth.NewHandler(logger, authService)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService)

	carriersRepo := carriers.NewRepository(dbpool)
	rateCache := carriers.NewCachedRates(carriersRepo, redisClient)
	carriersService := carriers.NewService(carriersRepo, rateCache)
	carriersHandler := carriers.NewHandler(logger, carriersService)

	quotesRepo := quotes.NewRepository(dbpool)
	quotesService := quotes.NewService(quotesRepo, rateCache, metrics)
	quotesHandler := quotes.NewHandler(logger, quotesService)

	packagesRepo := packages.NewRepository(dbpool)
	packagesService := packages.NewService(packagesRepo)
	packagesHandler := packages.NewHandler(logger, packagesService)

	tokens := linktoken.New(cfg.LinkSecret)
	invoicesRepo := invoices.NewRepository(dbpool)
	invoicesService := invoices.NewService(invoices.ServiceDeps{
		Repo:       invoicesRepo,
		Tokens:     tokens,
		Enqueuer:   jobsClient,
		Quotes:     quotesRepo,
		Recipients: usersService,
		Metrics:    metrics,
		BaseURL:    cfg.BaseURL,
		LinkTTL:    cfg.LinkTTL,
	})
	invoicesHandler := invoices.NewHandler(logger, invoicesService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		AuthService:     authService,
		AuthHandler:     authHandler,
		UsersHandler:    usersHandler,
		CarriersHandler: carriersHandler,
		QuotesHandler:   quotesHandler,
		PackagesHandler: packagesHandler,
		InvoicesHandler: invoicesHandler,
		JobHandler:      jobHandler,
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
