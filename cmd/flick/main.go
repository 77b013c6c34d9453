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
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/flick-business/flick-business/internal/app"
	"github.com/flick-business/flick-business/internal/auth"
	"github.com/flick-business/flick-business/internal/catalog/categories"
	"github.com/flick-business/flick-business/internal/catalog/products"
	"github.com/flick-business/flick-business/internal/catalog/providers"
	"github.com/flick-business/flick-business/internal/customers"
	"github.com/flick-business/flick-business/internal/expenses"
	"github.com/flick-business/flick-business/internal/payments"
	"github.com/flick-business/flick-business/internal/platform/db"
	"github.com/flick-business/flick-business/internal/reports"
	"github.com/flick-business/flick-business/internal/sales"
	"github.com/flick-business/flick-business/internal/settings"
	"github.com/flick-business/flick-business/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	_ = godotenv.Load()

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

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, tokens)
	authHandler := auth.NewHandler(logger, authService)

	settingsRepo := settings.NewRepository(pool)
	settingsService := settings.NewService(settingsRepo)
	settingsHandler := settings.NewHandler(logger, settingsService)

	categoriesRepo := categories.NewRepository(pool)
	categoriesService := categories.NewService(categoriesRepo)
	categoriesHandler := categories.NewHandler(logger, categoriesService)

	providersRepo := providers.NewRepository(pool)
	providersService := providers.NewService(providersRepo)
	providersHandler := providers.NewHandler(logger, providersService)

	productsRepo := products.NewRepository(pool)
	productsService := products.NewService(productsRepo)
	productsHandler := products.NewHandler(logger, productsService)

	customersRepo := customers.NewRepository(pool)
	customersService := customers.NewService(customersRepo)
	customersHandler := customers.NewHandler(logger, customersService)

	reportsRepo := reports.NewRepository(pool)
	reportsService := reports.NewService(reportsRepo)
	summaries := reports.NewCachedSummaries(logger, reportsService, redisClient, cfg.SummaryCacheTTL)
	reportsHandler := reports.NewHandler(logger, summaries)

	salesRepo := sales.NewRepository(pool)
	salesService := sales.NewService(salesRepo, settingsService, summaries)
	salesHandler := sales.NewHandler(logger, salesService)

	expensesRepo := expenses.NewRepository(pool)
	expensesService := expenses.NewService(expensesRepo, summaries)
	expensesHandler := expenses.NewHandler(logger, expensesService)

	paymentsRepo := payments.NewRepository(pool)
	paymentsService := payments.NewService(paymentsRepo, summaries)
	paymentsHandler := payments.NewHandler(logger, paymentsService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		Tokens:            tokens,
		AuthHandler:       authHandler,
		SettingsHandler:   settingsHandler,
		CategoriesHandler: categoriesHandler,
		ProvidersHandler:  providersHandler,
		ProductsHandler:   productsHandler,
		CustomersHandler:  customersHandler,
		SalesHandler:      salesHandler,
		ExpensesHandler:   expensesHandler,
		PaymentsHandler:   paymentsHandler,
		ReportsHandler:    reportsHandler,
		JobsHandler:       jobsHandler,
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
