package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/perpusdesa/perpusdesa-backend/api/routes"
	"github.com/perpusdesa/perpusdesa-backend/internal/auth"
	"github.com/perpusdesa/perpusdesa-backend/internal/books"
	"github.com/perpusdesa/perpusdesa-backend/internal/catalog"
	"github.com/perpusdesa/perpusdesa-backend/internal/categories"
	"github.com/perpusdesa/perpusdesa-backend/internal/circulation"
	"github.com/perpusdesa/perpusdesa-backend/internal/dashboard"
	"github.com/perpusdesa/perpusdesa-backend/internal/users"
	"github.com/perpusdesa/perpusdesa-backend/internal/waitlist"
	"github.com/perpusdesa/perpusdesa-backend/pkg/config"
	"github.com/perpusdesa/perpusdesa-backend/pkg/db"
	"github.com/perpusdesa/perpusdesa-backend/pkg/logger"
	"github.com/perpusdesa/perpusdesa-backend/pkg/metrics"
	"github.com/perpusdesa/perpusdesa-backend/pkg/migrate"
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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
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

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	gormDB := dbClient.DB()
	userRepo := users.NewRepository(gormDB)
	categoryRepo := categories.NewRepository(gormDB)
	bookRepo := books.NewRepository(gormDB)
	borrowingRepo := circulation.NewRepository(gormDB)
	waitlistRepo := waitlist.NewRepository(gormDB)
	catalogRepo := catalog.NewRepository(gormDB)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo: userRepo,
		JWT:      cfg.JWT,
		Password: cfg.Password,
	})
	exitOnErr(logg, "failed to create auth service", err)

	categoriesService, err := categories.NewService(categories.ServiceParams{
		CategoryRepo: categoryRepo,
	})
	exitOnErr(logg, "failed to create categories service", err)

	booksService, err := books.NewService(books.ServiceParams{
		BookRepo:     bookRepo,
		CategoryRepo: categoryRepo,
	})
	exitOnErr(logg, "failed to create books service", err)

	circulationService, err := circulation.NewService(circulation.ServiceParams{
		Tx:            dbClient,
		BorrowingRepo: borrowingRepo,
		BookRepo:      bookRepo,
		UserRepo:      userRepo,
	})
	exitOnErr(logg, "failed to create circulation service", err)

	waitlistService, err := waitlist.NewService(waitlist.ServiceParams{
		Tx:           dbClient,
		WaitlistRepo: waitlistRepo,
		BookRepo:     bookRepo,
		UserRepo:     userRepo,
	})
	exitOnErr(logg, "failed to create waitlist service", err)

	catalogService, err := catalog.NewService(catalog.ServiceParams{
		CatalogRepo:  catalogRepo,
		BookRepo:     bookRepo,
		CategoryRepo: categoryRepo,
		WaitlistRepo: waitlistRepo,
	})
	exitOnErr(logg, "failed to create catalog service", err)

	dashboardService, err := dashboard.NewService(dashboard.ServiceParams{
		BookRepo:      bookRepo,
		CategoryRepo:  categoryRepo,
		UserRepo:      userRepo,
		BorrowingRepo: borrowingRepo,
		WaitlistRepo:  waitlistRepo,
	})
	exitOnErr(logg, "failed to create dashboard service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			httpMetrics,
			registry,
			authService,
			catalogService,
			dashboardService,
			categoriesService,
			booksService,
			circulationService,
			waitlistService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func exitOnErr(logg *logger.Logger, msg string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), msg, err)
	os.Exit(1)
}
