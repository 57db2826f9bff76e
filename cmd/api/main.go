package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/agronegocio/agromercado-backend/api/controllers"
	"github.com/agronegocio/agromercado-backend/api/routes"
	"github.com/agronegocio/agromercado-backend/internal/auth"
	"github.com/agronegocio/agromercado-backend/internal/cart"
	"github.com/agronegocio/agromercado-backend/internal/catalog"
	"github.com/agronegocio/agromercado-backend/internal/forms"
	"github.com/agronegocio/agromercado-backend/internal/productos"
	"github.com/agronegocio/agromercado-backend/internal/usuarios"
	"github.com/agronegocio/agromercado-backend/internal/vendedores"
	"github.com/agronegocio/agromercado-backend/pkg/auth/session"
	"github.com/agronegocio/agromercado-backend/pkg/config"
	"github.com/agronegocio/agromercado-backend/pkg/db"
	"github.com/agronegocio/agromercado-backend/pkg/logger"
	"github.com/agronegocio/agromercado-backend/pkg/metrics"
	"github.com/agronegocio/agromercado-backend/pkg/migrate"
	"github.com/agronegocio/agromercado-backend/pkg/redis"
	"github.com/agronegocio/agromercado-backend/pkg/storage/gcs"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap gcs", err)
		os.Exit(1)
	}
	defer func() {
		if err := gcsClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing gcs", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	marketplaceMetrics := metrics.NewMarketplaceMetrics(registry)

	usuariosRepo := usuarios.NewRepository(dbClient.DB())
	vendedoresRepo := vendedores.NewRepository(dbClient.DB())
	productosRepo := productos.NewRepository(dbClient.DB())
	catalogRepo := catalog.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:     usuariosRepo,
		VendedorRepo: vendedoresRepo,
		Session:      sessionManager,
		Metrics:      marketplaceMetrics,
		JWTConfig:    cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	vendedoresService, err := vendedores.NewService(usuariosRepo, vendedoresRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create vendedores service", err)
		os.Exit(1)
	}

	notifier, err := catalog.NewNotifier(redisClient, cfg.Catalog.ChangeChannel, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog notifier", err)
		os.Exit(1)
	}

	productosService, err := productos.NewService(
		productosRepo,
		gcsClient,
		notifier,
		marketplaceMetrics,
		logg,
		cfg.Media.MaxUploadBytes(),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create productos service", err)
		os.Exit(1)
	}

	catalogVM, err := catalog.NewViewModel(catalogRepo, cfg.Catalog.DefaultLimit, logg, marketplaceMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog view model", err)
		os.Exit(1)
	}

	snapshots, err := cart.NewRedisSnapshotStore(redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart snapshot store", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		if err := catalog.Listen(ctx, redisClient, cfg.Catalog.ChangeChannel, catalogVM, logg); err != nil {
			logg.Error(ctx, "catalog change listener stopped", err)
		}
	}()

	sessionDeps := controllers.SessionDeps{
		JWTConfig:  cfg.JWT,
		Sessions:   sessionManager,
		Usuarios:   usuariosRepo,
		Vendedores: vendedoresRepo,
		Carts:      snapshots,
		Logg:       logg,
	}
	cartDeps := controllers.CartDeps{
		Snapshots: snapshots,
		Catalog:   catalogRepo,
		Metrics:   marketplaceMetrics,
		Logg:      logg,
	}

	handler := routes.NewRouter(routes.RouterParams{
		Config:          cfg,
		Logg:            logg,
		Redis:           redisClient,
		Session:         sessionManager,
		AuthService:     authService,
		RegisterService: registerService,
		Vendedores:      vendedoresService,
		Productos:       productosService,
		CatalogVM:       catalogVM,
		CatalogRepo:     catalogRepo,
		FormMode:        forms.NewSelector(),
		SessionDeps:     sessionDeps,
		CartDeps:        cartDeps,
		HealthChecks: map[string]controllers.Pinger{
			"database": dbClient,
			"redis":    redisClient,
			"gcs":      gcsClient,
		},
		Gatherer: registry,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "graceful shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(logCtx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
