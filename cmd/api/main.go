package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tripgate_backend/internal/bookings"
	apphttp "tripgate_backend/internal/http"
	"tripgate_backend/internal/http/router"
	"tripgate_backend/internal/locations"
	"tripgate_backend/internal/providers"
	"tripgate_backend/internal/search"
	"tripgate_backend/internal/sweeper"
	"tripgate_backend/migrations"
	"tripgate_backend/platform/config"
	"tripgate_backend/platform/db"
	"tripgate_backend/platform/logger"
	"tripgate_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	locationsModule := locations.NewModule(pool, val, log)
	if err := locationsModule.Service().SeedDefaults(ctx); err != nil {
		log.Error("failed to seed location dataset", "error", err)
		panic("failed to seed location dataset: " + err.Error())
	}

	registry := buildProviderRegistry(cfg, locationsModule, log)
	log.Info("provider registry built",
		"flight", len(registry.ForCapability("flight")),
		"hotel", len(registry.ForCapability("hotel")),
		"transfer", len(registry.ForCapability("transfer")),
		"activity", len(registry.ForCapability("activity")),
	)

	searchModule := search.NewModule(pool, registry, locationsModule.Service(), val, log)
	bookingsModule := bookings.NewModule(registry, val, log)

	// Cache sweep dispatcher runs in-process when Redis is configured.
	if cfg.GetRedisURL() != "" {
		dispatcher, err := sweeper.NewDispatcher(cfg, log)
		if err != nil {
			log.Error("failed to initialize cache sweep dispatcher", "error", err)
			panic("failed to initialize cache sweep dispatcher: " + err.Error())
		}
		defer func() { _ = dispatcher.Close() }()
		go dispatcher.Run(ctx)
	} else {
		log.Warn("REDIS_URL not configured; cache sweeping disabled")
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: db.NewPoolAdapter(pool),
		Modules: []apphttp.Module{
			searchModule,
			bookingsModule,
			locationsModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// buildProviderRegistry registers every supplier whose base URL is configured.
// The two-phase hotel supplier additionally feeds resolved city codes back
// into the location store.
func buildProviderRegistry(cfg *config.Config, locationsModule *locations.Module, log *logger.Logger) *providers.Registry {
	registry := providers.NewRegistry()

	if creds := cfg.GetSkyFare(); creds.Enabled() {
		registry.Register(providers.NewSkyFare(creds, cfg, log))
	}
	if creds := cfg.GetAeroLink(); creds.Enabled() {
		registry.Register(providers.NewAeroLink(creds, cfg, log))
	}
	if creds := cfg.GetStayHub(); creds.Enabled() {
		stayHub := providers.NewStayHub(creds, cfg, cfg.GetHotelOfferLimit(), log)
		stayHub.SetLocationLearner(locationsModule.Service())
		registry.Register(stayHub)
	}
	if creds := cfg.GetRoomAtlas(); creds.Enabled() {
		registry.Register(providers.NewRoomAtlas(creds, cfg, log))
	}
	if creds := cfg.GetTransitGo(); creds.Enabled() {
		registry.Register(providers.NewTransitGo(creds, cfg, log))
	}
	if creds := cfg.GetTerraTours(); creds.Enabled() {
		registry.Register(providers.NewTerraTours(creds, cfg, log))
	}

	return registry
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
