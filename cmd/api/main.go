package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	server "hotel_listing/internal/adapters/http_server"
	"hotel_listing/internal/adapters/observability"
	redisad "hotel_listing/internal/adapters/redis"
	"hotel_listing/internal/app"
	"hotel_listing/internal/bootstrap"
	"hotel_listing/internal/shared"
	"hotel_listing/internal/storage/sqlstore"
)

func main() {
	// a missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, "hotel-listing-api", cfg.OTELEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("tracing setup failed")
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// db
	db, err := sqlstore.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("database connection failed")
	}
	defer db.Close()
	log.Info().Str("driver", cfg.DBDriver).Msg("database connection ok")

	// deps
	opts := []app.ListingOption{
		app.WithWorkers(cfg.Workers),
		app.WithTimeout(cfg.ListTimeout),
		app.WithOutcomeHook(func(o app.Outcome) { observability.ObserveOutcome(o.Label()) }),
	}
	if cfg.CacheEnabled() {
		cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer cache.Close()
		if err := cache.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, listing cache will miss")
		}
		opts = append(opts, app.WithCache(cache, cfg.CacheTTL()))
	}
	steps := observability.Steps{observability.StepMetrics{}, observability.NewStepTracer(nil), observability.StepTimings{}}
	strategies := bootstrap.Strategies{Attributes: cfg.AttributeStrategy, Rooms: cfg.RoomStrategy, BatchWait: cfg.BatchWait}
	listing, err := bootstrap.NewListing(sqlstore.New(db, sqlstore.WithQueryHook(observability.ObserveQuery)), strategies, steps, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("listing setup failed")
	}
	log.Info().
		Str("strategy", strategies.String()).
		Int("workers", cfg.Workers).
		Bool("cache", cfg.CacheEnabled()).
		Msg("listing pipeline ready")

	// http
	srv := server.New(server.Options{
		RequestTimeout: cfg.ListTimeout + 5*time.Second,
		CORSOrigins:    cfg.CORSOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
	})
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{L: listing})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	log.Info().Msg("API stopped")
}
