package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/dkeye/GroupChat/internal/adapters/http"
	"github.com/dkeye/GroupChat/internal/adapters/auth"
	"github.com/dkeye/GroupChat/internal/adapters/notify"
	"github.com/dkeye/GroupChat/internal/adapters/storage/sqldb"
	"github.com/dkeye/GroupChat/internal/app"
	"github.com/dkeye/GroupChat/internal/app/gateway"
	"github.com/dkeye/GroupChat/internal/config"
	"github.com/dkeye/GroupChat/internal/metrics"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg)

	store, err := sqldb.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}()
	if err := store.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	notifier, notifyCloser, err := notify.New(cfg.Notify)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Notify.Driver).Msg("failed to set up notifier")
	}
	defer func() {
		if err := notifyCloser.Close(); err != nil {
			log.Error().Err(err).Msg("close notifier")
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	gw := &gateway.Gateway{
		Registry:  app.NewRegistry(),
		Rooms:     app.NewRoomManager(),
		Policy:    app.PolicyFor(cfg.Gateway.Backpressure),
		Limiter:   app.NewRateLimiter(cfg.Gateway.RateLimit, cfg.Gateway.RateInterval),
		Verifier:  auth.NewJWTVerifier(cfg.JWT),
		Oracle:    store,
		Store:     store,
		Directory: store,
		Notifier:  notifier,
		Metrics:   metrics.NewGateway(reg),
		Options: gateway.Options{
			ReconcileTimeout: cfg.Gateway.ReconcileTimeout,
			RevalidateOnSend: cfg.Gateway.RevalidateOnSend,
		},
	}

	r := router.SetupRouter(ctx, cfg, gw, reg, store)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("chat gateway started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	// let in-flight offline notices reach the notifier before it closes
	gw.Wait()
	log.Info().Msg("Server exited gracefully")
}

func setupLogger(cfg *config.Config) {
	if cfg.Mode != "debug" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		log.Warn().Str("log_level", cfg.LogLevel).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}
