package http

import (
	"context"
	"net/http"
	"time"

	"github.com/dkeye/GroupChat/internal/adapters/signal"
	"github.com/dkeye/GroupChat/internal/app/gateway"
	"github.com/dkeye/GroupChat/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

func ConnIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set(signal.ConnIDKey, id)
		c.Header("X-Connection-ID", id)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, gw *gateway.Gateway, gatherer prometheus.Gatherer, health HealthChecker) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		if health != nil {
			hctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := health.Ping(hctx); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Msg("health check failed")
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "connections": gw.Registry.Count()})
	})
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	ctrl := signal.NewSignalWSController(gw, cfg)

	api := r.Group("/api")
	api.Use(ConnIDMiddleware())

	api.GET("/ws/chat", func(c *gin.Context) {
		log.Debug().Str("module", "adapters.http").Str("sid", c.GetString(signal.ConnIDKey)).Msg("ws chat endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})

	// Live occupancy only; persisted groups belong to the CRUD service.
	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gw.Rooms.List())
	})

	log.Info().Str("module", "adapters.http").Str("mode", cfg.Mode).Msg("router setup")
	return r
}
