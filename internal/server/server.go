// Package server assembles the HTTP surface: the GraphQL endpoint,
// health and metrics, with the observability middlewares every route
// shares.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	channeldomain "github.com/smallbiznis/shipgraph/internal/channel/domain"
	"github.com/smallbiznis/shipgraph/internal/config"
	"github.com/smallbiznis/shipgraph/internal/graphql/loaders"
	"github.com/smallbiznis/shipgraph/internal/observability"
	obslogger "github.com/smallbiznis/shipgraph/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/shipgraph/internal/observability/metrics"
	obstracing "github.com/smallbiznis/shipgraph/internal/observability/tracing"
	shippingdomain "github.com/smallbiznis/shipgraph/internal/shipping/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(RegisterRoutes),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware())
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

type RouteParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Log           *zap.Logger
	Schema        *graphql.Schema
	Shipping      shippingdomain.Repository
	Channels      channeldomain.Repository
	LoaderMetrics *obsmetrics.LoaderMetrics
}

// RegisterRoutes mounts the GraphQL endpoint. Every request gets a
// fresh loader set; the admin API key, when configured, grants the
// manage-shipping capability.
func RegisterRoutes(p RouteParams) {
	handler := &relay.Handler{Schema: p.Schema}

	group := p.Gin.Group("/graphql")
	group.Use(CapabilityMiddleware(p.Cfg.AdminAPIKey))
	group.Use(loaders.Middleware(p.Shipping, p.Channels, p.LoaderMetrics))
	group.POST("", gin.WrapH(handler))

	p.Log.Named("http.server").Info("graphql endpoint registered",
		zap.Bool("admin_key_configured", p.Cfg.AdminAPIKey != ""))
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
