package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dimitrije/hydra-collections/internal/config"
	"github.com/dimitrije/hydra-collections/internal/handlers"
	"github.com/dimitrije/hydra-collections/internal/logger"
	authmw "github.com/dimitrije/hydra-collections/internal/middleware"
	"github.com/dimitrije/hydra-collections/internal/services"
	"github.com/dimitrije/hydra-collections/internal/sse"
	"github.com/dimitrije/hydra-collections/internal/store"
	"github.com/juju/clock"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	base, err := store.Open(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("failed to open object store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	objects := store.WithMetrics(store.WithBreaker(base, store.BreakerConfig{
		MaxFailures: cfg.Breaker.MaxFailures,
		Timeout:     cfg.Breaker.Timeout,
	}, zl), reg)
	defer objects.Close()

	hub := sse.NewHub()
	go hub.Run(ctx)

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTExpiry, clock.WallClock)
	collectionService := services.NewCollectionService(objects, clock.WallClock, zl, hub)
	memberService := services.NewMemberService(objects, clock.WallClock, zl, hub)

	collectionHandler := handlers.NewCollectionHandler(collectionService)
	memberHandler := handlers.NewMemberHandler(memberService)
	sseHandler := handlers.NewSSEHandler(hub, collectionService)
	metaHandler := handlers.NewMetaHandler(objects)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api/v1")

	api.Get("/health", metaHandler.Health)
	api.Get("/terms", metaHandler.Terms)

	protected := api.Group("")
	protected.Use(authmw.Auth(jwtService))

	protected.Get("/me", metaHandler.Me)

	protected.Post("/collections", collectionHandler.Create)
	protected.Get("/collections/:collectionId", collectionHandler.Get)
	protected.Patch("/collections/:collectionId", collectionHandler.Update)
	protected.Delete("/collections/:collectionId", collectionHandler.Delete)
	protected.Get("/collections/:collectionId/abilities", collectionHandler.Abilities)
	protected.Get("/collections/:collectionId/members", collectionHandler.ListMembers)
	protected.Patch("/collections/:collectionId/members", collectionHandler.SetMembers)
	protected.Post("/collections/:collectionId/members/:memberId", collectionHandler.AddMember)
	protected.Delete("/collections/:collectionId/members/:memberId", collectionHandler.RemoveMember)

	protected.Get("/collections/:collectionId/events", sseHandler.Connect)
	protected.Post("/events/:clientId/collections/:collectionId", sseHandler.Subscribe)
	protected.Delete("/events/:clientId/collections/:collectionId", sseHandler.Unsubscribe)

	protected.Post("/members", memberHandler.Create)
	protected.Get("/members/:memberId", memberHandler.Get)
	protected.Delete("/members/:memberId", memberHandler.Delete)
	protected.Get("/members/:memberId/collections", memberHandler.Collections)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           authmw.Observe(zl, authmw.NewHTTPMetrics(reg))(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.MetricsPort),
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("metrics server starting", zap.String("addr", metricsServer.Addr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Error("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		zl.Info("server starting", zap.String("addr", server.Addr), zap.String("store", cfg.StoreDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zl.Error("server shutdown failed", zap.Error(err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		zl.Error("metrics server shutdown failed", zap.Error(err))
	}
}
