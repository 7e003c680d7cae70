package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campusnet/backend/internal/api"
	"campusnet/backend/internal/app"
	"campusnet/backend/internal/auth"
	"campusnet/backend/internal/metrics"
	"campusnet/backend/pkg/config"
	"campusnet/backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	// Initialize logger
	if err := logger.Init(cfg.Env); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting HTTP API server...", zap.String("store", cfg.StoreBackend))

	ctx := context.Background()
	st, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open store", zap.Error(err))
	}
	defer st.Close(context.Background())

	verifier, err := auth.NewJWTVerifier(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		log.Fatal("Failed to create token verifier", zap.Error(err))
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(app.NewServices(st), verifier, cfg, log)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

func newRouter(svc *app.Services, verifier api.TokenVerifier, cfg *config.Config, log *zap.Logger) *gin.Engine {
	return api.NewRouter(api.Deps{
		Directory: svc.Directory,
		Graph:     svc.Graph,
		Posts:     svc.Posts,
		Comments:  svc.Comments,
		Profiles:  svc.Profiles,
		Feed:      svc.Feed,
		Verifier:  verifier,
		Metrics:   metrics.NewCollector(),
		Logger:    log.Named("http"),
		Health:    app.Health(svc.Store),
	}, api.Options{
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		FeedPageSize:   cfg.FeedPageSize,
	})
}
