package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/codyseavey/pokedex/backend/internal/api"
	"github.com/codyseavey/pokedex/backend/internal/config"
	"github.com/codyseavey/pokedex/backend/internal/services"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize services
	pokeAPI := services.NewPokeAPIService(services.PokeAPIOptions{
		BaseURL:           cfg.PokeAPIBaseURL,
		Timeout:           cfg.PokeAPITimeout,
		RequestsPerSecond: cfg.PokeAPIRPS,
		Burst:             cfg.PokeAPIBurst,
		BulkListLimit:     cfg.BulkListLimit,
		Logger:            logger,
	})

	browser := services.NewBrowser(pokeAPI, services.BrowserOptions{
		PageSize: cfg.PageSize,
		FanOut:   cfg.FanOutConcurrency,
		Thresholds: services.RarityThresholds{
			VeryRareMax: cfg.VeryRareMaxCaptureRate,
			RareMax:     cfg.RareMaxCaptureRate,
		},
		Logger: logger,
	})
	details := services.NewDetailLoader(pokeAPI, logger)
	sessions := services.NewSessionStore(browser, details, cfg.MaxSessions, cfg.SessionTTL, logger)

	// Setup router
	router := api.SetupRouter(browser, details, sessions, cfg.CORSAllowedOrigins)

	// Create HTTP server for graceful shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Port), zap.String("pokeapi", cfg.PokeAPIBaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	zcfg := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}
