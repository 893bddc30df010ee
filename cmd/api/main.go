package main

// @title Residential History Map API
// @version 1.0.0
// @description Карта жилья Бухареста по годам 1989-2017.
// @description
// @description Основные возможности:
// @description - Точки дом/квартира за выбранный год (JSON или CSV)
// @description - Готовое представление карты: маркеры, центр, границы, легенда
// @description - Статистика конвейера по году
// @description - HTML страница со слайдером лет

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/residential-history/docs"
	"github.com/residential-history/internal/app"
	"github.com/residential-history/internal/config"
	httpDelivery "github.com/residential-history/internal/delivery/http"
	"github.com/residential-history/internal/delivery/http/handler"
	"github.com/residential-history/internal/pkg/logger"
	"github.com/residential-history/internal/worker"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Residential History Map")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("data_source", cfg.Data.Source),
	)

	// 3. Data source, cache, use cases
	application, err := app.New(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Error("Failed to close connections", zap.Error(err))
		}
	}()

	// 4. Load source tables up front: missing files fail the start, not the first request
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	if err := application.Warmup(ctx); err != nil {
		cancel()
		log.Fatal("Source tables unavailable",
			zap.String("coord_path", cfg.Data.CoordPath),
			zap.String("trajectory_path", cfg.Data.TrajectoryPath),
			zap.String("trajectory_sheet", cfg.Data.TrajectorySheet),
			zap.Error(err),
		)
	}
	cancel()

	// 5. Initialize HTTP Handlers
	mapHandler := handler.NewMapHandler(application.Maps, log)
	healthHandler := handler.NewHealthHandler(application)
	pageHandler, err := handler.NewPageHandler(application.Maps)
	if err != nil {
		log.Fatal("Failed to parse page templates", zap.Error(err))
	}

	log.Info("HTTP handlers initialized")

	// 6. Initialize HTTP Server
	server := httpDelivery.NewServer(
		cfg,
		log,
		application.Metrics.Registry(),
		application.Metrics,
		mapHandler,
		pageHandler,
		healthHandler,
	)

	// 7. Background reload, only when configured
	workers := worker.NewWorkerManager(log)
	if cfg.Data.ReloadInterval > 0 {
		workers.Register(worker.NewDatasetReloadWorker(application.Datasets, cfg.Data.ReloadInterval, log))
		if err := workers.Start(context.Background()); err != nil {
			log.Fatal("Failed to start workers", zap.Error(err))
		}
	}

	// 8. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 9. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	if workers.Len() > 0 {
		if err := workers.Stop(ctx); err != nil {
			log.Error("Workers shutdown error", zap.Error(err))
		}
	}

	log.Info("Server stopped successfully")
}
