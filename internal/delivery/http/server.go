package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/residential-history/internal/config"
	"github.com/residential-history/internal/delivery/http/handler"
	"github.com/residential-history/internal/delivery/http/middleware"
	"github.com/residential-history/internal/pkg/errors"
	"github.com/residential-history/internal/pkg/utils"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"
)

// Server - HTTP сервер на основе Fiber
type Server struct {
	app      *fiber.App
	config   *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry

	// Handlers
	mapHandler    *handler.MapHandler
	pageHandler   *handler.PageHandler
	healthHandler *handler.HealthHandler
}

// NewServer - создание нового HTTP сервера
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	registry *prometheus.Registry,
	recorder middleware.RequestRecorder,
	mapHandler *handler.MapHandler,
	pageHandler *handler.PageHandler,
	healthHandler *handler.HealthHandler,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "Residential History Map",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:           app,
		config:        cfg,
		logger:        logger,
		registry:      registry,
		mapHandler:    mapHandler,
		pageHandler:   pageHandler,
		healthHandler: healthHandler,
	}

	s.setupMiddlewares(recorder)
	s.setupRoutes()

	return s
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares(recorder middleware.RequestRecorder) {
	s.app.Use(middleware.Recovery(s.logger))
	s.app.Use(middleware.Logger(s.logger, recorder))
	s.app.Use(middleware.CORS())
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

// setupRoutes - настройка маршрутов
func (s *Server) setupRoutes() {
	// Swagger documentation route
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	// Prometheus metrics
	if s.registry != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	}

	// Pages
	if s.pageHandler != nil {
		s.app.Get("/", s.pageHandler.Index)
		s.app.Get("/map", s.pageHandler.Map)
	}

	api := s.app.Group("/api/v1")

	// Health check
	api.Get("/health", s.healthHandler.Health)

	// Map routes
	api.Get("/map", s.mapHandler.GetMap)
	api.Get("/points", s.mapHandler.GetPoints)
	api.Get("/years", s.mapHandler.GetYears)
	api.Get("/stats", s.mapHandler.GetStats)

	// Admin
	api.Post("/admin/reload", s.mapHandler.Reload)
}

// App returns the underlying fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

// Start - запуск HTTP сервера
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown HTTP сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler - кастомный обработчик ошибок
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if _, ok := errors.As(err); ok {
			return utils.SendError(c, err)
		}

		code := fiber.StatusInternalServerError
		errCode := errors.ErrInternalServer.Code
		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
			switch {
			case code == fiber.StatusNotFound:
				errCode = "NOT_FOUND"
			case code < fiber.StatusInternalServerError:
				errCode = errors.ErrInvalidRequest.Code
			}
		}

		if code >= fiber.StatusInternalServerError {
			logger.Error("HTTP Error",
				zap.String("path", c.Path()),
				zap.Int("status", code),
				zap.Error(err),
			)
		}

		return c.Status(code).JSON(utils.ErrorResponse{
			Error: errors.New(errCode, err.Error(), code),
		})
	}
}
