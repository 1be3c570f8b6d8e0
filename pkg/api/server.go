package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/JayJamieson/sqlite-api/pkg/config"
	"github.com/JayJamieson/sqlite-api/pkg/engine"
	"github.com/JayJamieson/sqlite-api/pkg/metrics"
	"github.com/JayJamieson/sqlite-api/pkg/utils"
	"github.com/JayJamieson/sqlite-api/pkg/workspace"
)

type Server struct {
	config    *config.Config
	router    *echo.Echo
	registry  *prometheus.Registry
	workspace *workspace.Workspace
}

// New builds the server. An engine that fails to start is logged and
// reported by every database route; the server itself still comes up.
func New(cfg *config.Config) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(cfg.Level())

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	logger := log.New("workspace")
	logger.SetLevel(cfg.Level())

	ws := workspace.New(workspace.Options{
		Logger:  logger,
		Metrics: metrics.New(registry),
		Client:  utils.NewHTTPClient(cfg.DownloadTimeout),
	})

	err := ws.Init(func() (engine.Loader, error) {
		eng, err := engine.New(engine.Options{Driver: cfg.Driver, WorkDir: cfg.WorkDir})
		if err != nil {
			return nil, err
		}
		return eng, nil
	})
	if err != nil {
		e.Logger.Errorf("Failed to initialize engine: %v", err)
	}

	doc, err := LoadSpec(context.Background())
	if err != nil {
		return nil, err
	}

	validator, err := newValidator(doc)
	if err != nil {
		return nil, err
	}

	server := &Server{
		config:    cfg,
		router:    e,
		registry:  registry,
		workspace: ws,
	}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(validator)

	RegisterHandlers(e, server)
	server.setupDefaultRoutes()
	return server, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Workspace returns the workspace the routes operate on.
func (s *Server) Workspace() *workspace.Workspace {
	return s.workspace
}

func (s *Server) setupDefaultRoutes() {
	s.router.GET("/doc.yml", func(c echo.Context) error {
		return c.Blob(http.StatusOK, "application/yaml", specYAML)
	})
	s.router.GET("/swagger/*", echoSwagger.EchoWrapHandlerV3(func(c *echoSwagger.Config) {
		c.URLs = []string{"/doc.yml"}
	}))
	s.router.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	s.router.GET("/healthz", s.healthz)
}

func (s *Server) healthz(c echo.Context) error {
	if !s.workspace.Ready() {
		return createErrorResponse(c, http.StatusServiceUnavailable, "Engine not ready", workspace.ErrEngineNotReady.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) Start() error {
	go func() {
		addr := fmt.Sprintf(":%d", s.config.Port)
		if err := s.router.Start(addr); err != nil && err != http.ErrServerClosed {
			s.router.Logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.router.Logger.Info("Shutting down")

	if err := s.router.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	if err := s.workspace.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}
