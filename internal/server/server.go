// Package server wires the gateway and settings store into an Echo HTTP
// server: chat/probe/listing routes, settings administration, metrics and
// the static admin frontend.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"aigateway/config"
	"aigateway/internal/core"
	"aigateway/internal/gateway"
	"aigateway/internal/settings"
	"aigateway/internal/version"
)

// Server is the HTTP front of the gateway.
type Server struct {
	echo    *echo.Echo
	gateway *gateway.Gateway
	store   settings.Store
	cfg     *config.Config
}

// New builds the server and registers all routes.
func New(cfg *config.Config, gw *gateway.Gateway, store settings.Store) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.BodyLimit(cfg.Server.BodySizeLimit))

	s := &Server{
		echo:    e,
		gateway: gw,
		store:   store,
		cfg:     cfg,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	e := s.echo

	e.GET("/health", s.handleHealth)

	ai := e.Group("/api/ai")
	ai.POST("/chat", s.handleChat)
	ai.GET("/providers", s.handleListProviders)
	ai.POST("/test", s.handleProbe)

	st := e.Group("/api/settings")
	st.GET("/providers", s.handleGetSettings)
	st.GET("/provider/:id", s.handleGetProvider)
	st.PUT("/provider/:id", s.handleUpdateProvider)
	st.PUT("/default-provider", s.handleSetDefaultProvider)
	st.POST("/reset", s.handleResetSettings)

	if s.cfg.Metrics.Enabled {
		e.GET(s.cfg.Metrics.Endpoint, echo.WrapHandler(promhttp.Handler()))
	}

	// admin frontend, served only when the directory is present
	if info, err := os.Stat(s.cfg.Server.StaticDir); err == nil && info.IsDir() {
		e.Static("/", s.cfg.Server.StaticDir)
	}
}

// Start begins serving on the configured port. It blocks until the server
// stops.
func (s *Server) Start() error {
	addr := ":" + s.cfg.Server.Port
	slog.Info("http server listening", "addr", addr, "version", version.Version)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}

// handleError maps domain errors onto HTTP responses. Gateway errors carry
// their own status mapping; a settings lookup miss is a plain 404.
func handleError(c echo.Context, err error) error {
	var gwErr *core.GatewayError
	if errors.As(err, &gwErr) {
		return c.JSON(gwErr.HTTPStatusCode(), gwErr.ToJSON())
	}
	if errors.Is(err, settings.ErrProviderNotFound) {
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"error": map[string]interface{}{
				"type":    core.ErrorTypeNotFound,
				"message": err.Error(),
			},
		})
	}
	slog.Error("internal error", "path", c.Path(), "error", err)
	return c.JSON(http.StatusInternalServerError, map[string]interface{}{
		"error": map[string]interface{}{
			"type":    "internal_error",
			"message": "internal server error",
		},
	})
}
