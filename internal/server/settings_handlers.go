package server

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"

	"aigateway/internal/core"
	"aigateway/internal/settings"
)

// maskedProvider is a descriptor with the API key masked for display.
type maskedProvider struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	APIKey  string `json:"api_key"`
	Model   string `json:"model"`
	BaseURL string `json:"base_url"`
	Enabled bool   `json:"enabled"`
}

func maskProvider(desc settings.ProviderConfig) maskedProvider {
	return maskedProvider{
		ID:      desc.ID,
		Name:    desc.Name,
		APIKey:  settings.MaskKey(desc.APIKey),
		Model:   desc.Model,
		BaseURL: desc.BaseURL,
		Enabled: desc.Enabled,
	}
}

func maskConfig(cfg *settings.Config) map[string]interface{} {
	providers := make([]maskedProvider, 0, len(cfg.Providers))
	for _, desc := range cfg.Providers {
		providers = append(providers, maskProvider(desc))
	}
	sort.Slice(providers, func(i, j int) bool { return providers[i].ID < providers[j].ID })
	return map[string]interface{}{
		"providers":        providers,
		"default_provider": cfg.DefaultProvider,
	}
}

func (s *Server) handleGetSettings(c echo.Context) error {
	cfg, err := s.store.Load(c.Request().Context())
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, maskConfig(cfg))
}

func (s *Server) handleGetProvider(c echo.Context) error {
	id := c.Param("id")
	desc, err := s.store.Provider(c.Request().Context(), id)
	if err != nil {
		return handleError(c, err)
	}
	if desc == nil {
		return handleError(c, settings.ErrProviderNotFound)
	}
	return c.JSON(http.StatusOK, maskProvider(*desc))
}

func (s *Server) handleUpdateProvider(c echo.Context) error {
	id := c.Param("id")

	var updates settings.ProviderUpdates
	if err := c.Bind(&updates); err != nil {
		return handleError(c, core.NewInvalidRequestError("invalid request body", err))
	}
	if updates.Empty() {
		return handleError(c, core.NewInvalidRequestError("no updatable fields in request", nil))
	}

	desc, err := s.store.UpdateProvider(c.Request().Context(), id, updates)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, maskProvider(*desc))
}

type defaultProviderRequest struct {
	Provider string `json:"provider"`
}

func (s *Server) handleSetDefaultProvider(c echo.Context) error {
	var req defaultProviderRequest
	if err := c.Bind(&req); err != nil {
		return handleError(c, core.NewInvalidRequestError("invalid request body", err))
	}
	if req.Provider == "" {
		return handleError(c, core.NewInvalidRequestError("provider must not be empty", nil))
	}

	if err := s.store.SetDefaultProvider(c.Request().Context(), req.Provider); err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"default_provider": req.Provider,
	})
}

func (s *Server) handleResetSettings(c echo.Context) error {
	cfg, err := s.store.Reset(c.Request().Context())
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, maskConfig(cfg))
}
