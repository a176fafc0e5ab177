package controllers

import (
	"net/http"

	"github.com/dropDatabas3/idlink/internal/http/dto"
	"github.com/dropDatabas3/idlink/internal/http/helpers"
	"github.com/dropDatabas3/idlink/internal/identity"
)

// ProvidersController maneja GET /v2/auth/providers.
type ProvidersController struct {
	registry *identity.Registry
}

func (c *ProvidersController) List(w http.ResponseWriter, r *http.Request) {
	enabled := c.registry.EnabledProviders()
	resp := dto.ProvidersResponse{Providers: make([]dto.ProviderResponse, 0, len(enabled))}
	for _, p := range enabled {
		resp.Providers = append(resp.Providers, dto.ProviderResponse{Key: p.Key, DisplayName: p.DisplayName})
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}
