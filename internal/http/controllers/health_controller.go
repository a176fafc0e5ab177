package controllers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/dropDatabas3/idlink/internal/http/dto"
	"github.com/dropDatabas3/idlink/internal/http/helpers"
	"github.com/dropDatabas3/idlink/internal/observability/logger"
)

// HealthController maneja /readyz.
type HealthController struct {
	checks map[string]Pinger
}

// Readyz pinguea cada backend con timeout corto; 503 si alguno falla.
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := dto.ReadyResponse{Status: "ok", Checks: map[string]string{}}
	status := http.StatusOK
	for _, name := range names {
		if err := c.checks[name].Ping(ctx); err != nil {
			logger.From(ctx).Warn("readiness check failed", logger.Component(name), logger.Err(err))
			resp.Checks[name] = "error"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	helpers.WriteJSON(w, status, resp)
}
