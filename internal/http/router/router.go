// Package router monta las rutas de la API sobre chi.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"github.com/dropDatabas3/idlink/internal/http/controllers"
	httperrors "github.com/dropDatabas3/idlink/internal/http/errors"
	mw "github.com/dropDatabas3/idlink/internal/http/middlewares"
	"github.com/dropDatabas3/idlink/internal/rate"
)

// Deps contiene lo necesario para armar el handler raíz.
type Deps struct {
	Controllers *controllers.Controllers
	Tokens      mw.TokenVerifier
	// IPLimiter limita requests por IP en los endpoints públicos (opcional).
	IPLimiter   rate.Limiter
	InternalKey string
	TrustProxy  bool
	CORSOrigins []string
	// Metrics se monta en /metrics si no es nil.
	Metrics http.Handler
}

// New arma el handler raíz.
func New(d Deps) http.Handler {
	c := d.Controllers
	r := chi.NewRouter()

	r.Use(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithClientIP(d.TrustProxy),
		mw.WithLogging(),
		mw.WithMetrics(),
	)
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins:   d.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID", "Accept-Language"},
			ExposedHeaders:   []string{"X-Request-ID", "Retry-After", "X-RateLimit-Remaining"},
			AllowCredentials: true,
			MaxAge:           600,
		}).Handler)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httperrors.WriteError(w, r, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httperrors.WriteError(w, r, httperrors.ErrMethodNotAllowed)
	})

	r.Get("/readyz", c.Health.Readyz)
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics)
	}

	r.Route("/v2", func(r chi.Router) {
		r.Use(mw.WithSecurityHeaders(), mw.WithNoStore())

		// públicos
		r.Group(func(r chi.Router) {
			if limit := mw.WithRateLimit(d.IPLimiter, mw.IPRateKey); limit != nil {
				r.Use(limit)
			}
			r.Post("/auth/login", c.Auth.Login)
			r.Post("/auth/register", c.Auth.Register)
			r.Get("/auth/providers", c.Providers.List)
		})

		// servicio a servicio: el cliente OAuth ya hizo el code exchange
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireInternalKey(d.InternalKey))
			r.Post("/auth/social/{provider}/assertion", c.Social.Assertion)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireBearer(d.Tokens))
			r.Get("/accounts/me", c.Account.Me)
			r.Put("/accounts/me/password", c.Account.SetPassword)
			r.Delete("/accounts/me/identities/{provider}", c.Account.DisconnectIdentity)
		})
	})

	return r
}
