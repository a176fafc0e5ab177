package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/idlink/internal/http/dto"
	"github.com/dropDatabas3/idlink/internal/http/helpers"
	"github.com/dropDatabas3/idlink/internal/identity"
	"github.com/dropDatabas3/idlink/internal/observability/logger"
	"github.com/dropDatabas3/idlink/internal/session"
)

// SocialController recibe assertions ya verificadas por el cliente OAuth.
type SocialController struct {
	social  *identity.SocialLogin
	tokens  *session.Issuer
	present presenter
}

// Assertion maneja POST /v2/auth/social/{provider}/assertion.
func (c *SocialController) Assertion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider := chi.URLParam(r, "provider")
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("SocialController.Assertion"), logger.Provider(provider))

	var req dto.SocialAssertionRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		writeErr(w, r, err)
		return
	}

	res, err := c.social.Complete(ctx, provider, req.RawAssertion)
	if err != nil {
		log.Info("social login rejected", logger.Err(err))
		writeErr(w, r, err)
		return
	}

	resp, err := c.present.token(ctx, c.tokens, res.Account, req.Remember)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	resp.Outcome = string(res.Outcome)
	helpers.WriteJSON(w, http.StatusOK, resp)
}
