package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/idlink/internal/auth"
	"github.com/dropDatabas3/idlink/internal/domain/repository"
	"github.com/dropDatabas3/idlink/internal/http/dto"
	httperrors "github.com/dropDatabas3/idlink/internal/http/errors"
	"github.com/dropDatabas3/idlink/internal/http/helpers"
	mw "github.com/dropDatabas3/idlink/internal/http/middlewares"
	"github.com/dropDatabas3/idlink/internal/identity"
	"github.com/dropDatabas3/idlink/internal/observability/logger"
)

// AccountController maneja los endpoints /v2/accounts/me (requieren bearer).
type AccountController struct {
	accounts  repository.AccountRepository
	guard     *identity.Guard
	passwords *auth.Passwords
	present   presenter
}

// Me maneja GET /v2/accounts/me.
func (c *AccountController) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mw.GetAccountID(ctx)
	if id == "" {
		writeErr(w, r, httperrors.ErrUnauthorized)
		return
	}
	acc, err := c.accounts.GetByID(ctx, id)
	if repository.IsNotFound(err) {
		// token válido de una cuenta que ya no existe
		writeErr(w, r, httperrors.ErrTokenInvalid)
		return
	}
	if err != nil {
		writeErr(w, r, err)
		return
	}
	resp, err := c.present.account(ctx, acc)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// DisconnectIdentity maneja DELETE /v2/accounts/me/identities/{provider}.
func (c *AccountController) DisconnectIdentity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider := chi.URLParam(r, "provider")
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("AccountController.DisconnectIdentity"))

	acc, err := c.guard.Disconnect(ctx, mw.GetAccountID(ctx), provider)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	resp, err := c.present.account(ctx, acc)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	log.Info("identity disconnected", logger.Provider(provider))
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// SetPassword maneja PUT /v2/accounts/me/password.
func (c *AccountController) SetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req dto.SetPasswordRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		writeErr(w, r, err)
		return
	}
	if err := c.passwords.SetPassword(ctx, mw.GetAccountID(ctx), req.Password); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
