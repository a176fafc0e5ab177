package controllers

import (
	"errors"
	"net/http"

	"github.com/dropDatabas3/idlink/internal/auth"
	"github.com/dropDatabas3/idlink/internal/http/dto"
	httperrors "github.com/dropDatabas3/idlink/internal/http/errors"
	"github.com/dropDatabas3/idlink/internal/http/helpers"
	"github.com/dropDatabas3/idlink/internal/http/i18n"
	mw "github.com/dropDatabas3/idlink/internal/http/middlewares"
	"github.com/dropDatabas3/idlink/internal/observability/logger"
	"github.com/dropDatabas3/idlink/internal/session"
)

// AuthController maneja login y registro con password.
type AuthController struct {
	login     *auth.LoginGuard
	passwords *auth.Passwords
	tokens    *session.Issuer
	present   presenter
}

// Login maneja POST /v2/auth/login (JSON o form).
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("AuthController.Login"))

	var req dto.LoginRequest
	if helpers.IsForm(r) {
		if err := helpers.ReadForm(w, r); err != nil {
			writeErr(w, r, err)
			return
		}
		req.Email = r.PostForm.Get("email")
		req.Password = r.PostForm.Get("password")
		req.Remember = helpers.ParseBool(r.PostForm.Get("remember"))
	} else if err := helpers.ReadJSON(w, r, &req); err != nil {
		writeErr(w, r, err)
		return
	}

	acc, err := c.login.Authenticate(ctx, auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Origin:   mw.GetClientIP(ctx),
	})
	if err != nil {
		var tma *auth.TooManyAttemptsError
		if errors.As(err, &tma) {
			writeErr(w, r, httperrors.ErrTooManyAttempts.
				WithMessage(i18n.Lockout(i18n.Tag(r), tma.Seconds())).
				WithCause(err))
			return
		}
		writeErr(w, r, err)
		return
	}

	resp, err := c.present.token(ctx, c.tokens, acc, req.Remember)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	log.Debug("password login", logger.AccountID(acc.ID))
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// Register maneja POST /v2/auth/register.
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.RegisterRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		writeErr(w, r, err)
		return
	}
	acc, err := c.passwords.Register(ctx, auth.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		writeErr(w, r, err)
		return
	}
	resp, err := c.present.token(ctx, c.tokens, acc, req.Remember)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, resp)
}
