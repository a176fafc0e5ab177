package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dropDatabas3/idlink/internal/auth"
	"github.com/dropDatabas3/idlink/internal/domain/repository"
	"github.com/dropDatabas3/idlink/internal/identity"
	"github.com/dropDatabas3/idlink/internal/observability/logger"
	"github.com/dropDatabas3/idlink/internal/session"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// FromError traduce un error de cualquier capa a un AppError.
// Lo que no tiene mapeo es un 500 que conserva la causa.
func FromError(err error) *AppError {
	var app *AppError
	if stderrors.As(err, &app) {
		return app
	}

	var pnc *identity.ProviderNotConnectedError
	var tma *auth.TooManyAttemptsError
	var ve *auth.ValidationError
	switch {
	case stderrors.Is(err, identity.ErrInvalidAssertion):
		return ErrSocialLoginFailed.WithCause(err)
	case stderrors.As(err, &pnc):
		return ErrProviderNotConnected.WithDetail(pnc.Provider).WithCause(err)
	case stderrors.Is(err, identity.ErrProviderNotConnected):
		return ErrProviderNotConnected.WithCause(err)
	case stderrors.Is(err, identity.ErrProviderAlreadyLinked):
		return ErrProviderAlreadyLinked.WithCause(err)
	case stderrors.Is(err, identity.ErrNoRemainingAuthMethod):
		return ErrNoRemainingAuthMethod.WithCause(err)
	case stderrors.Is(err, identity.ErrProviderDisabled):
		return ErrProviderDisabled.WithCause(err)
	case stderrors.Is(err, identity.ErrTransient):
		return ErrTransient.WithCause(err)
	case stderrors.As(err, &tma):
		return ErrTooManyAttempts.WithDetail(strconv.Itoa(tma.Seconds())).WithCause(err)
	case stderrors.Is(err, auth.ErrInvalidCredentials):
		return ErrInvalidCredentials.WithCause(err)
	case stderrors.Is(err, auth.ErrEmailTaken):
		return ErrEmailTaken.WithCause(err)
	case stderrors.As(err, &ve):
		d := ve.Field
		if len(ve.Reasons) > 0 {
			d += ": " + strings.Join(ve.Reasons, ",")
		}
		return ErrValidation.WithDetail(d).WithCause(err)
	case stderrors.Is(err, session.ErrInvalidToken):
		return ErrTokenInvalid.WithCause(err)
	case stderrors.Is(err, repository.ErrNotFound):
		return ErrNotFound.WithCause(err)
	}
	return ErrInternalServerError.WithCause(err)
}

// WriteError escribe el error como JSON. Los 5xx se loguean con la causa;
// los TooManyAttempts llevan Retry-After.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	app := FromError(err)

	var tma *auth.TooManyAttemptsError
	if stderrors.As(err, &tma) {
		w.Header().Set("Retry-After", strconv.Itoa(tma.Seconds()))
	}

	if app.HTTPStatus >= 500 && r != nil {
		logger.From(r.Context()).Error("request failed",
			logger.Layer("http"),
			logger.Status(app.HTTPStatus),
			logger.Op(app.Code),
			logger.Err(app.Err),
		)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(app.HTTPStatus)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Code:    app.Code,
		Message: app.Message,
		Detail:  app.Detail,
	})
}
