package middlewares

import (
	"crypto/subtle"
	"net/http"
	"strings"

	httperrors "github.com/dropDatabas3/idlink/internal/http/errors"
	"github.com/dropDatabas3/idlink/internal/observability/logger"
)

// TokenVerifier valida un access token y retorna el accountID.
type TokenVerifier interface {
	Verify(raw string) (string, error)
}

// RequireBearer exige "Authorization: Bearer <token>" válido.
func RequireBearer(v TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, raw, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
				w.Header().Set("WWW-Authenticate", `Bearer`)
				httperrors.WriteError(w, r, httperrors.ErrTokenMissing)
				return
			}
			sub, err := v.Verify(strings.TrimSpace(raw))
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				httperrors.WriteError(w, r, err)
				return
			}
			ctx := WithAccountID(r.Context(), sub)
			ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.AccountID(sub)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireInternalKey protege endpoints que solo llaman otros servicios.
func RequireInternalKey(key string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get("X-Internal-Key")
			if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				httperrors.WriteError(w, r, httperrors.ErrUnauthorized.WithDetail("internal key required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
