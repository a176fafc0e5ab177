// Package controllers implementa los handlers HTTP. Cada controller traduce
// request a llamada de servicio y error de dominio a httperrors.
package controllers

import (
	"context"
	"net/http"

	"github.com/dropDatabas3/idlink/internal/auth"
	"github.com/dropDatabas3/idlink/internal/domain/repository"
	"github.com/dropDatabas3/idlink/internal/http/dto"
	httperrors "github.com/dropDatabas3/idlink/internal/http/errors"
	"github.com/dropDatabas3/idlink/internal/identity"
	"github.com/dropDatabas3/idlink/internal/session"
)

// Pinger es cualquier dependencia que readyz debe chequear.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps agrupa los servicios que usan los controllers.
type Deps struct {
	Store      repository.Store
	Login      *auth.LoginGuard
	Passwords  *auth.Passwords
	Social     *identity.SocialLogin
	Registry   *identity.Registry
	Disconnect *identity.Guard
	Tokens     *session.Issuer
	// Checks son los backends que readyz pinguea, por nombre.
	Checks map[string]Pinger

	DefaultAvatarURL string
}

// Controllers agrupa todos los controllers.
type Controllers struct {
	Auth      *AuthController
	Social    *SocialController
	Providers *ProvidersController
	Account   *AccountController
	Health    *HealthController
}

// New arma los controllers a partir de d.
func New(d Deps) *Controllers {
	p := presenter{identities: d.Store.Identities(), defaultAvatar: d.DefaultAvatarURL}
	return &Controllers{
		Auth:      &AuthController{login: d.Login, passwords: d.Passwords, tokens: d.Tokens, present: p},
		Social:    &SocialController{social: d.Social, tokens: d.Tokens, present: p},
		Providers: &ProvidersController{registry: d.Registry},
		Account: &AccountController{
			accounts:  d.Store.Accounts(),
			guard:     d.Disconnect,
			passwords: d.Passwords,
			present:   p,
		},
		Health: &HealthController{checks: d.Checks},
	}
}

// presenter arma el AccountResponse con avatar de display e identidades.
type presenter struct {
	identities    repository.IdentityRepository
	defaultAvatar string
}

func (p presenter) account(ctx context.Context, acc *repository.Account) (dto.AccountResponse, error) {
	ids, err := p.identities.ListByAccount(ctx, acc.ID)
	if err != nil {
		return dto.AccountResponse{}, err
	}
	out := dto.AccountResponse{
		ID:            acc.ID,
		Email:         acc.Email,
		Name:          acc.Name,
		AvatarURL:     identity.DisplayAvatar(acc, p.defaultAvatar),
		EmailVerified: acc.EmailVerifiedAt != nil,
		HasPassword:   acc.HasUsablePassword(),
		CreatedAt:     acc.CreatedAt,
	}
	for _, li := range ids {
		out.Identities = append(out.Identities, dto.IdentityResponse{
			Provider:   li.Provider,
			LastUsedAt: li.LastUsedAt,
			CreatedAt:  li.CreatedAt,
		})
	}
	return out, nil
}

func (p presenter) token(ctx context.Context, tokens *session.Issuer, acc *repository.Account, remember bool) (dto.TokenResponse, error) {
	tk, err := tokens.Issue(acc.ID, remember)
	if err != nil {
		return dto.TokenResponse{}, err
	}
	body, err := p.account(ctx, acc)
	if err != nil {
		return dto.TokenResponse{}, err
	}
	return dto.TokenResponse{
		AccessToken: tk.Value,
		TokenType:   "Bearer",
		ExpiresIn:   int64(tk.ExpiresIn.Seconds()),
		Account:     body,
	}, nil
}

func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	httperrors.WriteError(w, r, err)
}

