package identity

import (
	"fmt"
	"strings"

	"github.com/dropDatabas3/idlink/internal/validation"
)

// RawAssertion es lo que entrega el cliente OAuth tras el code exchange.
type RawAssertion struct {
	SubjectID    string  `json:"subject_id"`
	Email        string  `json:"email"`
	Name         *string `json:"name,omitempty"`
	Nickname     *string `json:"nickname,omitempty"`
	AvatarURL    *string `json:"avatar_url,omitempty"`
	AccessToken  string  `json:"access_token"`
	RefreshToken *string `json:"refresh_token,omitempty"`
}

// ProviderAssertion es la versión validada y normalizada.
type ProviderAssertion struct {
	SubjectID    string
	Email        string // lowercase
	DisplayName  string // name, o nickname si name falta; puede ser ""
	Nickname     string
	AvatarURL    *string // nil si faltaba o era inválido
	AccessToken  string
	RefreshToken *string
}

// Validate normaliza y valida una assertion. No tiene side effects.
// Un avatar inválido se descarta; nunca bloquea el login.
func Validate(raw RawAssertion) (ProviderAssertion, error) {
	subject := strings.TrimSpace(raw.SubjectID)
	if subject == "" {
		return ProviderAssertion{}, fmt.Errorf("%w: missing subject", ErrInvalidAssertion)
	}
	email := strings.TrimSpace(raw.Email)
	if email == "" {
		return ProviderAssertion{}, fmt.Errorf("%w: missing email", ErrInvalidAssertion)
	}
	if !validation.Email(email) {
		return ProviderAssertion{}, fmt.Errorf("%w: malformed email", ErrInvalidAssertion)
	}

	out := ProviderAssertion{
		SubjectID:    subject,
		Email:        strings.ToLower(email),
		Nickname:     trimmed(raw.Nickname),
		AvatarURL:    validAvatar(raw.AvatarURL),
		AccessToken:  raw.AccessToken,
		RefreshToken: nonEmpty(raw.RefreshToken),
	}
	out.DisplayName = trimmed(raw.Name)
	if out.DisplayName == "" {
		out.DisplayName = out.Nickname
	}
	return out, nil
}

func validAvatar(p *string) *string {
	s := trimmed(p)
	if s == "" {
		return nil
	}
	if !validation.HTTPURL(s) {
		return nil
	}
	return &s
}

func trimmed(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func nonEmpty(p *string) *string {
	if s := trimmed(p); s != "" {
		return &s
	}
	return nil
}

// check es el chequeo mínimo que repite el resolver por si Validate no corrió.
func (a ProviderAssertion) check() error {
	if strings.TrimSpace(a.SubjectID) == "" || strings.TrimSpace(a.Email) == "" {
		return ErrInvalidAssertion
	}
	return nil
}
