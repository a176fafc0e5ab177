// Package dto define los cuerpos JSON de la API.
package dto

import (
	"time"

	"github.com/dropDatabas3/idlink/internal/identity"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type SetPasswordRequest struct {
	Password string `json:"password"`
}

// SocialAssertionRequest es lo que envía el cliente OAuth después del code exchange.
type SocialAssertionRequest struct {
	identity.RawAssertion
	Remember bool `json:"remember"`
}

type TokenResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int64           `json:"expires_in"`
	Account     AccountResponse `json:"account"`
	// Outcome solo en login social: returning | linked | provisioned.
	Outcome string `json:"outcome,omitempty"`
}

type IdentityResponse struct {
	Provider   string    `json:"provider"`
	LastUsedAt time.Time `json:"last_used_at"`
	CreatedAt  time.Time `json:"created_at"`
}

type AccountResponse struct {
	ID            string             `json:"id"`
	Email         string             `json:"email"`
	Name          string             `json:"name"`
	AvatarURL     string             `json:"avatar_url,omitempty"`
	EmailVerified bool               `json:"email_verified"`
	HasPassword   bool               `json:"has_password"`
	Identities    []IdentityResponse `json:"identities,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

type ProviderResponse struct {
	Key         string `json:"key"`
	DisplayName string `json:"display_name"`
}

type ProvidersResponse struct {
	Providers []ProviderResponse `json:"providers"`
}

type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
