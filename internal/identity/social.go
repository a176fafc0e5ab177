package identity

import (
	"context"
	"fmt"
	"strings"
)

// SocialLogin es lo que invoca el callback OAuth: habilitación, validación y resolución.
type SocialLogin struct {
	registry *Registry
	resolver *Resolver
}

// NewSocialLogin combina el registry y el resolver para el endpoint de assertions.
func NewSocialLogin(registry *Registry, resolver *Resolver) *SocialLogin {
	return &SocialLogin{registry: registry, resolver: resolver}
}

// Complete procesa una assertion cruda del provider.
func (s *SocialLogin) Complete(ctx context.Context, provider string, raw RawAssertion) (*Resolution, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if !s.registry.IsEnabled(provider) {
		return nil, fmt.Errorf("%w: %s", ErrProviderDisabled, provider)
	}
	a, err := Validate(raw)
	if err != nil {
		return nil, err
	}
	return s.resolver.Resolve(ctx, provider, a)
}
