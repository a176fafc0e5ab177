// Package session emite y verifica los access tokens de la cuenta (HS256).
package session

import (
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("session: invalid token")

// Issuer firma tokens con un secreto compartido.
type Issuer struct {
	Iss         string
	Secret      []byte
	AccessTTL   time.Duration // default 15m
	RememberTTL time.Duration // default 30d, con remember=true
	Now         func() time.Time
}

// NewIssuer crea un Issuer HS256. TTLs <= 0 usan 15m y 30d.
func NewIssuer(iss string, secret []byte, accessTTL, rememberTTL time.Duration) *Issuer {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if rememberTTL <= 0 {
		rememberTTL = 30 * 24 * time.Hour
	}
	return &Issuer{Iss: iss, Secret: secret, AccessTTL: accessTTL, RememberTTL: rememberTTL, Now: time.Now}
}

// Token es el resultado de Issue.
type Token struct {
	Value     string
	ExpiresIn time.Duration
	ExpiresAt time.Time
}

// Claims de los access tokens. sub = accountID.
type Claims struct {
	Remember bool `json:"rem,omitempty"`
	jwtv5.RegisteredClaims
}

// Issue firma un token para accountID.
func (i *Issuer) Issue(accountID string, remember bool) (Token, error) {
	if accountID == "" {
		return Token{}, errors.New("session: empty subject")
	}
	ttl := i.AccessTTL
	if remember {
		ttl = i.RememberTTL
	}
	now := i.now()
	exp := now.Add(ttl)
	claims := Claims{
		Remember: remember,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    i.Iss,
			Subject:   accountID,
			IssuedAt:  jwtv5.NewNumericDate(now),
			NotBefore: jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	tk.Header["typ"] = "JWT"
	signed, err := tk.SignedString(i.Secret)
	if err != nil {
		return Token{}, fmt.Errorf("session: sign: %w", err)
	}
	return Token{Value: signed, ExpiresIn: ttl, ExpiresAt: exp}, nil
}

// Verify valida firma, issuer y expiración; retorna el accountID.
func (i *Issuer) Verify(raw string) (string, error) {
	var c Claims
	_, err := jwtv5.ParseWithClaims(raw, &c, func(t *jwtv5.Token) (any, error) {
		return i.Secret, nil
	},
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithIssuer(i.Iss),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithTimeFunc(i.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.Subject == "" {
		return "", ErrInvalidToken
	}
	return c.Subject, nil
}

func (i *Issuer) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now()
}
