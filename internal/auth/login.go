// Package auth implementa el login con password y el alta/cambio de password.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/idlink/internal/audit"
	"github.com/dropDatabas3/idlink/internal/domain/repository"
	"github.com/dropDatabas3/idlink/internal/metrics"
	"github.com/dropDatabas3/idlink/internal/observability/logger"
	"github.com/dropDatabas3/idlink/internal/rate"
	"github.com/dropDatabas3/idlink/internal/security/password"
	"github.com/dropDatabas3/idlink/internal/validation"
)

// LoginDeps contiene las dependencias del guard de login.
type LoginDeps struct {
	Accounts repository.AccountRepository
	Counter  rate.Counter
	// MaxAttempts fallidos por throttle key dentro de la ventana del Counter.
	MaxAttempts int
	// PasswordParams se usan para el hash dummy de cuentas inexistentes.
	PasswordParams password.Params
	Now            func() time.Time
}

// LoginInput es lo que recibe el endpoint de login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	// Origin distingue la fuente (IP); cada origin tiene su propio contador.
	Origin string `json:"-"`
}

// LoginGuard verifica credenciales con rate limit por (email, origin).
type LoginGuard struct {
	accounts repository.AccountRepository
	counter  rate.Counter
	max      int64
	dummy    string
	now      func() time.Time
}

// NewLoginGuard valida deps y precalcula el hash dummy para cuentas inexistentes.
func NewLoginGuard(deps LoginDeps) (*LoginGuard, error) {
	if deps.MaxAttempts <= 0 {
		deps.MaxAttempts = 5
	}
	if deps.PasswordParams == (password.Params{}) {
		deps.PasswordParams = password.Default
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	// mismo costo que un hash real para que "no existe" tarde lo mismo
	dummy, err := password.Hash(deps.PasswordParams, "idlink-dummy-password")
	if err != nil {
		return nil, err
	}
	return &LoginGuard{
		accounts: deps.Accounts,
		counter:  deps.Counter,
		max:      int64(deps.MaxAttempts),
		dummy:    dummy,
		now:      deps.Now,
	}, nil
}

// ThrottleKey = hex(sha256(lower(email) + "|" + origin)).
func ThrottleKey(email, origin string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email)) + "|" + origin))
	return hex.EncodeToString(sum[:])
}

// Authenticate verifica email/password.
//
// Open: reserva un intento y verifica; si falla el intento queda contado y
// retorna ErrInvalidCredentials.
// Locked: retorna *TooManyAttemptsError sin verificar. Solo suma si la reserva
// perdió la carrera contra otro request.
// Éxito: limpia el contador y registra last-login.
func (g *LoginGuard) Authenticate(ctx context.Context, in LoginInput) (*repository.Account, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.login"),
		logger.ClientIP(in.Origin),
	)

	// Paso 0: normalización y validación
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if fe := validation.Struct(in); fe != nil {
		metrics.LoginAttempts.WithLabelValues("validation").Inc()
		return nil, &ValidationError{Field: fe.Field, Reasons: []string{fe.Tag}}
	}
	key := ThrottleKey(in.Email, in.Origin)

	// Paso 1: ¿locked?
	hits, err := g.counter.Attempts(ctx, key)
	if err != nil {
		return nil, err
	}
	if hits >= g.max {
		return nil, g.throttled(ctx, log, key, in.Email)
	}

	// Paso 2: reservar el intento antes de verificar. Increment es atómico, así que
	// de los requests concurrentes solo MaxAttempts llegan a correr argon2.
	n, err := g.counter.Increment(ctx, key)
	if err != nil {
		return nil, err
	}
	if n > g.max {
		return nil, g.throttled(ctx, log, key, in.Email)
	}

	acc, err := g.accounts.GetByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if !g.verify(acc, in.Password) {
		// la reserva queda como intento fallido
		if n == g.max {
			metrics.LoginLockouts.Inc()
			log.Warn("login locked", logger.Email(in.Email))
			audit.Log(ctx, audit.LoginLocked, logger.Email(in.Email), logger.ClientIP(in.Origin))
		}
		metrics.LoginAttempts.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidCredentials
	}

	// Paso 3: éxito
	if err := g.counter.Clear(ctx, key); err != nil {
		log.Warn("clear throttle key failed", logger.Err(err))
	}
	now := g.now().UTC()
	if err := g.accounts.UpdateLastLogin(ctx, acc.ID, now); err != nil {
		return nil, err
	}
	acc.LastLoginAt = &now
	metrics.LoginAttempts.WithLabelValues("success").Inc()
	log.Info("login ok", logger.AccountID(acc.ID))
	return acc, nil
}

// throttled arma el *TooManyAttemptsError con lo que resta de la ventana.
func (g *LoginGuard) throttled(ctx context.Context, log *zap.Logger, key, email string) error {
	wait, err := g.counter.RemainingWindow(ctx, key)
	if err != nil {
		return err
	}
	metrics.LoginAttempts.WithLabelValues("locked").Inc()
	log.Info("login throttled", logger.Email(email), logger.Duration(wait))
	return &TooManyAttemptsError{RetryAfter: wait}
}

// verify siempre corre un argon2id, exista o no la cuenta. Solo cuentan las
// passwords elegidas por el titular.
func (g *LoginGuard) verify(acc *repository.Account, plain string) bool {
	if acc == nil || acc.PasswordHash == nil {
		password.Verify(plain, g.dummy)
		return false
	}
	ok := password.Verify(plain, *acc.PasswordHash)
	return ok && acc.PasswordSet
}
