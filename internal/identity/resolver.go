package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/dropDatabas3/idlink/internal/audit"
	"github.com/dropDatabas3/idlink/internal/domain/repository"
	"github.com/dropDatabas3/idlink/internal/metrics"
	"github.com/dropDatabas3/idlink/internal/observability/logger"
	"github.com/dropDatabas3/idlink/internal/security/password"
)

// Outcome describe qué camino tomó una resolución.
type Outcome string

const (
	OutcomeReturning   Outcome = "returning"
	OutcomeLinked      Outcome = "linked"
	OutcomeProvisioned Outcome = "provisioned"
)

// Resolution es el resultado de Resolve.
type Resolution struct {
	Account  *repository.Account
	Identity *repository.LinkedIdentity
	Outcome  Outcome
}

// CreationHook corre dentro de la transacción que creó la cuenta, una sola vez.
type CreationHook func(ctx context.Context, accounts repository.AccountRepository, acc *repository.Account) error

// DefaultRoleHook asigna role a cada cuenta nueva.
func DefaultRoleHook(role string) CreationHook {
	return func(ctx context.Context, accounts repository.AccountRepository, acc *repository.Account) error {
		if role == "" {
			return nil
		}
		return accounts.AssignRole(ctx, acc.ID, role)
	}
}

// ResolverDeps contiene las dependencias del resolver.
type ResolverDeps struct {
	Store    repository.Store
	OnCreate CreationHook
	// MaxRetries: reintentos ante ErrConflict (0 = sin reintentos).
	MaxRetries int
	Backoff    time.Duration
	// PasswordParams para el hash de la password aleatoria de cuentas nuevas.
	PasswordParams password.Params
	Now            func() time.Time
}

// Resolver encuentra o crea la cuenta para una identidad externa.
type Resolver struct {
	store      repository.Store
	avatars    *Avatars
	onCreate   CreationHook
	maxRetries uint64
	backoff    time.Duration
	params     password.Params
	now        func() time.Time
}

// NewResolver crea un Resolver; los ceros de deps toman valores por defecto.
func NewResolver(deps ResolverDeps) *Resolver {
	r := &Resolver{
		store:    deps.Store,
		avatars:  NewAvatars(deps.Store.Accounts(), deps.Store.Identities()),
		onCreate: deps.OnCreate,
		backoff:  deps.Backoff,
		params:   deps.PasswordParams,
		now:      deps.Now,
	}
	if deps.MaxRetries > 0 {
		r.maxRetries = uint64(deps.MaxRetries)
	}
	if r.backoff <= 0 {
		r.backoff = 10 * time.Millisecond
	}
	if r.params == (password.Params{}) {
		r.params = password.Default
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// Resolve mapea (provider, assertion) a exactamente una cuenta.
func (r *Resolver) Resolve(ctx context.Context, provider string, a ProviderAssertion) (*Resolution, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("identity.resolver"),
		logger.Provider(provider),
	)

	if provider == "" {
		return nil, fmt.Errorf("%w: missing provider", ErrInvalidAssertion)
	}
	if err := a.check(); err != nil {
		return nil, err
	}
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))

	var res *Resolution
	attempt := 0
	backoff := retry.WithMaxRetries(r.maxRetries, retry.NewConstant(r.backoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		var err error
		res, err = r.attempt(ctx, provider, a)
		if repository.IsConflict(err) {
			metrics.ResolutionConflictRetries.Inc()
			log.Debug("resolution conflict, retrying", logger.Attempt(attempt), logger.Err(err))
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		metrics.Resolutions.WithLabelValues("failed").Inc()
		if repository.IsConflict(err) {
			log.Warn("resolution retries exhausted", logger.Attempt(attempt), logger.Err(err))
			return nil, fmt.Errorf("%w: %v", ErrTransient, err)
		}
		return nil, err
	}

	metrics.Resolutions.WithLabelValues(string(res.Outcome)).Inc()
	log.Info("identity resolved",
		logger.Outcome(string(res.Outcome)),
		logger.AccountID(res.Account.ID),
		logger.Email(res.Account.Email),
		zap.Int("attempts", attempt),
	)
	switch res.Outcome {
	case OutcomeProvisioned:
		audit.Log(ctx, audit.AccountProvisioned, logger.AccountID(res.Account.ID), logger.Provider(provider))
	case OutcomeLinked:
		audit.Log(ctx, audit.IdentityLinked, logger.AccountID(res.Account.ID), logger.Provider(provider))
	}
	return res, nil
}

// attempt es un intento completo dentro de una transacción.
func (r *Resolver) attempt(ctx context.Context, provider string, a ProviderAssertion) (*Resolution, error) {
	var res *Resolution
	err := r.store.InTx(ctx, func(ctx context.Context) error {
		accounts := r.store.Accounts()
		identities := r.store.Identities()
		now := r.now().UTC()

		// Paso 1: buscar identidad vinculada
		li, err := identities.GetByProvider(ctx, provider, a.SubjectID)
		switch {
		case err == nil:
			// Paso 2: usuario que vuelve
			res, err = r.returning(ctx, li, a, now)
			return err
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}

		// Paso 3: buscar cuenta por email
		acc, err := accounts.GetByEmail(ctx, a.Email)
		outcome := OutcomeLinked
		switch {
		case errors.Is(err, repository.ErrNotFound):
			// Paso 5: cuenta nueva
			acc, err = r.provision(ctx, a, now)
			if err != nil {
				return err
			}
			outcome = OutcomeProvisioned
		case err != nil:
			return err
		}

		// Una cuenta tiene a lo sumo una identidad por provider: otro subject no es una carrera.
		if outcome == OutcomeLinked {
			if err := r.ensureProviderFree(ctx, acc.ID, provider, a.SubjectID); err != nil {
				return err
			}
		}

		// Paso 4/6: vincular con last-used = now. El nombre de una cuenta existente no se toca.
		li, err = identities.Create(ctx, repository.CreateIdentityInput{
			AccountID:    acc.ID,
			Provider:     provider,
			SubjectID:    a.SubjectID,
			AccessToken:  a.AccessToken,
			RefreshToken: a.RefreshToken,
			AvatarURL:    a.AvatarURL,
			LastUsedAt:   now,
		})
		if err != nil {
			return err
		}
		if outcome == OutcomeLinked {
			if acc, err = r.avatars.ReconcileToLatest(ctx, acc); err != nil {
				return err
			}
		}
		res = &Resolution{Account: acc, Identity: li, Outcome: outcome}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Resolver) ensureProviderFree(ctx context.Context, accountID, provider, subjectID string) error {
	linked, err := r.store.Identities().ListByAccount(ctx, accountID)
	if err != nil {
		return err
	}
	for _, li := range linked {
		if li.Provider == provider && li.SubjectID != subjectID {
			return &ProviderAlreadyLinkedError{Provider: provider}
		}
	}
	return nil
}

func (r *Resolver) returning(ctx context.Context, li *repository.LinkedIdentity, a ProviderAssertion, now time.Time) (*Resolution, error) {
	refresh := a.RefreshToken
	if refresh == nil {
		// algunos providers solo mandan refresh token en el primer consentimiento
		refresh = li.RefreshToken
	}
	touched, err := r.store.Identities().Touch(ctx, li.ID, repository.TouchIdentityInput{
		AccessToken:  a.AccessToken,
		RefreshToken: refresh,
		AvatarURL:    a.AvatarURL,
		LastUsedAt:   now,
	})
	if err != nil {
		return nil, err
	}
	acc, err := r.store.Accounts().GetByID(ctx, touched.AccountID)
	if err != nil {
		return nil, fmt.Errorf("owner of identity %s: %w", touched.ID, err)
	}
	if acc, err = r.avatars.ReconcileToLatest(ctx, acc); err != nil {
		return nil, err
	}
	return &Resolution{Account: acc, Identity: touched, Outcome: OutcomeReturning}, nil
}

func (r *Resolver) provision(ctx context.Context, a ProviderAssertion, now time.Time) (*repository.Account, error) {
	secret, err := password.Random(32)
	if err != nil {
		return nil, fmt.Errorf("random password: %w", err)
	}
	hash, err := password.Hash(r.params, secret)
	if err != nil {
		return nil, fmt.Errorf("hash random password: %w", err)
	}

	name := a.DisplayName
	if name == "" {
		name = a.Nickname
	}
	acc, err := r.store.Accounts().Create(ctx, repository.CreateAccountInput{
		Email:        a.Email,
		Name:         name,
		PasswordHash: &hash,
		// nunca comunicada: no cuenta como método de login
		PasswordSet:     false,
		EmailVerifiedAt: &now,
		AvatarURL:       a.AvatarURL,
	})
	if err != nil {
		return nil, err
	}
	if r.onCreate != nil {
		if err := r.onCreate(ctx, r.store.Accounts(), acc); err != nil {
			return nil, fmt.Errorf("creation hook: %w", err)
		}
	}
	return acc, nil
}
