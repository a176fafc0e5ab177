package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/idlink/internal/audit"
	"github.com/dropDatabas3/idlink/internal/domain/repository"
	"github.com/dropDatabas3/idlink/internal/identity"
	"github.com/dropDatabas3/idlink/internal/observability/logger"
	"github.com/dropDatabas3/idlink/internal/security/password"
	"github.com/dropDatabas3/idlink/internal/validation"
)

// PasswordsDeps contiene las dependencias del servicio de passwords.
type PasswordsDeps struct {
	Store          repository.Store
	Policy         password.Policy
	PasswordParams password.Params
	OnCreate       identity.CreationHook
	Now            func() time.Time
}

// Passwords maneja el registro explícito y el cambio de password.
// Ambos dejan una password usable (PasswordSet=true).
type Passwords struct {
	deps PasswordsDeps
}

// NewPasswords crea el servicio de alta y cambio de password.
func NewPasswords(deps PasswordsDeps) *Passwords {
	if deps.PasswordParams == (password.Params{}) {
		deps.PasswordParams = password.Default
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Passwords{deps: deps}
}

// RegisterInput es el alta con password.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"max=200"`
	Password string `json:"password" validate:"required"`
}

// Register crea una cuenta con password. Retorna ErrEmailTaken si el email existe.
func (p *Passwords) Register(ctx context.Context, in RegisterInput) (*repository.Account, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if fe := validation.Struct(in); fe != nil {
		return nil, &ValidationError{Field: fe.Field, Reasons: []string{fe.Tag}}
	}
	hash, err := p.hash(in.Password)
	if err != nil {
		return nil, err
	}

	var acc *repository.Account
	err = p.deps.Store.InTx(ctx, func(ctx context.Context) error {
		var err error
		acc, err = p.deps.Store.Accounts().Create(ctx, repository.CreateAccountInput{
			Email:        in.Email,
			Name:         in.Name,
			PasswordHash: &hash,
			PasswordSet:  true,
		})
		if err != nil {
			return err
		}
		if p.deps.OnCreate != nil {
			return p.deps.OnCreate(ctx, p.deps.Store.Accounts(), acc)
		}
		return nil
	})
	if repository.IsConflict(err) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	audit.Log(ctx, audit.AccountRegistered, logger.AccountID(acc.ID), logger.Email(acc.Email))
	return acc, nil
}

// SetPassword reemplaza la password; a partir de acá cuenta como método de login.
func (p *Passwords) SetPassword(ctx context.Context, accountID, plain string) error {
	hash, err := p.hash(plain)
	if err != nil {
		return err
	}
	if err := p.deps.Store.Accounts().SetPassword(ctx, accountID, hash, true); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return fmt.Errorf("set password: %w", err)
	}
	audit.Log(ctx, audit.PasswordSet, logger.AccountID(accountID))
	return nil
}

func (p *Passwords) hash(plain string) (string, error) {
	if ok, reasons := p.deps.Policy.Validate(plain); !ok {
		return "", &ValidationError{Field: "password", Reasons: reasons}
	}
	return password.Hash(p.deps.PasswordParams, plain)
}
