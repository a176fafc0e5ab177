package repository

import (
	"context"
	"time"
)

// Account es la cuenta local. Email se guarda siempre en minúsculas.
type Account struct {
	ID    string
	Email string
	Name  string

	// PasswordHash es el hash PHC (argon2id). nil = sin password.
	PasswordHash *string
	// PasswordSet indica que el titular eligió y conoce la password.
	// Las cuentas creadas por login social tienen hash pero PasswordSet=false.
	PasswordSet bool

	EmailVerifiedAt *time.Time

	// AvatarURL es el avatar derivado de los providers (o seteado a mano).
	AvatarURL *string
	// AvatarUpload es un asset subido explícitamente; gana en display.
	AvatarUpload *string

	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasUsablePassword reporta si la password cuenta como método de login.
func (a *Account) HasUsablePassword() bool {
	return a != nil && a.PasswordSet && a.PasswordHash != nil && *a.PasswordHash != ""
}

// CreateAccountInput contiene los datos para crear una cuenta.
type CreateAccountInput struct {
	Email           string
	Name            string
	PasswordHash    *string
	PasswordSet     bool
	EmailVerifiedAt *time.Time
	AvatarURL       *string
}

// AccountRepository define operaciones sobre cuentas.
type AccountRepository interface {
	// GetByID retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*Account, error)

	// Lock bloquea la fila de la cuenta hasta el fin de la transacción.
	// Serializa operaciones que leen y luego borran métodos de login.
	Lock(ctx context.Context, id string) error

	// GetByEmail busca case-insensitive. Retorna ErrNotFound si no existe.
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// Create inserta la cuenta. Retorna ErrConflict si el email ya existe.
	Create(ctx context.Context, in CreateAccountInput) (*Account, error)

	// UpdateAvatar persiste el avatar derivado (nil lo limpia).
	UpdateAvatar(ctx context.Context, id string, url *string) error

	// UpdateLastLogin registra el último login exitoso.
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error

	// SetPassword reemplaza el hash; usable=false para passwords nunca comunicadas.
	SetPassword(ctx context.Context, id, hash string, usable bool) error

	// AssignRole asigna un rol a la cuenta. Asignar un rol existente es no-op.
	AssignRole(ctx context.Context, id, role string) error

	// Roles lista los roles asignados.
	Roles(ctx context.Context, id string) ([]string, error)
}
