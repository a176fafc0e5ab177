package repository

import (
	"context"
	"time"
)

// LinkedIdentity vincula una identidad externa (provider, subject) a una Account.
type LinkedIdentity struct {
	ID           string
	AccountID    string
	Provider     string // "google", "github", ...
	SubjectID    string // ID del usuario en el provider
	AccessToken  string
	RefreshToken *string
	AvatarURL    *string
	LastUsedAt   time.Time
	CreatedAt    time.Time
}

// CreateIdentityInput contiene los datos para vincular una identidad.
type CreateIdentityInput struct {
	AccountID    string
	Provider     string
	SubjectID    string
	AccessToken  string
	RefreshToken *string
	AvatarURL    *string
	LastUsedAt   time.Time
}

// TouchIdentityInput son los campos refrescados en cada login por provider.
type TouchIdentityInput struct {
	AccessToken  string
	RefreshToken *string
	AvatarURL    *string
	LastUsedAt   time.Time
}

// IdentityRepository define operaciones sobre identidades vinculadas.
type IdentityRepository interface {
	// GetByProvider busca por (provider, subject). Retorna ErrNotFound si no existe.
	GetByProvider(ctx context.Context, provider, subjectID string) (*LinkedIdentity, error)

	// ListByAccount lista las identidades de una cuenta (orden de creación).
	ListByAccount(ctx context.Context, accountID string) ([]LinkedIdentity, error)

	// Create vincula la identidad. Retorna ErrConflict si (provider, subject)
	// ya existe o si la cuenta ya tiene una identidad de ese provider.
	Create(ctx context.Context, in CreateIdentityInput) (*LinkedIdentity, error)

	// Touch actualiza tokens, avatar y last-used. Retorna la identidad actualizada.
	Touch(ctx context.Context, id string, in TouchIdentityInput) (*LinkedIdentity, error)

	// Delete borra la identidad de ese provider para la cuenta.
	// Retorna la cantidad de filas borradas.
	Delete(ctx context.Context, accountID, provider string) (int64, error)
}
