package identity

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/idlink/internal/domain/repository"
)

// Avatars deriva el avatar de una cuenta desde sus identidades vinculadas.
type Avatars struct {
	accounts   repository.AccountRepository
	identities repository.IdentityRepository
}

// NewAvatars crea el reconciliador de avatares sobre los repos dados.
func NewAvatars(accounts repository.AccountRepository, identities repository.IdentityRepository) *Avatars {
	return &Avatars{accounts: accounts, identities: identities}
}

// ReconcileToLatest toma el avatar de la identidad usada más recientemente
// (entre las que tienen avatar). Si ninguna califica no toca la cuenta: un
// avatar previo sobrevive a desvincular todos los providers.
func (a *Avatars) ReconcileToLatest(ctx context.Context, acc *repository.Account) (*repository.Account, error) {
	ids, err := a.identities.ListByAccount(ctx, acc.ID)
	if err != nil {
		return nil, fmt.Errorf("reconcile avatar: %w", err)
	}
	latest := latestAvatar(ids)
	if latest == nil || sameURL(latest, acc.AvatarURL) {
		return acc, nil
	}
	return a.SetAvatar(ctx, acc, latest)
}

// SetAvatar persiste url (nil lo limpia) y retorna la cuenta actualizada.
func (a *Avatars) SetAvatar(ctx context.Context, acc *repository.Account, url *string) (*repository.Account, error) {
	if err := a.accounts.UpdateAvatar(ctx, acc.ID, url); err != nil {
		return nil, fmt.Errorf("set avatar: %w", err)
	}
	out := *acc
	out.AvatarURL = url
	return &out, nil
}

func latestAvatar(ids []repository.LinkedIdentity) *string {
	var best *repository.LinkedIdentity
	for i := range ids {
		li := &ids[i]
		if li.AvatarURL == nil || *li.AvatarURL == "" {
			continue
		}
		if best == nil || li.LastUsedAt.After(best.LastUsedAt) {
			best = li
		}
	}
	if best == nil {
		return nil
	}
	u := *best.AvatarURL
	return &u
}

func sameURL(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// DisplayAvatar es el read path: upload > avatar guardado > default.
func DisplayAvatar(acc *repository.Account, defaultURL string) string {
	if acc == nil {
		return defaultURL
	}
	if acc.AvatarUpload != nil && *acc.AvatarUpload != "" {
		return *acc.AvatarUpload
	}
	if acc.AvatarURL != nil && *acc.AvatarURL != "" {
		return *acc.AvatarURL
	}
	return defaultURL
}
