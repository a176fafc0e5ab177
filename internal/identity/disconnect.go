package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/dropDatabas3/idlink/internal/audit"
	"github.com/dropDatabas3/idlink/internal/domain/repository"
	"github.com/dropDatabas3/idlink/internal/metrics"
	"github.com/dropDatabas3/idlink/internal/observability/logger"
)

// Guard desvincula providers sin dejar cuentas sin método de login.
type Guard struct {
	store   repository.Store
	avatars *Avatars
}

// NewGuard crea el guard de desvinculación sobre store.
func NewGuard(store repository.Store) *Guard {
	return &Guard{store: store, avatars: NewAvatars(store.Accounts(), store.Identities())}
}

// Disconnect borra la identidad de provider y re-deriva el avatar.
//
// Errores:
//   - *ProviderNotConnectedError si la cuenta no tiene identidades o no tiene esa.
//   - ErrNoRemainingAuthMethod si es la única identidad y no hay password usable.
func (g *Guard) Disconnect(ctx context.Context, accountID, provider string) (*repository.Account, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("identity.disconnect"),
		logger.Provider(provider),
		logger.AccountID(accountID),
	)

	var out *repository.Account
	err := g.store.InTx(ctx, func(ctx context.Context) error {
		accounts := g.store.Accounts()
		if err := accounts.Lock(ctx, accountID); err != nil {
			return err
		}
		acc, err := accounts.GetByID(ctx, accountID)
		if err != nil {
			return err
		}
		ids, err := g.store.Identities().ListByAccount(ctx, accountID)
		if err != nil {
			return err
		}
		if !hasProvider(ids, provider) {
			return &ProviderNotConnectedError{Provider: provider}
		}
		if len(ids) == 1 && !acc.HasUsablePassword() {
			return ErrNoRemainingAuthMethod
		}

		if _, err := g.store.Identities().Delete(ctx, accountID, provider); err != nil {
			return err
		}
		out, err = g.avatars.ReconcileToLatest(ctx, acc)
		return err
	})

	switch {
	case err == nil:
		metrics.Disconnects.WithLabelValues("ok").Inc()
		log.Info("provider disconnected")
		audit.Log(ctx, audit.IdentityDisconnected, logger.AccountID(accountID), logger.Provider(provider))
	case errors.Is(err, ErrProviderNotConnected):
		metrics.Disconnects.WithLabelValues("not_connected").Inc()
	case errors.Is(err, ErrNoRemainingAuthMethod):
		metrics.Disconnects.WithLabelValues("last_method").Inc()
		log.Info("disconnect refused: last auth method")
	default:
		log.Error("disconnect failed", logger.Err(err))
	}
	return out, err
}

func hasProvider(ids []repository.LinkedIdentity, provider string) bool {
	for _, li := range ids {
		if li.Provider == provider {
			return true
		}
	}
	return false
}
