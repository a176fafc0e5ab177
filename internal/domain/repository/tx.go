package repository

import "context"

// Transactor ejecuta fn dentro de una transacción. Si fn retorna error se hace
// rollback y nada de lo escrito es visible para otros.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Store agrupa lo que necesitan los servicios del núcleo.
type Store interface {
	Transactor
	Accounts() AccountRepository
	Identities() IdentityRepository
	Ping(ctx context.Context) error
}
