// Package identity resuelve identidades federadas a cuentas locales.
//
// Flujo de un callback social:
//
//	RawAssertion ──Validate──▶ ProviderAssertion ──Resolver.Resolve──▶ Account
//	                                                  │
//	                                                  └─▶ Avatars.ReconcileToLatest
//
// Resolve corre cada intento en una transacción. Las carreras entre requests
// concurrentes las arbitran los índices únicos del store: un ErrConflict hace
// rollback y el intento se repite desde el paso 1.
//
// Guard.Disconnect aplica la regla de "al menos un método de login".
package identity
