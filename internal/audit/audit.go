// Package audit registra eventos de ciclo de vida de cuentas e identidades.
// Hoy el sink es el logger "audit"; un sink persistente puede reemplazarlo
// sin tocar a los llamadores.
package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/dropDatabas3/idlink/internal/observability/logger"
)

// Eventos emitidos.
const (
	AccountProvisioned   = "account.provisioned"
	AccountRegistered    = "account.registered"
	IdentityLinked       = "identity.linked"
	IdentityDisconnected = "identity.disconnected"
	PasswordSet          = "password.set"
	LoginLocked          = "login.locked"
)

// Sink recibe los eventos. Reemplazable en tests.
type Sink func(ctx context.Context, event string, fields ...zap.Field)

var sink Sink = logSink

// SetSink reemplaza el sink y retorna una función para restaurar el anterior.
func SetSink(s Sink) (restore func()) {
	prev := sink
	sink = s
	return func() { sink = prev }
}

// Log emite un evento.
func Log(ctx context.Context, event string, fields ...zap.Field) {
	sink(ctx, event, fields...)
}

func logSink(ctx context.Context, event string, fields ...zap.Field) {
	logger.From(ctx).Named("audit").Info(event, append(fields, zap.String("event", event))...)
}
