package logger

import (
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/idlink/internal/util"
)

// =================================================================================
// CAMPOS ESTÁNDAR - HTTP
// =================================================================================

func RequestID(v string) zap.Field { return zap.String("request_id", v) }

func Method(v string) zap.Field { return zap.String("method", v) }

func Path(v string) zap.Field { return zap.String("path", v) }

func Status(v int) zap.Field { return zap.Int("status", v) }

func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }

func Bytes(v int) zap.Field { return zap.Int("bytes", v) }

// ClientIP es el origin usado por el rate limiter de login.
func ClientIP(v string) zap.Field { return zap.String("client_ip", v) }

func UserAgent(v string) zap.Field { return zap.String("user_agent", v) }

// =================================================================================
// CAMPOS ESTÁNDAR - IDENTIDAD
// =================================================================================

func AccountID(v string) zap.Field { return zap.String("account_id", v) }

func Provider(v string) zap.Field { return zap.String("provider", v) }

// Email enmascara el valor antes de loguearlo (j…@g….com).
func Email(v string) zap.Field { return zap.String("email", util.MaskEmail(v)) }

// Outcome: returning | linked | provisioned.
func Outcome(v string) zap.Field { return zap.String("outcome", v) }

func Attempt(v int) zap.Field { return zap.Int("attempt", v) }

// =================================================================================
// CAMPOS ESTÁNDAR - ESTRUCTURA
// =================================================================================

// Component identifica el módulo (ej: "identity.resolver", "auth.login").
func Component(v string) zap.Field { return zap.String("component", v) }

// Layer: "handler", "service", "repo".
func Layer(v string) zap.Field { return zap.String("layer", v) }

func Op(v string) zap.Field { return zap.String("op", v) }

// Err usa la key estándar "error".
func Err(err error) zap.Field { return zap.Error(err) }

// Any es el escape genérico; preferir los helpers tipados.
func Any(key string, v any) zap.Field { return zap.Any(key, v) }
