package middlewares

import "context"

type ctxKey string

const (
	ctxRequestIDKey ctxKey = "request_id"
	ctxAccountIDKey ctxKey = "account_id"
	ctxClientIPKey  ctxKey = "client_ip"
)

func setRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, id)
}

// WithAccountID inyecta el accountID autenticado.
func WithAccountID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxAccountIDKey, id)
}

func setClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxClientIPKey, ip)
}

func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(ctxRequestIDKey).(string)
	return v
}

// GetAccountID retorna "" si el request no pasó por RequireBearer.
func GetAccountID(ctx context.Context) string {
	v, _ := ctx.Value(ctxAccountIDKey).(string)
	return v
}

// GetClientIP retorna el origin resuelto por WithClientIP.
func GetClientIP(ctx context.Context) string {
	v, _ := ctx.Value(ctxClientIPKey).(string)
	return v
}
