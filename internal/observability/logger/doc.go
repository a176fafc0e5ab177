// Package logger expone el logger zap del servicio.
//
// Hay una única instancia global (Init/L) y cada request puede llevar su propio
// logger "scoped" en el contexto (ToContext/From) con request_id, provider, etc.
//
//	logger.Init(logger.Config{Env: cfg.Log.Env, Level: cfg.Log.Level})
//	defer logger.Sync()
//
//	log := logger.From(ctx).With(logger.Component("identity.resolver"))
//	log.Info("account linked", logger.Provider("github"), logger.AccountID(id))
//
// Los emails nunca se loguean en claro: usar logger.Email, que los enmascara.
package logger
