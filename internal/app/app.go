// Package app arma el grafo de dependencias a partir de la configuración.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	rdb "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/idlink/internal/auth"
	"github.com/dropDatabas3/idlink/internal/config"
	"github.com/dropDatabas3/idlink/internal/domain/repository"
	"github.com/dropDatabas3/idlink/internal/http/controllers"
	"github.com/dropDatabas3/idlink/internal/http/router"
	"github.com/dropDatabas3/idlink/internal/identity"
	"github.com/dropDatabas3/idlink/internal/metrics"
	"github.com/dropDatabas3/idlink/internal/observability/logger"
	"github.com/dropDatabas3/idlink/internal/rate"
	"github.com/dropDatabas3/idlink/internal/security/password"
	"github.com/dropDatabas3/idlink/internal/session"
	"github.com/dropDatabas3/idlink/internal/store/memory"
	pgstore "github.com/dropDatabas3/idlink/internal/store/pg"
)

// Container contiene los servicios ya cableados.
type Container struct {
	Store    repository.Store
	Counter  rate.Counter
	Registry *identity.Registry
	Tokens   *session.Issuer
	Handler  http.Handler

	closers []func()
}

// Close libera conexiones en orden inverso de apertura.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// Options permite ajustar la construcción (tests).
type Options struct {
	Registry       prometheus.Registerer
	Gatherer       prometheus.Gatherer
	PasswordParams password.Params
}

// Build conecta storage y cache según cfg y arma el handler HTTP.
func Build(ctx context.Context, cfg *config.Config, opts Options) (_ *Container, err error) {
	c := &Container{}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()
	log := logger.Named("app")

	if c.Store, err = openStore(ctx, cfg, c); err != nil {
		return nil, err
	}
	newCounter, err := counterFactory(ctx, cfg, c)
	if err != nil {
		return nil, err
	}
	c.Counter = newCounter("login:", cfg.Rate.Login.Window)

	if err := metrics.Register(opts.Registry); err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	hook := identity.DefaultRoleHook(cfg.Identity.DefaultRole)
	c.Registry = identity.NewRegistry(cfg.Providers)
	c.Tokens = session.NewIssuer(cfg.Session.Issuer, []byte(cfg.Session.Secret), cfg.Session.AccessTTL, cfg.Session.RememberTTL)

	login, err := auth.NewLoginGuard(auth.LoginDeps{
		Accounts:       c.Store.Accounts(),
		Counter:        c.Counter,
		MaxAttempts:    cfg.Rate.Login.Limit,
		PasswordParams: opts.PasswordParams,
	})
	if err != nil {
		return nil, err
	}
	resolver := identity.NewResolver(identity.ResolverDeps{
		Store:          c.Store,
		OnCreate:       hook,
		MaxRetries:     cfg.ConflictRetries(),
		PasswordParams: opts.PasswordParams,
	})
	passwords := auth.NewPasswords(auth.PasswordsDeps{
		Store: c.Store,
		Policy: password.Policy{
			MinLength:    cfg.Password.MinLength,
			RequireDigit: cfg.Password.RequireDigit,
			Blacklist:    cfg.Password.Blacklist,
		},
		PasswordParams: opts.PasswordParams,
		OnCreate:       hook,
	})

	ctrls := controllers.New(controllers.Deps{
		Store:      c.Store,
		Login:      login,
		Passwords:  passwords,
		Social:     identity.NewSocialLogin(c.Registry, resolver),
		Registry:   c.Registry,
		Disconnect: identity.NewGuard(c.Store),
		Tokens:     c.Tokens,
		Checks: map[string]controllers.Pinger{
			"store":   c.Store,
			"counter": c.Counter,
		},
		DefaultAvatarURL: cfg.Identity.DefaultAvatarURL,
	})

	var ipLimiter rate.Limiter
	if cfg.Rate.IP.Limit > 0 {
		ipLimiter = rate.NewWindowLimiter(newCounter("ip:", cfg.Rate.IP.Window), "", cfg.Rate.IP.Limit, cfg.Rate.IP.Window)
	}

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	c.Handler = router.New(router.Deps{
		Controllers: ctrls,
		Tokens:      c.Tokens,
		IPLimiter:   ipLimiter,
		InternalKey: cfg.Server.InternalKey,
		TrustProxy:  cfg.Server.TrustProxy,
		CORSOrigins: cfg.Server.CORSAllowedOrigins,
		Metrics:     promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
	})

	log.Info("wired",
		logger.Component(cfg.Storage.Driver+"/"+cfg.Cache.Kind),
		logger.Any("providers", providerKeys(c.Registry)),
	)
	return c, nil
}

func openStore(ctx context.Context, cfg *config.Config, c *Container) (repository.Store, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		s, err := pgstore.Connect(ctx, pgstore.Config{
			DSN:      cfg.Storage.DSN,
			MaxConns: cfg.Storage.MaxConns,
			MinConns: cfg.Storage.MinConns,
		})
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, s.Close)
		return s, nil
	default:
		return memory.New(), nil
	}
}

// counterFactory retorna un constructor de counters sobre el backend
// configurado; cada ventana necesita su propio counter.
func counterFactory(ctx context.Context, cfg *config.Config, c *Container) (func(prefix string, window time.Duration) rate.Counter, error) {
	switch cfg.Cache.Kind {
	case "redis":
		client := rdb.NewClient(&rdb.Options{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		c.closers = append(c.closers, func() { _ = client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		return func(prefix string, window time.Duration) rate.Counter {
			return rate.NewRedisCounter(client, cfg.Cache.Redis.Prefix+prefix, window)
		}, nil
	default:
		return func(_ string, window time.Duration) rate.Counter {
			return rate.NewMemoryCounter(window)
		}, nil
	}
}

func providerKeys(r *identity.Registry) []string {
	var keys []string
	for _, p := range r.EnabledProviders() {
		keys = append(keys, p.Key)
	}
	return keys
}
