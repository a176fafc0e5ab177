// Package config carga la configuración: YAML + overrides de entorno (IDLINK_*).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | prod
		Env string `yaml:"env" env:"IDLINK_APP_ENV"`
	} `yaml:"app"`

	Log struct {
		Level string `yaml:"level" env:"IDLINK_LOG_LEVEL"`
	} `yaml:"log"`

	Server struct {
		Addr               string   `yaml:"addr" env:"IDLINK_SERVER_ADDR"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins" env:"IDLINK_CORS_ALLOWED_ORIGINS"`
		// InternalKey protege el endpoint que usa el cliente OAuth para entregar assertions.
		InternalKey string `yaml:"internal_key" env:"IDLINK_INTERNAL_KEY"`
		// TrustProxy habilita X-Forwarded-For para derivar el origin.
		TrustProxy bool `yaml:"trust_proxy" env:"IDLINK_TRUST_PROXY"`
	} `yaml:"server"`

	Storage struct {
		// postgres | memory
		Driver   string `yaml:"driver" env:"IDLINK_STORAGE_DRIVER"`
		DSN      string `yaml:"dsn" env:"IDLINK_STORAGE_DSN"`
		MaxConns int32  `yaml:"max_conns" env:"IDLINK_STORAGE_MAX_CONNS"`
		MinConns int32  `yaml:"min_conns" env:"IDLINK_STORAGE_MIN_CONNS"`
	} `yaml:"storage"`

	Cache struct {
		// redis | memory
		Kind  string `yaml:"kind" env:"IDLINK_CACHE_KIND"`
		Redis struct {
			Addr     string `yaml:"addr" env:"IDLINK_REDIS_ADDR"`
			Password string `yaml:"password" env:"IDLINK_REDIS_PASSWORD"`
			DB       int    `yaml:"db" env:"IDLINK_REDIS_DB"`
			Prefix   string `yaml:"prefix" env:"IDLINK_REDIS_PREFIX"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	Rate struct {
		// Login: intentos fallidos por (email, origin).
		Login struct {
			Limit  int           `yaml:"limit" env:"IDLINK_RATE_LOGIN_LIMIT"`
			Window time.Duration `yaml:"window" env:"IDLINK_RATE_LOGIN_WINDOW"`
		} `yaml:"login"`
		// IP: requests por IP sobre /v2/auth/*. Limit=0 lo desactiva.
		IP struct {
			Limit  int           `yaml:"limit" env:"IDLINK_RATE_IP_LIMIT"`
			Window time.Duration `yaml:"window" env:"IDLINK_RATE_IP_WINDOW"`
		} `yaml:"ip"`
	} `yaml:"rate"`

	Session struct {
		Secret      string        `yaml:"secret" env:"IDLINK_SESSION_SECRET"`
		Issuer      string        `yaml:"issuer" env:"IDLINK_SESSION_ISSUER"`
		AccessTTL   time.Duration `yaml:"access_ttl" env:"IDLINK_SESSION_ACCESS_TTL"`
		RememberTTL time.Duration `yaml:"remember_ttl" env:"IDLINK_SESSION_REMEMBER_TTL"`
	} `yaml:"session"`

	Identity struct {
		// DefaultRole se asigna a toda cuenta creada por login social.
		DefaultRole string `yaml:"default_role" env:"IDLINK_IDENTITY_DEFAULT_ROLE"`

		// ConflictRetries nil = DefaultConflictRetries; 0 desactiva los reintentos.
		ConflictRetries *int `yaml:"conflict_retries" env:"IDLINK_IDENTITY_CONFLICT_RETRIES"`

		// DefaultAvatarURL se muestra cuando la cuenta no tiene avatar.
		DefaultAvatarURL string `yaml:"default_avatar_url" env:"IDLINK_IDENTITY_DEFAULT_AVATAR_URL"`
	} `yaml:"identity"`

	Password struct {
		MinLength    int      `yaml:"min_length" env:"IDLINK_PASSWORD_MIN_LENGTH"`
		RequireDigit bool     `yaml:"require_digit" env:"IDLINK_PASSWORD_REQUIRE_DIGIT"`
		Blacklist    []string `yaml:"blacklist"`
	} `yaml:"password"`

	// Providers respeta el orden de declaración del YAML.
	Providers Providers `yaml:"providers"`
}

// Load lee el YAML en path (vacío = solo defaults), aplica IDLINK_* y valida.
func Load(path string) (*Config, error) {
	var c Config
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := env.Parse(&c); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Redis.Addr == "" {
		c.Cache.Redis.Addr = "localhost:6379"
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "idlink:"
	}
	if c.Rate.Login.Limit == 0 {
		c.Rate.Login.Limit = 5
	}
	if c.Rate.Login.Window == 0 {
		c.Rate.Login.Window = time.Minute
	}
	if c.Rate.IP.Window == 0 {
		c.Rate.IP.Window = time.Minute
	}
	if c.Session.Issuer == "" {
		c.Session.Issuer = "idlink"
	}
	if c.Session.AccessTTL == 0 {
		c.Session.AccessTTL = 2 * time.Hour
	}
	if c.Session.RememberTTL == 0 {
		c.Session.RememberTTL = 30 * 24 * time.Hour
	}
	if c.Identity.DefaultRole == "" {
		c.Identity.DefaultRole = "member"
	}
	if c.Password.MinLength == 0 {
		c.Password.MinLength = 8
	}
}

// DefaultConflictRetries aplica cuando identity.conflict_retries no está seteado.
const DefaultConflictRetries = 3

// ConflictRetries devuelve los reintentos del resolver ante conflictos de unicidad.
func (c *Config) ConflictRetries() int {
	if c.Identity.ConflictRetries == nil {
		return DefaultConflictRetries
	}
	return *c.Identity.ConflictRetries
}

// Validate chequea valores que no tienen default razonable.
func (c *Config) Validate() error {
	var errs []string
	switch c.Storage.Driver {
	case "memory":
	case "postgres":
		if strings.TrimSpace(c.Storage.DSN) == "" {
			errs = append(errs, "storage.dsn is required for driver postgres")
		}
	default:
		errs = append(errs, fmt.Sprintf("storage.driver %q not supported", c.Storage.Driver))
	}
	if c.Cache.Kind != "memory" && c.Cache.Kind != "redis" {
		errs = append(errs, fmt.Sprintf("cache.kind %q not supported", c.Cache.Kind))
	}
	if c.Rate.Login.Limit < 1 {
		errs = append(errs, "rate.login.limit must be >= 1")
	}
	if c.Rate.Login.Window <= 0 {
		errs = append(errs, "rate.login.window must be > 0")
	}
	if c.Rate.IP.Limit < 0 {
		errs = append(errs, "rate.ip.limit must be >= 0")
	}
	if c.ConflictRetries() < 0 {
		errs = append(errs, "identity.conflict_retries must be >= 0")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ValidateServe agrega los requisitos para levantar el servidor HTTP.
func (c *Config) ValidateServe() error {
	if len(c.Session.Secret) < 32 {
		return fmt.Errorf("config: session.secret must be at least 32 bytes")
	}
	if strings.TrimSpace(c.Server.InternalKey) == "" {
		return fmt.Errorf("config: server.internal_key is required")
	}
	return nil
}
