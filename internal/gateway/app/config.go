package app

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/aussiebroadwan/authgate/internal/gateway/service"
)

// Config is built once at startup and handed to every component. Secrets are
// not read from the environment, only the names of the keys that hold them.
type Config struct {
	PublicURL     string `env:"AUTHGATE_PUBLIC_URL"      envDefault:"http://localhost:8080"`
	AppName       string `env:"AUTHGATE_APP_NAME"        envDefault:"authgate"`
	GatewayID     string `env:"AUTHGATE_GATEWAY_ID"`
	DatabaseFile  string `env:"AUTHGATE_DATABASE_FILE"   envDefault:"authgate.db"`
	SecretsFile   string `env:"AUTHGATE_SECRETS_FILE"    envDefault:"secrets.env"`
	ProvidersFile string `env:"AUTHGATE_PROVIDERS_FILE"`
	WatchSecrets  bool   `env:"AUTHGATE_WATCH_SECRETS"   envDefault:"true"`

	AdminLoginURL string        `env:"AUTHGATE_ADMIN_LOGIN_URL"`
	SecureCookies bool          `env:"AUTHGATE_SECURE_COOKIES"  envDefault:"true"`
	SessionTTL    time.Duration `env:"AUTHGATE_SESSION_TTL"     envDefault:"12h"`

	TrustProxyHeaders bool `env:"AUTHGATE_TRUST_PROXY_HEADERS" envDefault:"false"`

	AssertionSecretKey string `env:"AUTHGATE_ASSERTION_SECRET_KEY" envDefault:"GOOGLE_INTERNAL_CLIENT_SECRET"`
	WebhookSecretKey   string `env:"AUTHGATE_WEBHOOK_SECRET_KEY"   envDefault:"WEBHOOK_SECRET"`
	SessionSecretKey   string `env:"AUTHGATE_SESSION_SECRET_KEY"   envDefault:"SESSION_SECRET"`

	MaxMagicLinkHours  int           `env:"AUTHGATE_MAX_MAGIC_LINK_HOURS" envDefault:"720"`
	MagicLinkRetention time.Duration `env:"AUTHGATE_MAGIC_LINK_RETENTION" envDefault:"720h"`
	WebhookTimeout     time.Duration `env:"AUTHGATE_WEBHOOK_TIMEOUT"      envDefault:"10s"`
	ExchangeTimeout    time.Duration `env:"AUTHGATE_EXCHANGE_TIMEOUT"     envDefault:"10s"`

	Env                  string        `env:"ENV"                   envDefault:"dev"`
	LogLevel             string        `env:"LOG_LEVEL"             envDefault:"info"`
	LogFormat            string        `env:"LOG_FORMAT"            envDefault:"json"`
	Port                 int           `env:"PORT"                  envDefault:"8080"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`
}

// LoadConfig reads the environment and validates the result.
func LoadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	c.PublicURL = strings.TrimRight(strings.TrimSpace(c.PublicURL), "/")
	u, err := url.Parse(c.PublicURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("AUTHGATE_PUBLIC_URL must be an absolute http(s) URL, got %q", c.PublicURL)
	}
	if c.GatewayID == "" {
		c.GatewayID = u.Host
	}

	if c.MaxMagicLinkHours <= 0 {
		c.MaxMagicLinkHours = service.DefaultMaxMagicLinkHours
	}
	if c.SecretsFile == "" {
		return errors.New("AUTHGATE_SECRETS_FILE must not be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	return nil
}

// Addr is the listen address of the HTTP server.
func (c Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }
