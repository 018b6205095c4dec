package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// MinSessionSecretLength is the shortest accepted BLOG_SESSION_SECRET.
const MinSessionSecretLength = 32

var knownWeakSecrets = []string{
	"change-me-to-a-32-byte-secret-key",
	"8BYkEfBA6O6donzWlSihBXox7C0sKR6b",
}

type Config struct {
	DBPath          string        `env:"BLOG_DB_PATH" envDefault:"blog.db"`
	SessionSecret   string        `env:"BLOG_SESSION_SECRET,required"`
	Addr            string        `env:"BLOG_ADDR" envDefault:":8080"`
	Env             string        `env:"BLOG_ENV" envDefault:"development"`
	LogLevel        string        `env:"BLOG_LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"BLOG_LOG_FORMAT" envDefault:"text"`
	SessionLifetime time.Duration `env:"BLOG_SESSION_LIFETIME" envDefault:"24h"`

	// Extra hosts (host:port) allowed to submit forms cross-origin.
	TrustedOrigins []string `env:"BLOG_TRUSTED_ORIGINS" envSeparator:","`
}

// dbConfig is the subset of Config needed by the maintenance commands, which
// must not require a session secret.
type dbConfig struct {
	DBPath string `env:"BLOG_DB_PATH" envDefault:"blog.db"`
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func loadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDBConfig() (*dbConfig, error) {
	cfg := &dbConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if len(c.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("BLOG_SESSION_SECRET must be at least %d bytes long, got %d bytes",
			MinSessionSecretLength, len(c.SessionSecret))
	}
	for _, weak := range knownWeakSecrets {
		if c.SessionSecret == weak {
			return fmt.Errorf("BLOG_SESSION_SECRET is a known default value and must not be used")
		}
	}

	switch c.Env {
	case "development", "production":
	default:
		return fmt.Errorf("BLOG_ENV must be development or production, got %q", c.Env)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("BLOG_LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}

	if c.SessionLifetime <= 0 {
		return fmt.Errorf("BLOG_SESSION_LIFETIME must be positive, got %s", c.SessionLifetime)
	}

	return nil
}
