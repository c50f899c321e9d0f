// Package config loads server settings from an optional YAML file plus
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mmynk/blast/internal/identity"
)

const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"

	ProviderTwilio = "twilio"
	ProviderLog    = "log"
)

// Config is the full server configuration.
type Config struct {
	Port             int           `yaml:"port"`
	AddressingScheme string        `yaml:"addressing_scheme"`
	Store            StoreConfig   `yaml:"store"`
	SMS              SMSConfig     `yaml:"sms"`
	Secrets          SecretsConfig `yaml:"secrets"`
	Auth             AuthConfig    `yaml:"auth"`
	CORS             CORSConfig    `yaml:"cors"`
}

type StoreConfig struct {
	Driver        string `yaml:"driver"`
	SQLitePath    string `yaml:"sqlite_path"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

type SMSConfig struct {
	Provider      string        `yaml:"provider"`
	TwilioBaseURL string        `yaml:"twilio_base_url"`
	Timeout       time.Duration `yaml:"timeout"`
}

type SecretsConfig struct {
	// Dir holds one file per secret. Empty means environment only.
	Dir string `yaml:"dir"`
}

type AuthConfig struct {
	TokenTTL time.Duration `yaml:"token_ttl"`
}

type CORSConfig struct {
	AllowOrigin string `yaml:"allow_origin"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Port:             8080,
		AddressingScheme: string(identity.SchemeDerived),
		Store: StoreConfig{
			Driver:     DriverSQLite,
			SQLitePath: "./data/roster.db",
			RedisAddr:  "localhost:6379",
		},
		SMS: SMSConfig{
			Provider: ProviderLog,
			Timeout:  10 * time.Second,
		},
		Auth: AuthConfig{TokenTTL: 12 * time.Hour},
		CORS: CORSConfig{AllowOrigin: "*"},
	}
}

// Load reads path (if non-empty) over the defaults, then applies environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = n
		}
		return nil
	}
	dur := func(key string, dst *time.Duration) error {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = d
		}
		return nil
	}

	str("BLAST_ADDRESSING_SCHEME", &c.AddressingScheme)
	str("BLAST_STORE_DRIVER", &c.Store.Driver)
	str("DB_PATH", &c.Store.SQLitePath)
	str("REDIS_ADDR", &c.Store.RedisAddr)
	str("REDIS_PASSWORD", &c.Store.RedisPassword)
	str("BLAST_SMS_PROVIDER", &c.SMS.Provider)
	str("TWILIO_BASE_URL", &c.SMS.TwilioBaseURL)
	str("BLAST_SECRETS_DIR", &c.Secrets.Dir)
	str("CORS_ALLOW_ORIGIN", &c.CORS.AllowOrigin)

	if err := num("PORT", &c.Port); err != nil {
		return err
	}
	if err := num("REDIS_DB", &c.Store.RedisDB); err != nil {
		return err
	}
	if err := dur("BLAST_SMS_TIMEOUT", &c.SMS.Timeout); err != nil {
		return err
	}
	return dur("BLAST_TOKEN_TTL", &c.Auth.TokenTTL)
}

// Validate rejects unknown drivers, schemes and providers.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if _, err := identity.ParseScheme(c.AddressingScheme); err != nil {
		return err
	}
	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("store.sqlite_path is required for the sqlite driver")
		}
	case DriverRedis:
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("store.redis_addr is required for the redis driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown store driver: %q", c.Store.Driver)
	}
	switch c.SMS.Provider {
	case ProviderTwilio, ProviderLog:
	default:
		return fmt.Errorf("unknown sms provider: %q", c.SMS.Provider)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}
	return nil
}

// Scheme returns the parsed addressing scheme. Only valid after Validate.
func (c Config) Scheme() identity.Scheme {
	s, _ := identity.ParseScheme(c.AddressingScheme)
	return s
}
