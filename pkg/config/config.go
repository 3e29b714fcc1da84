package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	AuthProviderJWT      = "jwt"
	AuthProviderFirebase = "firebase"

	defaultConfigFile = "config.yaml"
)

type Config struct {
	Port            string        `koanf:"port"`
	MetricsPort     string        `koanf:"metrics_port"`
	Env             string        `koanf:"env"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	PostgresURL   string `koanf:"postgres_url"`
	MongoURI      string `koanf:"mongo_uri"`
	MongoDatabase string `koanf:"mongo_database"`

	AuthProvider            string `koanf:"auth_provider"`
	JWTSecret               string `koanf:"jwt_secret"`
	JWTIssuer               string `koanf:"jwt_issuer"`
	FirebaseCredentialsPath string `koanf:"firebase_credentials_path"`

	KafkaBrokers string `koanf:"kafka_brokers"` // comma-separated; empty disables event publishing
	KafkaTopic   string `koanf:"kafka_topic"`

	StreakTimezone string `koanf:"streak_timezone"`
}

func defaults() Config {
	return Config{
		Port:            "8080",
		MetricsPort:     "9090",
		Env:             "development",
		ShutdownTimeout: 15 * time.Second,
		LogLevel:        "info",
		LogFormat:       "json",
		MongoDatabase:   "focusfeed",
		AuthProvider:    AuthProviderJWT,
		KafkaTopic:      "focusfeed.engagement",
		StreakTimezone:  "UTC",
	}
}

// Load layers defaults, an optional YAML file and the environment, in that
// order of precedence. A .env file in the working directory is read first.
// path may be empty, in which case CONFIG_PATH or ./config.yaml is used when
// present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey maps POSTGRES_URL to postgres_url.
func envKey(s string) string {
	return strings.ToLower(s)
}

// Validate checks settings that do not depend on a live connection.
func (c *Config) Validate() error {
	var errs []error
	switch c.AuthProvider {
	case AuthProviderJWT:
		if c.JWTSecret == "" {
			errs = append(errs, errors.New("jwt_secret is required when auth_provider is jwt"))
		}
	case AuthProviderFirebase:
		if c.FirebaseCredentialsPath == "" {
			errs = append(errs, errors.New("firebase_credentials_path is required when auth_provider is firebase"))
		}
	default:
		errs = append(errs, fmt.Errorf("auth_provider must be %q or %q, got %q", AuthProviderJWT, AuthProviderFirebase, c.AuthProvider))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown_timeout must be positive"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Location resolves StreakTimezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.StreakTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid streak_timezone %q: %w", c.StreakTimezone, err)
	}
	return loc, nil
}

// Brokers splits KafkaBrokers into addresses.
func (c *Config) Brokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
