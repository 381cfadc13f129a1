// Package config loads settings from config.yaml, an optional .env file
// and CC_-prefixed environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "CC"

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Sync     SyncConfig     `mapstructure:"sync"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Bot      BotConfig      `mapstructure:"bot"`
	Log      LogConfig      `mapstructure:"log"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

type RabbitMQConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	VHost    string `mapstructure:"vhost"`
	UseTLS   bool   `mapstructure:"use_tls"`
}

// StorageConfig picks the persistence backend: memory, sqlite or postgres.
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

// SyncConfig picks how writes reach other running instances: none, hub or rabbitmq.
type SyncConfig struct {
	Driver   string `mapstructure:"driver"`
	Exchange string `mapstructure:"exchange"`
}

type HTTPConfig struct {
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type AuthConfig struct {
	SharedPassword string        `mapstructure:"shared_password"`
	JWTSecret      string        `mapstructure:"jwt_secret"`
	TokenTTL       time.Duration `mapstructure:"token_ttl"`
}

type BotConfig struct {
	Delay time.Duration `mapstructure:"delay"`
}

// LogConfig.File redirects logs to a file; the dashboard needs stdout for itself.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

var defaults = map[string]any{
	"database.host":         "localhost",
	"database.port":         5432,
	"database.user":         "campus",
	"database.database":     "campus_crave",
	"database.sslmode":      "disable",
	"database.max_conns":    10,
	"rabbitmq.host":         "localhost",
	"rabbitmq.port":         5672,
	"rabbitmq.user":         "guest",
	"rabbitmq.password":     "guest",
	"rabbitmq.vhost":        "/",
	"storage.driver":        "sqlite",
	"storage.path":          "campus-crave.db",
	"sync.driver":           "none",
	"sync.exchange":         "cc_storage_fanout",
	"http.port":             3000,
	"http.shutdown_timeout": "5s",
	"auth.shared_password":  "pass123",
	"auth.jwt_secret":       "campus-crave-dev-secret",
	"auth.token_ttl":        "24h",
	"bot.delay":             "1500ms",
	"log.level":             "info",
	"log.file":              "",
}

// Load reads path (or the first config file found when path is empty). A
// missing file is fine; defaults and the environment still apply.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only sees keys viper already knows about.
	for k := range defaults {
		_ = v.BindEnv(k)
	}
	_ = v.BindEnv("database.password")

	if path == "" {
		if found, err := FindConfig(); err == nil {
			path = found
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "memory":
	case "sqlite":
		if c.Storage.Path == "" {
			return errors.New("invalid config: storage.path is required for sqlite")
		}
	case "postgres":
		if c.Database.Host == "" || c.Database.User == "" || c.Database.Database == "" {
			return errors.New("invalid config: database host, user and database are required for postgres")
		}
	default:
		return fmt.Errorf("invalid config: unknown storage.driver %q", c.Storage.Driver)
	}
	switch c.Sync.Driver {
	case "none", "hub":
	case "rabbitmq":
		if c.RabbitMQ.Host == "" || c.RabbitMQ.User == "" {
			return errors.New("invalid config: rabbitmq host and user are required for rabbitmq sync")
		}
	default:
		return fmt.Errorf("invalid config: unknown sync.driver %q", c.Sync.Driver)
	}
	if c.Auth.SharedPassword == "" {
		return errors.New("invalid config: auth.shared_password must not be empty")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("invalid config: auth.token_ttl must be positive")
	}
	return nil
}

// FindConfig looks for config.yaml in the working directory.
func FindConfig() (string, error) {
	const name = "config.yaml"
	if _, err := os.Stat(name); err != nil {
		return "", fs.ErrNotExist
	}
	return name, nil
}
