package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const envPrefix = "CHAT"

var (
	ErrMissingSecret       = errors.New("jwt.secret is required")
	ErrUnknownDBDriver     = errors.New("unknown database driver")
	ErrUnknownNotifier     = errors.New("unknown notify driver")
	ErrUnknownBackpressure = errors.New("unknown backpressure policy")
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	LogLevel   string        `mapstructure:"log_level"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	SendBuffer int           `mapstructure:"send_buffer"`

	JWT      JWTConfig      `mapstructure:"jwt"`
	Database DatabaseConfig `mapstructure:"database"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Gateway  GatewayConfig  `mapstructure:"gateway"`
}

// JWTConfig holds the verification parameters; tokens are issued elsewhere.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type NotifyConfig struct {
	Driver  string `mapstructure:"driver"`
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

type GatewayConfig struct {
	ReconcileTimeout time.Duration `mapstructure:"reconcile_timeout"`
	RevalidateOnSend bool          `mapstructure:"revalidate_on_send"`
	RateLimit        int           `mapstructure:"rate_limit"`
	RateInterval     time.Duration `mapstructure:"rate_interval"`
	Backpressure     string        `mapstructure:"backpressure"`
}

// Load reads config/config.<CONFIG_ENV>.yaml (dev by default), then applies
// CHAT_* environment overrides.
func Load() (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

// LoadFile is Load with an explicit file; a missing file falls back to defaults.
func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).
		Str("db", cfg.Database.Driver).Str("notify", cfg.Notify.Driver).Msg("config ready")
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("send_buffer", 64)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "chat.db")

	v.SetDefault("notify.driver", "log")
	v.SetDefault("notify.url", "")
	v.SetDefault("notify.subject", "chat.notifications.offline")

	v.SetDefault("gateway.reconcile_timeout", "10s")
	v.SetDefault("gateway.revalidate_on_send", false)
	v.SetDefault("gateway.rate_limit", 20)
	v.SetDefault("gateway.rate_interval", "10s")
	v.SetDefault("gateway.backpressure", "kick")
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return ErrMissingSecret
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDBDriver, c.Database.Driver)
	}
	switch c.Notify.Driver {
	case "log", "nats", "redis":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownNotifier, c.Notify.Driver)
	}
	switch c.Gateway.Backpressure {
	case "kick", "drop":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackpressure, c.Gateway.Backpressure)
	}
	return nil
}
