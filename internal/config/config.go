package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type RoomConfig struct {
	Policy string `mapstructure:"policy" validate:"oneof=shared per_user"`
	Name   string `mapstructure:"name" validate:"required_if=Policy shared,max=36"`
}

type RateLimitConfig struct {
	Burst    int           `mapstructure:"burst" validate:"gte=1"`
	Interval time.Duration `mapstructure:"interval" validate:"gt=0"`
}

type RegistryConfig struct {
	TTL           time.Duration `mapstructure:"ttl" validate:"gte=0"`
	SweepInterval time.Duration `mapstructure:"sweep_interval" validate:"gt=0"`
}

type Config struct {
	Mode          string          `mapstructure:"mode" validate:"oneof=debug release test"`
	LogLevel      string          `mapstructure:"log_level"`
	Port          int             `mapstructure:"port" validate:"gte=1,lte=65535"`
	StaticPath    string          `mapstructure:"static_path"`
	PrivacyPath   string          `mapstructure:"privacy_path" validate:"required"`
	Secret        string          `mapstructure:"secret" validate:"required"`
	ReadLimit     int64           `mapstructure:"read_limit" validate:"gt=0"`
	PingPeriod    time.Duration   `mapstructure:"ping_period" validate:"gt=0"`
	WriteWait     time.Duration   `mapstructure:"write_wait" validate:"gt=0"`
	SendBuffer    int             `mapstructure:"send_buffer" validate:"gte=1"`
	MaxMessageLen int             `mapstructure:"max_message_len" validate:"gte=0"`
	Backpressure  string          `mapstructure:"backpressure" validate:"oneof=drop kick"`
	Room          RoomConfig      `mapstructure:"room"`
	RateLimit     RateLimitConfig `mapstructure:"rate_limit"`
	RegisterLimit RateLimitConfig `mapstructure:"register_limit"`
	Registry      RegistryConfig  `mapstructure:"registry"`
	// TrustedProxies may set X-Forwarded-For; empty trusts none.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

var validate = validator.New()

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("log_level", "info")
	v.SetDefault("port", 5001)
	v.SetDefault("static_path", "./public")
	v.SetDefault("privacy_path", "./privacy.html")
	v.SetDefault("secret", "change-me")
	v.SetDefault("read_limit", 1<<20)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("write_wait", "5s")
	v.SetDefault("send_buffer", 32)
	v.SetDefault("max_message_len", 64<<10)
	v.SetDefault("backpressure", "drop")
	v.SetDefault("room.policy", "shared")
	v.SetDefault("room.name", "lobby")
	v.SetDefault("rate_limit.burst", 5)
	v.SetDefault("rate_limit.interval", "1s")
	v.SetDefault("register_limit.burst", 10)
	v.SetDefault("register_limit.interval", "1m")
	v.SetDefault("registry.ttl", "0s")
	v.SetDefault("registry.sweep_interval", "1m")
}

// Load reads config/config.<CONFIG_ENV>.yaml (dev by default), then applies
// RELAY_* environment overrides. A missing file is not an error.
func Load() (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)
	v.SetEnvPrefix("RELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	// PORT is what hosting platforms set; it wins over the file.
	if port := os.Getenv("PORT"); port != "" && os.Getenv("RELAY_PORT") == "" {
		v.Set("port", port)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	// Oversized chat text must reach the relay as an error event; a frame
	// over read_limit makes the socket library close the connection instead.
	if int64(cfg.MaxMessageLen) >= cfg.ReadLimit {
		return nil, fmt.Errorf("invalid config: max_message_len %d must be below read_limit %d", cfg.MaxMessageLen, cfg.ReadLimit)
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("room_policy", cfg.Room.Policy).Msg("config ready")
	return &cfg, nil
}
