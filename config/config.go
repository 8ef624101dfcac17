package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/akulbansal1/carelink/internal/notification"
	"github.com/akulbansal1/carelink/internal/repository/postgres"
)

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
}

type UpstreamConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type SessionConfig struct {
	JWTSecret         string `mapstructure:"jwt_secret"`
	ExpiryHours       int    `mapstructure:"expiry_hours"`
	AdminEmail        string `mapstructure:"admin_email"`
	AdminPasswordHash string `mapstructure:"admin_password_hash"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type Config struct {
	Server   ServerConfig            `mapstructure:"server"`
	Upstream UpstreamConfig          `mapstructure:"upstream"`
	Database postgres.DatabaseConfig `mapstructure:"database"`
	SMTP     notification.SMTPConfig `mapstructure:"smtp"`
	Session  SessionConfig           `mapstructure:"session"`
	Redis    struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// Timezone governs calendar-date semantics for the whole service.
	Timezone string `mapstructure:"timezone"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 15*time.Second)
	viper.SetDefault("server.write_timeout", 15*time.Second)
	viper.SetDefault("upstream.timeout", 10*time.Second)
	viper.SetDefault("session.expiry_hours", 24)
	viper.SetDefault("rate_limit.rps", 50)
	viper.SetDefault("rate_limit.burst", 100)
	viper.SetDefault("timezone", "Local")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
