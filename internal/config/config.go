package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Webhook   WebhookConfig   `mapstructure:"webhook"`
	Outbox    OutboxConfig    `mapstructure:"outbox"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host" envconfig:"DB_HOST"`
	Port         int    `mapstructure:"port" envconfig:"DB_PORT"`
	User         string `mapstructure:"user" envconfig:"DB_USER"`
	Password     string `mapstructure:"password" envconfig:"DB_PASSWORD"`
	Name         string `mapstructure:"name" envconfig:"DB_NAME"`
	SSLMode      string `mapstructure:"sslmode" envconfig:"DB_SSLMODE"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type RedisConfig struct {
	URL string `mapstructure:"url" envconfig:"REDIS_URL"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret" envconfig:"JWT_SECRET"`
	Expiry time.Duration `mapstructure:"expiry"`
}

// WebhookConfig points at the external automation platform. Appointment and
// scheduled-report events go to {BaseURL}/webhook/appointments and
// {BaseURL}/webhook/scheduled-reports respectively.
type WebhookConfig struct {
	BaseURL string        `mapstructure:"base_url" envconfig:"WEBHOOK_BASE_URL"`
	Secret  string        `mapstructure:"secret" envconfig:"WEBHOOK_SECRET"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type OutboxConfig struct {
	BatchSize       int           `mapstructure:"batch_size"`
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	RetryAttempts   int           `mapstructure:"retry_attempts"`
	RetryDelay      time.Duration `mapstructure:"retry_delay"`
	RetentionDays   int           `mapstructure:"retention_days"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	BookingLimit      int           `mapstructure:"booking_limit"`
	BookingWindow     time.Duration `mapstructure:"booking_window"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host" envconfig:"SMTP_HOST"`
	Port     int    `mapstructure:"port" envconfig:"SMTP_PORT"`
	User     string `mapstructure:"user" envconfig:"SMTP_USER"`
	Password string `mapstructure:"password" envconfig:"SMTP_PASSWORD"`
	From     string `mapstructure:"from" envconfig:"SMTP_FROM"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Environment variables win over file values.
	if err := envconfig.Process("", &cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to process database env: %w", err)
	}
	if err := envconfig.Process("", &cfg.Redis); err != nil {
		return nil, fmt.Errorf("failed to process redis env: %w", err)
	}
	if err := envconfig.Process("", &cfg.JWT); err != nil {
		return nil, fmt.Errorf("failed to process jwt env: %w", err)
	}
	if err := envconfig.Process("", &cfg.Webhook); err != nil {
		return nil, fmt.Errorf("failed to process webhook env: %w", err)
	}
	if err := envconfig.Process("", &cfg.SMTP); err != nil {
		return nil, fmt.Errorf("failed to process smtp env: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 15*time.Second)
	viper.SetDefault("server.write_timeout", 15*time.Second)
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("jwt.expiry", 24*time.Hour)
	viper.SetDefault("webhook.timeout", 5*time.Second)
	viper.SetDefault("outbox.batch_size", 50)
	viper.SetDefault("outbox.poll_interval", 5*time.Second)
	viper.SetDefault("outbox.retry_attempts", 3)
	viper.SetDefault("outbox.retry_delay", 5*time.Second)
	viper.SetDefault("outbox.retention_days", 7)
	viper.SetDefault("outbox.cleanup_interval", time.Hour)
	viper.SetDefault("rate_limit.requests_per_second", 50)
	viper.SetDefault("rate_limit.burst", 100)
	viper.SetDefault("rate_limit.booking_limit", 5)
	viper.SetDefault("rate_limit.booking_window", time.Hour)
}
