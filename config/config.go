package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	App       AppConfig       `yaml:"app"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Funnel    FunnelConfig    `yaml:"funnel"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	Env             string        `yaml:"env"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver          string        `yaml:"driver"` // mysql | postgres | sqlite
	DSN             string        `yaml:"dsn"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	SeedDemo        bool          `yaml:"seed_demo"`
}

type JWTConfig struct {
	AccessSecret string        `yaml:"access_secret"`
	AccessExpiry time.Duration `yaml:"access_expiry"`
	Issuer       string        `yaml:"issuer"`
}

// AppConfig holds the referral engine knobs.
type AppConfig struct {
	PublicBaseURL      string        `yaml:"public_base_url"` // share links are PublicBaseURL + /listings/{id}?ref=CODE
	IPHashKey          string        `yaml:"ip_hash_key"`
	ShareCodeAttempts  int           `yaml:"share_code_attempts"`
	CouponCodeAttempts int           `yaml:"coupon_code_attempts"`
	ConfirmTimeout     time.Duration `yaml:"confirm_timeout"`
}

type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

type FunnelConfig struct {
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	RetentionDays     int           `yaml:"retention_days"` // 0 keeps events forever
	RetentionInterval time.Duration `yaml:"retention_interval"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8099",
			Env:             "development",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          "mysql",
			DSN:             "lovegift:lovegift@tcp(localhost:3306)/lovegift?charset=utf8mb4&parseTime=True&loc=Local",
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret: "change-me-in-production",
			AccessExpiry: 15 * time.Minute,
			Issuer:       "lovegift",
		},
		App: AppConfig{
			PublicBaseURL:      "http://localhost:3000",
			IPHashKey:          "change-me-ip-hash",
			ShareCodeAttempts:  5,
			CouponCodeAttempts: 5,
			ConfirmTimeout:     5 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Requests: 100,
			Window:   60 * time.Second,
		},
		Funnel: FunnelConfig{
			WriteTimeout:      2 * time.Second,
			RetentionDays:     180,
			RetentionInterval: 24 * time.Hour,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_FILE, a .env file and finally the process environment.
func Load() (*Config, error) {
	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}
	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	var errs []error
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.Env, "APP_ENV")
	errs = append(errs,
		setDuration(&cfg.Server.ReadTimeout, "SERVER_READ_TIMEOUT"),
		setDuration(&cfg.Server.WriteTimeout, "SERVER_WRITE_TIMEOUT"),
		setDuration(&cfg.Server.ShutdownTimeout, "SERVER_SHUTDOWN_TIMEOUT"),
	)

	setString(&cfg.Database.Driver, "DB_DRIVER")
	setString(&cfg.Database.DSN, "DATABASE_URL")
	errs = append(errs,
		setInt(&cfg.Database.MaxIdleConns, "DB_MAX_IDLE_CONNS"),
		setInt(&cfg.Database.MaxOpenConns, "DB_MAX_OPEN_CONNS"),
		setDuration(&cfg.Database.ConnMaxLifetime, "DB_CONN_MAX_LIFETIME"),
		setBool(&cfg.Database.SeedDemo, "SEED_DEMO"),
	)

	setString(&cfg.JWT.AccessSecret, "JWT_ACCESS_SECRET")
	setString(&cfg.JWT.Issuer, "JWT_ISSUER")
	errs = append(errs, setDuration(&cfg.JWT.AccessExpiry, "JWT_ACCESS_EXPIRY"))

	setString(&cfg.App.PublicBaseURL, "PUBLIC_BASE_URL")
	setString(&cfg.App.IPHashKey, "IP_HASH_KEY")
	errs = append(errs,
		setInt(&cfg.App.ShareCodeAttempts, "SHARE_CODE_ATTEMPTS"),
		setInt(&cfg.App.CouponCodeAttempts, "COUPON_CODE_ATTEMPTS"),
		setDuration(&cfg.App.ConfirmTimeout, "CONFIRM_TIMEOUT"),
		setInt(&cfg.RateLimit.Requests, "RATE_LIMIT_REQUESTS"),
		setDuration(&cfg.RateLimit.Window, "RATE_LIMIT_WINDOW"),
		setDuration(&cfg.Funnel.WriteTimeout, "FUNNEL_WRITE_TIMEOUT"),
		setInt(&cfg.Funnel.RetentionDays, "FUNNEL_RETENTION_DAYS"),
		setDuration(&cfg.Funnel.RetentionInterval, "FUNNEL_RETENTION_INTERVAL"),
	)
	setString(&cfg.Log.Level, "LOG_LEVEL")
	return errors.Join(errs...)
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unsupported database driver %q", c.Database.Driver)
	}
	if strings.TrimSpace(c.JWT.AccessSecret) == "" {
		return errors.New("config: JWT_ACCESS_SECRET must not be empty")
	}
	if c.App.ShareCodeAttempts < 1 || c.App.CouponCodeAttempts < 1 {
		return errors.New("config: code attempts must be at least 1")
	}
	if c.App.ConfirmTimeout <= 0 {
		return errors.New("config: CONFIRM_TIMEOUT must be positive")
	}
	if c.Funnel.RetentionDays < 0 {
		return errors.New("config: FUNNEL_RETENTION_DAYS must not be negative")
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = b
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = d
	return nil
}
