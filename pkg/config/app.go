package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvFile    = ".env"
	ConfigFile = "config.yaml"
)

// AppConfig is the server configuration read from config.yaml, with
// environment overrides (optionally loaded from .env).
type AppConfig struct {
	Addr       string           `yaml:"addr"`
	Logging    LoggingConfig    `yaml:"logging"`
	Session    SessionConfig    `yaml:"session"`
	Mongo      MongoConfig      `yaml:"mongo"`
	Redis      RedisConfig      `yaml:"redis"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	HCaptcha   HCaptchaConfig   `yaml:"hcaptcha"`
	Strength   StrengthConfig   `yaml:"strength"`
	CORS       CORSConfig       `yaml:"cors"`
	ConfigPath string           `yaml:"config_path"`
	Pagination PaginationConfig `yaml:"pagination"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type SessionConfig struct {
	Secret string `yaml:"secret"`
	Name   string `yaml:"name"`
	Secure bool   `yaml:"secure"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

// RateLimitConfig bounds calls to the password-strength endpoint per client.
// Zero requests disables limiting.
type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

type HCaptchaConfig struct {
	Enabled   bool   `yaml:"enabled"`
	SiteKey   string `yaml:"site_key"`
	SecretKey string `yaml:"secret_key"`
	VerifyURL string `yaml:"verify_url"`
}

// StrengthConfig configures the password-strength client used by pages that
// call back into this server (or another one).
type StrengthConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// PaginationConfig holds the admin listing page sizes.
type PaginationConfig struct {
	DefaultPerPage int   `yaml:"default_per_page"`
	PerPageOptions []int `yaml:"per_page_options"`
}

// DefaultAppConfig returns the configuration used when no file is present.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Addr:      ":8080",
		Logging:   LoggingConfig{Level: "info"},
		Session:   SessionConfig{Name: "pagekit_session"},
		Mongo:     MongoConfig{Database: "pagekit"},
		RateLimit: RateLimitConfig{Requests: 30, Window: time.Minute},
		HCaptcha:  HCaptchaConfig{VerifyURL: "https://api.hcaptcha.com/siteverify"},
		Strength:  StrengthConfig{Timeout: 3 * time.Second},
		Pagination: PaginationConfig{
			DefaultPerPage: defaultPerPage,
			PerPageOptions: append([]int(nil), defaultPerPageOptions...),
		},
	}
}

// LoadApp reads .env and config.yaml from dir. A missing config.yaml yields
// defaults; environment variables win over file values.
func LoadApp(dir string) (AppConfig, error) {
	// .env is optional
	_ = godotenv.Load(filepath.Join(dir, EnvFile))

	cfg := DefaultAppConfig()

	data, err := os.ReadFile(filepath.Join(dir, ConfigFile))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return AppConfig{}, fmt.Errorf("failed to parse %s: %w", ConfigFile, err)
		}
	case os.IsNotExist(err):
	default:
		return AppConfig{}, fmt.Errorf("failed to read %s: %w", ConfigFile, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

func (c *AppConfig) applyEnv() error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	setString("PAGEKIT_ADDR", &c.Addr)
	setString("LOG_LEVEL", &c.Logging.Level)
	setString("SESSION_SECRET", &c.Session.Secret)
	setString("MONGO_URI", &c.Mongo.URI)
	setString("MONGO_DATABASE", &c.Mongo.Database)
	setString("REDIS_URL", &c.Redis.URL)
	setString("HCAPTCHA_SITE_KEY", &c.HCaptcha.SiteKey)
	setString("HCAPTCHA_SECRET_KEY", &c.HCaptcha.SecretKey)
	setString("STRENGTH_BASE_URL", &c.Strength.BaseURL)

	if v := os.Getenv("HCAPTCHA_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid HCAPTCHA_ENABLED %q: %w", v, err)
		}
		c.HCaptcha.Enabled = enabled
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.CORS.AllowedOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				c.CORS.AllowedOrigins = append(c.CORS.AllowedOrigins, origin)
			}
		}
	}
	return nil
}

// Validate reports settings the server cannot start with.
func (c AppConfig) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if len(c.Session.Secret) < 32 {
		return fmt.Errorf("session secret must be at least 32 bytes")
	}
	if c.HCaptcha.Enabled && c.HCaptcha.SecretKey == "" {
		return fmt.Errorf("hcaptcha secret key is required when hcaptcha is enabled")
	}
	if c.RateLimit.Requests < 0 {
		return fmt.Errorf("rate_limit.requests cannot be negative")
	}
	if c.RateLimit.Requests > 0 && c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit.window must be positive")
	}
	return nil
}

// GetBasePath walks up from the working directory to the first directory
// containing config.yaml. It returns "" when none is found.
func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		if info, err := os.Stat(filepath.Join(dir, ConfigFile)); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
