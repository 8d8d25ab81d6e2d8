package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DevJWTSecret signs tokens in development when JWT_SECRET is unset.
const DevJWTSecret = "healthchain-development-secret"

type Config struct {
	Port      string `mapstructure:"PORT"`
	Env       string `mapstructure:"ENV"`
	APIPrefix string `mapstructure:"API_PREFIX"`

	LogLevel      string `mapstructure:"LOG_LEVEL"`
	LogFile       string `mapstructure:"LOG_FILE"`
	LogMaxSizeMB  int    `mapstructure:"LOG_MAX_SIZE_MB"`
	LogMaxBackups int    `mapstructure:"LOG_MAX_BACKUPS"`
	LogMaxAgeDays int    `mapstructure:"LOG_MAX_AGE_DAYS"`

	KVBackend   string `mapstructure:"KV_BACKEND"`
	RedisURL    string `mapstructure:"REDIS_URL"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`

	JWTSecret string        `mapstructure:"JWT_SECRET"`
	TokenTTL  time.Duration `mapstructure:"TOKEN_TTL"`

	CORSOrigins    []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int      `mapstructure:"RATE_LIMIT_BURST"`
	BodyLimit      string   `mapstructure:"BODY_LIMIT"`

	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`

	ScoringStrategy string        `mapstructure:"SCORING_STRATEGY"`
	ScoringSeed     int64         `mapstructure:"SCORING_SEED"`
	ScoringMinScore int           `mapstructure:"SCORING_MIN_SCORE"`
	ScoringDelay    time.Duration `mapstructure:"SCORING_DELAY"`

	AnalyticsRebuildOnStart bool `mapstructure:"ANALYTICS_REBUILD_ON_START"`
}

var keys = []string{
	"PORT", "ENV", "API_PREFIX",
	"LOG_LEVEL", "LOG_FILE", "LOG_MAX_SIZE_MB", "LOG_MAX_BACKUPS", "LOG_MAX_AGE_DAYS",
	"KV_BACKEND", "REDIS_URL", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
	"JWT_SECRET", "TOKEN_TTL",
	"CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "BODY_LIMIT", "REQUEST_TIMEOUT",
	"SCORING_STRATEGY", "SCORING_SEED", "SCORING_MIN_SCORE", "SCORING_DELAY",
	"ANALYTICS_REBUILD_ON_START",
}

// Load reads configuration from the environment and an optional .env file.
// It does not validate; call Validate before serving.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("API_PREFIX", "/make-server-c613b596")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_MAX_SIZE_MB", 100)
	v.SetDefault("LOG_MAX_BACKUPS", 5)
	v.SetDefault("LOG_MAX_AGE_DAYS", 28)
	v.SetDefault("KV_BACKEND", "memory")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("SCORING_STRATEGY", "random")
	v.SetDefault("SCORING_SEED", 0)
	v.SetDefault("SCORING_MIN_SCORE", 70)
	v.SetDefault("SCORING_DELAY", "0s")
	v.SetDefault("ANALYTICS_REBUILD_ON_START", true)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// .env is optional
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(strings.Join(cfg.CORSOrigins, ","))
	cfg.KVBackend = strings.ToLower(strings.TrimSpace(cfg.KVBackend))
	cfg.ScoringStrategy = strings.ToLower(strings.TrimSpace(cfg.ScoringStrategy))

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// UsesDevSecret reports whether tokens will be signed with DevJWTSecret.
func (c *Config) UsesDevSecret() bool {
	return c.IsDev() && c.JWTSecret == ""
}

// SigningSecret returns the HS256 key for access tokens.
func (c *Config) SigningSecret() []byte {
	if c.UsesDevSecret() {
		return []byte(DevJWTSecret)
	}
	return []byte(c.JWTSecret)
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	if !c.IsDev() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when ENV=%q", c.Env)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}

	switch c.KVBackend {
	case "memory":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when KV_BACKEND is \"redis\"")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when KV_BACKEND is \"postgres\"")
		}
	default:
		return fmt.Errorf("KV_BACKEND must be \"memory\", \"redis\", or \"postgres\", got %q", c.KVBackend)
	}

	if c.ScoringStrategy != "random" && c.ScoringStrategy != "static" {
		return fmt.Errorf("SCORING_STRATEGY must be \"random\" or \"static\", got %q", c.ScoringStrategy)
	}
	if c.ScoringMinScore < 0 || c.ScoringMinScore > 99 {
		return fmt.Errorf("SCORING_MIN_SCORE must be between 0 and 99, got %d", c.ScoringMinScore)
	}
	if c.ScoringDelay < 0 || c.ScoringDelay > 10*time.Second {
		return fmt.Errorf("SCORING_DELAY must be between 0s and 10s, got %s", c.ScoringDelay)
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must not be negative")
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be at least 1 when RATE_LIMIT_RPS is set")
	}
	return nil
}
