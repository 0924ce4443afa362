package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvTest        = "test"

	devJWTSecret = "dev-secret-change-me"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins []string

	DBDriver    string
	DatabaseURL string
	DBHost      string
	DBUser      string
	DBPass      string
	DBName      string
	DBPort      string
	SQLitePath  string

	RedisURL string

	MeiliSearchHost string
	MeiliMasterKey  string

	JWTSecret string
	JWTTTL    time.Duration

	UploadRateLimit time.Duration

	LogLevel  string
	LogFormat string

	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == EnvDevelopment
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		AppEnv:         v.GetString("APP_ENV"),
		Port:           v.GetString("PORT"),
		AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),

		DBDriver:    strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseURL: v.GetString("DATABASE_URL"),
		DBHost:      v.GetString("DB_HOST"),
		DBUser:      v.GetString("DB_USER"),
		DBPass:      v.GetString("DB_PASS"),
		DBName:      v.GetString("DB_NAME"),
		DBPort:      v.GetString("DB_PORT"),
		SQLitePath:  v.GetString("SQLITE_PATH"),

		RedisURL: v.GetString("REDIS_URL"),

		MeiliSearchHost: v.GetString("MEILISEARCH_HOST"),
		MeiliMasterKey:  v.GetString("MEILI_MASTER_KEY"),

		JWTSecret: v.GetString("JWT_SECRET"),

		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: v.GetString("LOG_FORMAT"),

		AdminUsername: v.GetString("ADMIN_USERNAME"),
		AdminEmail:    v.GetString("ADMIN_EMAIL"),
		AdminPassword: v.GetString("ADMIN_PASSWORD"),
	}

	var err error
	cfg.JWTTTL, err = parseDuration(v.GetString("JWT_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	cfg.UploadRateLimit, err = parseDuration(v.GetString("UPLOAD_RATE_LIMIT"))
	if err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_RATE_LIMIT: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", EnvDevelopment)
	v.SetDefault("PORT", "8080")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "drone_analytics")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("SQLITE_PATH", "./data/drone_analytics.db")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("UPLOAD_RATE_LIMIT", "0s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_EMAIL", "admin@drone.local")
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		if c.AppEnv != EnvDevelopment && c.AppEnv != EnvTest {
			return errors.New("JWT_SECRET is required outside development")
		}
		c.JWTSecret = devJWTSecret
	}

	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}

	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}
