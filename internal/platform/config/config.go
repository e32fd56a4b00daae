package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// Config holds everything the API process reads from its environment.
type Config struct {
	AppEnv   string
	Port     string
	LogLevel string

	DatabaseURL    string
	DBMaxOpenConns int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CatalogTTL    time.Duration

	JWTSecret string
	JWTTTL    time.Duration

	PaymentMethods []string

	AdminEmail    string
	AdminPassword string
}

// IsDevelopment reports whether the process runs in a local/dev setup.
func (c Config) IsDevelopment() bool {
	return c.AppEnv == "development" || c.AppEnv == "local"
}

// Load reads an optional .env file and then the process environment.
// The returned slice lists non-fatal notes worth logging once a logger exists.
func Load(files ...string) (Config, []string, error) {
	var notes []string
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			notes = append(notes, fmt.Sprintf("%s not loaded (%v), relying on process environment", f, err))
		}
	}
	cfg, err := FromEnv(os.Getenv)
	return cfg, notes, err
}

// FromEnv builds a Config from a lookup function so tests can feed a map.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		AppEnv:        get("APP_ENV", "production"),
		Port:          get("APP_PORT", "8080"),
		LogLevel:      get("LOG_LEVEL", "info"),
		DatabaseURL:   get("DATABASE_URL", ""),
		RedisAddr:     get("REDIS_ADDR", ""),
		RedisPassword: get("REDIS_PASSWORD", ""),
		JWTSecret:     get("JWT_SECRET", ""),
		AdminEmail:    get("ADMIN_EMAIL", ""),
		AdminPassword: get("ADMIN_PASSWORD", ""),
	}

	var err error
	if cfg.DBMaxOpenConns, err = cast.ToIntE(get("DB_MAX_OPEN_CONNS", "25")); err != nil {
		return cfg, fmt.Errorf("DB_MAX_OPEN_CONNS: %w", err)
	}
	if cfg.RedisDB, err = cast.ToIntE(get("REDIS_DB", "0")); err != nil {
		return cfg, fmt.Errorf("REDIS_DB: %w", err)
	}
	if cfg.CatalogTTL, err = cast.ToDurationE(get("CATALOG_CACHE_TTL", "5m")); err != nil {
		return cfg, fmt.Errorf("CATALOG_CACHE_TTL: %w", err)
	}
	if cfg.JWTTTL, err = cast.ToDurationE(get("JWT_TTL", "12h")); err != nil {
		return cfg, fmt.Errorf("JWT_TTL: %w", err)
	}
	cfg.PaymentMethods = splitList(get("POS_PAYMENT_METHODS", "cash,card"))

	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			return cfg, fmt.Errorf("JWT_SECRET is required outside development")
		}
		cfg.JWTSecret = "needsport-dev-secret"
	}
	if len(cfg.PaymentMethods) == 0 {
		return cfg, fmt.Errorf("POS_PAYMENT_METHODS must list at least one method")
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	seen := map[string]bool{}
	for _, part := range strings.Split(s, ",") {
		v := strings.ToLower(strings.TrimSpace(part))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
