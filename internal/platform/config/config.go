package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures everything the gateway reads from the environment. Keeping
// it in one struct keeps main lean and makes tests able to build configs by
// hand.
type Config struct {
	Addr        string
	VerboseLogs bool

	Redis RedisConfig
	Cache CacheConfig

	SGA          UpstreamConfig
	Posgrado     PosgradoConfig
	Matricula    UpstreamConfig
	DefaultReset string
}

// RedisConfig carries connection settings for the shared result cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// CacheConfig holds the outcome-dependent TTL policy. Terminal outcomes that
// should be retried soon (not found, pending credential repair) use ShortTTL.
type CacheConfig struct {
	ShortTTL time.Duration
	LongTTL  time.Duration
}

// UpstreamConfig is the per-system HTTP client configuration.
type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
}

// PosgradoConfig extends UpstreamConfig with the site-specific anti-forgery
// token and session cookie the posgrado recover endpoint demands. These
// expire server-side and must be rotated via environment.
type PosgradoConfig struct {
	UpstreamConfig
	CSRFToken string
	Cookie    string
}

// FromEnv builds a Config from environment variables with defaults matching
// the production UNEMI deployments.
func FromEnv() Config {
	return Config{
		Addr:        envStr("GATEWAY_ADDR", ":3000"),
		VerboseLogs: envBool("VERBOSE_LOGS", false),
		Redis: RedisConfig{
			URL:          envStr("REDIS_URL", "redis://localhost:6379"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Cache: CacheConfig{
			ShortTTL: envDuration("CACHE_SHORT_TTL", 5*time.Minute),
			LongTTL:  envDuration("CACHE_LONG_TTL", time.Hour),
		},
		SGA: UpstreamConfig{
			BaseURL: envStr("SGA_BASE_URL", "https://sga.unemi.edu.ec/api/1.0/jwt"),
			Timeout: envDuration("SGA_TIMEOUT", 30*time.Second),
		},
		Posgrado: PosgradoConfig{
			UpstreamConfig: UpstreamConfig{
				BaseURL: envStr("POSGRADO_BASE_URL", "https://seleccionposgrado.unemi.edu.ec"),
				Timeout: envDuration("POSGRADO_TIMEOUT", 30*time.Second),
			},
			CSRFToken: os.Getenv("POSGRADO_CSRF_TOKEN"),
			Cookie:    os.Getenv("POSGRADO_COOKIE"),
		},
		Matricula: UpstreamConfig{
			BaseURL: envStr("MATRICULA_BASE_URL", "https://matriculacion-api.unemi.edu.ec/api/matricula/v1.0.0"),
			Timeout: envDuration("MATRICULA_TIMEOUT", 30*time.Second),
		},
		DefaultReset: envStr("DEFAULT_RESET_PASSWORD", "Unemi*2025"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v == "true" || v == "1"
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		// Plain integers are treated as milliseconds, matching the legacy
		// *_TIMEOUT_MS variables.
		if ms, err := strconv.Atoi(v); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return fallback
}
