package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"

	menuports "github.com/Apurer/restaurant-pos/internal/domains/menu/ports"
)

// Menu store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// DefaultNamespace is the collection namespace of the production deployment.
const DefaultNamespace = "miapprestaurantepos"

// Config carries environment-driven settings for the POS processes.
type Config struct {
	Port              string
	MenuStore         string
	PostgresDSN       string
	RedisURL          string
	RedisPoolSize     int
	Namespace         string
	SeedMode          menuports.SeedMode
	SeedConcurrency   int
	DeviceID          string
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
	IdentityRetention time.Duration
}

// LoadConfig reads an optional .env file and the environment, applies
// defaults, and validates. Errors name the offending variable.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		RedisURL:          strings.TrimSpace(os.Getenv("REDIS_URL")),
		Namespace:         envDefault("MENU_NAMESPACE", DefaultNamespace),
		DeviceID:          strings.TrimSpace(os.Getenv("DEVICE_ID")),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		IdentityRetention: 30 * 24 * time.Hour,
	}

	store, err := menuStore(cfg)
	if err != nil {
		return Config{}, err
	}
	cfg.MenuStore = store

	mode, err := menuports.ParseSeedMode(os.Getenv("SEED_MODE"))
	if err != nil {
		return Config{}, fmt.Errorf("SEED_MODE: %w", err)
	}
	cfg.SeedMode = mode

	if cfg.SeedConcurrency, err = envInt("SEED_CONCURRENCY", 0, 0); err != nil {
		return Config{}, err
	}
	if cfg.RedisPoolSize, err = envInt("REDIS_POOL_SIZE", 0, 0); err != nil {
		return Config{}, err
	}
	days, err := envInt("IDENTITY_RETENTION_DAYS", 30, 1)
	if err != nil {
		return Config{}, err
	}
	cfg.IdentityRetention = time.Duration(days) * 24 * time.Hour

	if cfg.DeviceID == "" {
		host, err := os.Hostname()
		if err != nil || strings.TrimSpace(host) == "" {
			return Config{}, fmt.Errorf("DEVICE_ID is not set and the hostname is unavailable")
		}
		cfg.DeviceID = host
	}
	return cfg, nil
}

// SharedMenuStore reports whether other processes, such as the seed worker,
// can reach the configured menu store.
func (c Config) SharedMenuStore() bool {
	return c.MenuStore == StorePostgres || c.MenuStore == StoreRedis
}

func menuStore(cfg Config) (string, error) {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv("MENU_STORE")))
	switch raw {
	case "":
		switch {
		case cfg.PostgresDSN != "":
			return StorePostgres, nil
		case cfg.RedisURL != "":
			return StoreRedis, nil
		default:
			return StoreMemory, nil
		}
	case StoreMemory:
		return raw, nil
	case StorePostgres:
		if cfg.PostgresDSN == "" {
			return "", fmt.Errorf("MENU_STORE=postgres requires POSTGRES_DSN")
		}
		return raw, nil
	case StoreRedis:
		if cfg.RedisURL == "" {
			return "", fmt.Errorf("MENU_STORE=redis requires REDIS_URL")
		}
		return raw, nil
	default:
		return "", fmt.Errorf("MENU_STORE must be one of memory, postgres, redis")
	}
}

func envInt(key string, fallback, min int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < min {
		return 0, fmt.Errorf("%s must be an integer >= %d", key, min)
	}
	return value, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
