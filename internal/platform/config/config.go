package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	StoreDriver   string

	JWTSecret    string
	JWTIssuer    string
	AdminUserIDs []string // Principals allowed to review requests and manage users

	RedisURL       string
	RedisPassword  string
	RedisDB        int
	IdempotencyTTL time.Duration

	RateLimit          string // ulule/limiter format, e.g. "60-M"
	CORSAllowedOrigins []string

	DistributionMaxAttempts int
	DistributionTimeout     time.Duration
	LockTimeout             time.Duration

	LevelCatalogFile string
	MigrationsPath   string
	RegistrationFee  decimal.Decimal
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("ADMIN_USER_IDS", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("IDEMPOTENCY_TTL", "24h")
	v.SetDefault("RATE_LIMIT", "60-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("DISTRIBUTION_MAX_ATTEMPTS", 3)
	v.SetDefault("DISTRIBUTION_TIMEOUT", "10s")
	v.SetDefault("LOCK_TIMEOUT", "5s")
	v.SetDefault("LEVEL_CATALOG_FILE", "configs/levels.toml")
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("REGISTRATION_FEE", "10.00")
}

// LoadConfig loads configuration from environment variables and .env file if present.
// Values from the environment override the .env file, which overrides the defaults.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabaseURL:      v.GetString("PGSQL_URL"),
		Port:             v.GetString("PORT"),
		IsProduction:     v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:    v.GetBool("ENABLE_DB_CHECK"),
		StoreDriver:      strings.ToLower(v.GetString("STORE_DRIVER")),
		JWTSecret:        v.GetString("JWT_SECRET"),
		JWTIssuer:        v.GetString("JWT_ISSUER"),
		RedisURL:         v.GetString("REDIS_URL"),
		RedisPassword:    v.GetString("REDIS_PASSWORD"),
		RedisDB:          v.GetInt("REDIS_DB"),
		RateLimit:        v.GetString("RATE_LIMIT"),
		LevelCatalogFile: v.GetString("LEVEL_CATALOG_FILE"),
		MigrationsPath:   v.GetString("MIGRATIONS_PATH"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if cfg.DatabaseURL == "" {
			log.Println("Warning: PGSQL_URL environment variable not set.")
		}
	case StoreDriverMemory:
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER '%s': want %s or %s", cfg.StoreDriver, StoreDriverPostgres, StoreDriverMemory)
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	var err error
	if cfg.IdempotencyTTL, err = parseDuration(v, "IDEMPOTENCY_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.DistributionTimeout, err = parseDuration(v, "DISTRIBUTION_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.LockTimeout, err = parseDuration(v, "LOCK_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}

	cfg.DistributionMaxAttempts = v.GetInt("DISTRIBUTION_MAX_ATTEMPTS")
	if cfg.DistributionMaxAttempts < 1 {
		log.Printf("Warning: DISTRIBUTION_MAX_ATTEMPTS must be at least 1, got %d. Defaulting to 3.\n", cfg.DistributionMaxAttempts)
		cfg.DistributionMaxAttempts = 3
	}

	fee, err := decimal.NewFromString(v.GetString("REGISTRATION_FEE"))
	if err != nil || fee.IsNegative() {
		return nil, fmt.Errorf("invalid REGISTRATION_FEE '%s'", v.GetString("REGISTRATION_FEE"))
	}
	cfg.RegistrationFee = fee

	cfg.CORSAllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))
	cfg.AdminUserIDs = splitList(v.GetString("ADMIN_USER_IDS"))

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string, fallback time.Duration) (time.Duration, error) {
	raw := v.GetString(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s ('%s'): %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid value for %s ('%s'): must be positive", key, raw)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
