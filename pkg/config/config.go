package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Pickup    PickupConfig
	Drafts    DraftsConfig
	Lookups   LookupsConfig
	Manifests ManifestsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// PickupConfig pins the scheduling engine's civil timezone and defaults.
// Timezone is the fixed region zone all date and "today" decisions use,
// regardless of where a caller connects from.
type PickupConfig struct {
	Timezone              string
	DefaultSlotMinutes    int
	CapacityHorizonMonths int
}

// DraftsConfig tunes the in-memory enrollment draft sessions.
type DraftsConfig struct {
	TTL       time.Duration
	NoticeTTL time.Duration
}

// LookupsConfig tunes caching of the read-side lookup endpoints.
type LookupsConfig struct {
	CacheTTL time.Duration
}

// ManifestsConfig configures asynchronous pickup manifest generation.
type ManifestsConfig struct {
	Enabled           bool
	StorageDir        string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	CleanupInterval   time.Duration
	WorkerConcurrency int
	WorkerRetries     int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Pickup = PickupConfig{
		Timezone:              v.GetString("PICKUP_TIMEZONE"),
		DefaultSlotMinutes:    v.GetInt("PICKUP_DEFAULT_SLOT_MINUTES"),
		CapacityHorizonMonths: v.GetInt("PICKUP_CAPACITY_HORIZON_MONTHS"),
	}

	cfg.Drafts = DraftsConfig{
		TTL:       parseDuration(v.GetString("DRAFT_TTL"), 30*time.Minute),
		NoticeTTL: parseDuration(v.GetString("DRAFT_NOTICE_TTL"), 15*time.Second),
	}

	cfg.Lookups = LookupsConfig{
		CacheTTL: parseDuration(v.GetString("LOOKUPS_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Manifests = ManifestsConfig{
		Enabled:           v.GetBool("ENABLE_MANIFESTS"),
		StorageDir:        v.GetString("MANIFESTS_STORAGE_DIR"),
		SignedURLSecret:   v.GetString("MANIFESTS_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("MANIFESTS_SIGNED_URL_TTL"), 24*time.Hour),
		CleanupInterval:   parseDuration(v.GetString("MANIFESTS_CLEANUP_INTERVAL"), time.Hour),
		WorkerConcurrency: v.GetInt("MANIFESTS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("MANIFESTS_WORKER_RETRIES"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "foodbridge_pickup")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("PICKUP_TIMEZONE", "Europe/Amsterdam")
	v.SetDefault("PICKUP_DEFAULT_SLOT_MINUTES", 15)
	v.SetDefault("PICKUP_CAPACITY_HORIZON_MONTHS", 1)

	v.SetDefault("DRAFT_TTL", "30m")
	v.SetDefault("DRAFT_NOTICE_TTL", "15s")

	v.SetDefault("LOOKUPS_CACHE_TTL", "5m")

	v.SetDefault("ENABLE_MANIFESTS", false)
	v.SetDefault("MANIFESTS_STORAGE_DIR", "./manifests")
	v.SetDefault("MANIFESTS_SIGNED_URL_SECRET", "dev_manifests_secret")
	v.SetDefault("MANIFESTS_SIGNED_URL_TTL", "24h")
	v.SetDefault("MANIFESTS_CLEANUP_INTERVAL", "1h")
	v.SetDefault("MANIFESTS_WORKER_CONCURRENCY", 1)
	v.SetDefault("MANIFESTS_WORKER_RETRIES", 3)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
