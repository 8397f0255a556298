package config

import (
	"errors"
	"io/fs"
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

	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	CORS          CORSConfig
	Log           LogConfig
	Storage       StorageConfig
	Challenge     ChallengeConfig
	Deadline      DeadlineConfig
	Leaderboard   LeaderboardConfig
	RateLimit     RateLimitConfig
	Notifications NotificationConfig
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
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Issuer            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// StorageConfig selects and configures the object store for proof images and avatars.
type StorageConfig struct {
	Driver         string
	LocalDir       string
	PublicBaseURL  string
	MaxUploadBytes int64
	AllowedMIMEs   []string
	Minio          MinioConfig
}

// MinioConfig holds S3-compatible bucket credentials.
type MinioConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	BucketName string
	Secure     bool
}

// ChallengeConfig describes the shape of the program.
type ChallengeConfig struct {
	TotalDays              int
	GlobalUnlockOnValidate bool
}

// DeadlineConfig controls the deadline expiry job and its triggers.
type DeadlineConfig struct {
	Cron          string
	TriggerSecret string
	LockTTL       time.Duration
}

// LeaderboardConfig tunes leaderboard caching.
type LeaderboardConfig struct {
	CacheTTL time.Duration
}

// RateLimitConfig configures the per-IP limiter on write-heavy routes.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// NotificationConfig sizes the notification fan-out queue.
type NotificationConfig struct {
	Workers int
	Retries int
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
		if !errors.As(err, &notFound) && !isMissingFile(err) {
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
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Issuer:            v.GetString("JWT_ISSUER"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	maxUpload := v.GetInt64("STORAGE_MAX_UPLOAD_SIZE")
	if maxUpload <= 0 {
		maxUpload = 5 * 1024 * 1024
	}
	cfg.Storage = StorageConfig{
		Driver:         strings.ToLower(v.GetString("STORAGE_DRIVER")),
		LocalDir:       v.GetString("STORAGE_LOCAL_DIR"),
		PublicBaseURL:  strings.TrimRight(v.GetString("STORAGE_PUBLIC_BASE_URL"), "/"),
		MaxUploadBytes: maxUpload,
		AllowedMIMEs:   splitAndTrim(v.GetString("STORAGE_ALLOWED_MIME_TYPES")),
		Minio: MinioConfig{
			Endpoint:   v.GetString("MINIO_ENDPOINT"),
			AccessKey:  v.GetString("MINIO_ACCESS_KEY"),
			SecretKey:  v.GetString("MINIO_SECRET_KEY"),
			BucketName: v.GetString("MINIO_BUCKET"),
			Secure:     v.GetBool("MINIO_SECURE"),
		},
	}

	totalDays := v.GetInt("CHALLENGE_TOTAL_DAYS")
	if totalDays <= 0 {
		totalDays = 15
	}
	cfg.Challenge = ChallengeConfig{
		TotalDays:              totalDays,
		GlobalUnlockOnValidate: v.GetBool("CHALLENGE_GLOBAL_UNLOCK_ON_VALIDATE"),
	}

	cfg.Deadline = DeadlineConfig{
		Cron:          v.GetString("DEADLINE_CRON"),
		TriggerSecret: v.GetString("DEADLINE_TRIGGER_SECRET"),
		LockTTL:       parseDuration(v.GetString("DEADLINE_LOCK_TTL"), 10*time.Minute),
	}

	cfg.Leaderboard = LeaderboardConfig{
		CacheTTL: parseDuration(v.GetString("LEADERBOARD_CACHE_TTL"), time.Minute),
	}

	cfg.RateLimit = RateLimitConfig{
		RPS:   v.GetFloat64("RATE_LIMIT_RPS"),
		Burst: v.GetInt("RATE_LIMIT_BURST"),
	}

	cfg.Notifications = NotificationConfig{
		Workers: v.GetInt("NOTIFY_WORKERS"),
		Retries: v.GetInt("NOTIFY_RETRIES"),
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
	v.SetDefault("DB_NAME", "marathon_challenge")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", true)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "marathon-challenge")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("STORAGE_DRIVER", "local")
	v.SetDefault("STORAGE_LOCAL_DIR", "./uploads")
	v.SetDefault("STORAGE_PUBLIC_BASE_URL", "http://localhost:8080/uploads")
	v.SetDefault("STORAGE_MAX_UPLOAD_SIZE", 5*1024*1024)
	v.SetDefault("STORAGE_ALLOWED_MIME_TYPES", "image/jpeg,image/png,image/webp")
	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
	v.SetDefault("MINIO_SECRET_KEY", "minioadmin")
	v.SetDefault("MINIO_BUCKET", "marathon")
	v.SetDefault("MINIO_SECURE", false)

	v.SetDefault("CHALLENGE_TOTAL_DAYS", 15)
	v.SetDefault("CHALLENGE_GLOBAL_UNLOCK_ON_VALIDATE", true)

	v.SetDefault("DEADLINE_CRON", "@hourly")
	v.SetDefault("DEADLINE_TRIGGER_SECRET", "")
	v.SetDefault("DEADLINE_LOCK_TTL", "10m")

	v.SetDefault("LEADERBOARD_CACHE_TTL", "1m")

	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)

	v.SetDefault("NOTIFY_WORKERS", 2)
	v.SetDefault("NOTIFY_RETRIES", 3)
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
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
