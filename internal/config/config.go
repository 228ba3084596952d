package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppEnv   string
	Port     string
	LogLevel string

	// Metadata store (sqlite, pgx, mongo or memory)
	DBDriver     string
	DBConnection string
	MongoURL     string
	DBDatabase   string

	// Redis backs sessions and the job queue by default
	RedisURL string

	// Sessions
	SessionBackend   string // "redis" or "jwt"
	JWTSecret        string
	SessionCacheSize int
	SessionCacheTTL  time.Duration

	// Jobs
	QueueBackend      string // "redis" or "memory"
	WorkerConcurrency int
	JobMaxAttempts    int
	JobRetryDelay     time.Duration
	EmbeddedWorker    bool // Run the consumers inside the server process

	// Blob storage
	StorageDriver string // "fs" or "s3"
	FolderPath    string
	S3Region      string
	S3Bucket      string
	S3AccessKey   string
	S3SecretKey   string
	S3Endpoint    string // Optional: for S3-compatible services (MinIO, DO Spaces, R2, etc.)

	// Uploads
	MaxUploadSize   int64 // Bytes of JSON body accepted by POST /files
	UploadRateLimit int   // Uploads per minute per client, 0 disables

	// Email
	EmailFrom    string
	ResendAPIKey string

	// Observability (optional)
	SentryDSN string
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	return &Config{
		// Application
		AppEnv:   envRequired("APP_ENV"), // Required: 'development' or 'production'
		Port:     envString("PORT", "5000"),
		LogLevel: envString("LOG_LEVEL", ""),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/files_manager.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),
		MongoURL:     envString("MONGO_URL", "mongodb://localhost:27017"),
		DBDatabase:   envString("DB_DATABASE", "files_manager"),

		RedisURL: envString("REDIS_URL", "redis://localhost:6379/0"),

		// Sessions
		SessionBackend:   envString("SESSION_BACKEND", "redis"),
		JWTSecret:        envString("JWT_SECRET", ""),
		SessionCacheSize: envInt("SESSION_CACHE_SIZE", 1024),
		SessionCacheTTL:  envDuration("SESSION_CACHE_TTL", 30*time.Second),

		// Jobs
		QueueBackend:      envString("QUEUE_BACKEND", "redis"),
		WorkerConcurrency: envInt("WORKER_CONCURRENCY", 4),
		JobMaxAttempts:    envInt("JOB_MAX_ATTEMPTS", 3),
		JobRetryDelay:     envDuration("JOB_RETRY_DELAY", 5*time.Second),
		EmbeddedWorker:    envBool("EMBEDDED_WORKER", false),

		// Storage
		StorageDriver: envString("STORAGE_DRIVER", "fs"),
		FolderPath:    envString("FOLDER_PATH", "/tmp/files_manager"),
		S3Region:      envString("S3_REGION", ""),
		S3Bucket:      envString("S3_BUCKET", ""),
		S3AccessKey:   envString("S3_ACCESS_KEY", ""),
		S3SecretKey:   envString("S3_SECRET_KEY", ""),
		S3Endpoint:    envString("S3_ENDPOINT", ""),

		// Uploads
		MaxUploadSize:   int64(envInt("MAX_UPLOAD_SIZE", 32<<20)),
		UploadRateLimit: envInt("UPLOAD_RATE_LIMIT", 60),

		// Email (RESEND_API_KEY optional in development, required in production)
		EmailFrom:    envString("EMAIL_FROM", "noreply@example.com"),
		ResendAPIKey: envString("RESEND_API_KEY", ""),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),
	}
}

// Validate checks the backend selections and the settings each of them requires.
// Development allows some services (like email) to use fallback modes for easier local testing.
func (c *Config) Validate() error {
	var errs []error

	switch c.DBDriver {
	case "sqlite", "pgx", "memory":
	case "mongo":
		if c.MongoURL == "" {
			errs = append(errs, errors.New("MONGO_URL is required when DB_DRIVER=mongo"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver))
	}

	switch c.SessionBackend {
	case "redis":
	case "jwt":
		if c.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET is required when SESSION_BACKEND=jwt"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported SESSION_BACKEND %q", c.SessionBackend))
	}

	switch c.QueueBackend {
	case "redis", "memory":
	default:
		errs = append(errs, fmt.Errorf("unsupported QUEUE_BACKEND %q", c.QueueBackend))
	}

	switch c.StorageDriver {
	case "fs":
		if c.FolderPath == "" {
			errs = append(errs, errors.New("FOLDER_PATH must not be empty"))
		}
	case "s3":
		if c.S3Region == "" || c.S3Bucket == "" {
			errs = append(errs, errors.New("S3_REGION and S3_BUCKET are required when STORAGE_DRIVER=s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver))
	}

	if c.WorkerConcurrency < 1 {
		errs = append(errs, errors.New("WORKER_CONCURRENCY must be at least 1"))
	}
	if c.JobMaxAttempts < 1 {
		errs = append(errs, errors.New("JOB_MAX_ATTEMPTS must be at least 1"))
	}

	if c.IsProduction() && c.ResendAPIKey == "" {
		errs = append(errs, errors.New("production deployment requires RESEND_API_KEY"))
	}

	return errors.Join(errs...)
}

// UsesRedis reports whether any configured backend needs a Redis connection.
func (c *Config) UsesRedis() bool {
	return c.SessionBackend == "redis" || c.QueueBackend == "redis"
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
