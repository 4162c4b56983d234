package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	MongoDB MongoDBConfig
	Redis   RedisConfig
	Storage StorageConfig
	S3      S3Config
	Worker  WorkerConfig
	OTEL    OTELConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	MaxUploadSizeMB int64
}

// MongoDBConfig holds MongoDB connection configuration
type MongoDBConfig struct {
	URI             string
	Database        string
	ConnectAttempts int
	ConnectBackoff  time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
}

// StorageConfig holds content store configuration
type StorageConfig struct {
	// Backend is "disk" or "s3".
	Backend    string
	FolderPath string
}

// S3Config holds S3-compatible object store configuration, used when the
// content store backend is "s3" (SeaweedFS/MinIO style endpoints).
type S3Config struct {
	Endpoint string
	Bucket   string
	Region   string
}

// WorkerConfig holds job processing configuration
type WorkerConfig struct {
	Concurrency int
	MaxAttempts int
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Environment    string
	Endpoint       string
}

// Load reads configuration from environment variables
// It attempts to load from .env file first, then falls back to system env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "5000"),
			MaxUploadSizeMB: getEnvAsInt64("MAX_UPLOAD_SIZE_MB", 10),
		},
		MongoDB: MongoDBConfig{
			URI:             getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:        getEnv("MONGODB_DATABASE", "files_manager"),
			ConnectAttempts: int(getEnvAsInt64("MONGODB_CONNECT_ATTEMPTS", 5)),
			ConnectBackoff:  getEnvAsDuration("MONGODB_CONNECT_BACKOFF", 2*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		Storage: StorageConfig{
			Backend:    getEnv("STORAGE_BACKEND", "disk"),
			FolderPath: getEnv("FOLDER_PATH", "/tmp/files_manager"),
		},
		S3: S3Config{
			Endpoint: getEnv("S3_ENDPOINT", ""),
			Bucket:   getEnv("S3_BUCKET", "filevault"),
			Region:   getEnv("S3_REGION", "us-east-1"),
		},
		Worker: WorkerConfig{
			Concurrency: int(getEnvAsInt64("WORKER_CONCURRENCY", 4)),
			MaxAttempts: int(getEnvAsInt64("WORKER_MAX_ATTEMPTS", 3)),
		},
		OTEL: OTELConfig{
			Enabled:        getEnv("OTEL_ENABLED", "false") == "true",
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "filevault"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			Environment:    getEnv("OTEL_ENVIRONMENT", "development"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
		},
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt64 retrieves an environment variable as int64 or returns a default value
func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration retrieves an environment variable as a duration or returns a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
