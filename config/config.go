package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/filmschedule/filmschedule-backend/internal/projects/domain"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverRedis    = "redis"

	BlobDriverFS = "fs"
	BlobDriverS3 = "s3"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Storage  StorageConfig
	App      AppConfig
	Layout   domain.Layout
}

type ServerConfig struct {
	Port            string
	APIPrefix       string
	CORSOrigins     []string
	RateLimitRPS    int
	RateLimitBurst  int
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Driver   string
	DSN      string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

type StorageConfig struct {
	Driver       string
	UploadDir    string
	MaxLogoBytes int64
	S3Bucket     string
	S3Region     string
	S3Endpoint   string
	S3Prefix     string
}

type AppConfig struct {
	ServiceName      string
	Environment      string
	LogLevel         string
	Version          string
	ArchiveSweepCron string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			APIPrefix:       getEnv("API_PREFIX", "/api"),
			CORSOrigins:     splitList(getEnv("CORS_ORIGINS", "*")),
			RateLimitRPS:    getEnvAsInt("RATE_LIMIT_RPS", 0),
			RateLimitBurst:  getEnvAsInt("RATE_LIMIT_BURST", 20),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
			DSN:      getEnv("DB_DSN", ""),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 2),
		},
		Redis: RedisConfig{
			Addr:      getEnv("REDIS_ADDR", "localhost:6379"),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        getEnvAsInt("REDIS_DB", 0),
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "filmschedule:"),
		},
		Storage: StorageConfig{
			Driver:       strings.ToLower(getEnv("BLOB_DRIVER", BlobDriverFS)),
			UploadDir:    getEnv("UPLOAD_DIR", "./uploads"),
			MaxLogoBytes: int64(getEnvAsInt("MAX_LOGO_BYTES", 5*1024*1024)),
			S3Bucket:     getEnv("S3_BUCKET", ""),
			S3Region:     getEnv("S3_REGION", "us-east-1"),
			S3Endpoint:   getEnv("S3_ENDPOINT", ""),
			S3Prefix:     getEnv("S3_PREFIX", "logos/"),
		},
		App: AppConfig{
			ServiceName:      getEnv("SERVICE_NAME", "filmschedule-backend"),
			Environment:      getEnv("APP_ENV", "development"),
			LogLevel:         getEnv("LOG_LEVEL", "info"),
			Version:          getEnv("APP_VERSION", "1.0.0"),
			ArchiveSweepCron: getEnv("ARCHIVE_SWEEP_CRON", ""),
		},
		Layout: domain.DefaultLayout(),
	}

	if path := getEnv("LAYOUT_DEFAULTS_FILE", ""); path != "" {
		layout, err := LoadLayoutDefaults(path)
		if err != nil {
			return nil, err
		}
		cfg.Layout = layout
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Database.Driver {
	case StoreDriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("DB_DSN is required when STORE_DRIVER=postgres")
		}
	case StoreDriverRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required when STORE_DRIVER=redis")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Database.Driver)
	}

	switch c.Storage.Driver {
	case BlobDriverFS:
		if c.Storage.UploadDir == "" {
			return fmt.Errorf("UPLOAD_DIR is required when BLOB_DRIVER=fs")
		}
	case BlobDriverS3:
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when BLOB_DRIVER=s3")
		}
	default:
		return fmt.Errorf("unknown BLOB_DRIVER %q", c.Storage.Driver)
	}

	if c.Storage.MaxLogoBytes <= 0 {
		return fmt.Errorf("MAX_LOGO_BYTES must be positive")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
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
