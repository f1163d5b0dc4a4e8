package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Photo    PhotoConfig
	S3       S3Config
	Mail     MailConfig
	Redis    RedisConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	Secret      string
	Expiry      time.Duration
	ResetExpiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

// PhotoConfig controls where profile photos live.
// Driver is "local" (Dir on disk) or "s3" (S3Config bucket).
type PhotoConfig struct {
	Driver          string
	Dir             string
	TempDir         string
	DefaultPhoto    string
	MaxUploadSize   int64
	CleanupSchedule string
	TempMaxAge      time.Duration
}

type S3Config struct {
	Region          string
	Bucket          string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // MinIO or other S3-compatible endpoint
}

type MailConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	ResetURL string
}

// Enabled reports whether SMTP delivery is configured; otherwise mails are only logged.
func (c MailConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

type RedisConfig struct {
	Host                string
	Port                string
	Password            string
	DB                  int
	ResetThrottleWindow time.Duration
}

// Enabled reports whether a Redis host was configured.
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "admin"),
			Password: getEnv("DB_PASSWORD", "1234"),
			DBName:   getEnv("DB_NAME", "accounts"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),

			MaxIdleConns:    int(parseInt64(getEnv("DB_MAX_IDLE_CONNS", "10"), 10)),
			MaxOpenConns:    int(parseInt64(getEnv("DB_MAX_OPEN_CONNS", "100"), 100)),
			ConnMaxLifetime: parseDuration(getEnv("DB_CONN_MAX_LIFETIME", "1h"), time.Hour),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "your-secret-key"),
			Expiry:      parseDuration(getEnv("JWT_EXPIRY", "24h"), 24*time.Hour),
			ResetExpiry: parseDuration(getEnv("JWT_RESET_EXPIRY", "30m"), 30*time.Minute),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Photo: PhotoConfig{
			Driver:          getEnv("PHOTO_DRIVER", "local"),
			Dir:             getEnv("PHOTO_DIR", "./storage/photos"),
			TempDir:         getEnv("PHOTO_TEMP_DIR", "./storage/tmp"),
			DefaultPhoto:    getEnv("PHOTO_DEFAULT", "default.png"),
			MaxUploadSize:   parseInt64(getEnv("PHOTO_MAX_SIZE", "5242880"), 5<<20),
			CleanupSchedule: getEnv("PHOTO_CLEANUP_SCHEDULE", "@hourly"),
			TempMaxAge:      parseDuration(getEnv("PHOTO_TEMP_MAX_AGE", "1h"), time.Hour),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			Bucket:          getEnv("AWS_S3_BUCKET", "account-photos"),
			Prefix:          getEnv("AWS_S3_PREFIX", "photos"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("AWS_S3_ENDPOINT", ""),
		},
		Mail: MailConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", ""),
			ResetURL: getEnv("MAIL_RESET_URL", "http://localhost:3000/recovery"),
		},
		Redis: RedisConfig{
			Host:                getEnv("REDIS_HOST", ""),
			Port:                getEnv("REDIS_PORT", "6379"),
			Password:            getEnv("REDIS_PASSWORD", ""),
			DB:                  int(parseInt64(getEnv("REDIS_DB", "0"), 0)),
			ResetThrottleWindow: parseDuration(getEnv("RESET_THROTTLE_WINDOW", "1m"), time.Minute),
		},
	}

	if config.Photo.Driver != "local" && config.Photo.Driver != "s3" {
		return nil, fmt.Errorf("unsupported PHOTO_DRIVER %q", config.Photo.Driver)
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt64(s string, fallback int64) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return n
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
