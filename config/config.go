package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Admin     AdminConfig
	AWS       AWSConfig
	Capture   CaptureConfig
	RateLimit RateLimitConfig
	Notify    NotifyConfig
	Site      SiteConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
	PublicBaseURL      string // used for links in notifications
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT signing and validation settings.
type JWTConfig struct {
	Secret      string
	ExpireHours int
}

// AdminConfig holds the single admin credential (bcrypt hash of the password).
type AdminConfig struct {
	PasswordHash string
}

// AWSConfig holds AWS credentials and the testimonials bucket.
type AWSConfig struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	Endpoint             string // optional, for S3-compatible stores (MinIO, R2)
	TestimonialsBucket   string
	PresignExpireMinutes int
}

// CaptureConfig bounds in-memory clip buffering for websocket capture sessions
// and direct video uploads.
type CaptureConfig struct {
	MaxClipBytes   int64
	MaxUploadBytes int64
	TickMillis     int
}

// RateLimitConfig holds the per-client submission budget.
type RateLimitConfig struct {
	SubmissionsPerMinute int
	Burst                int
}

// NotifyConfig holds the destination for new-submission notifications.
type NotifyConfig struct {
	WebhookURL string
}

// SiteConfig holds presentation settings.
type SiteConfig struct {
	OwnerName    string
	ContactEmail string
	AudioSource  string // local, external or fallback
	AudioDir     string // served at /audio when AudioSource is local
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (e.g. DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 120),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			PublicBaseURL:      strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "voiceai_site"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "change-me-in-production"),
			ExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 12),
		},
		Admin: AdminConfig{
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		},
		AWS: AWSConfig{
			Region:               getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:          getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:             getEnv("AWS_S3_ENDPOINT", ""),
			TestimonialsBucket:   getEnv("AWS_S3_TESTIMONIALS_BUCKET", "voiceai-testimonials"),
			PresignExpireMinutes: getEnvInt("AWS_PRESIGN_EXPIRE_MINUTES", 15),
		},
		Capture: CaptureConfig{
			MaxClipBytes:   int64(getEnvInt("CAPTURE_MAX_CLIP_MB", 200)) * 1024 * 1024,
			MaxUploadBytes: int64(getEnvInt("UPLOAD_MAX_MB", 50)) * 1024 * 1024,
			TickMillis:     getEnvInt("CAPTURE_TICK_MS", 1000),
		},
		RateLimit: RateLimitConfig{
			SubmissionsPerMinute: getEnvInt("SUBMISSIONS_PER_MINUTE", 6),
			Burst:                getEnvInt("SUBMISSIONS_BURST", 3),
		},
		Notify: NotifyConfig{
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
		Site: SiteConfig{
			OwnerName:    getEnv("SITE_OWNER_NAME", "Lahiru Kavishka"),
			ContactEmail: getEnv("SITE_CONTACT_EMAIL", "hello@example.com"),
			AudioSource:  getEnv("SITE_AUDIO_SOURCE", "local"),
		AudioDir:     getEnv("SITE_AUDIO_DIR", "./public/audio"),
		},
	}
	if cfg.Capture.TickMillis <= 0 {
		return nil, fmt.Errorf("CAPTURE_TICK_MS must be positive, got %d", cfg.Capture.TickMillis)
	}
	switch cfg.Site.AudioSource {
	case "local", "external", "fallback":
	default:
		return nil, fmt.Errorf("SITE_AUDIO_SOURCE must be local, external or fallback, got %q", cfg.Site.AudioSource)
	}
	return cfg, nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
