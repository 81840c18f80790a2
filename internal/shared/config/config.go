package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Port               string
	CORSAllowOrigin    []string
	ObjectStoreType    string
	LocalStoreDir      string
	AWSRegion          string
	S3Bucket           string
	S3Prefix           string
	SSEKMSKeyID        string
	LLMProvider        string
	LLMModel           string
	OpenAIAPIKey       string
	LLMTimeout         time.Duration
	FileFetchTimeout   time.Duration
	DatabaseURL        string
	RedisURL           string
	Env                string
	JWTSecret          string
	JWTTTL             time.Duration
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	UIRedirectURL      string
	TaskWorkers        int
	TaskQueueSize      int
	LogLevel           string
	LogFormat          string
	TrendingCacheTTL   time.Duration
	AnalyticsRetention time.Duration
	NotificationTTL    time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	loadEnvFiles(".env", "cmd/.env")
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("CORS_ALLOW_ORIGINS", "http://localhost:3000")
	v.SetDefault("OBJECT_STORE", "local")
	v.SetDefault("LOCAL_STORE_DIR", "./data")
	v.SetDefault("LLM_PROVIDER", "none")
	v.SetDefault("LLM_MODEL", "gpt-4o-mini")
	v.SetDefault("LLM_TIMEOUT", 30*time.Second)
	v.SetDefault("FILE_FETCH_TIMEOUT", 10*time.Second)
	v.SetDefault("JWT_TTL", 24*time.Hour)
	v.SetDefault("TASK_WORKERS", 4)
	v.SetDefault("TASK_QUEUE_SIZE", 256)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "")
	v.SetDefault("TRENDING_CACHE_TTL", time.Minute)
	v.SetDefault("ANALYTICS_RETENTION", 365*24*time.Hour)
	v.SetDefault("NOTIFICATION_READ_RETENTION", 30*24*time.Hour)
	return v
}

// FromViper builds a Config from an already-populated viper instance.
func FromViper(v *viper.Viper) Config {
	env := normalizeEnv(v.GetString("ENV"))
	return Config{
		Port:               v.GetString("PORT"),
		CORSAllowOrigin:    splitAndTrim(v.GetString("CORS_ALLOW_ORIGINS")),
		ObjectStoreType:    normalizeStoreType(v.GetString("OBJECT_STORE")),
		LocalStoreDir:      v.GetString("LOCAL_STORE_DIR"),
		AWSRegion:          v.GetString("AWS_REGION"),
		S3Bucket:           v.GetString("S3_BUCKET"),
		S3Prefix:           v.GetString("S3_PREFIX"),
		SSEKMSKeyID:        v.GetString("SSE_KMS_KEY_ID"),
		LLMProvider:        strings.ToLower(strings.TrimSpace(v.GetString("LLM_PROVIDER"))),
		LLMModel:           v.GetString("LLM_MODEL"),
		OpenAIAPIKey:       v.GetString("OPENAI_API_KEY"),
		LLMTimeout:         v.GetDuration("LLM_TIMEOUT"),
		FileFetchTimeout:   v.GetDuration("FILE_FETCH_TIMEOUT"),
		DatabaseURL:        v.GetString("DATABASE_URL"),
		RedisURL:           v.GetString("REDIS_URL"),
		Env:                env,
		JWTSecret:          v.GetString("JWT_SECRET"),
		JWTTTL:             v.GetDuration("JWT_TTL"),
		GoogleClientID:     v.GetString("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  v.GetString("GOOGLE_REDIRECT_URL"),
		UIRedirectURL:      v.GetString("UI_REDIRECT_URL"),
		TaskWorkers:        v.GetInt("TASK_WORKERS"),
		TaskQueueSize:      v.GetInt("TASK_QUEUE_SIZE"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		LogFormat:          v.GetString("LOG_FORMAT"),
		TrendingCacheTTL:   v.GetDuration("TRENDING_CACHE_TTL"),
		AnalyticsRetention: v.GetDuration("ANALYTICS_RETENTION"),
		NotificationTTL:    v.GetDuration("NOTIFICATION_READ_RETENTION"),
	}
}

// Validate reports configuration that cannot be used to start the server.
func (c Config) Validate() error {
	if c.Env != "production" {
		return nil
	}
	var errs []error
	if strings.TrimSpace(c.DatabaseURL) == "" {
		errs = append(errs, errors.New("DATABASE_URL is required in production"))
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET is required in production"))
	}
	return errors.Join(errs...)
}

// IsDevLike reports whether in-memory fallbacks are acceptable.
func (c Config) IsDevLike() bool {
	switch c.Env {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "test":
		return "test"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
