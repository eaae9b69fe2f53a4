package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	DBUrl       string
	JWTSecret   string
	JWKSURL     string
	FrontendURL string
	// Object storage
	StorageDriver     string // "local" or "s3"
	UploadDir         string
	PublicBaseURL     string
	S3Provider        string
	S3Region          string
	S3Bucket          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Endpoint        string
	// Redis
	RedisURL        string
	RedisPassword   string
	CatalogCacheTTL time.Duration
	RateLimitPerMin int
	// CV extraction
	GeminiAPIKey               string
	GeminiModel                string
	AnalysisLimitPerHour       int
	MaxCVUploadBytes           int64
	ClamAVAddress              string
	WorkflowSessionTTL         time.Duration
	DuplicateDateToleranceDays int
	DuplicateMinSharedTech     int
}

func LoadConfig() (*Config, error) {
	// .env is only present locally; production relies on real environment variables.
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DBUrl:       getEnv("DATABASE_URL", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		JWKSURL:     getEnv("JWKS_URL", ""),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),

		StorageDriver:     strings.ToLower(getEnv("STORAGE_DRIVER", "local")),
		UploadDir:         getEnv("UPLOAD_DIR", "./uploads"),
		PublicBaseURL:     strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080/files"), "/"),
		S3Provider:        getEnv("S3_PROVIDER", "aws"),
		S3Region:          getEnv("S3_REGION", "ap-southeast-1"),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),

		RedisURL:        getEnv("REDIS_URL", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		CatalogCacheTTL: time.Duration(getEnvInt("CATALOG_CACHE_TTL_SECONDS", 300)) * time.Second,
		RateLimitPerMin: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),

		GeminiAPIKey:               getEnv("GEMINI_API_KEY", ""),
		GeminiModel:                getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		AnalysisLimitPerHour:       getEnvInt("ANALYSIS_LIMIT_PER_HOUR", 30),
		MaxCVUploadBytes:           int64(getEnvInt("MAX_CV_UPLOAD_MB", 10)) << 20,
		ClamAVAddress:              getEnv("CLAMAV_ADDRESS", ""),
		WorkflowSessionTTL:         time.Duration(getEnvInt("WORKFLOW_SESSION_TTL_MINUTES", 60)) * time.Minute,
		DuplicateDateToleranceDays: getEnvInt("DUPLICATE_DATE_TOLERANCE_DAYS", 31),
		DuplicateMinSharedTech:     getEnvInt("DUPLICATE_MIN_SHARED_TECH", 1),
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.JWTSecret == "" && cfg.JWKSURL == "" {
		log.Println("WARNING: neither JWT_SECRET nor JWKS_URL is set. Every authenticated request will be rejected.")
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Catalog cache and analysis limits are disabled.")
	}
	if cfg.GeminiAPIKey == "" {
		log.Println("WARNING: GEMINI_API_KEY not configured. CV analysis will be unavailable.")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}
