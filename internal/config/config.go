package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env      string
	HTTPPort string

	DatabaseURL string
	RedisAddr   string

	JWTIssuer     string
	JWTSigningKey string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	S3AccessKey  string
	S3SecretKey  string
	S3Bucket     string
	S3Region     string
	S3Endpoint   string
	SignedURLTTL time.Duration

	ProfessorVerificationCode string
	StudentVerificationCode   string

	FrontendURL     string
	QueueBackend    string
	RateLimitPerMin int
	RateLimitRedis  bool
}

// Load returns application config populated from environment variables.
// A missing required variable is fatal: the process exits 1 rather than
// starting with a half-configured service.
func Load() App {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := App{
		Env:      getEnv("APP_ENV", "dev"),
		HTTPPort: getEnv("HTTP_PORT", "8080"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),

		JWTIssuer:     getEnv("JWT_ISSUER", "campusattend"),
		JWTSigningKey: getEnv("JWT_SIGNING_KEY", ""),
		AccessTTL:     durationEnv("ACCESS_TTL", 15*time.Minute),
		RefreshTTL:    durationEnv("REFRESH_TTL", 24*time.Hour),

		S3AccessKey:  getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:  getEnv("S3_SECRET_KEY", ""),
		S3Bucket:     getEnv("S3_BUCKET", "attendance-photos"),
		S3Region:     getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:   getEnv("S3_ENDPOINT", ""),
		SignedURLTTL: durationEnv("SIGNED_URL_TTL", 10*time.Minute),

		ProfessorVerificationCode: getEnv("PROFESSOR_VERIFICATION_CODE", ""),
		StudentVerificationCode:   getEnv("STUDENT_VERIFICATION_CODE", ""),

		FrontendURL:     getEnv("FRONTEND_URL", "*"),
		QueueBackend:    getEnv("QUEUE_BACKEND", "redis"),
		RateLimitPerMin: intEnv("RATE_LIMIT_PER_MIN", 120),
		RateLimitRedis:  boolEnv("RATE_LIMIT_REDIS", false),
	}

	for name, val := range map[string]string{
		"DATABASE_URL":    cfg.DatabaseURL,
		"JWT_SIGNING_KEY": cfg.JWTSigningKey,
	} {
		if val == "" {
			log.Printf("missing required environment variable %s", name)
			os.Exit(1)
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using fallback %s", key, err, fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func boolEnv(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if val == "1" || val == "true" || val == "TRUE" {
			return true
		}
		if val == "0" || val == "false" || val == "FALSE" {
			return false
		}
		log.Printf("invalid bool for %s, using fallback %v", key, fallback)
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var parsed int
		if _, err := fmt.Sscanf(val, "%d", &parsed); err == nil {
			return parsed
		}
		log.Printf("invalid int for %s, using fallback %d", key, fallback)
	}
	return fallback
}
