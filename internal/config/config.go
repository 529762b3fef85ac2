package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// RateLimitConfig holds per-group rate limiting knobs.
type RateLimitConfig struct {
	Enabled                 bool
	LoginRequestsPerWindow  int
	LoginWindow             time.Duration
	VerifyRequestsPerWindow int
	VerifyWindow            time.Duration
}

// SecurityHeadersConfig holds security header values.
type SecurityHeadersConfig struct {
	Enabled            bool
	CSP                string
	HSTSMaxAge         int
	FrameOptions       string
	ContentTypeOptions string
	ReferrerPolicy     string
}

// Config holds application configuration.
type Config struct {
	// Server
	ServerAddr string
	ServerPort int

	// Database
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis (two-factor code store)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// SMTP
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string

	// JWT
	JWTSecret      string
	JWTIssuer      string
	AccessTokenTTL time.Duration

	// Login flow
	AppBaseURL            string
	DefaultLoginRedirect  string
	VerificationTokenTTL  time.Duration
	TwoFactorCodeTTL      time.Duration
	TwoFactorRetention    time.Duration
	TOTPEncryptionKey     string // 64-char hex, optional
	MaxRequestBodySize    int64

	RateLimit       RateLimitConfig
	SecurityHeaders SecurityHeadersConfig
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		ServerAddr: getEnv("SERVER_ADDR", "0.0.0.0"),
		ServerPort: getEnvInt("SERVER_PORT", 8080),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 5432),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "courseloop"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPFromName: getEnv("SMTP_FROM_NAME", "CourseLoop"),

		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTIssuer:      getEnv("JWT_ISSUER", "courseloop-auth"),
		AccessTokenTTL: getEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),

		AppBaseURL:           getEnv("APP_BASE_URL", "http://localhost:8080"),
		DefaultLoginRedirect: getEnv("DEFAULT_LOGIN_REDIRECT", "/dashboard"),
		VerificationTokenTTL: getEnvDuration("VERIFICATION_TOKEN_TTL", time.Hour),
		TwoFactorCodeTTL:     getEnvDuration("TWO_FACTOR_CODE_TTL", 5*time.Minute),
		TwoFactorRetention:   getEnvDuration("TWO_FACTOR_RETENTION", 24*time.Hour),
		TOTPEncryptionKey:    getEnv("TOTP_ENCRYPTION_KEY", ""),
		MaxRequestBodySize:   int64(getEnvInt("MAX_REQUEST_BODY_SIZE", 64*1024)),

		RateLimit: RateLimitConfig{
			Enabled:                 getEnvBool("RATE_LIMIT_ENABLED", true),
			LoginRequestsPerWindow:  getEnvInt("RATE_LIMIT_LOGIN_REQUESTS", 10),
			LoginWindow:             getEnvDuration("RATE_LIMIT_LOGIN_WINDOW", time.Minute),
			VerifyRequestsPerWindow: getEnvInt("RATE_LIMIT_VERIFY_REQUESTS", 20),
			VerifyWindow:            getEnvDuration("RATE_LIMIT_VERIFY_WINDOW", time.Minute),
		},
		SecurityHeaders: SecurityHeadersConfig{
			Enabled:            getEnvBool("SECURITY_HEADERS_ENABLED", true),
			CSP:                getEnv("SECURITY_CSP", "default-src 'self'"),
			HSTSMaxAge:         getEnvInt("SECURITY_HSTS_MAX_AGE", 31536000),
			FrameOptions:       getEnv("SECURITY_FRAME_OPTIONS", "DENY"),
			ContentTypeOptions: getEnv("SECURITY_CONTENT_TYPE_OPTIONS", "nosniff"),
			ReferrerPolicy:     getEnv("SECURITY_REFERRER_POLICY", "strict-origin-when-cross-origin"),
		},
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	// The emailed-code horizon must stay inside the verification horizon;
	// the flow depends on that ordering.
	if cfg.TwoFactorCodeTTL >= cfg.VerificationTokenTTL {
		return nil, fmt.Errorf("TWO_FACTOR_CODE_TTL must be shorter than VERIFICATION_TOKEN_TTL")
	}

	return cfg, nil
}

// HasSMTP returns true if mail delivery is configured.
func (c *Config) HasSMTP() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
