package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/vncsmyrnk/idolvote/internal/utils"
)

type Config struct {
	AppName          string
	AppPort          string
	OrganizationName string

	// Database
	DBUrl string

	// Auth
	JWTSecret       []byte
	TokenExpiry     time.Duration
	CodeExpiry      time.Duration
	CodeLength      int
	CodeRetention   time.Duration
	CleanupSchedule string

	// CORS
	AllowedOrigins []string

	// Contestant images
	ImageDir string

	// Code request rate limiting; disabled when RedisAddr is empty
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	OTPRateLimit  int
	OTPRateWindow time.Duration

	// Twilio / SendGrid for code delivery; codes are logged when unset
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioFromPhone   string
	SendGridAPIKey    string
	SendGridFromEmail string
}

// LoadConfig reads a .env file when one is present and then the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		utils.Logger.Debug("No .env file found")
	}

	cfg := &Config{
		AppName:           getEnv("APP_NAME", "idolvote"),
		AppPort:           getEnv("APP_PORT", "8080"),
		OrganizationName:  getEnv("ORGANIZATION_NAME", "Idol Vote"),
		DBUrl:             os.Getenv("DATABASE_URL"),
		CleanupSchedule:   getEnv("CLEANUP_SCHEDULE", "0 3 * * *"),
		ImageDir:          getEnv("IMAGE_DIR", "images"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		TwilioAccountSID:  os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:   os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromPhone:   os.Getenv("TWILIO_FROM_PHONE"),
		SendGridAPIKey:    os.Getenv("SENDGRID_API_KEY"),
		SendGridFromEmail: os.Getenv("SENDGRID_FROM_EMAIL"),
	}

	if cfg.DBUrl == "" {
		cfg.DBUrl = DBURL(
			os.Getenv("POSTGRES_USER"),
			os.Getenv("POSTGRES_PASSWORD"),
			getEnv("POSTGRES_HOST", "localhost"),
			getEnv("POSTGRES_PORT", "5432"),
			os.Getenv("POSTGRES_DB"),
		)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET env var is missing")
	}
	cfg.JWTSecret = []byte(secret)

	var err error
	if cfg.TokenExpiry, err = getDuration("TOKEN_EXPIRY", 60*time.Minute); err != nil {
		return nil, err
	}
	if cfg.CodeExpiry, err = getDuration("CODE_EXPIRY", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.CodeRetention, err = getDuration("CODE_RETENTION", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.OTPRateWindow, err = getDuration("OTP_RATE_WINDOW", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.CodeLength, err = getInt("CODE_LENGTH", 6); err != nil {
		return nil, err
	}
	if cfg.OTPRateLimit, err = getInt("OTP_RATE_LIMIT", 5); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}

	for _, key := range []string{"FRONTEND_URL", "ADMIN_FRONTEND_URL"} {
		if origin := getEnv(key, "http://localhost:3000"); !contains(cfg.AllowedOrigins, origin) {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	return cfg, nil
}

func DBURL(user, password, host, port, dbName string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, dbName)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
