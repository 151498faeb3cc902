package utils

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig
	Mongo      MongoConfig
	Redis      RedisConfig
	Outbox     OutboxConfig
	JWT        JWTConfig
	Email      EmailConfig
	OTP        OTPConfig
	Reset      ResetConfig
	Cloudinary CloudinaryConfig
	Google     GoogleConfig
	Payment    PaymentConfig
	RateLimit  RateLimitConfig
	Repair     RepairConfig
}

type AppConfig struct {
	Name            string
	Port            string
	Debug           bool
	LogPath         string
	FrontendURL     string
	ShutdownTimeout time.Duration
}

type MongoConfig struct {
	URI          string
	Name         string
	Transactions bool
	Timeout      time.Duration
}

type RedisConfig struct {
	URL            string
	IdempotencyTTL time.Duration
}

// OutboxConfig points at the Postgres email outbox. Empty DSN keeps jobs in memory.
type OutboxConfig struct {
	DSN      string
	MaxConns int32
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type EmailConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	From         string
	Workers      int
	MaxAttempts  int
	BaseBackoff  time.Duration
	MaxBackoff   time.Duration
	PollInterval time.Duration
}

type OTPConfig struct {
	ExpiryMinutes int
	Length        int
}

type ResetConfig struct {
	ExpiryMinutes int
}

type CloudinaryConfig struct {
	URL string
}

type GoogleConfig struct {
	ClientID string
}

type PaymentConfig struct {
	KhaltiSecretKey string
	KhaltiVerifyURL string
	KhaltiSimulate  bool
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type RepairConfig struct {
	Interval time.Duration
	Grace    time.Duration
}

func LoadConfig() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("APP_NAME", "kalamkart")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("FRONTEND_URL", "http://localhost:5173")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("MONGO_DB", "kalamkart")
	v.SetDefault("MONGO_TRANSACTIONS", false)
	v.SetDefault("MONGO_TIMEOUT", "10s")
	v.SetDefault("IDEMPOTENCY_TTL", "24h")
	v.SetDefault("OUTBOX_MAX_CONNS", 5)
	v.SetDefault("JWT_EXPIRY_HOURS", 168)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("EMAIL_WORKERS", 2)
	v.SetDefault("EMAIL_MAX_ATTEMPTS", 5)
	v.SetDefault("EMAIL_BASE_BACKOFF", "30s")
	v.SetDefault("EMAIL_MAX_BACKOFF", "30m")
	v.SetDefault("EMAIL_POLL_INTERVAL", "5s")
	v.SetDefault("OTP_EXPIRY_MINUTES", 5)
	v.SetDefault("OTP_LENGTH", 6)
	v.SetDefault("RESET_EXPIRY_MINUTES", 15)
	v.SetDefault("KHALTI_VERIFY_URL", "https://khalti.com/api/v2/payment/verify/")
	v.SetDefault("KHALTI_SIMULATE", false)
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("REPAIR_INTERVAL", "1m")
	v.SetDefault("REPAIR_GRACE", "2m")

	// .env is optional, real environment wins
	if _, err := os.Stat(".env"); err == nil {
		v.SetConfigFile(".env")
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	v.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:            v.GetString("APP_NAME"),
			Port:            v.GetString("PORT"),
			Debug:           v.GetBool("DEBUG"),
			LogPath:         v.GetString("LOG_PATH"),
			FrontendURL:     v.GetString("FRONTEND_URL"),
			ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		},
		Mongo: MongoConfig{
			URI:          v.GetString("MONGO_URI"),
			Name:         v.GetString("MONGO_DB"),
			Transactions: v.GetBool("MONGO_TRANSACTIONS"),
			Timeout:      v.GetDuration("MONGO_TIMEOUT"),
		},
		Redis: RedisConfig{
			URL:            v.GetString("REDIS_URL"),
			IdempotencyTTL: v.GetDuration("IDEMPOTENCY_TTL"),
		},
		Outbox: OutboxConfig{
			DSN:      v.GetString("OUTBOX_DSN"),
			MaxConns: v.GetInt32("OUTBOX_MAX_CONNS"),
		},
		JWT: JWTConfig{
			Secret:      v.GetString("JWT_SECRET"),
			ExpiryHours: v.GetInt("JWT_EXPIRY_HOURS"),
		},
		Email: EmailConfig{
			Host:         v.GetString("SMTP_HOST"),
			Port:         v.GetInt("SMTP_PORT"),
			User:         v.GetString("SMTP_USER"),
			Password:     v.GetString("SMTP_PASS"),
			From:         v.GetString("EMAIL_FROM"),
			Workers:      v.GetInt("EMAIL_WORKERS"),
			MaxAttempts:  v.GetInt("EMAIL_MAX_ATTEMPTS"),
			BaseBackoff:  v.GetDuration("EMAIL_BASE_BACKOFF"),
			MaxBackoff:   v.GetDuration("EMAIL_MAX_BACKOFF"),
			PollInterval: v.GetDuration("EMAIL_POLL_INTERVAL"),
		},
		OTP: OTPConfig{
			ExpiryMinutes: v.GetInt("OTP_EXPIRY_MINUTES"),
			Length:        v.GetInt("OTP_LENGTH"),
		},
		Reset: ResetConfig{
			ExpiryMinutes: v.GetInt("RESET_EXPIRY_MINUTES"),
		},
		Cloudinary: CloudinaryConfig{
			URL: v.GetString("CLOUDINARY_URL"),
		},
		Google: GoogleConfig{
			ClientID: v.GetString("GOOGLE_CLIENT_ID"),
		},
		Payment: PaymentConfig{
			KhaltiSecretKey: v.GetString("KHALTI_SECRET_KEY"),
			KhaltiVerifyURL: v.GetString("KHALTI_VERIFY_URL"),
			KhaltiSimulate:  v.GetBool("KHALTI_SIMULATE"),
		},
		RateLimit: RateLimitConfig{
			RPS:   v.GetFloat64("RATE_LIMIT_RPS"),
			Burst: v.GetInt("RATE_LIMIT_BURST"),
		},
		Repair: RepairConfig{
			Interval: v.GetDuration("REPAIR_INTERVAL"),
			Grace:    v.GetDuration("REPAIR_GRACE"),
		},
	}

	if config.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if config.Mongo.URI == "" {
		return nil, errors.New("MONGO_URI is required")
	}

	return config, nil
}
