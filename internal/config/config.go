package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	ServerPort string
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	JWTSecret          string
	JWTExpirationHours time.Duration

	RedisAddr        string // empty disables the template cache
	RedisPassword    string
	RedisDB          int
	TemplateCacheTTL time.Duration

	AWSRegion          string
	SQSPaymentQueueURL string // empty disables the payment consumer

	BookingRatePerMinute int
	BookingRateBurst     int

	LogLevel            string
	DefaultPricePerHour float64
}

type loader struct {
	log *zerolog.Logger
}

// Load reads configuration from the environment, after loading .env if present.
func Load(log *zerolog.Logger) *Config {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("Could not load .env file")
	}
	l := loader{log: log}

	return &Config{
		ServerPort: l.getEnv("SERVER_PORT", "8080"),
		DBHost:     l.getEnv("DB_HOST", "localhost"),
		DBPort:     l.getInt("DB_PORT", 5432),
		DBUser:     l.getEnv("DB_USER", "parking"),
		DBPassword: l.getEnv("DB_PASSWORD", "parking"),
		DBName:     l.getEnv("DB_NAME", "parking_db"),
		DBSslMode:  l.getEnv("DB_SSLMODE", "disable"),

		JWTSecret:          l.getEnv("JWT_SECRET", "change-me-in-production"),
		JWTExpirationHours: time.Duration(l.getInt("JWT_EXPIRATION_HOURS", 24)) * time.Hour,

		RedisAddr:        l.getEnv("REDIS_ADDR", ""),
		RedisPassword:    l.getEnv("REDIS_PASSWORD", ""),
		RedisDB:          l.getInt("REDIS_DB", 0),
		TemplateCacheTTL: time.Duration(l.getInt("TEMPLATE_CACHE_TTL_MINUTES", 60)) * time.Minute,

		AWSRegion:          l.getEnv("AWS_REGION", "ap-south-1"),
		SQSPaymentQueueURL: l.getEnv("SQS_PAYMENT_QUEUE_URL", ""),

		BookingRatePerMinute: l.getInt("BOOKING_RATE_PER_MINUTE", 10),
		BookingRateBurst:     l.getInt("BOOKING_RATE_BURST", 3),

		LogLevel:            l.getEnv("LOG_LEVEL", "info"),
		DefaultPricePerHour: l.getFloat("DEFAULT_PRICE_PER_HOUR", 20),
	}
}

func (l loader) getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	l.log.Debug().Str("key", key).Str("default", fallback).Msg("Environment variable not set, using default")
	return fallback
}

func (l loader) getInt(key string, fallback int) int {
	raw := l.getEnv(key, strconv.Itoa(fallback))
	v, err := strconv.Atoi(raw)
	if err != nil {
		l.log.Warn().Str("key", key).Str("value", raw).Int("default", fallback).Msg("Invalid integer, using default")
		return fallback
	}
	return v
}

func (l loader) getFloat(key string, fallback float64) float64 {
	raw := l.getEnv(key, strconv.FormatFloat(fallback, 'f', -1, 64))
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		l.log.Warn().Str("key", key).Str("value", raw).Float64("default", fallback).Msg("Invalid number, using default")
		return fallback
	}
	return v
}

// Level parses LogLevel, defaulting to info.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
