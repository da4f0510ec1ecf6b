package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every runtime setting the application needs. It is built
// once in main and handed to each component; no package reads the
// environment on its own after startup.
type Config struct {
	Port        string
	DatabaseURL string
	RedisAddr   string

	JWTSecret string
	TokenTTL  time.Duration

	SMTPHost  string
	SMTPPort  int
	EmailUser string
	EmailPass string

	RecoveryCodeTTL time.Duration

	// StrictClaim makes booking a slot a conditional update that fails
	// when the slot is already taken. Off, a second claim silently
	// replaces the first occupant.
	StrictClaim bool

	// UniqueSlotTimes rejects a second slot with the same professional
	// and time. Off, a professional may open duplicate slots.
	UniqueSlotTimes bool
}

// Load reads configuration from the environment, with .env support for
// local development.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file. Using environment variables directly.")
	}

	cfg := &Config{
		Port:            getEnv("PORT", "8000"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		TokenTTL:        getDuration("TOKEN_TTL", 3*time.Hour),
		SMTPHost:        os.Getenv("SMTP_HOST"),
		EmailUser:       os.Getenv("EMAIL_USER"),
		EmailPass:       os.Getenv("EMAIL_PASS"),
		RecoveryCodeTTL: getDuration("RECOVERY_CODE_TTL", time.Hour),
		StrictClaim:     getBool("STRICT_CLAIM", false),
		UniqueSlotTimes: getBool("UNIQUE_SLOT_TIMES", false),
	}
	cfg.SMTPPort, _ = strconv.Atoi(getEnv("SMTP_PORT", "587"))

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Warning: invalid %s %q, using default %s", key, v, fallback)
		return fallback
	}
	return d
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("Warning: invalid %s %q, using default %t", key, v, fallback)
		return fallback
	}
	return b
}
