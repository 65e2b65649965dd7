package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddr string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	JWTSecret string

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	ResetTokenTTL   time.Duration
	DeviceCookieTTL time.Duration

	MailRegion string
	MailFrom   string
	AppBaseURL string
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "raglan"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		AccessTokenTTL:  getDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: getDuration("REFRESH_TOKEN_TTL", 30*24*time.Hour),
		ResetTokenTTL:   getDuration("RESET_TOKEN_TTL", 30*time.Minute),
		DeviceCookieTTL: getDuration("DEVICE_COOKIE_TTL", 365*24*time.Hour),

		MailRegion: getEnv("MAIL_REGION", ""),
		MailFrom:   getEnv("MAIL_FROM", "Raglan Generator <no-reply@raglan-generator.app>"),
		AppBaseURL: getEnv("APP_BASE_URL", "http://localhost:3000"),
	}

	log.Println("✅ Config loaded")
	return cfg
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
		log.Printf("⚠️  Invalid duration for %s (%q), using default %s", key, v, fallback)
		return fallback
	}
	return d
}

// Test returns a config suitable for handler tests: short fixed durations,
// a throwaway signing secret and no mail transport configured.
func Test() *Config {
	return &Config{
		ServerAddr:      ":0",
		JWTSecret:       "test_secret_key_minimum_32_characters_long_for_testing_only",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 30 * 24 * time.Hour,
		ResetTokenTTL:   30 * time.Minute,
		DeviceCookieTTL: 365 * 24 * time.Hour,
		MailFrom:        "Raglan Generator <no-reply@raglan-generator.test>",
		AppBaseURL:      "http://localhost:3000",
	}
}
