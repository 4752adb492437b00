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
	ServiceName string
	ServerPort  int
	LogLevel    string

	DatabaseURL string

	JWTSecret []byte
	JWTTTL    time.Duration

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	DeliverySweepSchedule string
	DeliveryAfter         time.Duration
	CancelWindow          time.Duration
	CouponTTL             time.Duration

	CORSOrigins   []string
	SecureCookies bool
}

// Load reads .env when it exists and then the process environment.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env not loaded (%v), using process environment", err)
	}

	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "shopcore"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret: []byte(os.Getenv("JWT_SECRET")),
		JWTTTL:    EnvDurationDefault("JWT_TTL", 24*time.Hour),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "products"),

		DeliverySweepSchedule: EnvDefault("DELIVERY_SWEEP_SCHEDULE", "@daily"),
		DeliveryAfter:         EnvDurationDefault("DELIVERY_AFTER", 48*time.Hour),
		CancelWindow:          EnvDurationDefault("CANCEL_WINDOW", 48*time.Hour),
		CouponTTL:             EnvDurationDefault("COUPON_TTL", 30*24*time.Hour),

		CORSOrigins:   CSV(EnvDefault("CORS_ORIGINS", "*")),
		SecureCookies: EnvDefault("SECURE_COOKIES", "false") == "true",
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
