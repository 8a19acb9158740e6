package config

import (
	"os"
	"strconv"
)

type Config struct {
	Addr        string
	DatabaseURL string
	JWTSecret   string

	// Razorpay-style gateway credentials. Both empty means the gateway is
	// not configured and payment initiation is unavailable.
	RazorpayKeyID     string
	RazorpayKeySecret string

	// Platform cut on commission budgets, in percent.
	PlatformFeePercent float64

	// Optional kafka notification sink; empty brokers disables publishing.
	KafkaBrokers string
	NotifyTopic  string

	LogFile string
}

func Load() Config {
	cfg := Config{
		Addr:               getenv("APP_ADDR", ":8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		RazorpayKeyID:      os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret:  os.Getenv("RAZORPAY_KEY_SECRET"),
		PlatformFeePercent: 10,
		KafkaBrokers:       os.Getenv("KAFKA_BROKERS"),
		NotifyTopic:        getenv("NOTIFY_TOPIC", "marketplace.events"),
		LogFile:            getenv("LOG_FILE", "./logs/app.log"),
	}

	if v := os.Getenv("PLATFORM_FEE_PERCENT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 100 {
			cfg.PlatformFeePercent = f
		}
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
