package config

import (
	"os"
	"strconv"
)

type Config struct {
	AppEnv   string
	LogLevel string

	HTTPPort int

	// Payment gateway.
	StripeSecretKey  string
	StripeAPIBase    string
	Currency         string
	MerchantName     string
	PaymentReturnURL string

	// Public product catalog.
	CatalogBaseURL string

	// Data store.
	PostgresHost string
	PostgresPort int
	PostgresUser string
	PostgresPass string
	PostgresDB   string

	// Auth sessions.
	JWTSecret string
}

func Load() Config {
	return Config{
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		HTTPPort: getEnvInt("HTTP_PORT", 8000),

		StripeSecretKey:  getEnv("STRIPE_SECRET_KEY", ""),
		StripeAPIBase:    getEnv("STRIPE_API_BASE", "https://api.stripe.com"),
		Currency:         getEnv("CURRENCY", "eur"),
		MerchantName:     getEnv("MERCHANT_NAME", "Boutique"),
		PaymentReturnURL: getEnv("PAYMENT_RETURN_URL", "boutique://stripe-redirect"),

		CatalogBaseURL: getEnv("CATALOG_BASE_URL", "https://fakestoreapi.com"),

		PostgresHost: getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvInt("POSTGRES_PORT", 5432),
		PostgresUser: getEnv("POSTGRES_USER", "boutique"),
		PostgresPass: getEnv("POSTGRES_PASSWORD", "boutiquepassword"),
		PostgresDB:   getEnv("POSTGRES_DB", "boutique_db"),

		JWTSecret: getEnv("JWT_SECRET", ""),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
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
