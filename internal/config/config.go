package config

import (
	"os"
	"strconv"
)

type Config struct {
	DatabaseURL      string
	Port             string
	Environment      string
	SteamAppID       string
	SteamCurrency    string
	CurrencySymbol   string
	InventoryBaseURL string
	PriceBaseURL     string
	PriceWorkers     int
}

func Load() *Config {
	return &Config{
		DatabaseURL:      getEnv("DATABASE_URL", "rust_trader.db"),
		Port:             getEnv("PORT", "8080"),
		Environment:      getEnv("ENVIRONMENT", "development"),
		SteamAppID:       getEnv("STEAM_APP_ID", "252490"),
		SteamCurrency:    getEnv("STEAM_CURRENCY", "5"),
		CurrencySymbol:   getEnv("CURRENCY_SYMBOL", "₽"),
		InventoryBaseURL: getEnv("INVENTORY_BASE_URL", "https://steamcommunity.com"),
		PriceBaseURL:     getEnv("PRICE_BASE_URL", "https://steamcommunity.com"),
		PriceWorkers:     getEnvInt("PRICE_WORKERS", 8),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
