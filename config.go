package main

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI      string
	MongoDB       string
	LLMServiceURL string
	JWTSecret     string
	Port          string
	MarketDataDir string
}

func mustConfig() Config {
	// .env is optional; deployments set the environment directly.
	_ = godotenv.Load()

	cfg := Config{
		MongoURI:      getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:       getenv("MONGO_DB", "faircrop"),
		LLMServiceURL: getenv("LLM_SERVICE_URL", "http://127.0.0.1:8000"),
		JWTSecret:     getenv("JWT_SECRET", "change_me"),
		Port:          getenv("PORT", "8080"),
		MarketDataDir: getenv("MARKET_DATA_DIR", ""),
	}

	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
