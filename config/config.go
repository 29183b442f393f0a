package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

var (
	SecretKey     []byte
	ServerPort    string
	AdminUsername string
	AdminPassword string
)

func Init() {
	// .env is optional in deployed environments; real env vars win either way.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	secret := os.Getenv("JWT_SECRET_KEY")
	if secret == "" {
		log.Fatal("JWT secret key not set")
	}
	SecretKey = []byte(secret)

	ServerPort = getEnv("SERVER_PORT", "8080")
	AdminUsername = getEnv("ADMIN_USERNAME", "")
	AdminPassword = getEnv("ADMIN_PASSWORD", "")
}

// DatabaseURL builds the Postgres connection string from the environment.
func DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", ""),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "bistro"),
		getEnv("DB_SSLMODE", "disable"),
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
