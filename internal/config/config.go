package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all environment-driven settings for the server.
type Config struct {
	Port                    string
	MongoURI                string
	DBName                  string
	JWTSecret               string
	TokenExpiry             time.Duration
	FirebaseCredentialsFile string
	// NotifyActor keeps the acting user in notification recipient sets.
	NotifyActor    bool
	AllowedOrigins []string
}

// LoadConfig reads configuration from a .env file (if present) and the
// process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, relying on environment variables")
	}

	expiryHours, err := strconv.Atoi(getEnv("TOKEN_EXPIRY_HOURS", "72"))
	if err != nil {
		expiryHours = 72
	}

	return &Config{
		Port:                    getEnv("PORT", "8080"),
		MongoURI:                getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:                  getEnv("DB_NAME", "shiftdesk"),
		JWTSecret:               getEnv("JWT_SECRET", ""),
		TokenExpiry:             time.Duration(expiryHours) * time.Hour,
		FirebaseCredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
		NotifyActor:             getEnv("NOTIFY_ACTOR", "false") == "true",
		AllowedOrigins:          strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
