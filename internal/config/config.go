package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort     string
	DatabaseType   string // "sqlite", "postgres" or "mysql"
	DatabaseURL    string // connection URL for postgres/mysql
	DatabasePath   string // file path for sqlite
	MigrationsPath string

	SessionDuration time.Duration
	JWTSecret       string

	// Question bank collaborator
	QuestionBankURL     string
	QuestionBankTimeout time.Duration

	// Study-progression policy overrides
	VerificationIntervalSeconds int // video seconds between attention challenges
	ComprehensionQuizSeconds    int // cumulative watch seconds before the quiz
	DefaultPassPercent          int
	PassPercentCeiling          int

	// Email notifications (AWS SES)
	AWSRegion    string
	SESFromEmail string
	SESFromName  string
	AppBaseURL   string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first if present.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	return &Config{
		ServerPort:     getEnv("PORT", "8080"),
		DatabaseType:   getEnv("DB_TYPE", "sqlite"),
		DatabaseURL:    getEnv("DB_URL", ""),
		DatabasePath:   getEnv("DB_PATH", "./masterypath.db"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),

		SessionDuration: getEnvDuration("SESSION_DURATION", 24*time.Hour),
		JWTSecret:       getEnv("JWT_SECRET", ""),

		QuestionBankURL:     getEnv("QUESTION_BANK_URL", ""),
		QuestionBankTimeout: getEnvDuration("QUESTION_BANK_TIMEOUT", 10*time.Second),

		VerificationIntervalSeconds: getEnvInt("VERIFICATION_INTERVAL_SECONDS", 300),
		ComprehensionQuizSeconds:    getEnvInt("COMPREHENSION_QUIZ_SECONDS", 1800),
		DefaultPassPercent:          getEnvInt("DEFAULT_PASS_PERCENT", 80),
		PassPercentCeiling:          getEnvInt("PASS_PERCENT_CEILING", 100),

		AWSRegion:    getEnv("AWS_REGION", "eu-west-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "MasteryPath"),
		AppBaseURL:   getEnv("APP_BASE_URL", "http://localhost:8080"),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid value for %s: %q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

// getEnvDuration reads a duration environment variable or returns a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Warning: invalid value for %s: %q, using default %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}
