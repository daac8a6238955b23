package config

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv  string
	AppPort string

	DatabaseURL       string
	DBMaxIdleConns    int
	DBMaxOpenConns    int
	DBConnMaxLifetime time.Duration
	DBLogLevel        string

	SecretKey    string
	SessionHours int
	CookieSecure bool

	AllowedOrigins string
	RedisURL       string
	NatsURL        string

	EventPollInterval time.Duration
	EventRetention    time.Duration

	Log LogConfig
}

type LogConfig struct {
	Level      string // debug, info, warn, error
	Format     string // json, text
	Output     string // stdout, file, both
	FilePath   string
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // days
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("%s not set, defaulting to %q", key, defaultValue)
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Invalid integer value for %s, defaulting to %d", key, defaultValue)
	}
	return defaultValue
}

func getSecret(key string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("Failed to generate %s: %v", key, err)
	}
	log.Printf("%s not set, using a random key; sessions will not survive a restart", key)
	return hex.EncodeToString(buf)
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first if present; real environment variables win.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}
	log.Println("Loading configuration...")

	return Config{
		AppEnv:  getEnv("APP_ENV", "development"),
		AppPort: getEnv("PORT", "5000"),

		DatabaseURL:       getEnv("DATABASE_URL", ""),
		DBMaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		DBMaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 20),
		DBConnMaxLifetime: time.Duration(getEnvAsInt("DB_CONN_MAX_LIFETIME_SECONDS", 300)) * time.Second,
		DBLogLevel:        getEnv("DB_LOG_LEVEL", "warn"),

		SecretKey:    getSecret("SECRET_KEY"),
		SessionHours: getEnvAsInt("SESSION_HOURS", 24),
		CookieSecure: getEnv("PRODUCTION", "False") == "True",

		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:5000"),
		RedisURL:       getEnv("REDIS_URL", ""),
		NatsURL:        getEnv("NATS_URL", ""),

		EventPollInterval: time.Duration(getEnvAsInt("EVENT_POLL_INTERVAL_MS", 1000)) * time.Millisecond,
		EventRetention:    time.Duration(getEnvAsInt("EVENT_RETENTION_HOURS", 24)) * time.Hour,

		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			Output:     getEnv("LOG_OUTPUT", "stdout"),
			FilePath:   getEnv("LOG_FILE", "logs/goaltracker.log"),
			MaxSize:    getEnvAsInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 5),
			MaxAge:     getEnvAsInt("LOG_MAX_AGE_DAYS", 30),
		},
	}
}

// SessionDuration is the absolute lifetime of a login session.
func (c Config) SessionDuration() time.Duration {
	return time.Duration(c.SessionHours) * time.Hour
}
