// Package config collects runtime settings from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/joho/godotenv"
	"gorm.io/gorm/logger"
)

type Config struct {
	Port    string
	AppName string

	// DBDriver is "postgres" or "sqlite".
	DBDriver    string
	DatabaseURL string
	SQLitePath  string

	JWTSecret string
	JWTTTL    time.Duration

	UploadDir string

	RedisAddr    string
	RedisChannel string

	KafkaBrokers []string
	KafkaTopic   string

	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string

	AdminEmail    string
	AdminPassword string

	LogLevel string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func listenv(key string) []string {
	v := getenv(key, "")
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// databaseURL falls back to the discrete DB_* variables when DATABASE_URL is unset.
func databaseURL() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	if os.Getenv("DB_HOST") == "" {
		return ""
	}
	return "host=" + os.Getenv("DB_HOST") +
		" user=" + os.Getenv("DB_USER") +
		" password=" + os.Getenv("DB_PASSWORD") +
		" dbname=" + os.Getenv("DB_NAME") +
		" port=" + getenv("DB_PORT", "5432") +
		" sslmode=disable"
}

// LoadEnv reads a .env file if one is present. Missing files are not an error.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Warn("Warning: .env file not found, relying on system env")
	}
}

// Load collects configuration from environment with defaults.
func Load() Config {
	return Config{
		Port:               getenv("PORT", "8080"),
		AppName:            getenv("APP_NAME", "Catalog API v2"),
		DBDriver:           strings.ToLower(getenv("DB_DRIVER", "postgres")),
		DatabaseURL:        databaseURL(),
		SQLitePath:         getenv("SQLITE_PATH", "catalog.db"),
		JWTSecret:          getenv("JWT_SECRET", "change-me-in-production"),
		JWTTTL:             time.Duration(atoienv("JWT_TTL_HOURS", 24)) * time.Hour,
		UploadDir:          getenv("UPLOAD_DIR", "public/img"),
		RedisAddr:          getenv("REDIS_ADDR", ""),
		RedisChannel:       getenv("REDIS_CHANNEL", "catalog-events"),
		KafkaBrokers:       listenv("KAFKA_BROKERS"),
		KafkaTopic:         getenv("KAFKA_TOPIC", "catalog-events"),
		GitHubClientID:     getenv("GITHUB_CLIENT_ID", ""),
		GitHubClientSecret: getenv("GITHUB_CLIENT_SECRET", ""),
		GitHubCallbackURL:  getenv("GITHUB_CALLBACK_URL", "http://localhost:8080/api/sessions/github/callback"),
		AdminEmail:         getenv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword:      getenv("ADMIN_PASSWORD", "admin123"),
		LogLevel:           strings.ToLower(getenv("LOG_LEVEL", "info")),
	}
}

// GitHubEnabled reports whether the OAuth login flow has credentials.
func (c Config) GitHubEnabled() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}

// ApplyLogLevel sets the fiber application logger level.
func (c Config) ApplyLogLevel() {
	switch c.LogLevel {
	case "debug":
		log.SetLevel(log.LevelDebug)
	case "warn":
		log.SetLevel(log.LevelWarn)
	case "error":
		log.SetLevel(log.LevelError)
	default:
		log.SetLevel(log.LevelInfo)
	}
}

// GormLogLevel maps LOG_LEVEL onto the SQL logger. debug logs every statement.
func (c Config) GormLogLevel() logger.LogLevel {
	switch c.LogLevel {
	case "debug":
		return logger.Info
	case "error":
		return logger.Error
	case "silent":
		return logger.Silent
	default:
		return logger.Warn
	}
}
