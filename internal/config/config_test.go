package config

import (
	"testing"
	"time"

	"gorm.io/gorm/logger"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "DATABASE_URL", "DB_HOST", "JWT_TTL_HOURS", "UPLOAD_DIR",
		"REDIS_ADDR", "KAFKA_BROKERS", "GITHUB_CLIENT_ID", "GITHUB_CLIENT_SECRET", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	c := Load()
	if c.Port != "8080" {
		t.Fatalf("Port default: %q", c.Port)
	}
	if c.DBDriver != "postgres" {
		t.Fatalf("DBDriver default: %q", c.DBDriver)
	}
	if c.DatabaseURL != "" {
		t.Fatalf("DatabaseURL should be empty, got %q", c.DatabaseURL)
	}
	if c.JWTTTL != 24*time.Hour {
		t.Fatalf("JWTTTL default: %v", c.JWTTTL)
	}
	if c.UploadDir != "public/img" {
		t.Fatalf("UploadDir default: %q", c.UploadDir)
	}
	if c.KafkaBrokers != nil {
		t.Fatalf("KafkaBrokers default: %v", c.KafkaBrokers)
	}
	if c.GitHubEnabled() {
		t.Fatalf("github should be disabled without credentials")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "cat")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "catalog")
	t.Setenv("DB_PORT", "")
	t.Setenv("JWT_TTL_HOURS", "2")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("GITHUB_CLIENT_ID", "id")
	t.Setenv("GITHUB_CLIENT_SECRET", "secret")
	c := Load()
	if c.Port != "3000" {
		t.Fatalf("Port env")
	}
	if c.DBDriver != "sqlite" {
		t.Fatalf("DBDriver should be lowercased, got %q", c.DBDriver)
	}
	want := "host=db user=cat password=pw dbname=catalog port=5432 sslmode=disable"
	if c.DatabaseURL != want {
		t.Fatalf("DatabaseURL: got %q want %q", c.DatabaseURL, want)
	}
	if c.JWTTTL != 2*time.Hour {
		t.Fatalf("JWTTTL env")
	}
	if len(c.KafkaBrokers) != 2 || c.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("KafkaBrokers env: %v", c.KafkaBrokers)
	}
	if !c.GitHubEnabled() {
		t.Fatalf("github should be enabled")
	}
}

func TestGormLogLevelFollowsLogLevel(t *testing.T) {
	cases := map[string]logger.LogLevel{
		"debug":  logger.Info,
		"info":   logger.Warn,
		"warn":   logger.Warn,
		"error":  logger.Error,
		"silent": logger.Silent,
		"":       logger.Warn,
	}
	for env, want := range cases {
		t.Setenv("LOG_LEVEL", env)
		if got := Load().GormLogLevel(); got != want {
			t.Fatalf("LOG_LEVEL=%q: got %v want %v", env, got, want)
		}
	}
}
