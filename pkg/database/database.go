package database

import (
	"fmt"
	stdlog "log"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options selects the backing database.
type Options struct {
	Driver      string // "postgres" or "sqlite"
	DatabaseURL string
	SQLitePath  string
	LogLevel    logger.LogLevel
}

func newLogger(level logger.LogLevel) logger.Interface {
	if level == 0 {
		level = logger.Warn
	}
	return logger.New(
		stdlog.New(os.Stdout, "\r\n", stdlog.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
}

// Connect opens the configured database and sets up the connection pool.
func Connect(opts Options) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:         newLogger(opts.LogLevel),
		PrepareStmt:    false,
		TranslateError: true,
	}

	var (
		db  *gorm.DB
		err error
	)
	switch opts.Driver {
	case "sqlite":
		db, err = OpenSQLite(opts.SQLitePath, cfg)
		if err != nil {
			return nil, err
		}
	case "postgres", "":
		if opts.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL or DB_HOST must be set for the postgres driver")
		}
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  opts.DatabaseURL,
			PreferSimpleProtocol: true, // Supabase transaction pooler does not support prepared statements
		}), cfg)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", opts.Driver)
	}

	log.Infof("Database connection established (%s)", opts.Driver)
	return db, nil
}

// OpenSQLite opens a file backed SQLite database. A single connection is kept
// so writers never see SQLITE_BUSY.
func OpenSQLite(path string, cfg *gorm.Config) (*gorm.DB, error) {
	if cfg == nil {
		cfg = &gorm.Config{Logger: newLogger(logger.Silent), TranslateError: true}
	}
	db, err := gorm.Open(sqlite.Open(path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"), cfg)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}
