package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Options selects the driver and how to reach it. DatabaseURL takes precedence
// over the discrete postgres fields when set.
type Options struct {
	Driver      string
	DatabaseURL string
	Host        string
	User        string
	Password    string
	Name        string
	Port        string
	SQLitePath  string
	LogLevel    logger.LogLevel
}

func Connect(opts Options) (*gorm.DB, error) {
	dialector, err := dialectorFor(opts)
	if err != nil {
		return nil, err
	}

	logLevel := opts.LogLevel
	if logLevel == 0 {
		logLevel = logger.Warn
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	return db, nil
}

func dialectorFor(opts Options) (gorm.Dialector, error) {
	switch opts.Driver {
	case "", DriverPostgres:
		dsn := opts.DatabaseURL
		if dsn == "" {
			dsn = fmt.Sprintf(
				"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
				valueOrDefault(opts.Host, "localhost"),
				valueOrDefault(opts.User, "postgres"),
				opts.Password,
				valueOrDefault(opts.Name, "drone_analytics"),
				valueOrDefault(opts.Port, "5432"),
			)
		}
		return postgres.Open(dsn), nil
	case DriverSQLite:
		path := valueOrDefault(opts.SQLitePath, "./data/drone_analytics.db")
		if !strings.HasPrefix(path, "file:") {
			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
				}
			}
		}
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return sqlite.Open(path + sep + "_foreign_keys=on"), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
}

func valueOrDefault(val, fallback string) string {
	if val != "" {
		return val
	}

	return fallback
}
