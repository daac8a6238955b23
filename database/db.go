package database

import (
	"context"
	"fmt"
	"strings"

	"goaltracker/config"
	"goaltracker/logger"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSQLitePath = "goals.db"

type Database struct {
	DB *gorm.DB
}

// Setup opens the database selected by cfg.DatabaseURL, configures the pool
// and runs migrations. Postgres URLs select the postgres driver; anything else
// is treated as a SQLite path, defaulting to a local goals.db file.
func Setup(cfg config.Config) (*Database, error) {
	gormConfig := &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(parseLogLevel(cfg.DBLogLevel)),
		PrepareStmt:            true,
		AllowGlobalUpdate:      false,
		SkipDefaultTransaction: true,
		TranslateError:         true,
	}

	postgresURL := IsPostgresURL(cfg.DatabaseURL)

	var dialector gorm.Dialector
	if postgresURL {
		dialector = postgres.Open(cfg.DatabaseURL)
	} else {
		dialector = sqlite.Open(sqliteDSN(cfg.DatabaseURL))
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if postgresURL {
		sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
		sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
		sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
	} else {
		// SQLite allows a single writer; one connection serializes transactions
		// and keeps in-memory databases alive.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	}

	logger.Info("Running database migrations", "driver", dialector.Name())
	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	return &Database{DB: db}, nil
}

// IsPostgresURL reports whether url names a PostgreSQL server. Both the
// postgres:// and postgresql:// schemes are accepted.
func IsPostgresURL(url string) bool {
	return strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")
}

func sqliteDSN(url string) string {
	dsn := strings.TrimPrefix(url, "sqlite://")
	if dsn == "" {
		dsn = defaultSQLitePath
	}
	if strings.Contains(dsn, "_foreign_keys") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=on"
	}
	return dsn + "?_foreign_keys=on"
}

func parseLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

func (d *Database) Close() {
	if d.DB == nil {
		logger.Warn("Database connection is nil, nothing to close")
		return
	}
	sqlDB, err := d.DB.DB()
	if err != nil {
		logger.Error("Failed to get database connection", "error", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Error("Failed to close database connection", "error", err)
	}
}

func (d *Database) Execute(ctx context.Context, query string, args ...interface{}) error {
	return d.DB.WithContext(ctx).Exec(query, args...).Error
}

// Ping runs a trivial statement through the pool.
func (d *Database) Ping(ctx context.Context) error {
	return d.Execute(ctx, "SELECT 1")
}
