package testutils

import (
	"database/sql"
	"testing"

	"goaltracker/config"
	"goaltracker/database"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SetupMockDB sets up a postgres-flavoured gorm connection backed by sqlmock.
func SetupMockDB() (*database.Database, sqlmock.Sqlmock, func()) {
	var db *sql.DB
	var mock sqlmock.Sqlmock
	var err error

	db, mock, err = sqlmock.New()
	if err != nil {
		panic(err)
	}

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		DriverName:           "postgres",
		Conn:                 db,
		PreferSimpleProtocol: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		panic(err)
	}

	mockDB := &database.Database{
		DB: gormDB,
	}

	close := func() {
		db.Close()
	}

	return mockDB, mock, close
}

// SetupTestDB returns a migrated in-memory SQLite database that is closed
// when the test finishes.
func SetupTestDB(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.Setup(config.Config{DatabaseURL: "file::memory:", DBLogLevel: "silent"})
	if err != nil {
		t.Fatalf("failed to set up test database: %v", err)
	}
	t.Cleanup(db.Close)
	return db
}
