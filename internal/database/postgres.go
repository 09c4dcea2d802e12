package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/noah-isme/ecotask-api/internal/models"
)

const sqlitePrefix = "sqlite://"

// Connect opens the database named by the URL. A "sqlite://" prefix selects an
// embedded sqlite file, anything else is treated as a PostgreSQL DSN.
func Connect(url string) (*gorm.DB, error) {
	if strings.HasPrefix(url, sqlitePrefix) {
		return ConnectSQLite(strings.TrimPrefix(url, sqlitePrefix))
	}
	return ConnectPostgres(url)
}

// ConnectPostgres establishes a connection to the PostgreSQL database using the provided DSN.
func ConnectPostgres(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn must not be empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return db, nil
}

// ConnectSQLite opens a sqlite database, used for local development and tests.
func ConnectSQLite(path string) (*gorm.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path must not be empty")
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	return db, nil
}

// Migrate creates or updates the tables backing tasks, submissions and evaluations.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Task{}, &models.Submission{}, &models.AIEvaluation{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
