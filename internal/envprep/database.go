// Package envprep prepares test environments before a run: one isolated
// MySQL database per runner worker, optionally reset and seeded through
// the project's own seed command.
package envprep

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"

	"pwtp/internal/config"
)

// DatabaseManager manages per-worker test databases
type DatabaseManager struct {
	config *config.Config
}

// NewDatabaseManager creates a new DatabaseManager
func NewDatabaseManager(cfg *config.Config) *DatabaseManager {
	return &DatabaseManager{config: cfg}
}

// EnsureDatabases checks that a database exists for each worker and
// creates missing ones. Returns the worker IDs that have a database.
func (dm *DatabaseManager) EnsureDatabases(workerCount int) ([]int, error) {
	// Connection settings come from the project's .env when present.
	envPath := filepath.Join(dm.config.ProjectPath, ".env")
	if err := godotenv.Load(envPath); err != nil {
		// .env file might not exist, that's okay - use environment variables
		_ = err
	}

	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "127.0.0.1"
	}
	dbPort := os.Getenv("DB_PORT")
	if dbPort == "" {
		dbPort = "3306"
	}
	dbUser := os.Getenv("DB_USERNAME")
	if dbUser == "" {
		dbUser = "root"
	}
	dbPassword := os.Getenv("DB_PASSWORD")

	// Connect to the MySQL server without selecting a database.
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/", dbUser, dbPassword, dbHost, dbPort)
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to database server: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database server: %w", err)
	}

	workers := make([]int, 0, workerCount)
	for i := 1; i <= workerCount; i++ {
		dbName := dm.config.GetDatabaseName(i)

		exists, err := dm.databaseExists(db, dbName)
		if err != nil {
			return nil, fmt.Errorf("check database %s: %w", dbName, err)
		}
		if !exists {
			if err := dm.createDatabase(db, dbName); err != nil {
				return nil, fmt.Errorf("create database %s: %w", dbName, err)
			}
		}
		workers = append(workers, i)
	}

	return workers, nil
}

// databaseExists checks if a database exists
func (dm *DatabaseManager) databaseExists(db *sql.DB, dbName string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?)"
	err := db.QueryRow(query, dbName).Scan(&exists)
	return exists, err
}

// createDatabase creates a new database
func (dm *DatabaseManager) createDatabase(db *sql.DB, dbName string) error {
	if !isValidDatabaseName(dbName) {
		return fmt.Errorf("invalid database name: %s", dbName)
	}
	query := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", dbName)
	_, err := db.Exec(query)
	return err
}

// isValidDatabaseName validates the name before it is interpolated into
// the CREATE DATABASE statement.
func isValidDatabaseName(name string) bool {
	if len(name) == 0 || len(name) > 64 {
		return false
	}
	invalid := []string{"'", "\"", ";", "--", "/*", "*/", "DROP", "DELETE", "TRUNCATE"}
	upper := strings.ToUpper(name)
	for _, s := range invalid {
		if strings.Contains(upper, s) {
			return false
		}
	}
	return true
}
