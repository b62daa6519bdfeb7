package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/mattn/go-sqlite3"
)

// PrimaryUser is the local user that owns the unadorned database file and
// the global settings table.
const PrimaryUser = 0

// DatabaseName is the settings database file name.
const DatabaseName = "settings.db"

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
	path string
}

// PathForUser returns the database path for a local user. The primary user
// gets the unadorned name directly under the data directory; other users get
// a per-user subtree so the file is cleaned up along with the user.
func PathForUser(dataDir string, userID int) string {
	if userID == PrimaryUser {
		return filepath.Join(dataDir, DatabaseName)
	}
	return filepath.Join(dataDir, "users", strconv.Itoa(userID), DatabaseName)
}

// Open opens a SQLite database at the given path and applies pragmas
func Open(path string) (*DB, error) {
	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply pragmas
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragma %q: %w", pragma, err)
		}
	}

	return &DB{DB: db, path: path}, nil
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// SchemaVersion reads the schema version stamped on the store.
// A freshly created file reports 0.
func (db *DB) SchemaVersion() (int, error) {
	var v int
	if err := db.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}

// SetSchemaVersion stamps the schema version inside the given transaction so
// the version advances atomically with the step that produced it.
func SetSchemaVersion(tx *sql.Tx, v int) error {
	// PRAGMA does not support bind parameters.
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", v)); err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}
	return nil
}

// BeginTx starts a new transaction
func (db *DB) BeginTx() (*sql.Tx, error) {
	return db.Begin()
}
