// Package store provides the scoped settings tables: three independent
// key-value namespaces (system, secure, global) per local user, backed by
// one SQLite file per user. The global table exists only for the primary
// user's store.
package store

import (
	"database/sql"
	"fmt"

	"github.com/lherron/prefstore/internal/db"
)

// Store is a single user's settings store. It assumes single-writer access;
// callers must guarantee at most one of create, upgrade, backup, or restore
// is in flight at a time.
type Store struct {
	db     *db.DB
	userID int
}

// New wraps an open database as a settings store for the given user.
func New(database *db.DB, userID int) *Store {
	return &Store{db: database, userID: userID}
}

// DB returns the underlying database connection.
func (s *Store) DB() *db.DB {
	return s.db
}

// UserID returns the local user this store belongs to.
func (s *Store) UserID() int {
	return s.userID
}

// Primary reports whether this is the primary user's store.
func (s *Store) Primary() bool {
	return s.userID == db.PrimaryUser
}

// Scopes returns the scopes present in this store, in table order.
func (s *Store) Scopes() []Scope {
	if s.Primary() {
		return []Scope{ScopeSystem, ScopeSecure, ScopeGlobal}
	}
	return []Scope{ScopeSystem, ScopeSecure}
}

// table validates a scope against this store. The global table is only
// reachable on the primary user's store.
func (s *Store) table(scope Scope) (string, error) {
	switch scope {
	case ScopeSystem, ScopeSecure:
		return string(scope), nil
	case ScopeGlobal:
		if !s.Primary() {
			return "", fmt.Errorf("%w: global table does not exist for user %d", ErrUnknownScope, s.userID)
		}
		return string(scope), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScope, scope)
}

// Create builds the scope tables, seeds default values from the resource
// provider, and stamps the store with the target schema version. The whole
// creation is one transaction.
func (s *Store) Create(res Resources, targetVersion int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, scope := range s.Scopes() {
		if err := createScopeTable(tx, string(scope)); err != nil {
			return err
		}
	}

	if err := SeedDefaults(tx, res, s.Primary()); err != nil {
		return fmt.Errorf("failed to seed defaults: %w", err)
	}

	if err := db.SetSchemaVersion(tx, targetVersion); err != nil {
		return err
	}

	return tx.Commit()
}

func createScopeTable(tx *sql.Tx, name string) error {
	createSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT UNIQUE ON CONFLICT REPLACE,
			value TEXT
		)
	`, name)
	if _, err := tx.Exec(createSQL); err != nil {
		return fmt.Errorf("failed to create table %s: %w", name, err)
	}

	indexSQL := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %sIndex1 ON %s (name)", name, name)
	if _, err := tx.Exec(indexSQL); err != nil {
		return fmt.Errorf("failed to create index for %s: %w", name, err)
	}
	return nil
}

// Get returns the value for a setting, with ok reporting presence. A key
// that was never set is a normal outcome, not an error.
func (s *Store) Get(scope Scope, name string) (string, bool, error) {
	table, err := s.table(scope)
	if err != nil {
		return "", false, err
	}

	var value sql.NullString
	query := fmt.Sprintf("SELECT value FROM %s WHERE name = ?", table)
	err = s.db.QueryRow(query, name).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s/%s: %w", scope, name, err)
	}
	if !value.Valid {
		return "", false, nil
	}
	return value.String, true, nil
}

// Put commits a setting value. With overwrite false it has insert-if-absent
// semantics and reports whether the row was committed. Every committed
// setting has a non-empty name.
func (s *Store) Put(scope Scope, name, value string, overwrite bool) (bool, error) {
	table, err := s.table(scope)
	if err != nil {
		return false, err
	}
	if name == "" {
		return false, fmt.Errorf("refusing to store setting with empty name in %s", scope)
	}

	verb := "INSERT OR IGNORE"
	if overwrite {
		verb = "INSERT OR REPLACE"
	}
	query := fmt.Sprintf("%s INTO %s (name, value) VALUES (?, ?)", verb, table)
	result, err := s.db.Exec(query, name, value)
	if err != nil {
		return false, fmt.Errorf("failed to write %s/%s: %w", scope, name, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to write %s/%s: %w", scope, name, err)
	}
	return n > 0, nil
}

// Delete removes a setting. Missing rows are not an error.
func (s *Store) Delete(scope Scope, name string) error {
	table, err := s.table(scope)
	if err != nil {
		return err
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE name = ?", table)
	if _, err := s.db.Exec(query, name); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", scope, name, err)
	}
	return nil
}

// Move copies the named settings from one scope's table to another and
// removes them from the source, all in one transaction. With ignoreConflicts
// an existing row in the destination wins.
func (s *Store) Move(src, dst Scope, names []string, ignoreConflicts bool) error {
	srcTable, err := s.table(src)
	if err != nil {
		return err
	}
	dstTable, err := s.table(dst)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	verb := "INSERT"
	if ignoreConflicts {
		verb = "INSERT OR IGNORE"
	}
	insertSQL := fmt.Sprintf(
		"%s INTO %s (name, value) SELECT name, value FROM %s WHERE name = ?",
		verb, dstTable, srcTable)
	deleteSQL := fmt.Sprintf("DELETE FROM %s WHERE name = ?", srcTable)

	for _, name := range names {
		if _, err := tx.Exec(insertSQL, name); err != nil {
			return fmt.Errorf("failed to move %s from %s to %s: %w", name, src, dst, err)
		}
		if _, err := tx.Exec(deleteSQL, name); err != nil {
			return fmt.Errorf("failed to move %s from %s to %s: %w", name, src, dst, err)
		}
	}

	return tx.Commit()
}

// Cursor is a single forward pass over a scope's rows in insertion order.
type Cursor struct {
	rows *sql.Rows
}

// Rows opens a forward cursor over a scope's contents. The caller must
// Close it.
func (s *Store) Rows(scope Scope) (*Cursor, error) {
	table, err := s.table(scope)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(fmt.Sprintf("SELECT name, value FROM %s ORDER BY id", table))
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s table: %w", scope, err)
	}
	return &Cursor{rows: rows}, nil
}

// Next advances the cursor. ok is false once the pass is exhausted; hasValue
// is false for rows whose value column is NULL.
func (c *Cursor) Next() (name, value string, hasValue, ok bool, err error) {
	if !c.rows.Next() {
		if err := c.rows.Err(); err != nil {
			return "", "", false, false, fmt.Errorf("failed to advance settings cursor: %w", err)
		}
		return "", "", false, false, nil
	}
	var v sql.NullString
	if err := c.rows.Scan(&name, &v); err != nil {
		return "", "", false, false, fmt.Errorf("failed to scan settings row: %w", err)
	}
	return name, v.String, v.Valid, true, nil
}

// Close releases the cursor.
func (c *Cursor) Close() error {
	return c.rows.Close()
}
