package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"sync"

	// Registers the pure-Go "sqlite" database/sql driver.
	_ "modernc.org/sqlite"
)

// SQLStorage is a SQL-backed storage.
// It works with any database/sql compatible driver (SQLite, PostgreSQL, MySQL).
// Requires a table with schema (see CreateTable):
//
//	CREATE TABLE usershell_kv (
//	    name VARCHAR(255) PRIMARY KEY,
//	    value BLOB NOT NULL,
//	    updated_at TIMESTAMP NOT NULL
//	);
type SQLStorage struct {
	db        *sql.DB
	ownsDB    bool
	tableName string
	dialect   SQLDialect

	mu     sync.RWMutex
	closed bool
}

// SQLDialect represents the SQL dialect for query generation.
type SQLDialect int

const (
	// DialectSQLite uses SQLite syntax (? placeholders).
	DialectSQLite SQLDialect = iota
	// DialectPostgreSQL uses PostgreSQL syntax ($1, $2 placeholders).
	DialectPostgreSQL
	// DialectMySQL uses MySQL syntax (? placeholders).
	DialectMySQL
)

// SQLOption configures SQLStorage behavior.
type SQLOption func(*sqlConfig)

type sqlConfig struct {
	tableName string
	dialect   SQLDialect
}

// WithSQLTableName sets the table name.
// Default: "usershell_kv".
func WithSQLTableName(name string) SQLOption {
	return func(c *sqlConfig) {
		c.tableName = name
	}
}

// WithSQLDialect sets the SQL dialect for query generation.
// Default: DialectSQLite.
func WithSQLDialect(dialect SQLDialect) SQLOption {
	return func(c *sqlConfig) {
		c.dialect = dialect
	}
}

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// NewSQL creates a storage on an existing database handle.
// The handle is not closed by Close.
func NewSQL(db *sql.DB, opts ...SQLOption) (*SQLStorage, error) {
	cfg := &sqlConfig{
		tableName: "usershell_kv",
		dialect:   DialectSQLite,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if !tableNamePattern.MatchString(cfg.tableName) {
		return nil, fmt.Errorf("storage: invalid table name %q", cfg.tableName)
	}

	return &SQLStorage{
		db:        db,
		tableName: cfg.tableName,
		dialect:   cfg.dialect,
	}, nil
}

// OpenSQLite opens (or creates) a SQLite database file and its table.
// The returned storage owns the database handle.
func OpenSQLite(ctx context.Context, path string, opts ...SQLOption) (*SQLStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)

	s, err := NewSQL(db, append([]SQLOption{WithSQLDialect(DialectSQLite)}, opts...)...)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.ownsDB = true

	if err := s.CreateTable(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// placeholder returns the placeholder syntax for the dialect.
func (s *SQLStorage) placeholder(n int) string {
	switch s.dialect {
	case DialectPostgreSQL:
		return fmt.Sprintf("$%d", n)
	default:
		return "?"
	}
}

func (s *SQLStorage) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Get retrieves the value for key.
func (s *SQLStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}

	query := fmt.Sprintf(`SELECT value FROM %s WHERE name = %s`, s.tableName, s.placeholder(1))

	var data []byte
	err := s.db.QueryRowContext(ctx, query, key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// Set upserts the value for key.
func (s *SQLStorage) Set(ctx context.Context, key string, value []byte) error {
	if s.isClosed() {
		return ErrClosed
	}
	if key == "" {
		return ErrInvalidKey
	}

	var query string
	switch s.dialect {
	case DialectPostgreSQL:
		query = fmt.Sprintf(`
			INSERT INTO %s (name, value, updated_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (name) DO UPDATE SET
				value = EXCLUDED.value,
				updated_at = NOW()
		`, s.tableName)
	case DialectMySQL:
		query = fmt.Sprintf(`
			INSERT INTO %s (name, value, updated_at)
			VALUES (?, ?, NOW())
			ON DUPLICATE KEY UPDATE
				value = VALUES(value),
				updated_at = NOW()
		`, s.tableName)
	default:
		query = fmt.Sprintf(`
			INSERT OR REPLACE INTO %s (name, value, updated_at)
			VALUES (?, ?, datetime('now'))
		`, s.tableName)
	}

	if value == nil {
		value = []byte{}
	}
	_, err := s.db.ExecContext(ctx, query, key, value)
	return err
}

// Delete removes key.
func (s *SQLStorage) Delete(ctx context.Context, key string) error {
	if s.isClosed() {
		return ErrClosed
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE name = %s`, s.tableName, s.placeholder(1))
	_, err := s.db.ExecContext(ctx, query, key)
	return err
}

// Close marks the storage closed, closing the database only when it was
// opened by OpenSQLite.
func (s *SQLStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}

// CreateTable creates the key-value table if it doesn't exist.
func (s *SQLStorage) CreateTable(ctx context.Context) error {
	var query string
	switch s.dialect {
	case DialectPostgreSQL:
		query = fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				name VARCHAR(255) PRIMARY KEY,
				value BYTEA NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
			)
		`, s.tableName)
	case DialectMySQL:
		query = fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				name VARCHAR(255) PRIMARY KEY,
				value BLOB NOT NULL,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
			)
		`, s.tableName)
	default:
		query = fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				name TEXT PRIMARY KEY,
				value BLOB NOT NULL,
				updated_at TEXT DEFAULT (datetime('now'))
			)
		`, s.tableName)
	}

	_, err := s.db.ExecContext(ctx, query)
	return err
}
