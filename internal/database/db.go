package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"namegame/internal/config"
)

// DB is the progress store: card schedules, confusion counts, open rounds
// and streaks for every player. Queries are written with ? placeholders and
// rewritten for the backend in use.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// Initialize opens a SQLite progress store at dbPath.
func Initialize(dbPath string) (*DB, error) {
	return open(NewSQLiteDialect(), DialectConfig{Path: dbPath})
}

// InitializeWithConfig opens the backend named by DATABASE_TYPE.
func InitializeWithConfig(cfg *config.Config) (*DB, error) {
	dialect, dialectConfig, err := dialectFor(cfg)
	if err != nil {
		return nil, err
	}
	return open(dialect, dialectConfig)
}

func dialectFor(cfg *config.Config) (Dialect, DialectConfig, error) {
	switch strings.ToLower(cfg.DatabaseType) {
	case "sqlite", "sqlite3", "":
		return NewSQLiteDialect(), DialectConfig{Path: cfg.DatabasePath}, nil
	case "postgres", "postgresql":
		return NewPostgresDialect(), DialectConfig{URL: cfg.DatabaseURL}, nil
	case "mysql":
		return NewMySQLDialect(), DialectConfig{URL: cfg.DatabaseURL}, nil
	}
	return nil, DialectConfig{}, fmt.Errorf("no progress store for database type %q", cfg.DatabaseType)
}

func open(dialect Dialect, dialectConfig DialectConfig) (*DB, error) {
	db, err := sql.Open(dialect.DriverName(), dialect.DSN(dialectConfig))
	if err != nil {
		return nil, fmt.Errorf("open %s progress store: %w", dialect.MigrationsSubdir(), err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("reach %s progress store: %w", dialect.MigrationsSubdir(), err)
	}

	answerPool.apply(db)
	if err := dialect.ConfigureConnection(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure %s progress store: %w", dialect.MigrationsSubdir(), err)
	}
	return &DB{DB: db, Dialect: dialect}, nil
}

// pool sizes the connection pool shared by every backend.
type pool struct {
	maxOpen     int
	maxIdle     int
	maxLifetime time.Duration
	maxIdleTime time.Duration
}

// answerPool fits a game where each graded answer is one short write.
var answerPool = pool{
	maxOpen:     25,
	maxIdle:     5,
	maxLifetime: 5 * time.Minute,
	maxIdleTime: time.Minute,
}

func (p pool) apply(db *sql.DB) {
	db.SetMaxOpenConns(p.maxOpen)
	db.SetMaxIdleConns(p.maxIdle)
	db.SetConnMaxLifetime(p.maxLifetime)
	db.SetConnMaxIdleTime(p.maxIdleTime)
}

// Query reads rows, rewriting placeholders for the backend.
func (db *DB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return db.DB.Query(db.Dialect.RewriteQuery(query), args...)
}

// QueryRow reads one row, rewriting placeholders for the backend.
func (db *DB) QueryRow(query string, args ...interface{}) *sql.Row {
	return db.DB.QueryRow(db.Dialect.RewriteQuery(query), args...)
}

// Exec writes, rewriting placeholders for the backend.
func (db *DB) Exec(query string, args ...interface{}) (sql.Result, error) {
	return db.DB.Exec(db.Dialect.RewriteQuery(query), args...)
}
