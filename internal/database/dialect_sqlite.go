package database

import (
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// sqlitePragmas go in the DSN so the driver applies them to every pooled
// connection. A PRAGMA sent through db.Exec reaches only one of them.
const sqlitePragmas = "_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000"

// SQLiteDialect is the default backend: a single file next to the server.
type SQLiteDialect struct{}

func NewSQLiteDialect() *SQLiteDialect {
	return &SQLiteDialect{}
}

func (d *SQLiteDialect) DriverName() string {
	return "sqlite3"
}

func (d *SQLiteDialect) DSN(config DialectConfig) string {
	sep := "?"
	if strings.Contains(config.Path, "?") {
		sep = "&"
	}
	return config.Path + sep + sqlitePragmas
}

// RewriteQuery leaves ? placeholders alone.
func (d *SQLiteDialect) RewriteQuery(query string) string {
	return query
}

// ConfigureConnection has nothing left to do once the DSN carries the pragmas.
func (d *SQLiteDialect) ConfigureConnection(db *sql.DB) error {
	return nil
}

func (d *SQLiteDialect) MigrationsSubdir() string {
	return "sqlite"
}

func (d *SQLiteDialect) CreateMigrationsTableQuery() string {
	return `CREATE TABLE IF NOT EXISTS migrations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT UNIQUE NOT NULL,
		executed_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
}

func (d *SQLiteDialect) UpsertClause(keys []string, update []string) string {
	return onConflictClause(keys, update)
}
