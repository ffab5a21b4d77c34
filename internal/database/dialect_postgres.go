package database

import (
	"database/sql"

	_ "github.com/lib/pq"
)

// PostgresDialect serves deployments that share one progress store between
// several server instances.
type PostgresDialect struct{}

func NewPostgresDialect() *PostgresDialect {
	return &PostgresDialect{}
}

func (d *PostgresDialect) DriverName() string {
	return "postgres"
}

func (d *PostgresDialect) DSN(config DialectConfig) string {
	return config.URL
}

// RewriteQuery numbers the placeholders: ? becomes $1, $2 and so on.
func (d *PostgresDialect) RewriteQuery(query string) string {
	return rewritePlaceholdersToNumbered(query)
}

// ConfigureConnection is a no-op; Postgres enforces the player foreign keys
// without being asked.
func (d *PostgresDialect) ConfigureConnection(db *sql.DB) error {
	return nil
}

func (d *PostgresDialect) MigrationsSubdir() string {
	return "postgres"
}

func (d *PostgresDialect) CreateMigrationsTableQuery() string {
	return `CREATE TABLE IF NOT EXISTS migrations (
		id BIGSERIAL PRIMARY KEY,
		filename TEXT UNIQUE NOT NULL,
		executed_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	)`
}

func (d *PostgresDialect) UpsertClause(keys []string, update []string) string {
	return onConflictClause(keys, update)
}
