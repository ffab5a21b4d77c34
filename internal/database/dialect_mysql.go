package database

import (
	"database/sql"
	"strings"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLDialect stores progress in MySQL or MariaDB.
type MySQLDialect struct{}

func NewMySQLDialect() *MySQLDialect {
	return &MySQLDialect{}
}

func (d *MySQLDialect) DriverName() string {
	return "mysql"
}

func (d *MySQLDialect) DSN(config DialectConfig) string {
	return config.URL
}

func (d *MySQLDialect) RewriteQuery(query string) string {
	return query
}

// ConfigureConnection reasserts foreign key checks, which player deletes
// cascade through.
func (d *MySQLDialect) ConfigureConnection(db *sql.DB) error {
	_, err := db.Exec("SET FOREIGN_KEY_CHECKS = 1")
	return err
}

func (d *MySQLDialect) MigrationsSubdir() string {
	return "mysql"
}

func (d *MySQLDialect) CreateMigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			filename VARCHAR(255) UNIQUE NOT NULL,
			executed_at DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6)
		);
	`
}

// UpsertClause ignores keys: MySQL resolves the conflict on any unique index
func (d *MySQLDialect) UpsertClause(keys []string, update []string) string {
	if len(update) == 0 {
		// no-op update keeps the existing row
		return " ON DUPLICATE KEY UPDATE " + keys[0] + " = " + keys[0]
	}
	sets := make([]string, 0, len(update))
	for _, col := range update {
		sets = append(sets, col+" = VALUES("+col+")")
	}
	return " ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
}
