package database

import (
	"database/sql"
	"strconv"
	"strings"
)

// Dialect is what the progress store needs to know about a SQL backend.
type Dialect interface {
	// DriverName is the name registered with database/sql.
	DriverName() string

	DSN(config DialectConfig) string

	// RewriteQuery turns the ? placeholders repositories write into the
	// backend's own syntax.
	RewriteQuery(query string) string

	// ConfigureConnection runs once after the pool has been sized.
	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir names the embedded directory holding this backend's
	// schema files.
	MigrationsSubdir() string

	CreateMigrationsTableQuery() string

	// UpsertClause returns the clause appended to an INSERT so that a row
	// colliding on keys has its update columns overwritten
	UpsertClause(keys []string, update []string) string
}

// DialectConfig locates the store: a file for SQLite, a URL otherwise.
type DialectConfig struct {
	Path string
	URL  string
}

// rewritePlaceholdersToNumbered numbers ? placeholders as $1, $2 and so on,
// leaving question marks inside quoted literals alone.
func rewritePlaceholdersToNumbered(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	var quote byte
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '?':
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// onConflictClause is the upsert syntax shared by SQLite and PostgreSQL
func onConflictClause(keys []string, update []string) string {
	sets := make([]string, 0, len(update))
	for _, col := range update {
		sets = append(sets, col+" = excluded."+col)
	}
	if len(sets) == 0 {
		return " ON CONFLICT (" + strings.Join(keys, ", ") + ") DO NOTHING"
	}
	return " ON CONFLICT (" + strings.Join(keys, ", ") + ") DO UPDATE SET " + strings.Join(sets, ", ")
}
