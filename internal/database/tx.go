package database

import (
	"database/sql"
	"log"
)

// Tx is a progress write that lands whole or not at all, such as the card
// states of one graded round or the wipe of a departing player.
type Tx struct {
	*sql.Tx
	dialect Dialect
}

// Begin starts a progress write.
func (db *DB) Begin() (*Tx, error) {
	tx, err := db.DB.Begin()
	if err != nil {
		return nil, err
	}
	return &Tx{Tx: tx, dialect: db.Dialect}, nil
}

func (tx *Tx) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return tx.Tx.Query(tx.dialect.RewriteQuery(query), args...)
}

func (tx *Tx) QueryRow(query string, args ...interface{}) *sql.Row {
	return tx.Tx.QueryRow(tx.dialect.RewriteQuery(query), args...)
}

func (tx *Tx) Exec(query string, args ...interface{}) (sql.Result, error) {
	return tx.Tx.Exec(tx.dialect.RewriteQuery(query), args...)
}

// WithTx commits when fn succeeds. On error the write is rolled back and
// fn's error is returned.
func (db *DB) WithTx(fn func(tx *Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Printf("Warning: failed to roll back progress write: %v", rbErr)
		}
		return err
	}
	return tx.Commit()
}
