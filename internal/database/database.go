package database

import (
	"log"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Connect opens a SQLite database at the provided path.
// Use ":memory:" for an in-memory database.
func Connect(path string) *sqlx.DB {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	// SQLite allows a single writer; one connection keeps the
	// read-check-write sequences in transactions serialized.
	db.SetMaxOpenConns(1)
	// Foreign keys stay at the SQLite default (off): deleting a medicine
	// must leave its transaction history behind as orphaned rows.
	return db
}
