// Package store is the Postgres persistence layer. Every status
// transition is written as a guarded UPDATE that filters on the expected
// current status, so a racing writer finds zero rows instead of
// clobbering the other side's transition.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
)

// ErrNoMatch is returned when a guarded query matched no row: wrong id,
// wrong owner, or a status precondition that no longer holds.
var ErrNoMatch = errors.New("no matching request")

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}
