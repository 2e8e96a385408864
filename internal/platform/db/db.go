package db

import (
	"database/sql"
	"fmt"
	"time"
)

// Open returns a verified Postgres pool. Claim and assignment bursts
// fan out across connections, so the pool is sized for short concurrent
// conditional updates rather than long-running queries.
func Open(databaseURL string) (*sql.DB, error) {
	pool, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open dispatch database: %w", err)
	}

	pool.SetMaxOpenConns(25)
	pool.SetMaxIdleConns(5)
	pool.SetConnMaxLifetime(time.Hour)

	if err := pool.Ping(); err != nil {
		return nil, fmt.Errorf("verify dispatch database connection: %w", err)
	}

	return pool, nil
}
