package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tangle_backend/internal/platform/config"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	log "github.com/sirupsen/logrus"
)

var DB *sql.DB

func Connect() {
	var err error
	DB, err = sql.Open("pgx", config.AppConfig.DBConnStr)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection
	if err = DB.Ping(); err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}

	log.Info("Successfully connected to PostgreSQL database")
}

func Close() {
	if DB != nil {
		DB.Close()
		log.Info("Database connection closed")
	}
}

// schema is applied on every start; each statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		realname      TEXT NOT NULL,
		email         TEXT NOT NULL,
		language      TEXT NOT NULL,
		school        TEXT NOT NULL,
		standard      TEXT NOT NULL,
		board         TEXT NOT NULL,
		country       TEXT NOT NULL,
		state         TEXT NOT NULL,
		city          TEXT NOT NULL,
		usertype      TEXT NOT NULL DEFAULT 'user',
		coins         INTEGER NOT NULL DEFAULT 0,
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS attempts (
		id        BIGSERIAL PRIMARY KEY,
		username  TEXT NOT NULL,
		category  TEXT NOT NULL,
		level     INTEGER NOT NULL,
		attempt   INTEGER NOT NULL,
		points    INTEGER NOT NULL,
		timestamp TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS attempts_username_timestamp_idx ON attempts (username, timestamp)`,
	`CREATE TABLE IF NOT EXISTS uploads (
		id         UUID PRIMARY KEY,
		uploader   TEXT NOT NULL,
		category   TEXT NOT NULL,
		pages      INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
}

// EnsureSchema creates the users, attempts and uploads tables when missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("database.EnsureSchema: %w", err)
		}
	}
	return nil
}
