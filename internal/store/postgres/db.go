package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

const uniqueViolation = "23505"

// Open opens a PostgreSQL database through the pgx stdlib driver.
func Open(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate runs idempotent DDL migrations on PostgreSQL.
func Migrate(db *sqlx.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id               BIGSERIAL    PRIMARY KEY,
			username         VARCHAR(30)  UNIQUE NOT NULL,
			email            VARCHAR(255) UNIQUE NOT NULL,
			hashed_password  VARCHAR(255) NOT NULL,
			profile_image    TEXT,
			created_at       TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS messages (
			id            BIGSERIAL   PRIMARY KEY,
			sender_id     BIGINT      NOT NULL REFERENCES users(id),
			recipient_id  BIGINT      NOT NULL REFERENCES users(id),
			content       TEXT        NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp(),
			is_read       BOOLEAN     NOT NULL DEFAULT FALSE,
			CHECK (sender_id <> recipient_id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_messages_sender_created ON messages(sender_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_recipient_created ON messages(recipient_id, created_at)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w\nSQL: %s", err, stmt)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
