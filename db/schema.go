package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"happenings/pubsub/outbox"
)

// Open connects to Postgres with every query traced.
func Open(postgresURL string) (*sqlx.DB, error) {
	traceDB, err := otelsql.Open("postgres", postgresURL,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithDBName("happenings"),
	)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	return sqlx.NewDb(traceDB, "postgres"), nil
}

func InitializeDatabaseSchema(db *sqlx.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			event_id VARCHAR(255) PRIMARY KEY,
			name TEXT NOT NULL,
			tagline TEXT NOT NULL DEFAULT '',
			default_ticket_type JSONB NOT NULL,
			additional_ticket_types JSONB NOT NULL DEFAULT '[]',
			slots JSONB NOT NULL DEFAULT '{"list": []}',
			starts_at TIMESTAMPTZ NOT NULL,
			ends_at TIMESTAMPTZ NOT NULL
		);

		CREATE TABLE IF NOT EXISTS people (
			person_id VARCHAR(255) PRIMARY KEY,
			given_name TEXT NOT NULL,
			family_name TEXT NOT NULL,
			picture TEXT,
			email TEXT NOT NULL,
			phone TEXT
		);

		CREATE TABLE IF NOT EXISTS bookings (
			booking_id VARCHAR(255) PRIMARY KEY,
			event_id VARCHAR(255) NOT NULL REFERENCES events (event_id),
			contact_id VARCHAR(255) NOT NULL REFERENCES people (person_id),
			tickets JSONB NOT NULL DEFAULT '[]',
			status VARCHAR(32) NOT NULL,
			payments JSONB NOT NULL DEFAULT '[]',
			payment_order_id VARCHAR(255),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE INDEX IF NOT EXISTS bookings_event_id_status_idx ON bookings (event_id, status);

		CREATE TABLE IF NOT EXISTS published_events (
			event_id VARCHAR(255) PRIMARY KEY,
			published_at TIMESTAMPTZ NOT NULL,
			event_name VARCHAR(255) NOT NULL,
			event_payload JSONB NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("could not create tables: %w", err)
	}

	return outbox.InitializeSchema(db.DB)
}
