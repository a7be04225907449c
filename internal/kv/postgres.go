package kv

import (
	"context"
	"database/sql"

	"github.com/billflow/billflow/internal/config"
	ierr "github.com/billflow/billflow/internal/errors"
	"github.com/billflow/billflow/internal/logger"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Schema is the DDL for the single records table backing the store.
const Schema = `
CREATE TABLE IF NOT EXISTS kv_records (
	key        TEXT PRIMARY KEY,
	value      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// PostgresStore implements Store on a single-table Postgres database
type PostgresStore struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// NewPostgresStore connects to the configured database and ensures the
// records table exists
func NewPostgresStore(cfg *config.Configuration, log *logger.Logger) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", cfg.Postgres.DSN())
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to connect to the persistence store").
			Mark(ierr.ErrDatabase)
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to prepare the persistence store").
			Mark(ierr.ErrDatabase)
	}

	log.Infow("connected to persistence store",
		"host", cfg.Postgres.Host,
		"database", cfg.Postgres.DBName,
	)
	return &PostgresStore{db: db, logger: log}, nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.GetContext(ctx, &value,
		`SELECT value FROM kv_records WHERE key = $1`, key)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, ierr.WithError(err).
			WithHint("Failed to read from the persistence store").
			WithReportableDetails(map[string]any{
				"key": key,
			}).
			Mark(ierr.ErrDatabase)
	}
	return value, true, nil
}

func (s *PostgresStore) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv_records (key, value, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to write to the persistence store").
			WithReportableDetails(map[string]any{
				"key": key,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

// PutAll commits all records in a single transaction
func (s *PostgresStore) PutAll(ctx context.Context, records map[string][]byte) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to start a persistence transaction").
			Mark(ierr.ErrDatabase)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for key, value := range records {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO kv_records (key, value, updated_at) VALUES ($1, $2, now())
			 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
			key, value); err != nil {
			return ierr.WithError(err).
				WithHint("Failed to write to the persistence store").
				WithReportableDetails(map[string]any{
					"key": key,
				}).
				Mark(ierr.ErrDatabase)
		}
	}

	if err := tx.Commit(); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to commit to the persistence store").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv_records WHERE key = $1`, key)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete from the persistence store").
			WithReportableDetails(map[string]any{
				"key": key,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

// Close releases the underlying connection pool
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
