package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_datasets",
		SQL: `CREATE TABLE IF NOT EXISTS datasets (
  id           UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  name         TEXT        NOT NULL,
  filename     TEXT        NOT NULL,
  storage_path TEXT        NOT NULL UNIQUE,
  size         BIGINT      NOT NULL CHECK (size >= 0),
  content_type TEXT        NOT NULL,
  layout       TEXT        NOT NULL,
  dimensions   INTEGER     NOT NULL CHECK (dimensions > 0),
  length       INTEGER     NOT NULL CHECK (length > 0),
  labels       JSONB       NOT NULL DEFAULT '[]'::jsonb,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_datasets_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_datasets_created_at ON datasets (created_at);`,
	},
	{
		Name: "create_table_discoveries",
		SQL: `CREATE TABLE IF NOT EXISTS discoveries (
  id           UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  dataset_id   UUID        NOT NULL REFERENCES datasets (id) ON DELETE CASCADE,
  mode         TEXT        NOT NULL,
  status       TEXT        NOT NULL,
  params       JSONB       NOT NULL,
  best_length  INTEGER,
  elbows       JSONB,
  result_path  TEXT,
  error        TEXT,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  started_at   TIMESTAMPTZ,
  finished_at  TIMESTAMPTZ
);`,
	},
	{
		Name: "create_index_discoveries_dataset_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_discoveries_dataset_id ON discoveries (dataset_id, created_at);`,
	},
	{
		Name: "create_index_discoveries_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_discoveries_status ON discoveries (status);`,
	},
}

// EnsureMigrated checks if the 'discoveries' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, logger zerolog.Logger, dbHost string) error {
	start := time.Now()
	logger = logger.With().Str("component", "database").Str("db_host", dbHost).Logger()

	logger.Info().Str("event", "db_migration_check").Str("status", "starting").Msg("")

	var exists bool
	query := "SELECT to_regclass('public.discoveries') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		logger.Error().
			Str("event", "db_migration_failed").
			Str("status", "error").
			Err(err).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("failed to check sentinel table")
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logger.Info().
			Str("event", "db_migration_skip").
			Str("status", "success").
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("schema already exists, skipping migration")
		return nil
	}

	logger.Info().Str("event", "db_migration_start").Str("status", "in_progress").Msg("")

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			logger.Error().
				Str("event", "db_migration_failed").
				Str("status", "error").
				Str("migration_step", step.Name).
				Err(err).
				Int64("duration_ms", time.Since(start).Milliseconds()).
				Int64("step_duration_ms", time.Since(stepStart).Milliseconds()).
				Msg("")
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logger.Info().
			Str("event", "db_migration_step").
			Str("status", "success").
			Str("migration_step", step.Name).
			Int64("step_duration_ms", time.Since(stepStart).Milliseconds()).
			Msg("")
	}

	logger.Info().
		Str("event", "db_migration_success").
		Str("status", "success").
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("")

	return nil
}
