// Package migration creates the doctrack schema on first start.
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

// sentinelTable is created by the last step, so an interrupted run is retried in full.
// Every step is idempotent.
const sentinelTable = "tracking_counters"

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_profiles",
		SQL: `CREATE TABLE IF NOT EXISTS profiles (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  email         TEXT        NOT NULL,
  display_name  TEXT        NOT NULL DEFAULT '',
  password_hash TEXT        NOT NULL,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_profiles_email",
		SQL:  `CREATE UNIQUE INDEX IF NOT EXISTS idx_profiles_email ON profiles (lower(email));`,
	},
	{
		Name: "create_table_teams",
		SQL: `CREATE TABLE IF NOT EXISTS teams (
  id         UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  name       TEXT        NOT NULL CHECK (btrim(name) <> ''),
  created_by UUID        NOT NULL REFERENCES profiles (id),
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_team_members",
		SQL: `CREATE TABLE IF NOT EXISTS team_members (
  id         UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  team_id    UUID        NOT NULL REFERENCES teams (id) ON DELETE CASCADE,
  user_id    UUID        NOT NULL REFERENCES profiles (id) ON DELETE CASCADE,
  role       TEXT        NOT NULL CHECK (role IN ('admin', 'manager', 'member')),
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE (team_id, user_id)
);`,
	},
	{
		Name: "create_index_team_members_one_admin",
		SQL:  `CREATE UNIQUE INDEX IF NOT EXISTS idx_team_members_one_admin ON team_members (team_id) WHERE role = 'admin';`,
	},
	{
		Name: "create_index_team_members_user_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_team_members_user_id ON team_members (user_id);`,
	},
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id               UUID        PRIMARY KEY,
  tracking_id      TEXT        NOT NULL,
  title            TEXT        NOT NULL,
  description      TEXT        NOT NULL DEFAULT '',
  category         TEXT        NOT NULL DEFAULT 'Other',
  status           TEXT        NOT NULL CHECK (status IN ('draft', 'under-review', 'approved', 'rejected', 'archived')),
  file_type        TEXT        NOT NULL,
  file_size        BIGINT      NOT NULL CHECK (file_size >= 0),
  file_path        TEXT        NOT NULL UNIQUE,
  user_id          UUID        NOT NULL REFERENCES profiles (id),
  owner_name       TEXT        NOT NULL DEFAULT '',
  team_id          UUID        REFERENCES teams (id) ON DELETE SET NULL,
  assigned_to      UUID        REFERENCES profiles (id) ON DELETE SET NULL,
  assigned_to_name TEXT,
  created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_documents_user_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_user_id ON documents (user_id, updated_at DESC);`,
	},
	{
		Name: "create_index_documents_team_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_team_id ON documents (team_id) WHERE team_id IS NOT NULL;`,
	},
	{
		Name: "create_table_document_history",
		SQL: `CREATE TABLE IF NOT EXISTS document_history (
  seq         BIGSERIAL,
  id          UUID        PRIMARY KEY,
  document_id UUID        NOT NULL REFERENCES documents (id) ON DELETE CASCADE,
  status      TEXT        NOT NULL,
  comment     TEXT        NOT NULL,
  updated_by  TEXT        NOT NULL,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_document_history_document_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_document_history_document_id ON document_history (document_id, created_at, seq);`,
	},
	{
		Name: "create_table_notifications",
		SQL: `CREATE TABLE IF NOT EXISTS notifications (
  id         UUID        PRIMARY KEY,
  user_id    UUID        NOT NULL REFERENCES profiles (id) ON DELETE CASCADE,
  title      TEXT        NOT NULL,
  message    TEXT        NOT NULL,
  type       TEXT        NOT NULL CHECK (type IN ('info', 'success', 'warning', 'error')),
  read       BOOLEAN     NOT NULL DEFAULT false,
  link       TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_notifications_user_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications (user_id, created_at DESC);`,
	},
	{
		Name: "create_function_create_team",
		SQL: `CREATE OR REPLACE FUNCTION create_team(p_name TEXT, p_user UUID)
RETURNS SETOF teams
LANGUAGE plpgsql
SECURITY DEFINER
AS $$
DECLARE
  t teams;
BEGIN
  INSERT INTO teams (name, created_by) VALUES (btrim(p_name), p_user) RETURNING * INTO t;
  INSERT INTO team_members (team_id, user_id, role) VALUES (t.id, p_user, 'admin');
  RETURN NEXT t;
END;
$$;`,
	},
	{
		Name: "create_table_tracking_counters",
		SQL: `CREATE TABLE IF NOT EXISTS tracking_counters (
  user_id  UUID    NOT NULL REFERENCES profiles (id) ON DELETE CASCADE,
  year     INTEGER NOT NULL,
  last_seq INTEGER NOT NULL,
  PRIMARY KEY (user_id, year)
);`,
	},
}

// EnsureMigrated runs every step unless the sentinel table already exists.
func EnsureMigrated(ctx context.Context, db *sql.DB, l *zap.Logger) error {
	start := time.Now()
	l = l.With(zap.String("component", "database"))

	l.Info("db_migration_check", zap.String("status", "starting"))

	var exists bool
	query := "SELECT to_regclass('public." + sentinelTable + "') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		l.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.Error(err),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		l.Info("db_migration_skip",
			zap.String("status", "success"),
			zap.String("reason", "schema already exists"),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	l.Info("db_migration_start", zap.String("status", "in_progress"), zap.Int("steps", len(steps)))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			l.Error("db_migration_failed",
				zap.String("status", "error"),
				zap.String("migration_step", step.Name),
				zap.Error(err),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		l.Debug("db_migration_step",
			zap.String("status", "success"),
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	l.Info("db_migration_success",
		zap.String("status", "success"),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
