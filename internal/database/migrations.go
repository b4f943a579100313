package database

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

type migration struct {
	version    int
	statements []string
}

// Statements use {{serial}} and {{timestamp}} for the column types that
// differ between SQLite and Postgres.
var migrations = []migration{
	{
		version: 1,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id TEXT PRIMARY KEY,
				password_hash TEXT NOT NULL DEFAULT '',
				created_at {{timestamp}} NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS sessions (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				expires_at {{timestamp}} NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_sessions_expires ON sessions(expires_at)`,
		},
	},
	{
		version: 2,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS projects (
				id {{serial}},
				user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				name TEXT NOT NULL,
				started_at {{timestamp}},
				created_at {{timestamp}} NOT NULL,
				updated_at {{timestamp}} NOT NULL,
				UNIQUE (user_id, name)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_projects_user_updated ON projects(user_id, updated_at)`,
			`CREATE TABLE IF NOT EXISTS activities (
				id {{serial}},
				project_id BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
				started_at {{timestamp}} NOT NULL,
				ended_at {{timestamp}},
				created_at {{timestamp}} NOT NULL,
				updated_at {{timestamp}} NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_activities_project_started ON activities(project_id, started_at)`,
		},
	},
	{
		version: 3,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS worktime (
				user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				day TEXT NOT NULL,
				worktime BIGINT NOT NULL DEFAULT 0,
				breaktime BIGINT NOT NULL DEFAULT 0,
				PRIMARY KEY (user_id, day)
			)`,
		},
	},
	{
		version: 4,
		statements: []string{
			// At most one running project per user.
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_projects_one_running ON projects(user_id) WHERE started_at IS NOT NULL`,
		},
	},
}

func (db *DB) dialect() *strings.Replacer {
	if db.driver == DriverPostgres {
		return strings.NewReplacer(
			"{{serial}}", "BIGSERIAL PRIMARY KEY",
			"{{timestamp}}", "TIMESTAMPTZ",
		)
	}
	return strings.NewReplacer(
		"{{serial}}", "INTEGER PRIMARY KEY AUTOINCREMENT",
		"{{timestamp}}", "TIMESTAMP",
	)
}

func (db *DB) migrate(ctx context.Context) error {
	if _, err := db.DB.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	applied := make(map[int]bool)
	rows, err := db.DB.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("failed to read schema_migrations: %w", err)
	}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[v] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate migration versions: %w", err)
	}

	replacer := db.dialect()
	for _, m := range migrations {
		if applied[m.version] {
			continue
		}

		err := db.WithTx(ctx, func(tx *Tx) error {
			for _, stmt := range m.statements {
				if _, err := tx.Tx.ExecContext(ctx, replacer.Replace(stmt)); err != nil {
					return fmt.Errorf("migration %d failed: %w", m.version, err)
				}
			}
			_, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, m.version)
			return err
		})
		if err != nil {
			return err
		}

		db.logger.Info("Applied migration", zap.Int("version", m.version))
	}

	db.logger.Info("Database migrations completed")
	return nil
}
