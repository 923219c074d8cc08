package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id        TEXT PRIMARY KEY,
  email     TEXT NOT NULL,
  full_name TEXT NOT NULL DEFAULT ''
);`,
	},
	{
		Name: "create_table_filings",
		SQL: `CREATE TABLE IF NOT EXISTS filings (
  id         UUID        PRIMARY KEY,
  user_id    TEXT        NOT NULL REFERENCES users (id),
  status     TEXT        NOT NULL,
  metadata   JSONB       NOT NULL DEFAULT '{}'::jsonb,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_filings_user_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_filings_user_id ON filings (user_id);`,
	},
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id            UUID        PRIMARY KEY,
  filing_id     UUID        NOT NULL REFERENCES filings (id),
  user_id       TEXT        NOT NULL,
  document_type TEXT        NOT NULL,
  storage_path  TEXT        NOT NULL,
  content_type  TEXT        NOT NULL,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_documents_filing_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_filing_id ON documents (filing_id);`,
	},
	{
		Name: "create_table_ml_results",
		SQL: `CREATE TABLE IF NOT EXISTS ml_results (
  id          UUID        PRIMARY KEY,
  filing_id   UUID        NOT NULL REFERENCES filings (id),
  user_id     TEXT        NOT NULL,
  parsed_json JSONB       NOT NULL DEFAULT '{}'::jsonb,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_ml_results_filing_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_ml_results_filing_id ON ml_results (filing_id);`,
	},
	{
		Name: "create_table_risk_flags",
		SQL: `CREATE TABLE IF NOT EXISTS risk_flags (
  filing_id UUID  PRIMARY KEY REFERENCES filings (id),
  user_id   TEXT  NOT NULL,
  flags     JSONB NOT NULL DEFAULT '{}'::jsonb
);`,
	},
	{
		Name: "create_table_commitments",
		SQL: `CREATE TABLE IF NOT EXISTS commitments (
  id              UUID        PRIMARY KEY,
  filing_id       UUID        NOT NULL UNIQUE REFERENCES filings (id),
  user_id         TEXT        NOT NULL,
  commitment_hash TEXT        NOT NULL,
  commitment_id   TEXT        NOT NULL,
  created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_audit_logs",
		SQL: `CREATE TABLE IF NOT EXISTS audit_logs (
  id         UUID        PRIMARY KEY,
  user_id    TEXT        NOT NULL,
  event_type TEXT        NOT NULL,
  metadata   JSONB       NOT NULL DEFAULT '{}'::jsonb,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_audit_logs_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_audit_logs_created_at ON audit_logs (created_at);`,
	},
}

// EnsureMigrated checks if the 'filings' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.filings') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
