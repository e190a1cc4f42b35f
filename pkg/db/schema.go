package db

import (
	"context"
	"fmt"
)

// Schema is portable between sqlite and postgres: booleans are INTEGER 0/1
// and ids are assigned by the import, never generated.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS biome (
		biome_id   INTEGER PRIMARY KEY,
		biome_name TEXT NOT NULL,
		lineage    TEXT NOT NULL UNIQUE,
		depth      INTEGER NOT NULL,
		lft        INTEGER NOT NULL,
		rgt        INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS biome_interval_idx ON biome (lft, rgt)`,
	`CREATE TABLE IF NOT EXISTS experiment_type (
		experiment_type_id INTEGER PRIMARY KEY,
		experiment_type    TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS pipeline (
		pipeline_id     INTEGER PRIMARY KEY,
		release_version TEXT NOT NULL UNIQUE,
		release_date    TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS study (
		study_id    INTEGER PRIMARY KEY,
		accession   TEXT NOT NULL UNIQUE,
		study_name  TEXT NOT NULL DEFAULT '',
		biome_id    INTEGER REFERENCES biome (biome_id),
		is_public   INTEGER NOT NULL DEFAULT 0,
		last_update TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS sample (
		sample_id   INTEGER PRIMARY KEY,
		accession   TEXT NOT NULL UNIQUE,
		sample_name TEXT NOT NULL DEFAULT '',
		biome_id    INTEGER NOT NULL REFERENCES biome (biome_id),
		study_id    INTEGER REFERENCES study (study_id),
		is_public   INTEGER NOT NULL DEFAULT 0,
		last_update TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS sample_biome_idx ON sample (biome_id)`,
	`CREATE TABLE IF NOT EXISTS run (
		run_id              INTEGER PRIMARY KEY,
		accession           TEXT NOT NULL UNIQUE,
		sample_id           INTEGER REFERENCES sample (sample_id),
		study_id            INTEGER REFERENCES study (study_id),
		experiment_type_id  INTEGER REFERENCES experiment_type (experiment_type_id),
		status_id           INTEGER NOT NULL DEFAULT 4,
		instrument_platform TEXT NOT NULL DEFAULT '',
		instrument_model    TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS analysis_job (
		job_id             INTEGER PRIMARY KEY,
		run_id             INTEGER REFERENCES run (run_id),
		sample_id          INTEGER REFERENCES sample (sample_id),
		study_id           INTEGER REFERENCES study (study_id),
		pipeline_id        INTEGER NOT NULL REFERENCES pipeline (pipeline_id),
		experiment_type_id INTEGER REFERENCES experiment_type (experiment_type_id),
		analysis_status_id INTEGER NOT NULL DEFAULT 3,
		run_status_id      INTEGER NOT NULL DEFAULT 4,
		external_run_ids   TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS analysis_job_run_idx ON analysis_job (external_run_ids)`,
}

// Migrate creates the tables used by the service.
func (r *Relational) Migrate(ctx context.Context) error {
	for _, q := range schema {
		if _, err := r.DB.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}
