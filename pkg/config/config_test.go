package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDefaults(t *testing.T) {
	cfg := New()
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, filepath.Join("data", "emg.db"), cfg.SQLitePath)
	assert.Equal(t, filepath.Join("data", "docs"), cfg.DocDir)
	assert.Equal(t, "0.0.0.0:8080", cfg.Listen)
	assert.Equal(t, DefaultPageSize, cfg.PageSize)
	assert.Equal(t, cfg.SQLitePath, cfg.DSN())
}

func TestNewOptions(t *testing.T) {
	cfg := New(
		OptDataDir("/srv/emg"),
		OptBackend("postgres"),
		OptPostgresURL("postgres://emg@localhost/emg"),
		OptPageSize(500),
		OptTopBiomes([]int{3, 1}),
	)
	assert.Equal(t, "/srv/emg/docs", cfg.DocDir)
	assert.Equal(t, "postgres://emg@localhost/emg", cfg.DSN())
	assert.Equal(t, MaxPageSize, cfg.PageSize)
	assert.Equal(t, []int{3, 1}, cfg.TopBiomes)

	cfg = New(OptDataDir("/srv/emg"), OptDocDir("/fast/docs"), OptPageSize(0))
	assert.Equal(t, "/fast/docs", cfg.DocDir)
	assert.Equal(t, DefaultPageSize, cfg.PageSize)
}

func TestBackendAliases(t *testing.T) {
	for _, b := range []string{"postgres", "postgresql", "pg", "Postgres", "PG"} {
		cfg := New(OptBackend(b), OptPostgresURL("postgres://emg@db/emg"))
		assert.Equal(t, "postgres", cfg.Backend, b)
		assert.Equal(t, "postgres://emg@db/emg", cfg.DSN(), b)
	}
	for _, b := range []string{"", "sqlite", "SQLite"} {
		cfg := New(OptBackend(b), OptPostgresURL("postgres://emg@db/emg"))
		assert.Equal(t, "sqlite", cfg.Backend, b)
		assert.Equal(t, cfg.SQLitePath, cfg.DSN(), b)
	}

	cfg := New(OptBackend("mysql"))
	assert.Equal(t, "mysql", cfg.Backend)
}

func TestSafeDSN(t *testing.T) {
	cfg := New(OptBackend("pg"), OptPostgresURL("postgres://emg:s3cret@db:5432/emg?sslmode=disable"))
	assert.NotContains(t, cfg.SafeDSN(), "s3cret")
	assert.Contains(t, cfg.SafeDSN(), "db:5432/emg")

	cfg = New(OptBackend("postgres"), OptPostgresURL("host=db user=emg password=s3cret dbname=emg"))
	assert.NotContains(t, cfg.SafeDSN(), "s3cret")

	cfg = New()
	assert.Equal(t, cfg.SQLitePath, cfg.SafeDSN())
}
