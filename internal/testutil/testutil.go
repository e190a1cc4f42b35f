// Package testutil builds real stores for package tests: a sqlite file in a
// temp dir and an in-memory badger store.
package testutil

import (
	"bytes"
	"context"
	_ "embed"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yumyai/emgapi/pkg/db"
	"github.com/yumyai/emgapi/pkg/loader"
)

//go:embed testdata/emg.yaml
var fixture []byte

// EmptyStores opens both stores with the schema in place and nothing loaded.
func EmptyStores(t testing.TB) *db.Stores {
	t.Helper()
	ctx := context.Background()

	// a file, not :memory:, so every pooled connection sees the same data
	stores, err := db.Open(ctx, db.SQLite, filepath.Join(t.TempDir(), "emg.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { stores.Close() })

	require.NoError(t, stores.SQL.Migrate(ctx))
	return stores
}

// Fixture decodes the shared dataset.
func Fixture(t testing.TB) *loader.Dataset {
	t.Helper()
	ds, err := loader.Decode(bytes.NewReader(fixture))
	require.NoError(t, err)
	return ds
}

// Stores returns stores loaded with the shared dataset.
func Stores(t testing.TB) *db.Stores {
	t.Helper()
	return Load(t, Fixture(t))
}

// Load returns stores loaded with ds.
func Load(t testing.TB, ds *loader.Dataset) *db.Stores {
	t.Helper()
	stores := EmptyStores(t)
	_, err := loader.Load(context.Background(), stores, ds)
	require.NoError(t, err)
	return stores
}
