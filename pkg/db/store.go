package db

import (
	"context"
	"errors"
)

// Stores bundles the two store handles. It is passed explicitly to the
// engines; there is no package level connection.
type Stores struct {
	SQL  *Relational
	Docs *DocStore
}

func NewStores(sql *Relational, docs *DocStore) *Stores {
	return &Stores{SQL: sql, Docs: docs}
}

// OpenRelational opens the relational store for the given backend. dsn is a
// file path for sqlite and a connection url for postgres.
func OpenRelational(ctx context.Context, dialect Dialect, dsn string) (*Relational, error) {
	if dialect == Postgres {
		return OpenPostgres(ctx, dsn)
	}
	return OpenSQLite(ctx, dsn)
}

// Open connects both stores. docDir == "" keeps documents in memory.
func Open(ctx context.Context, dialect Dialect, dsn, docDir string) (*Stores, error) {
	rel, err := OpenRelational(ctx, dialect, dsn)
	if err != nil {
		return nil, err
	}
	docs, err := OpenDocStore(docDir)
	if err != nil {
		rel.Close()
		return nil, err
	}
	return NewStores(rel, docs), nil
}

func (s *Stores) Close() error {
	var errs []error
	if s.Docs != nil {
		errs = append(errs, s.Docs.Close())
	}
	if s.SQL != nil {
		errs = append(errs, s.SQL.Close())
	}
	return errors.Join(errs...)
}
