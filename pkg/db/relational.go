package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) String() string {
	switch d {
	case Postgres:
		return "postgres"
	default:
		return "sqlite"
	}
}

func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(s) {
	case "", "sqlite":
		return SQLite, nil
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	default:
		return SQLite, fmt.Errorf("unknown relational backend %q", s)
	}
}

// Relational is the handle to the relational store. Queries are written with
// `?` placeholders and passed through Rebind.
type Relational struct {
	DB      *sql.DB
	Dialect Dialect
}

// OpenSQLite opens (or creates) the sqlite file at path.
func OpenSQLite(ctx context.Context, path string) (*Relational, error) {
	dsn := path + "?_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	return &Relational{DB: db, Dialect: SQLite}, nil
}

// OpenPostgres connects through the pgx database/sql driver.
func OpenPostgres(ctx context.Context, url string) (*Relational, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(15)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Relational{DB: db, Dialect: Postgres}, nil
}

func (r *Relational) Close() error {
	return r.DB.Close()
}

// Rebind rewrites `?` placeholders into the dialect's form.
func (r *Relational) Rebind(q string) string {
	if r.Dialect != Postgres {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 16)
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}

// Placeholders returns "?, ?, ?" for n arguments.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// LimitOffset renders the paging clause and appends its arguments.
func (r *Relational) LimitOffset(limit, offset int, args []any) (string, []any) {
	switch {
	case limit > 0:
		return " LIMIT ? OFFSET ?", append(args, limit, offset)
	case offset > 0 && r.Dialect == Postgres:
		return " OFFSET ?", append(args, offset)
	case offset > 0:
		// sqlite needs a LIMIT before OFFSET
		return " LIMIT -1 OFFSET ?", append(args, offset)
	default:
		return "", args
	}
}
