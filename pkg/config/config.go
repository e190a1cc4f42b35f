package config

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/yumyai/emgapi/pkg/db"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Config holds the settings of the service and of the loader.
type Config struct {
	// DataDir is the root for the sqlite file and the document store.
	DataDir string

	// SQLitePath is the sqlite database file. Defaults to <DataDir>/emg.db.
	SQLitePath string

	// DocDir is the badger directory. Defaults to <DataDir>/docs.
	DocDir string

	// Backend selects the relational store: sqlite or postgres.
	Backend string

	// PostgresURL is the connection url used with the postgres backend.
	PostgresURL string

	// Listen is the address the HTTP server binds to.
	Listen string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// TopBiomes is the allow-list of candidate biome ids ranked by the
	// top10 endpoint.
	TopBiomes []int

	// PageSize is the page size used when a request does not ask for one.
	PageSize int
}

// Option type allows to change settings for Config.
type Option func(*Config)

// OptDataDir sets the data directory.
func OptDataDir(d string) Option {
	return func(cfg *Config) {
		cfg.DataDir = d
	}
}

// OptSQLitePath sets the sqlite file.
func OptSQLitePath(p string) Option {
	return func(cfg *Config) {
		cfg.SQLitePath = p
	}
}

// OptDocDir sets the document store directory.
func OptDocDir(d string) Option {
	return func(cfg *Config) {
		cfg.DocDir = d
	}
}

// OptBackend sets the relational backend.
func OptBackend(b string) Option {
	return func(cfg *Config) {
		cfg.Backend = b
	}
}

// OptPostgresURL sets the postgres connection url.
func OptPostgresURL(u string) Option {
	return func(cfg *Config) {
		cfg.PostgresURL = u
	}
}

// OptListen sets the listen address.
func OptListen(l string) Option {
	return func(cfg *Config) {
		cfg.Listen = l
	}
}

// OptLogLevel sets the log level.
func OptLogLevel(l string) Option {
	return func(cfg *Config) {
		cfg.LogLevel = l
	}
}

// OptTopBiomes sets the top10 candidate biome ids.
func OptTopBiomes(ids []int) Option {
	return func(cfg *Config) {
		cfg.TopBiomes = ids
	}
}

// OptPageSize sets the default page size, capped at MaxPageSize.
func OptPageSize(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.PageSize = min(n, MaxPageSize)
		}
	}
}

func New(opts ...Option) Config {
	res := Config{
		DataDir:  "./data",
		Backend:  "sqlite",
		Listen:   "0.0.0.0:8080",
		LogLevel: "info",
		PageSize: DefaultPageSize,
	}

	for _, opt := range opts {
		opt(&res)
	}

	// aliases such as pg or postgresql become the canonical name; unknown
	// backends are left for db.ParseDialect to reject
	if d, err := db.ParseDialect(res.Backend); err == nil {
		res.Backend = d.String()
	}

	if res.SQLitePath == "" {
		res.SQLitePath = filepath.Join(res.DataDir, "emg.db")
	}
	if res.DocDir == "" {
		res.DocDir = filepath.Join(res.DataDir, "docs")
	}
	return res
}

// DSN is what the relational store is opened with for the configured
// backend.
func (c Config) DSN() string {
	if c.Backend == db.Postgres.String() {
		return c.PostgresURL
	}
	return c.SQLitePath
}

// SafeDSN is DSN with the postgres password masked, for logging.
func (c Config) SafeDSN() string {
	if c.Backend != db.Postgres.String() {
		return c.SQLitePath
	}
	if !strings.Contains(c.PostgresURL, "://") {
		// keyword/value form may carry password=...
		return "postgres (keyword dsn)"
	}
	u, err := url.Parse(c.PostgresURL)
	if err != nil {
		return "postgres (unparsable url)"
	}
	return u.Redacted()
}
