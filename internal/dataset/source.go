package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"  // pgx driver
	_ "github.com/marcboeker/go-duckdb" // duckdb driver
	_ "modernc.org/sqlite"              // sqlite driver
)

// Source is a place observations can be read from.
type Source interface {
	// Open connects to the source and returns the relation expression rows
	// are selected from. The caller closes the returned handle.
	Open(ctx context.Context) (*sql.DB, string, error)
	// Kind names the source type ("csv", "duckdb", "sqlite", "postgres").
	Kind() string
	// String describes the source for logs and errors. Secrets are redacted.
	String() string
}

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ParseSource picks a Source implementation from the configured location.
func ParseSource(cfg Config) (Source, error) {
	loc := strings.TrimSpace(cfg.Location)
	if loc == "" {
		loc = DefaultLocation
	}

	table := cfg.Table
	if table == "" {
		table = DefaultTable
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	lower := strings.ToLower(loc)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return &postgresSource{dsn: loc, table: table}, nil
	case strings.HasPrefix(lower, "csv://"):
		return &csvSource{path: loc[len("csv://"):]}, nil
	case strings.HasPrefix(lower, "duckdb://"):
		return &duckdbSource{path: loc[len("duckdb://"):], table: table}, nil
	case strings.HasPrefix(lower, "sqlite://"):
		return &sqliteSource{path: loc[len("sqlite://"):], table: table}, nil
	}

	switch strings.ToLower(filepath.Ext(loc)) {
	case ".csv":
		return &csvSource{path: loc}, nil
	case ".duckdb", ".ddb":
		return &duckdbSource{path: loc, table: table}, nil
	case ".db", ".sqlite", ".sqlite3":
		return &sqliteSource{path: loc, table: table}, nil
	default:
		return nil, fmt.Errorf("unsupported dataset location %q (expected .csv, .duckdb, .db, .sqlite or postgres://)", loc)
	}
}

// csvSource reads a CSV file through DuckDB's read_csv_auto. Every column is
// read as text; year and value are parsed by the scanner so that numeric
// looking countries or continents stay strings.
type csvSource struct {
	path string
}

func (s *csvSource) Kind() string   { return "csv" }
func (s *csvSource) String() string { return s.path }

func (s *csvSource) Open(ctx context.Context) (*sql.DB, string, error) {
	absPath, err := statFile(s.path)
	if err != nil {
		return nil, "", err
	}

	db, err := openAndPing(ctx, "duckdb", "")
	if err != nil {
		return nil, "", err
	}

	relation := fmt.Sprintf("read_csv_auto(%s, header=true, all_varchar=true)", quoteLiteral(absPath))
	return db, relation, nil
}

// duckdbSource reads a table from a DuckDB database file.
type duckdbSource struct {
	path  string
	table string
}

func (s *duckdbSource) Kind() string   { return "duckdb" }
func (s *duckdbSource) String() string { return s.path + "#" + s.table }

func (s *duckdbSource) Open(ctx context.Context) (*sql.DB, string, error) {
	absPath, err := statFile(s.path)
	if err != nil {
		return nil, "", err
	}

	db, err := openAndPing(ctx, "duckdb", absPath+"?access_mode=READ_ONLY")
	if err != nil {
		return nil, "", err
	}
	return db, s.table, nil
}

// sqliteSource reads a table from a SQLite database file.
type sqliteSource struct {
	path  string
	table string
}

func (s *sqliteSource) Kind() string   { return "sqlite" }
func (s *sqliteSource) String() string { return s.path + "#" + s.table }

func (s *sqliteSource) Open(ctx context.Context) (*sql.DB, string, error) {
	absPath, err := statFile(s.path)
	if err != nil {
		return nil, "", err
	}

	db, err := openAndPing(ctx, "sqlite", "file:"+absPath+"?mode=ro")
	if err != nil {
		return nil, "", err
	}
	return db, s.table, nil
}

// postgresSource reads a table from PostgreSQL through pgx.
type postgresSource struct {
	dsn   string
	table string
}

func (s *postgresSource) Kind() string { return "postgres" }

func (s *postgresSource) String() string {
	u, err := url.Parse(s.dsn)
	if err != nil {
		return "postgres#" + s.table
	}
	return u.Redacted() + "#" + s.table
}

func (s *postgresSource) Open(ctx context.Context) (*sql.DB, string, error) {
	db, err := openAndPing(ctx, "pgx", s.dsn)
	if err != nil {
		return nil, "", err
	}
	return db, s.table, nil
}

func openAndPing(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", driver, err)
	}
	return db, nil
}

// statFile resolves path and checks it names a regular file.
func statFile(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}
	return absPath, nil
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// FilePath returns the local file behind src, if there is one.
func FilePath(src Source) (string, bool) {
	switch s := src.(type) {
	case *csvSource:
		return s.path, true
	case *duckdbSource:
		return s.path, true
	case *sqliteSource:
		return s.path, true
	default:
		return "", false
	}
}
