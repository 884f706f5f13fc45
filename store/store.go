// Package store runs composed feed queries against SQLite or Postgres and
// serves the lookups the feed composer depends on.
package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/robertmeta/feedq/query"
	"github.com/robertmeta/feedq/store/migrations"
)

// Store manages the feed database.
type Store struct {
	db      *sql.DB
	dialect query.Dialect
}

// New opens (and migrates) a SQLite database at dbPath.
// Use ":memory:" for an in-memory database (useful for testing).
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection to ":memory:" is a separate database.
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return open(db, query.SQLite, migrations.SQLite)
}

// NewPostgres opens (and migrates) a Postgres database through the pgx
// database/sql driver.
func NewPostgres(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return open(db, query.Postgres, migrations.Postgres)
}

func open(db *sql.DB, dialect query.Dialect, driver migrations.Driver) (*Store, error) {
	if err := migrations.MigrateUp(db, driver); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &Store{db: db, dialect: dialect}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dialect reports the SQL dialect plans must be compiled to.
func (s *Store) Dialect() query.Dialect {
	return s.dialect
}

// SchemaStatus reports the applied and the latest embedded schema versions.
func (s *Store) SchemaStatus() (current, latest uint, err error) {
	driver := migrations.SQLite
	if s.dialect == query.Postgres {
		driver = migrations.Postgres
	}
	return migrations.Status(s.db, driver)
}

// rebind rewrites "?" placeholders for the store's dialect. A "?" inside a
// single-quoted literal is left alone; values are always bound as arguments,
// and identifiers must not contain "?".
func (s *Store) rebind(stmt string) string {
	if s.dialect != query.Postgres {
		return stmt
	}
	var b strings.Builder
	n := 0
	quoted := false
	for _, r := range stmt {
		if r == '\'' {
			quoted = !quoted
		}
		if r == '?' && !quoted {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// where compiles a predicate to a WHERE fragment for the store's dialect.
func (s *Store) where(p query.Predicate) (string, []any, error) {
	return query.CompilePredicate(p, s.dialect)
}

// boolInt stores booleans as 0/1 so the schema is portable.
func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
