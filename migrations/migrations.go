// Package migrations embeds the schema for every supported dialect and runs
// it through golang-migrate.
package migrations

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/Skryldev/jobly/db"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

func dir(d db.Dialect) string {
	if d == db.SQLite {
		return "sqlite"
	}
	return "postgres"
}

// DialectForURL picks the migration set from a database URL scheme.
func DialectForURL(databaseURL string) db.Dialect {
	if strings.HasPrefix(databaseURL, "sqlite3://") {
		return db.SQLite
	}
	return db.Postgres
}

// New returns a migrate instance reading the embedded files for the dialect
// implied by databaseURL. The caller must Close it.
func New(databaseURL string) (*migrate.Migrate, error) {
	src, err := iofs.New(files, dir(DialectForURL(databaseURL)))
	if err != nil {
		return nil, fmt.Errorf("migrations: source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("migrations: init: %w", err)
	}
	return m, nil
}

// Up applies every pending migration. ErrNoChange is not an error.
func Up(databaseURL string) error {
	m, err := New(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrations: up: %w", err)
	}
	return nil
}

// ApplySchema executes every *.up.sql file for q's dialect in version order
// on q directly. It is meant for throwaway databases such as in-memory SQLite
// in tests, where golang-migrate would open a separate connection.
func ApplySchema(ctx context.Context, q db.Querier) error {
	d := dir(q.Dialect())
	names, err := fs.Glob(files, d+"/*.up.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)
	for _, name := range names {
		body, err := files.ReadFile(name)
		if err != nil {
			return err
		}
		if _, err := q.Exec(ctx, string(body)); err != nil {
			return fmt.Errorf("migrations: %s: %w", path.Base(name), err)
		}
	}
	return nil
}
