// driver.go defines the pluggable driver layer. Each adapter implements
// Driver and registers itself so OpenWithDriver can build the DSN from
// structured options.

package db

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ─────────────────────────────────────────────────────────────────────────────
// Driver interface
// ─────────────────────────────────────────────────────────────────────────────

// Driver encapsulates database-specific behaviour:
//   - building a DSN from structured options
//   - registering the database/sql driver (idempotent)
//   - providing a driver-specific ErrorMapper
//
// Implement Driver to add support for a new database without modifying the
// core package.
type Driver interface {
	// Name returns the name passed to sql.Register, e.g. "pgx", "mysql".
	Name() string

	// DSN converts structured options into a driver DSN string.
	DSN(opts DriverOptions) (string, error)

	// ErrorMapper returns a mapper tuned to this driver's error types.
	ErrorMapper() ErrorMapper

	// Register ensures the driver is registered with database/sql.
	// Implementations must be idempotent (safe to call multiple times).
	Register()
}

// DriverOptions carries the most common connection parameters in a structured,
// driver-agnostic form. DSN() converts them to the driver's native format.
type DriverOptions struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string // "disable", "require", "verify-full", etc.
	// Extra holds driver-specific key/value parameters.
	Extra map[string]string
}

// ─────────────────────────────────────────────────────────────────────────────
// Driver registry
// ─────────────────────────────────────────────────────────────────────────────

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Driver)
)

// RegisterDriver adds a Driver to the global registry.
// Panics if a driver with the same name is already registered (use ReplaceDriver
// to override).
func RegisterDriver(d Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if _, ok := drivers[d.Name()]; ok {
		panic(fmt.Sprintf("jobly/db: driver %q already registered", d.Name()))
	}
	drivers[d.Name()] = d
}

// ReplaceDriver upserts a driver in the registry (no panic on collision).
func ReplaceDriver(d Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	drivers[d.Name()] = d
}

// LookupDriver returns the registered Driver by name or an error.
func LookupDriver(name string) (Driver, error) {
	driversMu.RLock()
	defer driversMu.RUnlock()
	d, ok := drivers[name]
	if !ok {
		return nil, fmt.Errorf("jobly/db: driver %q not registered", name)
	}
	return d, nil
}

// OpenWithDriver opens a DB using a registered Driver and structured options,
// removing the need for manual DSN construction.
//
//	database, err := db.OpenWithDriver("pgx", db.DriverOptions{
//	    Host: "localhost", Port: 5432,
//	    User: "jobly", Password: "secret", Database: "jobly",
//	}, db.Config{MaxOpenConns: 25})
func OpenWithDriver(driverName string, driverOpts DriverOptions, cfg Config) (*DB, error) {
	drv, err := LookupDriver(driverName)
	if err != nil {
		return nil, err
	}
	drv.Register()

	dsn, err := drv.DSN(driverOpts)
	if err != nil {
		return nil, fmt.Errorf("jobly/db: DSN construction failed: %w", err)
	}

	cfg.DriverName = drv.Name()
	cfg.DSN = dsn

	d, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	d.SetErrorMapper(ChainMapper(drv.ErrorMapper(), DefaultErrorMapper()))
	return d, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// PostgreSQL driver adapter (lib/pq)
// ─────────────────────────────────────────────────────────────────────────────

// PostgresDriver is the built-in lib/pq adapter.
// Import _ "github.com/lib/pq" alongside this to activate.
type PostgresDriver struct{}

func (PostgresDriver) Name() string { return "postgres" }

func (PostgresDriver) DSN(o DriverOptions) (string, error) {
	if o.Host == "" || o.Database == "" {
		return "", fmt.Errorf("postgres driver: Host and Database are required")
	}
	port := o.Port
	if port == 0 {
		port = 5432
	}
	sslMode := o.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		o.Host, port, o.User, o.Password, o.Database, sslMode,
	)
	for _, k := range sortedKeys(o.Extra) {
		dsn += fmt.Sprintf(" %s=%s", k, o.Extra[k])
	}
	return dsn, nil
}

func (PostgresDriver) ErrorMapper() ErrorMapper { return driverMapper(mapPQError) }
func (PostgresDriver) Register()                { /* lib/pq self-registers via its init() */ }

// ─────────────────────────────────────────────────────────────────────────────
// PostgreSQL driver adapter (pgx stdlib)
// ─────────────────────────────────────────────────────────────────────────────

// PgxDriver is the jackc/pgx stdlib adapter and the default for the server.
// Import _ "github.com/jackc/pgx/v5/stdlib" alongside this to activate.
type PgxDriver struct{}

func (PgxDriver) Name() string { return "pgx" }

// DSN renders the same keyword/value form lib/pq accepts; pgx parses it too.
func (PgxDriver) DSN(o DriverOptions) (string, error) { return PostgresDriver{}.DSN(o) }

func (PgxDriver) ErrorMapper() ErrorMapper { return driverMapper(mapPGXError) }
func (PgxDriver) Register()                { /* pgx/v5/stdlib self-registers */ }

// ─────────────────────────────────────────────────────────────────────────────
// SQLite driver adapter
// ─────────────────────────────────────────────────────────────────────────────

// SQLiteDriver is the built-in mattn/go-sqlite3 adapter.
type SQLiteDriver struct{}

func (SQLiteDriver) Name() string { return "sqlite3" }

func (SQLiteDriver) DSN(o DriverOptions) (string, error) {
	if o.Database == "" {
		return "", fmt.Errorf("sqlite3 driver: Database (file path) is required")
	}
	if len(o.Extra) == 0 {
		return o.Database, nil
	}
	params := make([]string, 0, len(o.Extra))
	for _, k := range sortedKeys(o.Extra) {
		params = append(params, k+"="+o.Extra[k])
	}
	return o.Database + "?" + strings.Join(params, "&"), nil
}

func (SQLiteDriver) ErrorMapper() ErrorMapper { return driverMapper(mapSQLiteError) }
func (SQLiteDriver) Register()                { /* mattn/go-sqlite3 self-registers */ }

// ─────────────────────────────────────────────────────────────────────────────
// Auto-register built-in drivers at init time
// ─────────────────────────────────────────────────────────────────────────────

func init() {
	// The sql.Register calls happen in the driver packages' own init()
	// functions when they are blank-imported.
	safeRegister(PgxDriver{})
	safeRegister(PostgresDriver{})
	safeRegister(SQLiteDriver{})
}

func safeRegister(d Driver) {
	defer func() { recover() }() // swallow duplicate registration panics
	RegisterDriver(d)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
