package db

// Dialect captures the few spots where the supported stores disagree on SQL.
// Everything else (positional $N placeholders, RETURNING, double-quoted
// identifiers) is shared by Postgres and SQLite.
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

// DialectFor maps a database/sql driver name to its dialect.
// Unknown names are treated as Postgres.
func DialectFor(driverName string) Dialect {
	if driverName == "sqlite3" {
		return SQLite
	}
	return Postgres
}

// ILike returns the case-insensitive pattern match operator.
// SQLite's LIKE is already case-insensitive for ASCII.
func (d Dialect) ILike() string {
	if d == SQLite {
		return "LIKE"
	}
	return "ILIKE"
}

func (d Dialect) String() string {
	if d == SQLite {
		return "sqlite"
	}
	return "postgres"
}
