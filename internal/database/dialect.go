package database

import (
	"strings"

	"github.com/jmoiron/sqlx"
)

// Dialect identifies the SQL flavour of a connection.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// DialectOf reports the dialect of an open connection from its driver name.
func DialectOf(db *sqlx.DB) Dialect {
	return DialectFor(db.DriverName())
}

// DialectFor maps a database/sql driver name to a dialect.
func DialectFor(driver string) Dialect {
	switch driver {
	case "postgres", "pgx":
		return Postgres
	default:
		return SQLite
	}
}

// likeOperator is the case-insensitive pattern match operator.
// SQLite LIKE is already case-insensitive for ASCII.
func likeOperator(d Dialect) string {
	if d == Postgres {
		return "ILIKE"
	}
	return "LIKE"
}

// escapeLike escapes the LIKE wildcards in a user supplied fragment.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}

// schemaReplacer rewrites the SQLite-flavoured DDL used by migrations into PostgreSQL.
var schemaReplacer = strings.NewReplacer(
	"INTEGER PRIMARY KEY AUTOINCREMENT", "BIGSERIAL PRIMARY KEY",
	"INTEGER REFERENCES", "BIGINT REFERENCES",
	"INTEGER NOT NULL REFERENCES", "BIGINT NOT NULL REFERENCES",
	"BLOB", "BYTEA",
)

// SchemaSQL adapts DDL written for SQLite to the given dialect.
func SchemaSQL(d Dialect, ddl string) string {
	if d == Postgres {
		return schemaReplacer.Replace(ddl)
	}
	return ddl
}
