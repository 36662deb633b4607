package migrate

import (
	"context"
	"fmt"

	"github.com/example/lemmabank/internal/database"
	"github.com/jmoiron/sqlx"
)

// Tx is the transaction a migration step runs in. Queries are written with
// ? placeholders and rebound for the connection's dialect.
type Tx struct {
	tx      *sqlx.Tx
	dialect database.Dialect
}

// Dialect reports the dialect of the database being migrated.
func (t *Tx) Dialect() database.Dialect {
	return t.dialect
}

// Exec runs a statement.
func (t *Tx) Exec(ctx context.Context, query string, args ...any) error {
	_, err := t.tx.ExecContext(ctx, t.tx.Rebind(query), args...)
	return err
}

// Schema runs SQLite-flavoured DDL, rewritten for PostgreSQL when needed.
// Several statements may be separated by semicolons.
func (t *Tx) Schema(ctx context.Context, ddl string) error {
	_, err := t.tx.ExecContext(ctx, database.SchemaSQL(t.dialect, ddl))
	return err
}

// ExecDialect runs the statement matching the current dialect.
func (t *Tx) ExecDialect(ctx context.Context, sqlite, postgres string) error {
	query := sqlite
	if t.dialect == database.Postgres {
		query = postgres
	}
	if query == "" {
		return nil
	}
	_, err := t.tx.ExecContext(ctx, query)
	return err
}

// Select runs a query and scans all rows into dest.
func (t *Tx) Select(ctx context.Context, dest any, query string, args ...any) error {
	return t.tx.SelectContext(ctx, dest, t.tx.Rebind(query), args...)
}

// Get runs a query and scans the single resulting row into dest.
func (t *Tx) Get(ctx context.Context, dest any, query string, args ...any) error {
	return t.tx.GetContext(ctx, dest, t.tx.Rebind(query), args...)
}

// HasColumn reports whether table has a column with the given name.
func (t *Tx) HasColumn(ctx context.Context, table, column string) (bool, error) {
	var count int
	var err error
	if t.dialect == database.Postgres {
		err = t.Get(ctx, &count, `
			SELECT COUNT(*) FROM information_schema.columns
			WHERE table_schema = current_schema() AND table_name = ? AND column_name = ?`,
			table, column)
	} else {
		err = t.Get(ctx, &count, "SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?", table, column)
	}
	if err != nil {
		return false, fmt.Errorf("failed to inspect %s.%s: %w", table, column, err)
	}
	return count > 0, nil
}
