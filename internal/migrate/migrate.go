// Package migrate applies ordered, reversible schema migrations to a live
// SQLite or PostgreSQL database.
//
// Every migration runs in its own transaction together with the row that
// records it in the schema_migrations table, so a schema change and its
// bookkeeping either both commit or both roll back. A failing migration
// leaves the ones applied before it in place.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/example/lemmabank/internal/database"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const trackingTable = "schema_migrations"

var (
	// ErrNoChange is returned when there is nothing to apply or revert.
	ErrNoChange = errors.New("no change")
	// ErrUnknownVersion is returned for versions that are not registered.
	ErrUnknownVersion = errors.New("unknown migration version")
	// ErrIrreversible is returned when reverting a migration without a Down step.
	ErrIrreversible = errors.New("migration is irreversible")
)

// Func is one direction of a migration.
type Func func(ctx context.Context, tx *Tx) error

// Migration is a single versioned schema change.
type Migration struct {
	Version int64
	Name    string
	Up      Func
	Down    Func
	// NoForeignKeys switches SQLite foreign key enforcement off while the
	// migration runs, as required for table rebuilds. The foreign keys are
	// checked before commit.
	NoForeignKeys bool
}

// Status describes one registered migration.
type Status struct {
	Version   int64
	Name      string
	Applied   bool
	AppliedAt *time.Time
}

// Migrator applies a fixed set of migrations to a database.
type Migrator struct {
	db         *sqlx.DB
	dialect    database.Dialect
	migrations []Migration
}

// New validates and orders the migrations.
func New(db *sqlx.DB, migrations ...Migration) (*Migrator, error) {
	seen := make(map[int64]string, len(migrations))
	sorted := make([]Migration, 0, len(migrations))
	for _, m := range migrations {
		if m.Version <= 0 {
			return nil, fmt.Errorf("migration %q: version must be positive", m.Name)
		}
		if m.Up == nil {
			return nil, fmt.Errorf("migration %d %q: missing up step", m.Version, m.Name)
		}
		if other, ok := seen[m.Version]; ok {
			return nil, fmt.Errorf("migrations %q and %q share version %d", other, m.Name, m.Version)
		}
		seen[m.Version] = m.Name
		sorted = append(sorted, m)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })

	return &Migrator{
		db:         db,
		dialect:    database.DialectOf(db),
		migrations: sorted,
	}, nil
}

// Up applies every pending migration.
func (m *Migrator) Up(ctx context.Context) error {
	if len(m.migrations) == 0 {
		return ErrNoChange
	}
	return m.UpTo(ctx, m.migrations[len(m.migrations)-1].Version)
}

// UpTo applies pending migrations with a version up to and including target.
func (m *Migrator) UpTo(ctx context.Context, target int64) error {
	if _, ok := m.find(target); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownVersion, target)
	}

	applied, err := m.applied(ctx)
	if err != nil {
		return err
	}
	for version := range applied {
		if _, ok := m.find(version); !ok {
			return fmt.Errorf("%w: database is at version %d which this build does not know", ErrUnknownVersion, version)
		}
	}

	count := 0
	for _, mig := range m.migrations {
		if mig.Version > target {
			break
		}
		if _, done := applied[mig.Version]; done {
			continue
		}
		if err := m.run(ctx, mig, true); err != nil {
			return err
		}
		count++
	}
	if count == 0 {
		return ErrNoChange
	}
	return nil
}

// Down reverts the most recently applied migrations, newest first.
func (m *Migrator) Down(ctx context.Context, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", steps)
	}

	applied, err := m.applied(ctx)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		return ErrNoChange
	}

	versions := make([]int64, 0, len(applied))
	for v := range applied {
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i] > versions[j] })
	if steps < len(versions) {
		versions = versions[:steps]
	}

	// Refuse up front so that a partial revert never happens.
	plan := make([]Migration, 0, len(versions))
	for _, v := range versions {
		mig, ok := m.find(v)
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownVersion, v)
		}
		if mig.Down == nil {
			return fmt.Errorf("%w: %d %s", ErrIrreversible, mig.Version, mig.Name)
		}
		plan = append(plan, mig)
	}

	for _, mig := range plan {
		if err := m.run(ctx, mig, false); err != nil {
			return err
		}
	}
	return nil
}

// Version returns the highest applied version, or 0 for an empty database.
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	applied, err := m.applied(ctx)
	if err != nil {
		return 0, err
	}
	var max int64
	for v := range applied {
		if v > max {
			max = v
		}
	}
	return max, nil
}

// Status lists every registered migration with its applied state.
func (m *Migrator) Status(ctx context.Context) ([]Status, error) {
	applied, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]Status, 0, len(m.migrations))
	for _, mig := range m.migrations {
		st := Status{Version: mig.Version, Name: mig.Name}
		if at, ok := applied[mig.Version]; ok {
			at := at
			st.Applied = true
			st.AppliedAt = &at
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}

func (m *Migrator) find(version int64) (Migration, bool) {
	for _, mig := range m.migrations {
		if mig.Version == version {
			return mig, true
		}
	}
	return Migration{}, false
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS `+trackingTable+` (
			version BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create %s table: %w", trackingTable, err)
	}
	return nil
}

func (m *Migrator) applied(ctx context.Context) (map[int64]time.Time, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}

	var rows []struct {
		Version   int64     `db:"version"`
		AppliedAt time.Time `db:"applied_at"`
	}
	if err := m.db.SelectContext(ctx, &rows, "SELECT version, applied_at FROM "+trackingTable); err != nil {
		return nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}

	applied := make(map[int64]time.Time, len(rows))
	for _, r := range rows {
		applied[r.Version] = r.AppliedAt
	}
	return applied, nil
}

// run executes one direction of a migration on a dedicated connection.
func (m *Migrator) run(ctx context.Context, mig Migration, up bool) (err error) {
	direction := "down"
	step := mig.Down
	if up {
		direction = "up"
		step = mig.Up
	}
	started := time.Now()

	conn, err := m.db.Connx(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Close()

	// The pragma is a no-op inside a transaction, so it is set on the
	// connection before BEGIN and restored afterwards.
	relaxFK := mig.NoForeignKeys && m.dialect == database.SQLite
	if relaxFK {
		if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
			return fmt.Errorf("failed to disable foreign keys: %w", err)
		}
		defer func() {
			if _, restoreErr := conn.ExecContext(context.Background(), "PRAGMA foreign_keys = ON"); restoreErr != nil && err == nil {
				err = fmt.Errorf("failed to re-enable foreign keys: %w", restoreErr)
			}
		}()
	}

	sqlTx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration %d: %w", mig.Version, err)
	}
	defer func() {
		if err != nil {
			_ = sqlTx.Rollback()
		}
	}()

	tx := &Tx{tx: sqlTx, dialect: m.dialect}
	if err = step(ctx, tx); err != nil {
		return fmt.Errorf("migration %d %s (%s) failed: %w", mig.Version, mig.Name, direction, err)
	}

	if relaxFK {
		if err = checkForeignKeys(ctx, tx); err != nil {
			return fmt.Errorf("migration %d %s (%s) failed: %w", mig.Version, mig.Name, direction, err)
		}
	}

	if up {
		err = tx.Exec(ctx, "INSERT INTO "+trackingTable+" (version, name, applied_at) VALUES (?, ?, ?)",
			mig.Version, mig.Name, time.Now().UTC())
	} else {
		err = tx.Exec(ctx, "DELETE FROM "+trackingTable+" WHERE version = ?", mig.Version)
	}
	if err != nil {
		return fmt.Errorf("failed to record migration %d: %w", mig.Version, err)
	}

	if err = sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", mig.Version, err)
	}

	msg := "migration applied"
	if !up {
		msg = "migration reverted"
	}
	log.Info().
		Int64("version", mig.Version).
		Str("name", mig.Name).
		Dur("took", time.Since(started)).
		Msg(msg)
	return nil
}

func checkForeignKeys(ctx context.Context, tx *Tx) error {
	rows, err := tx.tx.QueryxContext(ctx, "PRAGMA foreign_key_check")
	if err != nil {
		return fmt.Errorf("foreign key check: %w", err)
	}
	defer rows.Close()

	violations := 0
	var first string
	for rows.Next() {
		cols, err := rows.SliceScan()
		if err != nil {
			return fmt.Errorf("foreign key check: %w", err)
		}
		if violations == 0 && len(cols) > 0 {
			switch v := cols[0].(type) {
			case []byte:
				first = string(v)
			default:
				first = fmt.Sprint(v)
			}
		}
		violations++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("foreign key check: %w", err)
	}
	if violations > 0 {
		return fmt.Errorf("%d foreign key violations (first in table %s)", violations, first)
	}
	return nil
}
