package database

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
)

func TestDialectFor(t *testing.T) {
	assert.Equal(t, Postgres, DialectFor("postgres"))
	assert.Equal(t, Postgres, DialectFor("pgx"))
	assert.Equal(t, SQLite, DialectFor("sqlite3"))
	assert.Equal(t, SQLite, DialectFor(""))
}

func TestSchemaSQL(t *testing.T) {
	ddl := `CREATE TABLE wordforms (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		lemma_id INTEGER NOT NULL REFERENCES lemmas(id) ON DELETE CASCADE,
		source_id INTEGER REFERENCES sources(id),
		position INTEGER NOT NULL,
		stats BLOB
	)`

	assert.Equal(t, ddl, SchemaSQL(SQLite, ddl), "SQLite DDL is used as written")

	want := `CREATE TABLE wordforms (
		id BIGSERIAL PRIMARY KEY,
		lemma_id BIGINT NOT NULL REFERENCES lemmas(id) ON DELETE CASCADE,
		source_id BIGINT REFERENCES sources(id),
		position INTEGER NOT NULL,
		stats BYTEA
	)`
	assert.Equal(t, want, SchemaSQL(Postgres, ddl))
}

func TestLikeOperatorAndEscaping(t *testing.T) {
	assert.Equal(t, "ILIKE", likeOperator(Postgres))
	assert.Equal(t, "LIKE", likeOperator(SQLite))
	assert.Equal(t, `50\% off\_now\\`, escapeLike(`50% off_now\`))
}

func TestRebindForPostgres(t *testing.T) {
	query := "SELECT id FROM lemmas WHERE language = ? AND slug = ?"
	assert.Equal(t, "SELECT id FROM lemmas WHERE language = $1 AND slug = $2",
		sqlx.Rebind(sqlx.BindType("postgres"), query))
	assert.Equal(t, query, sqlx.Rebind(sqlx.BindType("sqlite3"), query))
}
