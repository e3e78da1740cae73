package db

import "github.com/jmoiron/sqlx"

// DBProvider is implemented by the SQL connection clients. SQLite, Postgres and
// Supabase handles can be used interchangeably by the catalog.
type DBProvider interface {
	DB() *sqlx.DB
}

var (
	_ DBProvider = (*SQLiteClient)(nil)
	_ DBProvider = (*PostgresClient)(nil)
	_ DBProvider = (*SupabaseClient)(nil)
)
