package sqliteutil

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// OpenDB opens a sqlite database at the given path and applies the
// schema. the schema must be idempotent (CREATE TABLE IF NOT EXISTS).
func OpenDB(schema, path string) (*sql.DB, error) {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	_, err = database.Exec(schema)
	if err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}
