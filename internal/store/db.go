package store

import "database/sql"

// DB is the subset of database/sql used by stores. Both *sql.DB and *sql.Tx
// satisfy it, so the engine can run multi-store operations inside a single
// transaction by constructing tx-scoped stores.
type DB interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullStr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
