package history

import "database/sql"

// DB exposes the internal *sql.DB for test helpers in history_test.
// This file only compiles during `go test`.
func (s *Store) DB() *sql.DB {
	return s.db
}

// SetOpenDB swaps the driver opener and returns a restore func.
func SetOpenDB(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	orig := openDB
	openDB = fn
	return func() { openDB = orig }
}
