// Package stores persists the run history in SQLite. The schema is managed
// with embedded golang-migrate migrations and the database is opened with
// the pure Go modernc.org/sqlite driver, so no cgo toolchain is needed.
package stores
