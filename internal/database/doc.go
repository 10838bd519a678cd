// Package database provides a SQLite-backed state.Store.
//
// The current session state lives in a single-row table; every write moves
// the previous document into a bounded history table so earlier captures can
// be inspected or restored by hand. The database uses WAL mode and creates its
// schema on open.
package database
