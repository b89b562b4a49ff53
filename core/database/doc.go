// Package database manages the connection to the target Postgres store.
//
// It provides GORM-based connectivity with sensible pool settings, a ping
// verification on startup, and schema inspection helpers used to detect a
// store whose schema lags the source data.
//
// # Connection
//
// Connect builds a keyword/value DSN from Config, opens the connection with a
// silent GORM logger and verifies it with a context-bounded ping. A failed
// connection is returned as an error; callers decide whether the connection
// is required or optional for their command.
//
// # Schema Inspection
//
// MissingColumns compares a wanted column list against the live table
// definition via the GORM migrator. The sync engine uses this to keep an
// upsert payload compatible with an older schema rather than aborting.
package database
