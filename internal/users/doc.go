// Package users holds the user and order model, its SQL store and the
// query-caching service built on top of it.
//
// The store speaks to SQLite (modernc.org/sqlite, the default, in memory),
// PostgreSQL (pgx stdlib) or MySQL through database/sql. The service groups
// bulk inserts in a single transaction and keeps the active-user listing in
// a cache with an absolute expiration.
package users
