// Package sqlstore provides the database/sql implementation of the
// store.CardStore interface. The same queries run against PostgreSQL
// (through the pgx stdlib driver) and SQLite (through the pure-Go modernc
// driver); placeholders are written as '?' and rebound per dialect. Schema
// changes are embedded goose migrations.
package sqlstore
