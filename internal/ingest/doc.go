// Package ingest extracts language names from the bulk inputs accepted by the
// admin endpoints: a comma-separated list and a CSV document whose header
// row names a ProgrammingLanguage column.
package ingest
