// Package database manages the SQLite connection backing the audit trail.
//
// The bot's registry is deliberately process-lifetime only; the database
// holds durable, append-mostly data (audit log entries) plus the schema
// migration ledger. Migrations are embedded into the binary by the
// top-level migrations package.
package database
