// Package bot wires the Telegram update stream to the driver registry.
//
// The package has three parts. Loop polls getUpdates, deduplicates by
// update_id and survives transient API failures. Router interprets
// operator commands, enforces authentication and per-operator ownership,
// and composes the Portuguese replies operators see. Pool runs the
// slower operations (searches, report generation) off the polling
// goroutine so a large spreadsheet upload never stalls ingestion.
package bot
