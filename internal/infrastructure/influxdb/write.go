package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteCommandMetric records the handling of one operator command.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - command: The command name without the slash (e.g., "add", "placa")
//   - outcome: The audit outcome (ok, rejeitado, negado, erro)
//   - duration: Wall time spent handling the command
func (c *Client) WriteCommandMetric(command, outcome string, duration time.Duration) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"commands",
		map[string]string{
			"command": command,
			"outcome": outcome,
		},
		map[string]interface{}{
			"duration_ms": float64(duration.Milliseconds()),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePollMetric records one completed getUpdates poll cycle.
//
// Parameters:
//   - batchSize: Number of updates returned by the fetch
//   - processed: Number of updates actually dispatched (not previously seen)
//   - lastSeenID: The advancing update id watermark
func (c *Client) WritePollMetric(batchSize, processed int, lastSeenID int64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"ingestion",
		map[string]string{},
		map[string]interface{}{
			"batch_size":   batchSize,
			"processed":    processed,
			"last_seen_id": lastSeenID,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
