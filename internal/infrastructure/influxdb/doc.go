// Package influxdb provides optional command telemetry.
//
// When enabled in configuration, the bot records per-command handling
// metrics and polling statistics to an InfluxDB v2 bucket. Writes are
// batched and asynchronous; a failed or disabled telemetry backend never
// affects command handling.
package influxdb
