package driver

import "time"

// Record represents a registered driver.
// Immutable once created; lifecycle transitions are recorded separately
// as LifecycleEntry values.
type Record struct {
	// Key is the fixed-format LH business identifier (13 characters).
	Key string `json:"lh"`

	// Name is the driver's full name.
	Name string `json:"nome"`

	// Plate is the vehicle plate. When a driver operates more than one
	// vehicle the field holds a comma-separated list of plates.
	Plate string `json:"placas"`
}

// Status is the lifecycle status of a driver key.
type Status string

const (
	// StatusActive marks a key with no terminal lifecycle entry.
	StatusActive Status = "Ativo"

	// StatusCompleted marks a key closed out as completed.
	StatusCompleted Status = "Concluido"

	// StatusCancelled marks a key closed out as cancelled.
	StatusCancelled Status = "Cancelado"
)

// LifecycleEntry records a driver's transition to a terminal state.
// A key has at most one entry; once present the key is closed and is
// excluded from the active set in reporting, though the record remains
// addressable for audit.
type LifecycleEntry struct {
	Key       string `json:"lh"`
	Record    Record `json:"motorista"`
	Status    Status `json:"status"`
	Timestamp string `json:"data"`
	Reason    string `json:"motivo"`
}

// ReportRow is one line of the closing report. Derived on demand from the
// registry; never stored.
type ReportRow struct {
	Key       string
	Name      string
	Plate     string
	Status    Status
	Timestamp string
}

// timestampFormat is the dd/mm/yyyy hh:mm layout used in replies and reports.
const timestampFormat = "02/01/2006 15:04"

// FormatTimestamp renders a time in the report timestamp layout.
func FormatTimestamp(t time.Time) string {
	return t.Format(timestampFormat)
}
