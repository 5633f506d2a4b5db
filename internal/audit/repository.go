// Package audit records operator commands and driver lifecycle transitions
// in the audit_log table. The registry itself is process-lifetime only;
// the audit trail is what survives a restart.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entry represents a single audit trail record.
type Entry struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	DriverKey  string    `json:"driver_key,omitempty"`
	OperatorID string    `json:"operator_id,omitempty"`
	Outcome    string    `json:"outcome"`
	Details    string    `json:"details,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Outcomes recorded per command.
const (
	OutcomeOK           = "ok"
	OutcomeRejected     = "rejeitado"
	OutcomeUnauthorized = "negado"
	OutcomeError        = "erro"
)

// Filter controls which audit entries to return.
type Filter struct {
	Action     string // optional: filter by command action (login, add, remove, ...)
	DriverKey  string // optional: filter by driver key
	OperatorID string // optional: filter by operator
	Limit      int    // default 50, max 200
	Offset     int    // pagination offset
}

// Query result page sizes.
const (
	defaultLimit = 50
	maxLimit     = 200
)

// ListResult contains the paginated audit results.
type ListResult struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

// Repository defines the interface for audit trail operations.
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	List(ctx context.Context, filter Filter) (*ListResult, error)
}

// SQLiteRepository stores audit entries in SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new audit repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a new audit entry. The ID and CreatedAt are generated if empty.
func (r *SQLiteRepository) Create(ctx context.Context, entry *Entry) error {
	if entry.ID == "" {
		entry.ID = "aud-" + uuid.NewString()[:8]
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (id, action, driver_key, operator_id, outcome, details, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Action,
		nullableString(entry.DriverKey), nullableString(entry.OperatorID),
		entry.Outcome, nullableString(entry.Details),
		entry.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}

	return nil
}

// List returns audit entries matching the filter, most recent first.
func (r *SQLiteRepository) List(ctx context.Context, filter Filter) (*ListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultLimit
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	var conditions []string
	var args []any

	if filter.Action != "" {
		conditions = append(conditions, "action = ?")
		args = append(args, filter.Action)
	}
	if filter.DriverKey != "" {
		conditions = append(conditions, "driver_key = ?")
		args = append(args, filter.DriverKey)
	}
	if filter.OperatorID != "" {
		conditions = append(conditions, "operator_id = ?")
		args = append(args, filter.OperatorID)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	// WHERE clause is built from parameterised conditions (? placeholders),
	// never from user input directly.
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM audit_log %s", where) //nolint:gosec // parameterised
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting audit entries: %w", err)
	}

	query := fmt.Sprintf( //nolint:gosec // parameterised
		"SELECT id, action, driver_key, operator_id, outcome, details, created_at FROM audit_log %s ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		where,
	)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var driverKey, operatorID, details sql.NullString
		var createdAt string

		if err := rows.Scan(&entry.ID, &entry.Action,
			&driverKey, &operatorID, &entry.Outcome, &details, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}

		if driverKey.Valid {
			entry.DriverKey = driverKey.String
		}
		if operatorID.Valid {
			entry.OperatorID = operatorID.String
		}
		if details.Valid {
			entry.Details = details.String
		}

		t, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing audit timestamp %q: %w", createdAt, err)
		}
		entry.CreatedAt = t

		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit entries: %w", err)
	}

	if entries == nil {
		entries = []Entry{}
	}

	return &ListResult{
		Entries: entries,
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	}, nil
}

// nullableString returns nil for empty strings, so empty values land as
// NULL in nullable TEXT columns.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
