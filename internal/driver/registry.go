package driver

import (
	"strings"
	"sync"
	"time"
)

// Registry holds the in-memory driver pool and its lifecycle state.
//
// Two maps back the registry: active records keyed by LH, and lifecycle
// entries for keys closed out as completed or cancelled. Closing a key via
// MarkCompleted/MarkCancelled does not remove the record from the active
// map, so closed keys stay addressable by Search; the report partitions on
// the lifecycle map so no key is ever counted twice.
//
// All public methods are thread-safe; a single mutex covers both maps.
// State is process-lifetime only, there is no persistence.
type Registry struct {
	mu     sync.RWMutex
	active map[string]Record
	closed map[string]LifecycleEntry

	// order preserves insertion order so search and report results are
	// deterministic within a process run.
	order       []string
	closedOrder []string

	now func() time.Time
}

// NewRegistry creates an empty driver registry.
func NewRegistry() *Registry {
	return &Registry{
		active: make(map[string]Record),
		closed: make(map[string]LifecycleEntry),
		now:    time.Now,
	}
}

// Plate and key lengths accepted by Search.
const (
	plateLength = 7
	keyLength   = 13
)

// Add parses a raw entry and registers a new driver.
//
// The input is whitespace-tokenized: the first token is the LH key, the
// last token is the plate, and everything in between (joined with single
// spaces) is the name. Inputs without at least one name token fail with
// ErrMalformedEntry.
//
// Duplicate keys are never overwritten: if the key is already registered,
// active or closed, the existing record is returned with ErrDriverExists
// and no state changes.
func (r *Registry) Add(raw string) (*Record, error) {
	tokens := strings.Fields(raw)
	if len(tokens) < 3 {
		return nil, ErrMalformedEntry
	}

	rec := Record{
		Key:   tokens[0],
		Name:  strings.Join(tokens[1:len(tokens)-1], " "),
		Plate: tokens[len(tokens)-1],
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.active[rec.Key]; ok {
		return &existing, ErrDriverExists
	}
	if entry, ok := r.closed[rec.Key]; ok {
		existing := entry.Record
		return &existing, ErrDriverExists
	}

	r.active[rec.Key] = rec
	r.order = append(r.order, rec.Key)
	return &rec, nil
}

// Search performs a point lookup over the registry.
//
// Dispatch is by query length: 7 characters searches by plate, 13 by key,
// both case-insensitive. Any other length returns ErrInvalidQueryLength.
// A stored plate field longer than 7 characters is treated as a
// comma-separated multi-plate list and matched by membership.
//
// At most one record is returned (first found in insertion order). Keys
// already closed remain searchable; closure excludes them from reporting,
// not from lookup.
func (r *Registry) Search(query string) (*Record, error) {
	q := strings.ToLower(strings.TrimSpace(query))

	r.mu.RLock()
	defer r.mu.RUnlock()

	switch len(q) {
	case plateLength:
		for _, key := range r.order {
			rec, ok := r.active[key]
			if !ok {
				continue
			}
			if matchPlate(rec.Plate, q) {
				found := rec
				return &found, nil
			}
		}
	case keyLength:
		for _, key := range r.order {
			rec, ok := r.active[key]
			if !ok {
				continue
			}
			if strings.ToLower(rec.Key) == q {
				found := rec
				return &found, nil
			}
		}
	default:
		return nil, ErrInvalidQueryLength
	}

	return nil, ErrDriverNotFound
}

// matchPlate reports whether a stored plate field matches a lowercased
// 7-character query. Fields longer than 7 characters are comma-split into
// individual plates; anything else falls back to exact comparison.
func matchPlate(stored, query string) bool {
	plate := strings.ToLower(stored)
	if len(plate) > plateLength {
		for _, p := range strings.Split(plate, ",") {
			if strings.TrimSpace(p) == query {
				return true
			}
		}
		return false
	}
	return plate == query
}

// Remove closes out an active key as cancelled with reason "removido".
//
// The record moves from the active map to the lifecycle map. Keys that are
// unknown, or already in a terminal state, return ErrDriverNotFound; a
// terminal state is never re-transitioned.
func (r *Registry) Remove(key string) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.closed[key]; ok {
		return nil, ErrDriverNotFound
	}
	rec, ok := r.active[key]
	if !ok {
		return nil, ErrDriverNotFound
	}

	delete(r.active, key)
	r.closeLocked(key, rec, StatusCancelled, "removido")
	return &rec, nil
}

// MarkCompleted closes out an active key as completed.
//
// The record stays in the active map and remains searchable, but reporting
// treats the key as closed from this point on. Keys already closed return
// ErrDriverNotFound.
func (r *Registry) MarkCompleted(key string) (*Record, error) {
	return r.mark(key, StatusCompleted, "concluído")
}

// MarkCancelled closes out an active key as cancelled.
// Same contract as MarkCompleted.
func (r *Registry) MarkCancelled(key string) (*Record, error) {
	return r.mark(key, StatusCancelled, "cancelado")
}

func (r *Registry) mark(key string, status Status, reason string) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.closed[key]; ok {
		return nil, ErrDriverNotFound
	}
	rec, ok := r.active[key]
	if !ok {
		return nil, ErrDriverNotFound
	}

	r.closeLocked(key, rec, status, reason)
	return &rec, nil
}

// closeLocked writes the lifecycle entry for a key. Caller holds the lock.
func (r *Registry) closeLocked(key string, rec Record, status Status, reason string) {
	r.closed[key] = LifecycleEntry{
		Key:       key,
		Record:    rec,
		Status:    status,
		Timestamp: FormatTimestamp(r.now()),
		Reason:    reason,
	}
	r.closedOrder = append(r.closedOrder, key)
}

// Report produces the closing report rows.
//
// The rows partition all known keys: every active key without a lifecycle
// entry appears once as Ativo with the current timestamp, and every closed
// key appears once with its stored status and timestamp. No key appears
// twice.
func (r *Registry) Report() []ReportRow {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := FormatTimestamp(r.now())
	rows := make([]ReportRow, 0, len(r.active)+len(r.closed))

	for _, key := range r.order {
		rec, ok := r.active[key]
		if !ok {
			continue
		}
		if _, isClosed := r.closed[key]; isClosed {
			continue
		}
		rows = append(rows, ReportRow{
			Key:       rec.Key,
			Name:      rec.Name,
			Plate:     rec.Plate,
			Status:    StatusActive,
			Timestamp: now,
		})
	}

	for _, key := range r.closedOrder {
		entry, ok := r.closed[key]
		if !ok {
			continue
		}
		rows = append(rows, ReportRow{
			Key:       entry.Key,
			Name:      entry.Record.Name,
			Plate:     entry.Record.Plate,
			Status:    entry.Status,
			Timestamp: entry.Timestamp,
		})
	}

	return rows
}

// Counts returns the number of active (not closed) and closed keys.
// Used by the status API.
func (r *Registry) Counts() (active, closed int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for key := range r.active {
		if _, isClosed := r.closed[key]; !isClosed {
			active++
		}
	}
	return active, len(r.closed)
}
