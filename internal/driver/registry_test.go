package driver

import (
	"errors"
	"testing"
	"time"
)

func newTestRegistry() *Registry {
	r := NewRegistry()
	r.now = func() time.Time {
		return time.Date(2026, 8, 28, 14, 30, 0, 0, time.UTC)
	}
	return r
}

func TestAdd_ParsesKeyNamePlate(t *testing.T) {
	r := newTestRegistry()

	rec, err := r.Add("LH12345678901 Joao da Silva ABC1234")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if rec.Key != "LH12345678901" {
		t.Errorf("Key = %q, want %q", rec.Key, "LH12345678901")
	}
	if rec.Name != "Joao da Silva" {
		t.Errorf("Name = %q, want %q", rec.Name, "Joao da Silva")
	}
	if rec.Plate != "ABC1234" {
		t.Errorf("Plate = %q, want %q", rec.Plate, "ABC1234")
	}
}

func TestAdd_Malformed(t *testing.T) {
	r := newTestRegistry()

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"only key", "LH12345678901"},
		{"no name tokens", "LH12345678901 ABC1234"},
		{"whitespace only", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.Add(tt.input); !errors.Is(err, ErrMalformedEntry) {
				t.Errorf("Add(%q) error = %v, want ErrMalformedEntry", tt.input, err)
			}
		})
	}
}

func TestAdd_DuplicateKeepsOriginal(t *testing.T) {
	r := newTestRegistry()

	if _, err := r.Add("LH12345678901 Joao ABC1234"); err != nil {
		t.Fatalf("first Add() error = %v", err)
	}

	existing, err := r.Add("LH12345678901 Maria XYZ9999")
	if !errors.Is(err, ErrDriverExists) {
		t.Fatalf("second Add() error = %v, want ErrDriverExists", err)
	}
	if existing == nil || existing.Name != "Joao" {
		t.Errorf("duplicate Add() returned %+v, want original record", existing)
	}

	// State must be untouched: the original record still wins the search.
	rec, err := r.Search("ABC1234")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if rec.Name != "Joao" {
		t.Errorf("Search() Name = %q, want original %q", rec.Name, "Joao")
	}
}

func TestAdd_DuplicateAgainstClosedKey(t *testing.T) {
	r := newTestRegistry()

	if _, err := r.Add("LH12345678901 Joao ABC1234"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if _, err := r.Remove("LH12345678901"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	// The key is now closed-only; a re-add must still report the duplicate.
	existing, err := r.Add("LH12345678901 Maria XYZ9999")
	if !errors.Is(err, ErrDriverExists) {
		t.Fatalf("Add() after Remove() error = %v, want ErrDriverExists", err)
	}
	if existing == nil || existing.Name != "Joao" {
		t.Errorf("Add() returned %+v, want closed record", existing)
	}
}

func TestSearch_RoundTrip(t *testing.T) {
	r := newTestRegistry()

	if _, err := r.Add("LH12345678901 Joao da Silva ABC1234"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	byPlate, err := r.Search("ABC1234")
	if err != nil {
		t.Fatalf("Search(plate) error = %v", err)
	}
	if byPlate.Key != "LH12345678901" || byPlate.Name != "Joao da Silva" {
		t.Errorf("Search(plate) = %+v, want added record", byPlate)
	}

	byKey, err := r.Search("LH12345678901")
	if err != nil {
		t.Fatalf("Search(key) error = %v", err)
	}
	if byKey.Plate != "ABC1234" {
		t.Errorf("Search(key) Plate = %q, want %q", byKey.Plate, "ABC1234")
	}
}

func TestSearch_CaseInsensitive(t *testing.T) {
	r := newTestRegistry()

	if _, err := r.Add("LH12345678901 Joao ABC1234"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if _, err := r.Search("abc1234"); err != nil {
		t.Errorf("Search(lowercase plate) error = %v", err)
	}
	if _, err := r.Search("lh12345678901"); err != nil {
		t.Errorf("Search(lowercase key) error = %v", err)
	}
}

func TestSearch_MultiPlateField(t *testing.T) {
	r := newTestRegistry()

	if _, err := r.Add("LH12345678901 Joao ABC1234,XYZ9999"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	for _, plate := range []string{"ABC1234", "XYZ9999"} {
		rec, err := r.Search(plate)
		if err != nil {
			t.Errorf("Search(%q) error = %v", plate, err)
			continue
		}
		if rec.Key != "LH12345678901" {
			t.Errorf("Search(%q) Key = %q, want LH12345678901", plate, rec.Key)
		}
	}

	if _, err := r.Search("DEF5678"); !errors.Is(err, ErrDriverNotFound) {
		t.Errorf("Search(absent plate) error = %v, want ErrDriverNotFound", err)
	}
}

func TestSearch_InvalidQueryLength(t *testing.T) {
	r := newTestRegistry()

	for _, q := range []string{"", "ABC", "ABC12345", "LH123456789012345"} {
		if _, err := r.Search(q); !errors.Is(err, ErrInvalidQueryLength) {
			t.Errorf("Search(%q) error = %v, want ErrInvalidQueryLength", q, err)
		}
	}
}

func TestSearch_ClosedKeyStillAddressable(t *testing.T) {
	r := newTestRegistry()

	if _, err := r.Add("LH12345678901 Joao ABC1234"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if _, err := r.MarkCompleted("LH12345678901"); err != nil {
		t.Fatalf("MarkCompleted() error = %v", err)
	}

	// Closure excludes from reporting, not from lookup.
	if _, err := r.Search("LH12345678901"); err != nil {
		t.Errorf("Search(closed key) error = %v, want addressable", err)
	}
}

func TestRemove_ThenRemoveAgain(t *testing.T) {
	r := newTestRegistry()

	if _, err := r.Add("LH12345678901 Joao ABC1234"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	rec, err := r.Remove("LH12345678901")
	if err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if rec.Name != "Joao" {
		t.Errorf("Remove() Name = %q, want %q", rec.Name, "Joao")
	}

	if _, err := r.Remove("LH12345678901"); !errors.Is(err, ErrDriverNotFound) {
		t.Errorf("second Remove() error = %v, want ErrDriverNotFound", err)
	}
}

func TestMarkCompleted_NotFound(t *testing.T) {
	r := newTestRegistry()

	if _, err := r.MarkCompleted("LH12345678901"); !errors.Is(err, ErrDriverNotFound) {
		t.Errorf("MarkCompleted(unknown) error = %v, want ErrDriverNotFound", err)
	}
}

func TestMark_TerminalStateNotRetransitioned(t *testing.T) {
	r := newTestRegistry()

	if _, err := r.Add("LH12345678901 Joao ABC1234"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if _, err := r.MarkCompleted("LH12345678901"); err != nil {
		t.Fatalf("MarkCompleted() error = %v", err)
	}

	if _, err := r.MarkCancelled("LH12345678901"); !errors.Is(err, ErrDriverNotFound) {
		t.Errorf("MarkCancelled(closed) error = %v, want ErrDriverNotFound", err)
	}
	if _, err := r.MarkCompleted("LH12345678901"); !errors.Is(err, ErrDriverNotFound) {
		t.Errorf("second MarkCompleted() error = %v, want ErrDriverNotFound", err)
	}
}

func TestReport_SingleRowForCompletedKey(t *testing.T) {
	r := newTestRegistry()

	if _, err := r.Add("LH12345678901 Joao ABC1234"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if _, err := r.MarkCompleted("LH12345678901"); err != nil {
		t.Fatalf("MarkCompleted() error = %v", err)
	}

	rows := r.Report()
	if len(rows) != 1 {
		t.Fatalf("Report() returned %d rows, want 1", len(rows))
	}
	if rows[0].Status != StatusCompleted {
		t.Errorf("row Status = %q, want %q", rows[0].Status, StatusCompleted)
	}
	if rows[0].Timestamp != "28/08/2026 14:30" {
		t.Errorf("row Timestamp = %q, want %q", rows[0].Timestamp, "28/08/2026 14:30")
	}
}

func TestReport_PartitionsAllKeys(t *testing.T) {
	r := newTestRegistry()

	entries := []string{
		"LH11111111111 Joao ABC1234",
		"LH22222222222 Maria DEF5678",
		"LH33333333333 Pedro GHI9012",
		"LH44444444444 Ana JKL3456",
	}
	for _, e := range entries {
		if _, err := r.Add(e); err != nil {
			t.Fatalf("Add(%q) error = %v", e, err)
		}
	}

	if _, err := r.MarkCompleted("LH22222222222"); err != nil {
		t.Fatalf("MarkCompleted() error = %v", err)
	}
	if _, err := r.MarkCancelled("LH33333333333"); err != nil {
		t.Fatalf("MarkCancelled() error = %v", err)
	}
	if _, err := r.Remove("LH44444444444"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	rows := r.Report()
	if len(rows) != 4 {
		t.Fatalf("Report() returned %d rows, want 4", len(rows))
	}

	seen := make(map[string]Status)
	for _, row := range rows {
		if _, dup := seen[row.Key]; dup {
			t.Errorf("key %s appears twice in report", row.Key)
		}
		seen[row.Key] = row.Status
	}

	want := map[string]Status{
		"LH11111111111": StatusActive,
		"LH22222222222": StatusCompleted,
		"LH33333333333": StatusCancelled,
		"LH44444444444": StatusCancelled,
	}
	for key, status := range want {
		if seen[key] != status {
			t.Errorf("key %s Status = %q, want %q", key, seen[key], status)
		}
	}
}

func TestCounts(t *testing.T) {
	r := newTestRegistry()

	if _, err := r.Add("LH11111111111 Joao ABC1234"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if _, err := r.Add("LH22222222222 Maria DEF5678"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if _, err := r.MarkCompleted("LH22222222222"); err != nil {
		t.Fatalf("MarkCompleted() error = %v", err)
	}

	active, closed := r.Counts()
	if active != 1 || closed != 1 {
		t.Errorf("Counts() = (%d, %d), want (1, 1)", active, closed)
	}
}
