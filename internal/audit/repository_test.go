package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/Franca20/telegram-motorista-bot/migrations"

	"github.com/Franca20/telegram-motorista-bot/internal/infrastructure/database"
)

func openTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, database.Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	return NewSQLiteRepository(db.DB)
}

func TestCreate_GeneratesIDAndTimestamp(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	entry := &Entry{
		Action:     "add",
		DriverKey:  "LH12345678901",
		OperatorID: "1001",
		Outcome:    OutcomeOK,
	}
	if err := repo.Create(ctx, entry); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if entry.ID == "" {
		t.Error("Create() did not generate an ID")
	}
	if entry.CreatedAt.IsZero() {
		t.Error("Create() did not set CreatedAt")
	}
}

func TestList_FiltersAndOrders(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	seed := []Entry{
		{Action: "login", OperatorID: "1001", Outcome: OutcomeOK, CreatedAt: base},
		{Action: "add", DriverKey: "LH11111111111", OperatorID: "1001", Outcome: OutcomeOK, CreatedAt: base.Add(time.Minute)},
		{Action: "remove", DriverKey: "LH11111111111", OperatorID: "1002", Outcome: OutcomeUnauthorized, CreatedAt: base.Add(2 * time.Minute)},
	}
	for i := range seed {
		if err := repo.Create(ctx, &seed[i]); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	all, err := repo.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if all.Total != 3 || len(all.Entries) != 3 {
		t.Fatalf("List() total = %d, entries = %d, want 3", all.Total, len(all.Entries))
	}
	if all.Entries[0].Action != "remove" {
		t.Errorf("List() first entry = %q, want most recent (remove)", all.Entries[0].Action)
	}

	byKey, err := repo.List(ctx, Filter{DriverKey: "LH11111111111"})
	if err != nil {
		t.Fatalf("List(DriverKey) error = %v", err)
	}
	if byKey.Total != 2 {
		t.Errorf("List(DriverKey) total = %d, want 2", byKey.Total)
	}

	byOperator, err := repo.List(ctx, Filter{OperatorID: "1002"})
	if err != nil {
		t.Fatalf("List(OperatorID) error = %v", err)
	}
	if byOperator.Total != 1 || byOperator.Entries[0].Outcome != OutcomeUnauthorized {
		t.Errorf("List(OperatorID) = %+v, want one negado entry", byOperator.Entries)
	}
}

func TestList_ClampsLimit(t *testing.T) {
	repo := openTestRepo(t)

	result, err := repo.List(context.Background(), Filter{Limit: 5000})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if result.Limit != maxLimit {
		t.Errorf("List() limit = %d, want clamped to %d", result.Limit, maxLimit)
	}
}
