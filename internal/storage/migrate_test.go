package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/kvsingh/neuralmon/internal/auth"
	"github.com/kvsingh/neuralmon/internal/model"
)

func TestMigrateRoundTripCompatibility(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate-roundtrip.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	if err := MigrateUp(ctx, db, nil); err != nil {
		t.Fatalf("first migrate up failed: %v", err)
	}
	if err := MigrateDown(ctx, db, nil); err != nil {
		t.Fatalf("migrate down failed: %v", err)
	}
	if err := MigrateUp(ctx, db, nil); err != nil {
		t.Fatalf("second migrate up failed: %v", err)
	}

	store, err := NewSQLiteStore(db, auth.Plain{})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	user, err := store.CreateUser(ctx, "rt@x.com", "p", "Roundtrip")
	if err != nil {
		t.Fatalf("create user after roundtrip failed: %v", err)
	}
	tasks := []model.Task{{
		ID:            "task-rt-1",
		UserID:        user.ID,
		Name:          "Roundtrip task",
		Target:        5,
		CompletedDays: []int{2, 4},
		Month:         1,
		Year:          2024,
		UpdatedAt:     time.Date(2024, 2, 9, 12, 0, 0, 0, time.UTC),
	}}
	if err := store.ReplaceTasksForMonth(ctx, user.ID, tasks, 1, 2024); err != nil {
		t.Fatalf("insert after roundtrip failed: %v", err)
	}
	got, err := store.TasksForMonth(ctx, user.ID, 1, 2024)
	if err != nil {
		t.Fatalf("read after roundtrip failed: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Roundtrip task" {
		t.Fatalf("unexpected tasks after roundtrip: %#v", got)
	}
}

func TestMigrateUpIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate-idempotent.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	if err := MigrateUp(ctx, db, nil); err != nil {
		t.Fatalf("first migrate up failed: %v", err)
	}
	if err := MigrateUp(ctx, db, nil); err != nil {
		t.Fatalf("repeat migrate up failed: %v", err)
	}

	var recorded int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&recorded); err != nil {
		t.Fatalf("count schema_migrations: %v", err)
	}
	if recorded != 1 {
		t.Fatalf("expected exactly one recorded migration, got %d", recorded)
	}

	var version int
	if err := db.QueryRowContext(ctx, `SELECT version FROM schema_migrations`).Scan(&version); err != nil {
		t.Fatalf("read recorded version: %v", err)
	}
	if version != 1 {
		t.Fatalf("expected version 1 recorded, got %d", version)
	}
}

func TestMigrateDownLeavesEmptySchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate-down.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	if err := MigrateUp(ctx, db, nil); err != nil {
		t.Fatalf("migrate up failed: %v", err)
	}
	if err := MigrateDown(ctx, db, nil); err != nil {
		t.Fatalf("migrate down failed: %v", err)
	}

	for _, table := range []string{"users", "tasks", "stories"} {
		var name string
		err := db.QueryRowContext(ctx, `
			SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != sql.ErrNoRows {
			t.Fatalf("table %s still present after migrate down (err=%v)", table, err)
		}
	}
	var recorded int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&recorded); err != nil {
		t.Fatalf("count schema_migrations: %v", err)
	}
	if recorded != 0 {
		t.Fatalf("expected no recorded migrations after down, got %d", recorded)
	}
}
