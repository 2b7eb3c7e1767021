package migration

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"testing/fstest"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMigrations() fstest.MapFS {
	return fstest.MapFS{
		"sql/001_users.sql":     &fstest.MapFile{Data: []byte("-- Description: users\nCREATE TABLE users (id TEXT PRIMARY KEY);")},
		"sql/002_locations.sql": &fstest.MapFile{Data: []byte("CREATE TABLE locations (id TEXT PRIMARY KEY);")},
	}
}

func TestMigrationManager_RunMigrations(t *testing.T) {
	ctx := context.Background()

	t.Run("applies pending migrations once", func(t *testing.T) {
		db := setupTestDB(t)
		manager := NewMigrationManager(NewFileScanner(), NewSQLiteExecutor(db), testMigrations(), "sql", discardLogger())

		if err := manager.RunMigrations(ctx); err != nil {
			t.Fatalf("first run failed: %v", err)
		}
		if err := manager.RunMigrations(ctx); err != nil {
			t.Fatalf("second run should be a no-op, got %v", err)
		}

		status, err := manager.GetMigrationStatus(ctx)
		if err != nil {
			t.Fatalf("GetMigrationStatus failed: %v", err)
		}
		if status.CurrentVersion != "002" {
			t.Errorf("expected current version 002, got %q", status.CurrentVersion)
		}
		if status.PendingCount != 0 {
			t.Errorf("expected no pending migrations, got %d", status.PendingCount)
		}
		if len(status.AppliedMigrations) != 2 {
			t.Errorf("expected 2 applied migrations, got %d", len(status.AppliedMigrations))
		}
	})

	t.Run("picks up new migrations", func(t *testing.T) {
		db := setupTestDB(t)
		fsys := testMigrations()
		manager := NewMigrationManager(NewFileScanner(), NewSQLiteExecutor(db), fsys, "sql", discardLogger())
		if err := manager.RunMigrations(ctx); err != nil {
			t.Fatalf("first run failed: %v", err)
		}

		fsys["sql/003_tables.sql"] = &fstest.MapFile{Data: []byte("CREATE TABLE propositions (id TEXT PRIMARY KEY);")}
		pending, err := manager.GetPendingMigrations(ctx)
		if err != nil {
			t.Fatalf("GetPendingMigrations failed: %v", err)
		}
		if len(pending) != 1 || pending[0].Version != "003" {
			t.Fatalf("expected only 003 pending, got %+v", pending)
		}
		if err := manager.RunMigrations(ctx); err != nil {
			t.Fatalf("second run failed: %v", err)
		}
	})

	t.Run("rejects gaps in the sequence", func(t *testing.T) {
		db := setupTestDB(t)
		fsys := fstest.MapFS{
			"sql/001_users.sql":  &fstest.MapFile{Data: []byte("CREATE TABLE users (id TEXT);")},
			"sql/003_tables.sql": &fstest.MapFile{Data: []byte("CREATE TABLE tables (id TEXT);")},
		}
		manager := NewMigrationManager(NewFileScanner(), NewSQLiteExecutor(db), fsys, "sql", discardLogger())

		if err := manager.RunMigrations(ctx); !errors.Is(err, ErrVersionConflict) {
			t.Fatalf("expected ErrVersionConflict, got %v", err)
		}
	})

	t.Run("rejects edited migrations", func(t *testing.T) {
		db := setupTestDB(t)
		fsys := testMigrations()
		manager := NewMigrationManager(NewFileScanner(), NewSQLiteExecutor(db), fsys, "sql", discardLogger())
		if err := manager.RunMigrations(ctx); err != nil {
			t.Fatalf("first run failed: %v", err)
		}

		fsys["sql/001_users.sql"] = &fstest.MapFile{Data: []byte("CREATE TABLE users (id TEXT PRIMARY KEY, email TEXT);")}
		if err := manager.RunMigrations(ctx); !errors.Is(err, ErrChecksumMismatch) {
			t.Fatalf("expected ErrChecksumMismatch, got %v", err)
		}
	})

	t.Run("failed migration stops the run", func(t *testing.T) {
		db := setupTestDB(t)
		fsys := fstest.MapFS{
			"sql/001_users.sql":  &fstest.MapFile{Data: []byte("CREATE TABLE users (id TEXT);")},
			"sql/002_broken.sql": &fstest.MapFile{Data: []byte("INSERT INTO nowhere VALUES (1);")},
		}
		manager := NewMigrationManager(NewFileScanner(), NewSQLiteExecutor(db), fsys, "sql", discardLogger())

		err := manager.RunMigrations(ctx)
		if !errors.Is(err, ErrMigrationFailed) {
			t.Fatalf("expected ErrMigrationFailed, got %v", err)
		}
		status, err := manager.GetMigrationStatus(ctx)
		if err != nil {
			t.Fatalf("GetMigrationStatus failed: %v", err)
		}
		if status.CurrentVersion != "001" || status.PendingCount != 1 {
			t.Fatalf("unexpected status after failure: %+v", status)
		}
	})
}
