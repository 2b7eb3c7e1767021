package migration

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := NewConnectionManager(InMemoryTestSQLiteConfig()).GetConnection()
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSplitStatements(t *testing.T) {
	t.Run("plain statements", func(t *testing.T) {
		got := SplitStatements("CREATE TABLE a (id TEXT);\n-- comment\nCREATE TABLE b (id TEXT);")
		if len(got) != 2 {
			t.Fatalf("expected 2 statements, got %d: %q", len(got), got)
		}
	})

	t.Run("trigger body stays intact", func(t *testing.T) {
		sql := `
CREATE TABLE t (id INTEGER);
CREATE TRIGGER t_guard BEFORE INSERT ON t
BEGIN
    SELECT RAISE(ABORT, 'first') WHERE NEW.id < 0;
    SELECT RAISE(ABORT, 'second') WHERE NEW.id > 100;
END;
CREATE INDEX t_idx ON t(id);
`
		got := SplitStatements(sql)
		if len(got) != 3 {
			t.Fatalf("expected 3 statements, got %d: %q", len(got), got)
		}
		if !strings.HasPrefix(got[1], "CREATE TRIGGER") || !strings.HasSuffix(got[1], "END") {
			t.Fatalf("unexpected trigger statement: %q", got[1])
		}
		if strings.Count(got[1], "RAISE") != 2 {
			t.Fatalf("expected both trigger steps, got %q", got[1])
		}
	})

	t.Run("missing trailing semicolon", func(t *testing.T) {
		got := SplitStatements("CREATE TABLE a (id TEXT)")
		if len(got) != 1 {
			t.Fatalf("expected 1 statement, got %d", len(got))
		}
	})
}

func TestSQLiteExecutor_ExecuteMigration(t *testing.T) {
	ctx := context.Background()

	t.Run("applies statements and records the version", func(t *testing.T) {
		db := setupTestDB(t)
		executor := NewSQLiteExecutor(db)
		if err := executor.InitializeVersionTable(ctx); err != nil {
			t.Fatalf("InitializeVersionTable failed: %v", err)
		}
		if err := executor.InitializeVersionTable(ctx); err != nil {
			t.Fatalf("InitializeVersionTable should be idempotent: %v", err)
		}

		migration := Migration{
			Version:  "001",
			Checksum: "abc",
			SQL: `
CREATE TABLE guarded (id INTEGER);
CREATE TRIGGER guarded_check BEFORE INSERT ON guarded
BEGIN
    SELECT RAISE(ABORT, 'negative') WHERE NEW.id < 0;
END;
`,
		}
		if err := executor.ExecuteMigration(ctx, migration); err != nil {
			t.Fatalf("ExecuteMigration failed: %v", err)
		}

		if _, err := db.ExecContext(ctx, `INSERT INTO guarded (id) VALUES (-1)`); err == nil || !strings.Contains(err.Error(), "negative") {
			t.Fatalf("expected trigger to reject insert, got %v", err)
		}

		applied, err := executor.GetAppliedVersions(ctx)
		if err != nil {
			t.Fatalf("GetAppliedVersions failed: %v", err)
		}
		if len(applied) != 1 || applied[0].Version != "001" || applied[0].Checksum != "abc" {
			t.Fatalf("unexpected applied versions: %+v", applied)
		}
	})

	t.Run("failed migration is rolled back", func(t *testing.T) {
		db := setupTestDB(t)
		executor := NewSQLiteExecutor(db)
		if err := executor.InitializeVersionTable(ctx); err != nil {
			t.Fatalf("InitializeVersionTable failed: %v", err)
		}

		err := executor.ExecuteMigration(ctx, Migration{
			Version: "001",
			SQL:     "CREATE TABLE ok (id INTEGER); INSERT INTO missing_table VALUES (1);",
		})
		var dbErr *DatabaseError
		if !errors.As(err, &dbErr) {
			t.Fatalf("expected DatabaseError, got %v", err)
		}

		var count int
		if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE name = 'ok'`).Scan(&count); err != nil {
			t.Fatalf("query failed: %v", err)
		}
		if count != 0 {
			t.Fatal("expected table creation to be rolled back")
		}
		applied, err := executor.GetAppliedVersions(ctx)
		if err != nil {
			t.Fatalf("GetAppliedVersions failed: %v", err)
		}
		if len(applied) != 0 {
			t.Fatalf("expected no applied versions, got %+v", applied)
		}
	})

	t.Run("empty migration is rejected", func(t *testing.T) {
		db := setupTestDB(t)
		err := NewSQLiteExecutor(db).ExecuteMigration(ctx, Migration{Version: "001", SQL: "-- only a comment"})
		var mErr *MigrationError
		if !errors.As(err, &mErr) {
			t.Fatalf("expected MigrationError, got %v", err)
		}
	})
}
