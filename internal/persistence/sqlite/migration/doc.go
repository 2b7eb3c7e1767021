// Package migration applies versioned SQL migrations to a SQLite database.
//
// Migration files are named {version}_{description}.sql and read from an
// fs.FS, typically an embedded directory. Applied versions are tracked in the
// schema_migrations table together with the file checksum, so running the
// manager twice is a no-op.
//
// Example usage:
//
//	manager := NewMigrationManager(NewFileScanner(), NewSQLiteExecutor(db), migrations.FS, ".", logger)
//	if err := manager.RunMigrations(ctx); err != nil {
//		return err
//	}
package migration
