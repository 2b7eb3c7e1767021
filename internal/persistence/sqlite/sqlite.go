package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/boardgame-tables/internal/persistence"
	"github.com/example/boardgame-tables/internal/persistence/sqlite/migration"
	"github.com/example/boardgame-tables/internal/persistence/sqlite/migrations"
)

// Storage bundles the SQLite repositories behind a single connection pool.
type Storage struct {
	*PropositionRepository
	*LocationRepository
	*UserRepository

	pool   *ConnectionPool
	logger *slog.Logger
}

var (
	_ persistence.PropositionRepository = (*Storage)(nil)
	_ persistence.LocationRepository    = (*Storage)(nil)
	_ persistence.UserRepository        = (*Storage)(nil)
)

type options struct {
	location *time.Location
	now      func() time.Time
	logger   *slog.Logger
	config   *migration.SQLiteConfig
}

// Option customises Open.
type Option func(*options)

// WithTimeZone sets the zone in which proposition dates are interpreted.
func WithTimeZone(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.location = loc
		}
	}
}

// WithClock overrides the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets the logger used by migrations.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithSQLiteConfig replaces the default connection settings. The DSN passed
// to Open still wins.
func WithSQLiteConfig(cfg migration.SQLiteConfig) Option {
	return func(o *options) {
		o.config = &cfg
	}
}

// Open connects to the SQLite database at dsn. Call Migrate before use.
func Open(dsn string, opts ...Option) (*Storage, error) {
	o := options{location: time.UTC, now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := migration.DefaultSQLiteConfig(dsn)
	if o.config != nil {
		cfg = *o.config
		cfg.DSN = dsn
	}

	pool, err := NewConnectionPool(cfg)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	mapper := NewErrorMapper()
	return &Storage{
		PropositionRepository: &PropositionRepository{pool: pool, mapper: mapper, location: o.location, now: o.now},
		LocationRepository:    &LocationRepository{pool: pool, mapper: mapper, now: o.now},
		UserRepository:        &UserRepository{pool: pool, mapper: mapper, now: o.now},
		pool:                  pool,
		logger:                o.logger,
	}, nil
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	return s.pool.Close()
}

// Ping checks the database connection.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies the embedded schema migrations.
func (s *Storage) Migrate(ctx context.Context) error {
	manager := migration.NewMigrationManager(
		migration.NewFileScanner(),
		migration.NewSQLiteExecutor(s.pool.DB()),
		migrations.FS,
		".",
		s.logger,
	)
	if err := manager.RunMigrations(ctx); err != nil {
		return fmt.Errorf("migrate storage: %w", err)
	}
	return nil
}

// MigrationStatus reports applied and pending schema migrations.
func (s *Storage) MigrationStatus(ctx context.Context) (*migration.MigrationStatus, error) {
	manager := migration.NewMigrationManager(
		migration.NewFileScanner(),
		migration.NewSQLiteExecutor(s.pool.DB()),
		migrations.FS,
		".",
		s.logger,
	)
	return manager.GetMigrationStatus(ctx)
}

const (
	dateLayout      = "2006-01-02"
	timestampLayout = time.RFC3339
)

// formatInstant renders t as fixed-width UTC text so that string comparison
// in SQL matches chronological order.
func formatInstant(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseInstant(value string) time.Time {
	t, err := time.Parse(timestampLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
