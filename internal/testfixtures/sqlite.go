package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/boardgame-tables/internal/persistence"
	"github.com/example/boardgame-tables/internal/persistence/sqlite"
	"github.com/example/boardgame-tables/internal/proposition"
)

// SQLiteHarness provides repository access backed by a temporary SQLite storage
// instance for integration-style persistence tests. The database lives in a
// file so that concurrent connections share it.
type SQLiteHarness struct {
	Storage      *sqlite.Storage
	Users        persistence.UserRepository
	Locations    persistence.LocationRepository
	Propositions persistence.PropositionRepository
	Clock        *Clock
	Path         string

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file that is
// migrated automatically. Callers may optionally invoke Close, but the helper
// will also register a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	clock := NewClock(ReferenceTime())
	path := filepath.Join(tb.TempDir(), "tablebook.db")

	storage, err := sqlite.Open(path, sqlite.WithClock(clock.NowFunc()))
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := storage.Migrate(context.Background()); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Storage:      storage,
		Users:        storage,
		Locations:    storage,
		Propositions: storage,
		Clock:        clock,
		Path:         path,
		cleanup: func() {
			_ = storage.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}

// SeedUsers stores users, failing the test on error.
func (h *SQLiteHarness) SeedUsers(tb testing.TB, users ...proposition.User) {
	tb.Helper()
	for _, u := range users {
		if err := h.Users.UpsertUser(context.Background(), u); err != nil {
			tb.Fatalf("seed user %s: %v", u.ID, err)
		}
	}
}

// SeedDefaultLocation stores location as the default location and returns it.
func (h *SQLiteHarness) SeedDefaultLocation(tb testing.TB, location proposition.Location) proposition.Location {
	tb.Helper()
	location.IsDefault = true
	location.OwnerID = ""
	stored, err := h.Locations.EnsureDefaultLocation(context.Background(), location)
	if err != nil {
		tb.Fatalf("seed default location: %v", err)
	}
	return stored
}

// SeedLocations stores locations, failing the test on error.
func (h *SQLiteHarness) SeedLocations(tb testing.TB, locations ...proposition.Location) {
	tb.Helper()
	for _, l := range locations {
		if err := h.Locations.CreateLocation(context.Background(), l); err != nil {
			tb.Fatalf("seed location %s: %v", l.ID, err)
		}
	}
}

// SeedProposition stores p together with its proposer and roster.
func (h *SQLiteHarness) SeedProposition(tb testing.TB, p proposition.Proposition) proposition.Proposition {
	tb.Helper()
	ctx := context.Background()

	h.SeedUsers(tb, proposition.User{ID: p.ProposedBy.UserID, Username: p.ProposedBy.Username, Email: p.ProposedBy.Email})
	roster := p.Players
	p.Players = nil
	if err := h.Propositions.CreateProposition(ctx, p, false); err != nil {
		tb.Fatalf("seed proposition %s: %v", p.ID, err)
	}
	for _, player := range roster {
		h.SeedUsers(tb, proposition.User{ID: player.UserID, Username: player.Username, Email: player.Email})
		if err := h.Propositions.JoinProposition(ctx, p.ID, player.UserID, h.Clock.Now()); err != nil {
			tb.Fatalf("seed roster of %s: %v", p.ID, err)
		}
	}

	stored, err := h.Propositions.GetProposition(ctx, p.ID)
	if err != nil {
		tb.Fatalf("reload proposition %s: %v", p.ID, err)
	}
	return stored
}
