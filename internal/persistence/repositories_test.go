package persistence_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/example/boardgame-tables/internal/persistence"
	"github.com/example/boardgame-tables/internal/proposition"
	"github.com/example/boardgame-tables/internal/testfixtures"
	"github.com/example/boardgame-tables/internal/visibility"
)

// repositories is the set of stores the booking engine depends on.
type repositories struct {
	users        persistence.UserRepository
	locations    persistence.LocationRepository
	propositions persistence.PropositionRepository
	clock        *testfixtures.Clock
}

func newRepositories(t *testing.T) repositories {
	t.Helper()
	h := testfixtures.NewSQLiteHarness(t)
	return repositories{
		users:        h.Users,
		locations:    h.Locations,
		propositions: h.Propositions,
		clock:        h.Clock,
	}
}

func seedUsers(t *testing.T, repos repositories, users ...proposition.User) {
	t.Helper()
	for _, u := range users {
		if err := repos.users.UpsertUser(context.Background(), u); err != nil {
			t.Fatalf("UpsertUser(%s) failed: %v", u.ID, err)
		}
	}
}

func rosterIDs(p proposition.Proposition) []string {
	ids := make([]string, 0, len(p.Players))
	for _, player := range p.Players {
		ids = append(ids, player.UserID)
	}
	return ids
}

func TestRosterLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repos := newRepositories(t)

	host := testfixtures.NewUser()
	a := testfixtures.NewUser()
	b := testfixtures.NewUser()
	c := testfixtures.NewUser()
	seedUsers(t, repos, host, a, b, c)

	table := testfixtures.NewProposition(host, testfixtures.WithGame("Catan", 13), testfixtures.WithMaxPlayers(2))
	if err := repos.propositions.CreateProposition(ctx, table, false); err != nil {
		t.Fatalf("CreateProposition failed: %v", err)
	}

	now := repos.clock.Now()
	for _, u := range []proposition.User{a, b} {
		if err := repos.propositions.JoinProposition(ctx, table.ID, u.ID, now); err != nil {
			t.Fatalf("JoinProposition(%s) failed: %v", u.ID, err)
		}
	}
	if err := repos.propositions.JoinProposition(ctx, table.ID, c.ID, now); !errors.Is(err, persistence.ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded for a third player, got %v", err)
	}

	if err := repos.propositions.LeaveProposition(ctx, table.ID, a.ID); err != nil {
		t.Fatalf("LeaveProposition failed: %v", err)
	}
	if err := repos.propositions.JoinProposition(ctx, table.ID, c.ID, now); err != nil {
		t.Fatalf("JoinProposition after a seat was freed failed: %v", err)
	}

	stored, err := repos.propositions.GetProposition(ctx, table.ID)
	if err != nil {
		t.Fatalf("GetProposition failed: %v", err)
	}
	if got := rosterIDs(stored); !slices.Equal(got, []string{b.ID, c.ID}) {
		t.Fatalf("expected roster [b c], got %v", got)
	}
	if stored.PlayersFraction() != "2/2" {
		t.Fatalf("expected 2/2, got %s", stored.PlayersFraction())
	}

	seats := 1
	if _, err := repos.propositions.UpdateProposition(ctx, table.ID, proposition.Patch{MaxPlayers: &seats}, now); !errors.Is(err, persistence.ErrInvalidCapacity) {
		t.Fatalf("expected ErrInvalidCapacity, got %v", err)
	}
	stored, err = repos.propositions.GetProposition(ctx, table.ID)
	if err != nil {
		t.Fatalf("GetProposition failed: %v", err)
	}
	if stored.MaxPlayers != 2 || len(stored.Players) != 2 {
		t.Fatalf("expected rejected update to leave the table intact, got %s", stored.PlayersFraction())
	}
}

func TestListingMatchesVisibilityFilter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repos := newRepositories(t)

	host := testfixtures.NewUser()
	guest := testfixtures.NewUser()
	seedUsers(t, repos, host, guest)

	club, err := repos.locations.EnsureDefaultLocation(ctx, testfixtures.NewLocation(testfixtures.WithAlias("Club"), testfixtures.AsDefault()))
	if err != nil {
		t.Fatalf("EnsureDefaultLocation failed: %v", err)
	}
	pub := testfixtures.NewLocation(testfixtures.WithAlias("Pub"))
	if err := repos.locations.CreateLocation(ctx, pub); err != nil {
		t.Fatalf("CreateLocation failed: %v", err)
	}

	now := repos.clock.Now()
	today := proposition.DateOf(now)
	tables := []proposition.Proposition{
		testfixtures.NewProposition(host, testfixtures.AtLocation(club),
			testfixtures.WithSchedule(today.AddDate(0, 0, -2), proposition.SlotMorning, 60)),
		testfixtures.NewProposition(host, testfixtures.AtLocation(club),
			testfixtures.WithSchedule(today, proposition.SlotEvening, 180)),
		testfixtures.NewProposition(host, testfixtures.AtLocation(pub),
			testfixtures.WithSchedule(today.AddDate(0, 0, 1), proposition.SlotAfternoon, 90),
			testfixtures.WithType(proposition.TypeTournament)),
		testfixtures.NewProposition(host,
			testfixtures.WithSchedule(today.AddDate(0, 0, 3), proposition.SlotNight, 60)),
	}
	for _, p := range tables {
		if err := repos.propositions.CreateProposition(ctx, p, false); err != nil {
			t.Fatalf("CreateProposition failed: %v", err)
		}
	}
	if err := repos.propositions.JoinProposition(ctx, tables[2].ID, guest.ID, now); err != nil {
		t.Fatalf("JoinProposition failed: %v", err)
	}

	all, err := repos.propositions.ListPropositions(ctx, persistence.PropositionFilter{})
	if err != nil {
		t.Fatalf("ListPropositions failed: %v", err)
	}

	specs := []struct {
		name string
		spec visibility.Spec
	}{
		{name: "everything", spec: visibility.Spec{}},
		{name: "default bucket", spec: visibility.Spec{Bucket: visibility.BucketDefault}},
		{name: "rest of world", spec: visibility.Spec{Bucket: visibility.BucketRestOfWorld}},
		{name: "tournaments", spec: visibility.Spec{Type: visibility.OnlyType(proposition.TypeTournament)}},
	}

	for _, tc := range specs {
		t.Run(tc.name, func(t *testing.T) {
			cutoff := visibility.HorizonCutoff(now)
			pushed, err := repos.propositions.ListPropositions(ctx, persistence.PropositionFilter{
				Bucket:    tc.spec.Bucket,
				Type:      tc.spec.Type,
				EndsAfter: &cutoff,
			})
			if err != nil {
				t.Fatalf("ListPropositions failed: %v", err)
			}

			want := visibility.Filter(all, guest, tc.spec, now)
			if !slices.EqualFunc(pushed, want, func(x, y proposition.Proposition) bool { return x.ID == y.ID }) {
				t.Fatalf("store and in-memory filter disagree: store=%v memory=%v", idsOf(pushed), idsOf(want))
			}
		})
	}
}

func TestHorizonBoundary(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repos := newRepositories(t)

	host := testfixtures.NewUser()
	seedUsers(t, repos, host)

	recent := testfixtures.NewProposition(host, testfixtures.EndingAt(repos.clock.Ago(12*time.Hour), 120))
	edge := testfixtures.NewProposition(host, testfixtures.EndingAt(repos.clock.Ago(visibility.Horizon), 60))
	stale := testfixtures.NewProposition(host, testfixtures.EndingAt(repos.clock.Ago(48*time.Hour), 120))
	for _, p := range []proposition.Proposition{recent, edge, stale} {
		if err := repos.propositions.CreateProposition(ctx, p, false); err != nil {
			t.Fatalf("CreateProposition failed: %v", err)
		}
	}

	cutoff := visibility.HorizonCutoff(repos.clock.Now())
	listed, err := repos.propositions.ListPropositions(ctx, persistence.PropositionFilter{EndsAfter: &cutoff})
	if err != nil {
		t.Fatalf("ListPropositions failed: %v", err)
	}
	got := idsOf(listed)
	if !slices.Contains(got, recent.ID) || !slices.Contains(got, edge.ID) || slices.Contains(got, stale.ID) {
		t.Fatalf("expected recent and edge tables only, got %v", got)
	}
}

func TestLocationContract(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repos := newRepositories(t)

	owner := testfixtures.NewUser()
	seedUsers(t, repos, owner)

	if _, err := repos.locations.GetDefaultLocation(ctx); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before a default exists, got %v", err)
	}

	def, err := repos.locations.EnsureDefaultLocation(ctx, testfixtures.NewLocation(testfixtures.WithAlias("Club"), testfixtures.AsDefault()))
	if err != nil {
		t.Fatalf("EnsureDefaultLocation failed: %v", err)
	}
	if !def.IsDefault || !def.IsSystem() {
		t.Fatalf("expected system default, got %#v", def)
	}

	home := testfixtures.NewLocation(testfixtures.WithAlias("Home"), testfixtures.OwnedBy(owner.ID))
	if err := repos.locations.CreateLocation(ctx, home); err != nil {
		t.Fatalf("CreateLocation failed: %v", err)
	}
	fetched, err := repos.locations.GetLocation(ctx, home.ID)
	if err != nil {
		t.Fatalf("GetLocation failed: %v", err)
	}
	if fetched.OwnerID != owner.ID || fetched.IsDefault {
		t.Fatalf("unexpected owned location %#v", fetched)
	}

	repos.clock.Advance(time.Minute)
	if err := repos.locations.DeleteLocation(ctx, def.ID); !errors.Is(err, persistence.ErrDefaultLocation) {
		t.Fatalf("expected ErrDefaultLocation, got %v", err)
	}
	if err := repos.locations.DeleteLocation(ctx, home.ID); err != nil {
		t.Fatalf("DeleteLocation failed: %v", err)
	}
	if _, err := repos.locations.GetLocation(ctx, home.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func idsOf(props []proposition.Proposition) []string {
	ids := make([]string, 0, len(props))
	for _, p := range props {
		ids = append(ids, p.ID)
	}
	return ids
}
