package persistence

import (
	"context"
	"time"

	"github.com/example/boardgame-tables/internal/proposition"
)

// UserRepository stores the identities referenced by propositions.
type UserRepository interface {
	UpsertUser(ctx context.Context, user proposition.User) error
	GetUser(ctx context.Context, id string) (proposition.User, error)
}

// LocationRepository exposes CRUD operations for locations.
type LocationRepository interface {
	CreateLocation(ctx context.Context, location proposition.Location) error
	UpdateLocation(ctx context.Context, location proposition.Location) error
	GetLocation(ctx context.Context, id string) (proposition.Location, error)
	GetDefaultLocation(ctx context.Context) (proposition.Location, error)
	EnsureDefaultLocation(ctx context.Context, location proposition.Location) (proposition.Location, error)
	ListLocations(ctx context.Context, filter LocationFilter) ([]proposition.Location, error)
	DeleteLocation(ctx context.Context, id string) error
}

// PropositionRepository stores propositions and their rosters. Join must check
// capacity and insert in one atomic step.
type PropositionRepository interface {
	CreateProposition(ctx context.Context, p proposition.Proposition, joinCreator bool) error
	GetProposition(ctx context.Context, id string) (proposition.Proposition, error)
	JoinProposition(ctx context.Context, tableID, userID string, joinedAt time.Time) error
	LeaveProposition(ctx context.Context, tableID, userID string) error
	UpdateProposition(ctx context.Context, tableID string, patch proposition.Patch, updatedAt time.Time) (proposition.Proposition, error)
	DeleteProposition(ctx context.Context, id string) error
	ListPropositions(ctx context.Context, filter PropositionFilter) ([]proposition.Proposition, error)
}
