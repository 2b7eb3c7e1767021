// Package metadata looks up facts about published games. Lookups are best
// effort: a failed lookup means "no metadata" and never blocks a booking.
package metadata

import (
	"context"
	"errors"

	"github.com/example/boardgame-tables/internal/proposition"
)

var (
	// ErrNotConfigured is returned by providers that have no data source.
	ErrNotConfigured = errors.New("metadata: provider not configured")
	// ErrUnknownGame is returned when the provider has no entry for a game.
	ErrUnknownGame = errors.New("metadata: unknown game")
)

// Game holds the facts known about one game.
type Game struct {
	ID          int
	DisplayName string
	ImageURL    string
	Description string
	Categories  []string
	Mechanics   []string
	Expansions  []proposition.Expansion
}

// Provider resolves a game identifier to its metadata.
type Provider interface {
	Lookup(ctx context.Context, gameID int) (Game, error)
}

// Status reports how a lookup went.
type Status string

const (
	StatusFound       Status = "found"
	StatusUnavailable Status = "unavailable"
	StatusSkipped     Status = "skipped"
)

// Fetch runs a lookup and degrades every failure to empty metadata. Custom
// games (id <= 0) and unconfigured providers are skipped.
func Fetch(ctx context.Context, provider Provider, gameID int) (Game, Status, error) {
	if provider == nil || gameID <= 0 {
		return Game{}, StatusSkipped, nil
	}
	game, err := provider.Lookup(ctx, gameID)
	switch {
	case errors.Is(err, ErrNotConfigured):
		return Game{}, StatusSkipped, nil
	case err != nil:
		return Game{}, StatusUnavailable, err
	}
	return game, StatusFound, nil
}

// None is a provider without a data source.
type None struct{}

// Lookup implements Provider.
func (None) Lookup(context.Context, int) (Game, error) {
	return Game{}, ErrNotConfigured
}
