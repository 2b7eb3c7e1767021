package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/boardgame-tables/internal/application"
	"github.com/example/boardgame-tables/internal/proposition"
)

var (
	userCounter        uint64
	locationCounter    uint64
	propositionCounter uint64
)

var referenceTime = time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- User fixtures -----------------------------

// UserOption configures the generated user.
type UserOption func(*proposition.User)

// NewUser returns a deterministic user with optional overrides.
func NewUser(opts ...UserOption) proposition.User {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	user := proposition.User{
		ID:       id,
		Username: fmt.Sprintf("player%03d", idx),
		Email:    fmt.Sprintf("%s@example.com", id),
	}
	for _, opt := range opts {
		opt(&user)
	}
	return user
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(u *proposition.User) {
		u.ID = id
	}
}

// WithUsername overrides the generated username.
func WithUsername(name string) UserOption {
	return func(u *proposition.User) {
		u.Username = name
	}
}

// AsAdmin marks the user as an administrator.
func AsAdmin() UserOption {
	return func(u *proposition.User) {
		u.IsAdmin = true
	}
}

// AsBanned marks the user as banned.
func AsBanned() UserOption {
	return func(u *proposition.User) {
		u.IsBanned = true
	}
}

// --------------------------- Location fixtures ---------------------------

// LocationOption configures the generated location.
type LocationOption func(*proposition.Location)

// NewLocation returns a deterministic system location with optional overrides.
func NewLocation(opts ...LocationOption) proposition.Location {
	idx := atomic.AddUint64(&locationCounter, 1)
	created := referenceTime.Add(-time.Duration(idx) * time.Hour)
	location := proposition.Location{
		ID:          fmt.Sprintf("loc-%03d", idx),
		Alias:       fmt.Sprintf("Venue %03d", idx),
		Street:      "Main Street",
		HouseNumber: fmt.Sprintf("%d", idx),
		City:        "Ghent",
		Country:     "Belgium",
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&location)
	}
	return location
}

// WithLocationID overrides the generated location ID.
func WithLocationID(id string) LocationOption {
	return func(l *proposition.Location) {
		l.ID = id
	}
}

// WithAlias overrides the generated alias.
func WithAlias(alias string) LocationOption {
	return func(l *proposition.Location) {
		l.Alias = alias
	}
}

// OwnedBy turns the location into a personal location of userID.
func OwnedBy(userID string) LocationOption {
	return func(l *proposition.Location) {
		l.OwnerID = userID
	}
}

// AsDefault flags the location as the default one.
func AsDefault() LocationOption {
	return func(l *proposition.Location) {
		l.IsDefault = true
		l.OwnerID = ""
	}
}

// LocationInput returns the address fields of l as application input.
func LocationInput(l proposition.Location) application.LocationInput {
	return application.LocationInput{
		Alias:       l.Alias,
		Street:      l.Street,
		HouseNumber: l.HouseNumber,
		City:        l.City,
		Country:     l.Country,
	}
}

// ------------------------- Proposition fixtures --------------------------

// PropositionOption configures the generated proposition.
type PropositionOption func(*proposition.Proposition)

// NewProposition returns a deterministic proposition two days after the
// reference time, proposed by proposer, with an empty roster.
func NewProposition(proposer proposition.User, opts ...PropositionOption) proposition.Proposition {
	idx := atomic.AddUint64(&propositionCounter, 1)
	day := time.Date(referenceTime.Year(), referenceTime.Month(), referenceTime.Day()+2, 0, 0, 0, 0, time.UTC)
	p := proposition.Proposition{
		ID:              fmt.Sprintf("table-%03d", idx),
		GameName:        fmt.Sprintf("Game %03d", idx),
		Date:            day,
		Time:            proposition.SlotEvening,
		DurationMinutes: 120,
		MaxPlayers:      4,
		ProposedBy:      proposer.Player(),
		Type:            proposition.TypeProposition,
		CreatedAt:       referenceTime,
		UpdatedAt:       referenceTime,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// WithTableID overrides the generated table ID.
func WithTableID(id string) PropositionOption {
	return func(p *proposition.Proposition) {
		p.ID = id
	}
}

// WithGame sets the game name and external game reference.
func WithGame(name string, bggID int) PropositionOption {
	return func(p *proposition.Proposition) {
		p.GameName = name
		p.BGGGameID = bggID
	}
}

// WithSchedule sets date, time of day and duration in minutes.
func WithSchedule(date time.Time, at proposition.TimeOfDay, minutes int) PropositionOption {
	return func(p *proposition.Proposition) {
		p.Date = proposition.DateOf(date)
		p.Time = at
		p.DurationMinutes = minutes
	}
}

// EndingAt schedules the proposition so that it ends at end after lasting
// minutes.
func EndingAt(end time.Time, minutes int) PropositionOption {
	return func(p *proposition.Proposition) {
		start := end.Add(-time.Duration(minutes) * time.Minute)
		p.Date = proposition.DateOf(start)
		p.Time = proposition.NewTimeOfDay(start)
		p.DurationMinutes = minutes
	}
}

// WithMaxPlayers overrides the capacity.
func WithMaxPlayers(n int) PropositionOption {
	return func(p *proposition.Proposition) {
		p.MaxPlayers = n
	}
}

// WithType overrides the classification.
func WithType(t proposition.Type) PropositionOption {
	return func(p *proposition.Proposition) {
		p.Type = t
	}
}

// AtLocation places the proposition at location.
func AtLocation(location proposition.Location) PropositionOption {
	return func(p *proposition.Proposition) {
		loc := location
		p.Location = &loc
	}
}

// WithPlayers puts users on the roster in order.
func WithPlayers(users ...proposition.User) PropositionOption {
	return func(p *proposition.Proposition) {
		for _, u := range users {
			p.Players = append(p.Players, u.Player())
		}
	}
}

// WithExpansions sets the expansions used at the table.
func WithExpansions(expansions ...proposition.Expansion) PropositionOption {
	return func(p *proposition.Proposition) {
		p.Expansions = append([]proposition.Expansion(nil), expansions...)
	}
}

// Draft returns the caller supplied part of p.
func Draft(p proposition.Proposition) proposition.Draft {
	draft := proposition.Draft{
		GameName:        p.GameName,
		BGGGameID:       p.BGGGameID,
		Notes:           p.Notes,
		Expansions:      p.Expansions,
		Date:            p.Date,
		Time:            p.Time,
		DurationMinutes: p.DurationMinutes,
		MaxPlayers:      p.MaxPlayers,
		ProposedBy:      p.ProposedBy,
		Type:            p.Type,
	}
	if p.Location != nil {
		draft.LocationID = p.Location.ID
	}
	return draft
}
