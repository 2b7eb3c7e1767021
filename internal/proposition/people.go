package proposition

import (
	"strings"
	"time"
)

// User is the resolved identity of the current viewer.
type User struct {
	ID       string
	Username string
	Email    string
	IsAdmin  bool
	IsBanned bool
}

// Player returns the roster entry representing the user.
func (u User) Player() Player {
	return Player{UserID: u.ID, Username: u.Username, Email: u.Email}
}

// Player is a roster entry or the proposer reference of a proposition.
type Player struct {
	UserID   string
	Username string
	Email    string
}

// Name returns the username, falling back to the email address.
func (p Player) Name() string {
	if p.Username != "" {
		return p.Username
	}
	return p.Email
}

// Location is a place where tables are held. An empty OwnerID marks a
// system location visible to everyone.
type Location struct {
	ID          string
	Alias       string
	Street      string
	HouseNumber string
	City        string
	Country     string
	OwnerID     string
	IsDefault   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsSystem reports whether the location is shared rather than user owned.
func (l Location) IsSystem() bool {
	return l.OwnerID == ""
}

// Address joins the populated address fields.
func (l Location) Address() string {
	street := strings.TrimSpace(strings.TrimSpace(l.Street) + " " + strings.TrimSpace(l.HouseNumber))
	parts := make([]string, 0, 3)
	for _, part := range []string{street, strings.TrimSpace(l.City), strings.TrimSpace(l.Country)} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}

// Expansion is a game expansion used at a table.
type Expansion struct {
	ID   int
	Name string
}

// NormalizeExpansions drops duplicate ids, keeping the first occurrence.
func NormalizeExpansions(expansions []Expansion) []Expansion {
	if len(expansions) == 0 {
		return nil
	}
	seen := make(map[int]struct{}, len(expansions))
	out := make([]Expansion, 0, len(expansions))
	for _, exp := range expansions {
		if _, ok := seen[exp.ID]; ok {
			continue
		}
		seen[exp.ID] = struct{}{}
		out = append(out, Expansion{ID: exp.ID, Name: strings.TrimSpace(exp.Name)})
	}
	return out
}
