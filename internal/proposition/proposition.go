package proposition

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// Proposition is one proposed game session with its roster.
type Proposition struct {
	ID              string
	GameName        string
	BGGGameID       int
	Notes           string
	Expansions      []Expansion
	Date            time.Time
	Time            TimeOfDay
	DurationMinutes int
	MaxPlayers      int
	ProposedBy      Player
	Players         []Player
	Location        *Location
	Type            Type
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Start is the instant the session begins.
func (p Proposition) Start() time.Time {
	return p.Time.On(p.Date)
}

// End is the instant the session ends.
func (p Proposition) End() time.Time {
	return p.Start().Add(p.Duration())
}

// Duration returns the scheduled length.
func (p Proposition) Duration() time.Duration {
	return time.Duration(p.DurationMinutes) * time.Minute
}

// Joined reports whether userID is on the roster.
func (p Proposition) Joined(userID string) bool {
	for _, player := range p.Players {
		if player.UserID == userID {
			return true
		}
	}
	return false
}

// IsFull reports whether the roster has reached capacity.
func (p Proposition) IsFull() bool {
	return len(p.Players) >= p.MaxPlayers
}

// JoinedCount returns the roster size.
func (p Proposition) JoinedCount() int {
	return len(p.Players)
}

// FreeSeats returns the number of seats left.
func (p Proposition) FreeSeats() int {
	if free := p.MaxPlayers - len(p.Players); free > 0 {
		return free
	}
	return 0
}

// ProposedByUser reports whether userID proposed the table.
func (p Proposition) ProposedByUser(userID string) bool {
	return p.ProposedBy.UserID != "" && p.ProposedBy.UserID == userID
}

// IsCustomGame reports whether the game has no external metadata reference.
func (p Proposition) IsCustomGame() bool {
	return p.BGGGameID <= 0
}

// AtDefaultLocation reports whether the table is held at the default location.
// Tables without a location are in neither bucket.
func (p Proposition) AtDefaultLocation() (isDefault bool, known bool) {
	if p.Location == nil {
		return false, false
	}
	return p.Location.IsDefault, true
}

// Equal compares propositions by identity.
func (p Proposition) Equal(other Proposition) bool {
	return p.ID == other.ID
}

// DisplayName prefixes the game name with the classification marker.
func (p Proposition) DisplayName() string {
	return p.Type.Prefix() + p.GameName
}

// Status is "Full" once the roster reached capacity, "Available" otherwise.
func (p Proposition) Status() string {
	if len(p.Players) == p.MaxPlayers {
		return "Full"
	}
	return "Available"
}

// PlayersFraction renders the roster size over the capacity, e.g. "2/4".
func (p Proposition) PlayersFraction() string {
	return fmt.Sprintf("%d/%d", len(p.Players), p.MaxPlayers)
}

// TimeSlot groups the start time into a named part of the day.
func (p Proposition) TimeSlot() string {
	return p.Time.Slot()
}

// LocationAlias returns the alias of the location or "Unknown".
func (p Proposition) LocationAlias() string {
	if p.Location == nil || p.Location.Alias == "" {
		return "Unknown"
	}
	return p.Location.Alias
}

// NotesPreview truncates the notes to n characters.
func (p Proposition) NotesPreview(n int) string {
	return Preview(p.Notes, n)
}

// Clone returns a copy that shares no slices or pointers with p.
func (p Proposition) Clone() Proposition {
	out := p
	if p.Expansions != nil {
		out.Expansions = append([]Expansion(nil), p.Expansions...)
	}
	if p.Players != nil {
		out.Players = append([]Player(nil), p.Players...)
	}
	if p.Location != nil {
		loc := *p.Location
		out.Location = &loc
	}
	return out
}

// Preview truncates text to n characters and appends an ellipsis. Text that
// already fits is returned unchanged.
func Preview(text string, n int) string {
	if n < 0 || utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return string(runes[:n]) + "..."
}
