package proposition

import "time"

// Draft carries the caller supplied fields of a new proposition.
type Draft struct {
	GameName        string
	BGGGameID       int
	Notes           string
	Expansions      []Expansion
	Date            time.Time
	Time            TimeOfDay
	DurationMinutes int
	MaxPlayers      int
	ProposedBy      Player
	LocationID      string
	Type            Type
}

// Build materialises the draft as a proposition with an empty roster.
func (d Draft) Build(id string, createdAt time.Time) Proposition {
	p := Proposition{
		ID:              id,
		GameName:        d.GameName,
		BGGGameID:       d.BGGGameID,
		Notes:           d.Notes,
		Expansions:      NormalizeExpansions(d.Expansions),
		Date:            DateOf(d.Date),
		Time:            d.Time,
		DurationMinutes: d.DurationMinutes,
		MaxPlayers:      d.MaxPlayers,
		ProposedBy:      d.ProposedBy,
		Type:            d.Type,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
	if d.LocationID != "" {
		p.Location = &Location{ID: d.LocationID}
	}
	return p
}

// Patch replaces the mutable fields of a proposition. Nil fields are kept.
// An empty LocationID clears the location.
type Patch struct {
	GameName        *string
	BGGGameID       *int
	Notes           *string
	Expansions      *[]Expansion
	Date            *time.Time
	Time            *TimeOfDay
	DurationMinutes *int
	MaxPlayers      *int
	LocationID      *string
	Type            *Type
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.GameName == nil && p.BGGGameID == nil && p.Notes == nil && p.Expansions == nil &&
		p.Date == nil && p.Time == nil && p.DurationMinutes == nil && p.MaxPlayers == nil &&
		p.LocationID == nil && p.Type == nil
}

// Apply returns a copy of current with the patch applied. Roster, identity and
// proposer are never touched.
func (p Patch) Apply(current Proposition) Proposition {
	out := current.Clone()
	if p.GameName != nil {
		out.GameName = *p.GameName
	}
	if p.BGGGameID != nil {
		out.BGGGameID = *p.BGGGameID
	}
	if p.Notes != nil {
		out.Notes = *p.Notes
	}
	if p.Expansions != nil {
		out.Expansions = NormalizeExpansions(*p.Expansions)
	}
	if p.Date != nil {
		out.Date = DateOf(*p.Date)
	}
	if p.Time != nil {
		out.Time = *p.Time
	}
	if p.DurationMinutes != nil {
		out.DurationMinutes = *p.DurationMinutes
	}
	if p.MaxPlayers != nil {
		out.MaxPlayers = *p.MaxPlayers
	}
	if p.LocationID != nil {
		if *p.LocationID == "" {
			out.Location = nil
		} else if out.Location == nil || out.Location.ID != *p.LocationID {
			out.Location = &Location{ID: *p.LocationID}
		}
	}
	if p.Type != nil {
		out.Type = *p.Type
	}
	return out
}
