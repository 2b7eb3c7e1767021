package application

import (
	"strings"

	"github.com/example/boardgame-tables/internal/proposition"
)

const (
	maxGameNameLength = 200
	maxNotesLength    = 2000
	maxAliasLength    = 100
)

func validateProposition(p proposition.Proposition) *ValidationError {
	vErr := &ValidationError{}

	name := strings.TrimSpace(p.GameName)
	switch {
	case name == "":
		vErr.add("game_name", "game name is required")
	case len([]rune(name)) > maxGameNameLength:
		vErr.add("game_name", "game name is too long")
	}
	if p.BGGGameID < 0 {
		vErr.add("bgg_game_id", "game id cannot be negative")
	}
	if len([]rune(p.Notes)) > maxNotesLength {
		vErr.add("notes", "notes are too long")
	}
	if p.Date.IsZero() {
		vErr.add("date", "date is required")
	}
	if !p.Time.Valid() {
		vErr.add("time", "time of day is invalid")
	}
	if p.DurationMinutes <= 0 {
		vErr.add("duration", "duration must be positive")
	}
	if p.MaxPlayers < 1 {
		vErr.add("max_players", "at least one player is required")
	}
	if !p.Type.Valid() {
		vErr.add("proposition_type", "unknown proposition type")
	}
	for _, exp := range p.Expansions {
		if exp.ID <= 0 {
			vErr.add("expansions", "expansion ids must be positive")
			break
		}
	}

	return vErr
}

func validateLocationInput(input LocationInput) *ValidationError {
	vErr := &ValidationError{}
	alias := strings.TrimSpace(input.Alias)
	switch {
	case alias == "":
		vErr.add("alias", "alias is required")
	case len([]rune(alias)) > maxAliasLength:
		vErr.add("alias", "alias is too long")
	}
	return vErr
}

func normalizeLocationInput(input LocationInput) LocationInput {
	return LocationInput{
		Alias:       strings.TrimSpace(input.Alias),
		Street:      strings.TrimSpace(input.Street),
		HouseNumber: strings.TrimSpace(input.HouseNumber),
		City:        strings.TrimSpace(input.City),
		Country:     strings.TrimSpace(input.Country),
	}
}
