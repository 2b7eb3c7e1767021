package proposition

import (
	"fmt"
	"strings"
)

// Type classifies a proposition and routes it to a listing bucket.
type Type int

const (
	// TypeProposition is the default classification for regular game sessions.
	TypeProposition Type = iota
	// TypeTournament marks a competitive session announced by an administrator.
	TypeTournament
	// TypeDemo marks a demonstration session.
	TypeDemo
)

// Types lists every known classification in declaration order.
var Types = []Type{TypeProposition, TypeTournament, TypeDemo}

// Valid reports whether t is a known classification.
func (t Type) Valid() bool {
	return t >= TypeProposition && t <= TypeDemo
}

func (t Type) String() string {
	switch t {
	case TypeProposition:
		return "proposition"
	case TypeTournament:
		return "tournament"
	case TypeDemo:
		return "demo"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// Prefix returns the presentation prefix prepended to the game name, if any.
func (t Type) Prefix() string {
	switch t {
	case TypeTournament:
		return "TOURNAMENT | "
	case TypeDemo:
		return "DEMO | "
	default:
		return ""
	}
}

// ParseType resolves a classification from its name or numeric code.
func ParseType(value string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "proposition", "0":
		return TypeProposition, nil
	case "tournament", "1":
		return TypeTournament, nil
	case "demo", "2":
		return TypeDemo, nil
	}
	return TypeProposition, fmt.Errorf("proposition: unknown type %q", value)
}
