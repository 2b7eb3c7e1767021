package proposition

import (
	"fmt"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// Slot presets offered when proposing a table.
var (
	SlotMorning   = TimeOfDay{Hour: 9}
	SlotAfternoon = TimeOfDay{Hour: 14}
	SlotEvening   = TimeOfDay{Hour: 18}
	SlotNight     = TimeOfDay{Hour: 22}
)

// SlotPresets maps preset names to their wall-clock time.
var SlotPresets = map[string]TimeOfDay{
	"morning":   SlotMorning,
	"afternoon": SlotAfternoon,
	"evening":   SlotEvening,
	"night":     SlotNight,
}

// NewTimeOfDay returns the wall-clock part of t.
func NewTimeOfDay(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

// ParseTimeOfDay accepts a slot preset name or an HH:MM[:SS] value.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	trimmed := strings.TrimSpace(value)
	if preset, ok := SlotPresets[strings.ToLower(trimmed)]; ok {
		return preset, nil
	}
	for _, layout := range []string{"15:04:05", "15:04"} {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return NewTimeOfDay(parsed), nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("proposition: invalid time of day %q", value)
}

// Valid reports whether the components form a real wall-clock time.
func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour < 24 && t.Minute >= 0 && t.Minute < 60 && t.Second >= 0 && t.Second < 60
}

// On places the time of day on the calendar date of d, in d's location.
func (t TimeOfDay) On(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour, t.Minute, t.Second, 0, d.Location())
}

// String formats the value as HH:MM:SS.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// Short formats the value as HH:MM.
func (t TimeOfDay) Short() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Slot groups the time into Morning, Afternoon or Evening.
func (t TimeOfDay) Slot() string {
	switch {
	case t.Hour < 12:
		return "Morning"
	case t.Hour < 18:
		return "Afternoon"
	default:
		return "Evening"
	}
}

// DateOf truncates t to midnight of its calendar day in t's location.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
