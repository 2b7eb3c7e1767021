package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/boardgame-tables/internal/proposition"
)

var day = time.Date(2024, time.May, 4, 0, 0, 0, 0, time.UTC)

func joinedTable(id string, hour, minute, durationMinutes int) proposition.Proposition {
	return proposition.Proposition{
		ID:              id,
		GameName:        "Game " + id,
		Date:            day,
		Time:            proposition.TimeOfDay{Hour: hour, Minute: minute},
		DurationMinutes: durationMinutes,
		MaxPlayers:      4,
		Players:         []proposition.Player{{UserID: "u-1"}},
	}
}

func TestDetectOverlaps(t *testing.T) {
	t.Run("touching endpoints do not overlap", func(t *testing.T) {
		a := joinedTable("a", 10, 0, 120)
		b := joinedTable("b", 12, 0, 60)

		report := DetectOverlaps([]proposition.Proposition{a, b}, "u-1")
		assert.True(t, report.Empty())
	})

	t.Run("partial overlap is a warning", func(t *testing.T) {
		a := joinedTable("a", 10, 0, 120)
		b := joinedTable("b", 11, 0, 120)

		report := DetectOverlaps([]proposition.Proposition{a, b}, "u-1")
		require.Len(t, report.Warnings, 1)
		assert.Empty(t, report.Errors)
		assert.Equal(t, "a", report.Warnings[0].First.TableID)
		assert.Equal(t, "b", report.Warnings[0].Second.TableID)
		assert.Equal(t, "Game b", report.Warnings[0].Second.GameName)
	})

	t.Run("identical start is an error", func(t *testing.T) {
		a := joinedTable("a", 10, 0, 120)
		b := joinedTable("b", 10, 0, 60)

		report := DetectOverlaps([]proposition.Proposition{a, b}, "u-1")
		require.Len(t, report.Errors, 1)
		assert.Empty(t, report.Warnings)
		assert.Equal(t, SeverityError, report.Errors[0].Severity)
	})

	t.Run("containment is a warning", func(t *testing.T) {
		a := joinedTable("a", 11, 0, 60)
		b := joinedTable("b", 10, 0, 180)

		report := DetectOverlaps([]proposition.Proposition{a, b}, "u-1")
		assert.Len(t, report.Warnings, 1)
	})

	t.Run("tables the user did not join are ignored", func(t *testing.T) {
		a := joinedTable("a", 10, 0, 120)
		b := joinedTable("b", 10, 0, 120)
		b.Players = []proposition.Player{{UserID: "u-2"}}

		report := DetectOverlaps([]proposition.Proposition{a, b}, "u-1")
		assert.True(t, report.Empty())
	})

	t.Run("each pair is reported once", func(t *testing.T) {
		tables := []proposition.Proposition{
			joinedTable("a", 10, 0, 240),
			joinedTable("b", 10, 0, 60),
			joinedTable("c", 11, 0, 60),
		}

		report := DetectOverlaps(tables, "u-1")
		assert.Len(t, report.Errors, 1)
		assert.Len(t, report.Warnings, 1)
		assert.Equal(t, 2, report.Len())
	})

	t.Run("type prefix is part of the reported name", func(t *testing.T) {
		a := joinedTable("a", 10, 0, 60)
		a.Type = proposition.TypeTournament
		b := joinedTable("b", 10, 30, 60)

		report := DetectOverlaps([]proposition.Proposition{a, b}, "u-1")
		require.Len(t, report.Warnings, 1)
		assert.Equal(t, "TOURNAMENT | Game a", report.Warnings[0].First.GameName)
	})
}

func TestOverlapsIsSymmetric(t *testing.T) {
	base := time.Date(2024, time.May, 4, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"touching", Interval{base, base.Add(2 * time.Hour)}, Interval{base.Add(2 * time.Hour), base.Add(3 * time.Hour)}, false},
		{"partial", Interval{base, base.Add(2 * time.Hour)}, Interval{base.Add(time.Hour), base.Add(3 * time.Hour)}, true},
		{"contained", Interval{base, base.Add(4 * time.Hour)}, Interval{base.Add(time.Hour), base.Add(2 * time.Hour)}, true},
		{"disjoint", Interval{base, base.Add(time.Hour)}, Interval{base.Add(5 * time.Hour), base.Add(6 * time.Hour)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Overlaps(tc.a, tc.b))
			assert.Equal(t, tc.want, Overlaps(tc.b, tc.a))
		})
	}
}
