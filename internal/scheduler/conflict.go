package scheduler

import (
	"time"

	"github.com/example/boardgame-tables/internal/proposition"
)

// Severity grades a conflict between two joined tables.
type Severity string

const (
	// SeverityError marks tables starting at the same instant.
	SeverityError Severity = "error"
	// SeverityWarning marks tables that partially overlap.
	SeverityWarning Severity = "warning"
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals intersect. Intervals that
// only touch at an endpoint do not overlap.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// Classify grades an overlapping pair. ok is false when they do not overlap.
func Classify(a, b Interval) (severity Severity, ok bool) {
	if !Overlaps(a, b) {
		return "", false
	}
	if a.Start.Equal(b.Start) {
		return SeverityError, true
	}
	return SeverityWarning, true
}

// TableRef identifies one side of a conflict.
type TableRef struct {
	TableID  string
	GameName string
	Start    time.Time
	End      time.Time
}

// Conflict pairs two tables whose schedules overlap.
type Conflict struct {
	First    TableRef
	Second   TableRef
	Severity Severity
}

// Report groups conflicts by severity.
type Report struct {
	Errors   []Conflict
	Warnings []Conflict
}

// Empty reports whether no conflict was found.
func (r Report) Empty() bool {
	return len(r.Errors) == 0 && len(r.Warnings) == 0
}

// Len returns the total number of conflicts.
func (r Report) Len() int {
	return len(r.Errors) + len(r.Warnings)
}

func refOf(p proposition.Proposition) TableRef {
	return TableRef{TableID: p.ID, GameName: p.DisplayName(), Start: p.Start(), End: p.End()}
}

// DetectConflicts compares every unordered pair of tables once. The caller
// passes the tables a single person has joined.
func DetectConflicts(tables []proposition.Proposition) Report {
	refs := make([]TableRef, len(tables))
	for i, p := range tables {
		refs[i] = refOf(p)
	}

	var report Report
	for i := 0; i < len(refs); i++ {
		for j := i + 1; j < len(refs); j++ {
			a, b := refs[i], refs[j]
			severity, ok := Classify(Interval{a.Start, a.End}, Interval{b.Start, b.End})
			if !ok {
				continue
			}
			conflict := Conflict{First: a, Second: b, Severity: severity}
			if severity == SeverityError {
				report.Errors = append(report.Errors, conflict)
			} else {
				report.Warnings = append(report.Warnings, conflict)
			}
		}
	}
	return report
}

// DetectOverlaps narrows props to those userID joined and reports their
// conflicts.
func DetectOverlaps(props []proposition.Proposition, userID string) Report {
	joined := make([]proposition.Proposition, 0, len(props))
	for _, p := range props {
		if p.Joined(userID) {
			joined = append(joined, p)
		}
	}
	return DetectConflicts(joined)
}
