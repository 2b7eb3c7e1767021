// Package visibility decides which propositions a viewer sees.
package visibility

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/boardgame-tables/internal/proposition"
)

// Horizon is how long after its end a proposition stays visible.
const Horizon = 24 * time.Hour

// LocationBucket routes propositions by their location's default flag.
type LocationBucket int

const (
	// BucketAny applies no location constraint.
	BucketAny LocationBucket = iota
	// BucketDefault keeps propositions held at the default location.
	BucketDefault
	// BucketRestOfWorld keeps propositions held anywhere else.
	BucketRestOfWorld
)

func (b LocationBucket) String() string {
	switch b {
	case BucketDefault:
		return "default"
	case BucketRestOfWorld:
		return "rest_of_world"
	default:
		return "any"
	}
}

// ParseLocationBucket resolves a bucket name.
func ParseLocationBucket(value string) (LocationBucket, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "any":
		return BucketAny, nil
	case "default":
		return BucketDefault, nil
	case "rest_of_world", "restoftheworld", "rest-of-world":
		return BucketRestOfWorld, nil
	}
	return BucketAny, fmt.Errorf("visibility: unknown location bucket %q", value)
}

// TypeFilter constrains the proposition type. The zero value accepts any type.
type TypeFilter struct {
	value proposition.Type
	set   bool
}

// AnyType accepts every proposition type.
var AnyType = TypeFilter{}

// OnlyType accepts only propositions of type t.
func OnlyType(t proposition.Type) TypeFilter {
	return TypeFilter{value: t, set: true}
}

// ParseTypeFilter resolves "any" or a proposition type name.
func ParseTypeFilter(value string) (TypeFilter, error) {
	if v := strings.ToLower(strings.TrimSpace(value)); v == "" || v == "any" {
		return AnyType, nil
	}
	t, err := proposition.ParseType(value)
	if err != nil {
		return AnyType, err
	}
	return OnlyType(t), nil
}

// Type returns the selected type and whether one is selected.
func (f TypeFilter) Type() (proposition.Type, bool) {
	return f.value, f.set
}

// Matches reports whether t passes the filter.
func (f TypeFilter) Matches(t proposition.Type) bool {
	return !f.set || f.value == t
}

func (f TypeFilter) String() string {
	if !f.set {
		return "any"
	}
	return f.value.String()
}

// Spec is the set of toggles active for one listing. Every option is
// independent and all of them combine with logical AND.
type Spec struct {
	JoinedByMe   bool
	ProposedByMe bool
	Bucket       LocationBucket
	Type         TypeFilter
}

// Predicate keeps a proposition when it returns true.
type Predicate func(proposition.Proposition) bool

// HorizonCutoff returns the earliest end instant still visible at now.
func HorizonCutoff(now time.Time) time.Time {
	return now.Add(-Horizon)
}

// Predicates expands the spec into its predicates. The horizon and location
// predicates come first since they discard the most rows.
func (s Spec) Predicates(viewer proposition.User, now time.Time) []Predicate {
	preds := []Predicate{WithinHorizon(now)}
	if s.Bucket != BucketAny {
		preds = append(preds, InBucket(s.Bucket))
	}
	if s.Type.set {
		preds = append(preds, OfType(s.Type))
	}
	if s.JoinedByMe {
		preds = append(preds, JoinedBy(viewer.ID))
	}
	if s.ProposedByMe {
		preds = append(preds, ProposedBy(viewer.ID))
	}
	return preds
}

// WithinHorizon hides propositions that ended more than Horizon before now.
func WithinHorizon(now time.Time) Predicate {
	cutoff := HorizonCutoff(now)
	return func(p proposition.Proposition) bool {
		return !p.End().Before(cutoff)
	}
}

// InBucket keeps propositions whose location falls in bucket. Propositions
// without a location never match a specific bucket.
func InBucket(bucket LocationBucket) Predicate {
	return func(p proposition.Proposition) bool {
		isDefault, known := p.AtDefaultLocation()
		switch bucket {
		case BucketDefault:
			return known && isDefault
		case BucketRestOfWorld:
			return known && !isDefault
		default:
			return true
		}
	}
}

// OfType keeps propositions accepted by the type filter.
func OfType(filter TypeFilter) Predicate {
	return func(p proposition.Proposition) bool {
		return filter.Matches(p.Type)
	}
}

// JoinedBy keeps propositions whose roster contains userID.
func JoinedBy(userID string) Predicate {
	return func(p proposition.Proposition) bool {
		return p.Joined(userID)
	}
}

// ProposedBy keeps propositions proposed by userID.
func ProposedBy(userID string) Predicate {
	return func(p proposition.Proposition) bool {
		return p.ProposedByUser(userID)
	}
}

// Apply keeps the propositions accepted by every predicate, preserving order.
func Apply(props []proposition.Proposition, preds ...Predicate) []proposition.Proposition {
	out := make([]proposition.Proposition, 0, len(props))
next:
	for _, p := range props {
		for _, pred := range preds {
			if !pred(p) {
				continue next
			}
		}
		out = append(out, p)
	}
	return out
}

// Filter narrows props to what viewer sees under spec at instant now.
func Filter(props []proposition.Proposition, viewer proposition.User, spec Spec, now time.Time) []proposition.Proposition {
	return Apply(props, spec.Predicates(viewer, now)...)
}
