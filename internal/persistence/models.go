package persistence

import (
	"time"

	"github.com/example/boardgame-tables/internal/visibility"
)

// PropositionFilter is the part of a listing evaluated by the store.
type PropositionFilter struct {
	Bucket    visibility.LocationBucket
	Type      visibility.TypeFilter
	EndsAfter *time.Time
}

// LocationFilter narrows location listings. System locations are always
// included; OwnerID adds that user's own locations and AllOwners adds every
// user location.
type LocationFilter struct {
	OwnerID   string
	AllOwners bool
}
