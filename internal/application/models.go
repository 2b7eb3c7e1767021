package application

import (
	"github.com/example/boardgame-tables/internal/metadata"
	"github.com/example/boardgame-tables/internal/notify"
	"github.com/example/boardgame-tables/internal/proposition"
	"github.com/example/boardgame-tables/internal/visibility"
)

// Policy holds the configuration driven permissions of the booking flow.
type Policy struct {
	// CanUsersSetLocation lets non-admin users pick a location other than the
	// default one and manage their own locations.
	CanUsersSetLocation bool
}

// CreatePropositionParams wraps the data required to propose a table.
type CreatePropositionParams struct {
	Viewer      proposition.User
	Draft       proposition.Draft
	JoinCreator bool
}

// UpdatePropositionParams wraps the data required to edit a table.
type UpdatePropositionParams struct {
	Viewer  proposition.User
	TableID string
	Patch   proposition.Patch
}

// RosterParams identifies a roster change. An empty UserID targets the viewer.
type RosterParams struct {
	Viewer  proposition.User
	TableID string
	UserID  string
}

// ListPropositionsParams wraps a listing request.
type ListPropositionsParams struct {
	Viewer proposition.User
	Spec   visibility.Spec
}

// PropositionResult is a committed proposition together with the outcome of
// the collaborators consulted after the commit.
type PropositionResult struct {
	Proposition  proposition.Proposition
	Notification notify.Status
	Metadata     metadata.Status
}

// LocationInput captures caller provided location fields.
type LocationInput struct {
	Alias       string
	Street      string
	HouseNumber string
	City        string
	Country     string
}

// CreateLocationParams wraps the data required to add a location. System
// locations are shared with everyone and require an administrator.
type CreateLocationParams struct {
	Viewer proposition.User
	Input  LocationInput
	System bool
}

// UpdateLocationParams wraps the data required to edit a location.
type UpdateLocationParams struct {
	Viewer     proposition.User
	LocationID string
	Input      LocationInput
}
