package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/boardgame-tables/internal/metadata"
	"github.com/example/boardgame-tables/internal/notify"
	"github.com/example/boardgame-tables/internal/persistence"
	"github.com/example/boardgame-tables/internal/proposition"
	"github.com/example/boardgame-tables/internal/scheduler"
	"github.com/example/boardgame-tables/internal/visibility"
)

// PropositionRepository captures the persistence operations needed by the service.
type PropositionRepository interface {
	CreateProposition(ctx context.Context, p proposition.Proposition, joinCreator bool) error
	GetProposition(ctx context.Context, id string) (proposition.Proposition, error)
	JoinProposition(ctx context.Context, tableID, userID string, joinedAt time.Time) error
	LeaveProposition(ctx context.Context, tableID, userID string) error
	UpdateProposition(ctx context.Context, tableID string, patch proposition.Patch, updatedAt time.Time) (proposition.Proposition, error)
	DeleteProposition(ctx context.Context, id string) error
	ListPropositions(ctx context.Context, filter persistence.PropositionFilter) ([]proposition.Proposition, error)
}

// LocationDirectory resolves the locations a viewer may book.
type LocationDirectory interface {
	Default(ctx context.Context) (proposition.Location, error)
	Resolve(ctx context.Context, viewer proposition.User, id string) (proposition.Location, error)
}

// BookingDeps groups the collaborators of the booking service. Notifier and
// Metadata may be nil.
type BookingDeps struct {
	Propositions PropositionRepository
	Users        UserRepository
	Locations    LocationDirectory
	Notifier     notify.Notifier
	Metadata     metadata.Provider
	Policy       Policy
}

// BookingService proposes tables and manages their rosters.
type BookingService struct {
	propositions PropositionRepository
	users        UserRepository
	locations    LocationDirectory
	notifier     notify.Notifier
	metadata     metadata.Provider
	policy       Policy
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewBookingService wires dependencies for booking operations.
func NewBookingService(deps BookingDeps, idGenerator func() string, now func() time.Time) *BookingService {
	return NewBookingServiceWithLogger(deps, idGenerator, now, nil)
}

// NewBookingServiceWithLogger wires dependencies with a specified logger.
func NewBookingServiceWithLogger(deps BookingDeps, idGenerator func() string, now func() time.Time, logger *slog.Logger) *BookingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notify.Nop{}
	}
	provider := deps.Metadata
	if provider == nil {
		provider = metadata.None{}
	}
	return &BookingService{
		propositions: deps.Propositions,
		users:        deps.Users,
		locations:    deps.Locations,
		notifier:     notifier,
		metadata:     provider,
		policy:       deps.Policy,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

func (s *BookingService) ready() error {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}
	if s.propositions == nil {
		return fmt.Errorf("proposition repository not configured")
	}
	return nil
}

// EnsureUser records the viewer resolved by the identity provider.
func (s *BookingService) EnsureUser(ctx context.Context, viewer proposition.User) error {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}
	if strings.TrimSpace(viewer.ID) == "" {
		return ErrUnauthorized
	}
	return ensureUser(ctx, s.users, viewer)
}

// Create proposes a new table. Non-admin type and location choices are
// rewritten to the permitted defaults. Metadata and notification problems
// are reported in the result and never undo the booking.
func (s *BookingService) Create(ctx context.Context, params CreatePropositionParams) (result PropositionResult, err error) {
	if err = s.ready(); err != nil {
		return
	}

	viewer := params.Viewer
	logger := s.loggerWith(ctx, "Create",
		"viewer_id", viewer.ID,
		"join_creator", params.JoinCreator,
	)
	defer func() {
		logOutcome(ctx, logger, err, "failed to create proposition", "proposition created",
			"table_id", result.Proposition.ID,
			"notification", result.Notification,
			"metadata", result.Metadata,
		)
	}()

	if err = checkActor(viewer); err != nil {
		return
	}

	draft := params.Draft
	draft.ProposedBy = viewer.Player()
	if !s.policy.CanChooseType(viewer) {
		draft.Type = proposition.TypeProposition
	}

	var location *proposition.Location
	location, err = s.pickLocation(ctx, viewer, draft.LocationID)
	if err != nil {
		return
	}
	draft.LocationID = ""
	if location != nil {
		draft.LocationID = location.ID
	}

	result.Metadata = s.applyMetadata(ctx, logger, &draft)

	candidate := draft.Build(s.idGenerator(), s.now())
	if vErr := validateProposition(candidate); vErr.HasErrors() {
		err = vErr
		return
	}

	if err = ensureUser(ctx, s.users, viewer); err != nil {
		return
	}
	if err = s.propositions.CreateProposition(ctx, candidate, params.JoinCreator); err != nil {
		err = mapRepoError(err)
		return
	}

	result.Proposition, err = s.propositions.GetProposition(ctx, candidate.ID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	result.Notification = s.announce(ctx, logger, notify.EventCreated, result.Proposition)
	return
}

// Join adds the viewer to the roster. ErrCapacityExceeded and
// ErrAlreadyJoined are expected outcomes and are not retried.
func (s *BookingService) Join(ctx context.Context, viewer proposition.User, tableID string) (p proposition.Proposition, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "Join",
		"viewer_id", viewer.ID,
		"table_id", tableID,
	)
	defer func() {
		logOutcome(ctx, logger, err, "failed to join proposition", "proposition joined", "roster_size", len(p.Players))
	}()

	if err = checkActor(viewer); err != nil {
		return
	}
	if err = ensureUser(ctx, s.users, viewer); err != nil {
		return
	}

	if err = s.propositions.JoinProposition(ctx, tableID, viewer.ID, s.now()); err != nil {
		err = mapRepoError(err)
		return
	}

	p, err = s.propositions.GetProposition(ctx, tableID)
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// Leave removes a player from the roster. Players may remove themselves;
// the proposer and administrators may remove anyone. Removing a player who
// never joined is a no-op.
func (s *BookingService) Leave(ctx context.Context, params RosterParams) (p proposition.Proposition, err error) {
	if err = s.ready(); err != nil {
		return
	}

	target := params.UserID
	if target == "" {
		target = params.Viewer.ID
	}

	logger := s.loggerWith(ctx, "Leave",
		"viewer_id", params.Viewer.ID,
		"table_id", params.TableID,
		"user_id", target,
	)
	defer func() {
		logOutcome(ctx, logger, err, "failed to leave proposition", "proposition left", "roster_size", len(p.Players))
	}()

	var current proposition.Proposition
	current, err = s.propositions.GetProposition(ctx, params.TableID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if !CanLeave(params.Viewer, current, target) {
		err = ErrUnauthorized
		return
	}

	if err = s.propositions.LeaveProposition(ctx, params.TableID, target); err != nil {
		err = mapRepoError(err)
		return
	}

	p, err = s.propositions.GetProposition(ctx, params.TableID)
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// Update edits a table. The game reference cannot change and capacity cannot
// drop below the current roster.
func (s *BookingService) Update(ctx context.Context, params UpdatePropositionParams) (result PropositionResult, err error) {
	if err = s.ready(); err != nil {
		return
	}

	viewer := params.Viewer
	logger := s.loggerWith(ctx, "Update",
		"viewer_id", viewer.ID,
		"table_id", params.TableID,
	)
	defer func() {
		logOutcome(ctx, logger, err, "failed to update proposition", "proposition updated",
			"notification", result.Notification,
		)
	}()

	if err = checkActor(viewer); err != nil {
		return
	}

	var current proposition.Proposition
	current, err = s.propositions.GetProposition(ctx, params.TableID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if !CanManage(viewer, current) {
		err = ErrUnauthorized
		return
	}

	patch := params.Patch
	if patch.BGGGameID != nil && *patch.BGGGameID != current.BGGGameID {
		err = fieldError("bgg_game_id", "game cannot be changed after creation")
		return
	}
	if patch.Type != nil && !s.policy.CanChooseType(viewer) {
		pinned := proposition.TypeProposition
		patch.Type = &pinned
	}
	if patch.LocationID != nil {
		var location *proposition.Location
		location, err = s.pickLocation(ctx, viewer, *patch.LocationID)
		if err != nil {
			return
		}
		id := ""
		if location != nil {
			id = location.ID
		}
		patch.LocationID = &id
	}
	result.Metadata = metadata.StatusSkipped

	if patch.IsEmpty() {
		result.Proposition = current
		result.Notification = notify.StatusSkipped
		return
	}

	if vErr := validateProposition(patch.Apply(current)); vErr.HasErrors() {
		err = vErr
		return
	}

	result.Proposition, err = s.propositions.UpdateProposition(ctx, params.TableID, patch, s.now())
	if err != nil {
		err = mapRepoError(err)
		return
	}

	result.Notification = s.announce(ctx, logger, notify.EventUpdated, result.Proposition)
	return
}

// Delete removes a table and its roster.
func (s *BookingService) Delete(ctx context.Context, viewer proposition.User, tableID string) (err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "Delete",
		"viewer_id", viewer.ID,
		"table_id", tableID,
	)
	defer func() {
		logOutcome(ctx, logger, err, "failed to delete proposition", "proposition deleted")
	}()

	var current proposition.Proposition
	current, err = s.propositions.GetProposition(ctx, tableID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if !CanManage(viewer, current) {
		err = ErrUnauthorized
		return
	}

	if err = s.propositions.DeleteProposition(ctx, tableID); err != nil {
		err = mapRepoError(err)
	}
	return
}

// Get returns one table regardless of the visibility horizon.
func (s *BookingService) Get(ctx context.Context, tableID string) (proposition.Proposition, error) {
	if err := s.ready(); err != nil {
		return proposition.Proposition{}, err
	}
	p, err := s.propositions.GetProposition(ctx, tableID)
	if err != nil {
		return proposition.Proposition{}, mapRepoError(err)
	}
	return p, nil
}

// List returns the tables visible to the viewer under spec. Location bucket,
// type and horizon are evaluated by the store; the remaining predicates run
// in memory.
func (s *BookingService) List(ctx context.Context, params ListPropositionsParams) (props []proposition.Proposition, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "List",
		"viewer_id", params.Viewer.ID,
		"bucket", params.Spec.Bucket.String(),
		"type", params.Spec.Type.String(),
		"joined_by_me", params.Spec.JoinedByMe,
		"proposed_by_me", params.Spec.ProposedByMe,
	)
	defer func() {
		if err != nil {
			logOutcome(ctx, logger, err, "failed to list propositions", "")
			return
		}
		logger.DebugContext(ctx, "propositions listed", "result_count", len(props))
	}()

	now := s.now()
	cutoff := visibility.HorizonCutoff(now)

	var stored []proposition.Proposition
	stored, err = s.propositions.ListPropositions(ctx, persistence.PropositionFilter{
		Bucket:    params.Spec.Bucket,
		Type:      params.Spec.Type,
		EndsAfter: &cutoff,
	})
	if err != nil {
		err = mapRepoError(err)
		return
	}

	props = visibility.Filter(stored, params.Viewer, params.Spec, now)
	return
}

// Conflicts reports overlaps between the visible tables the viewer joined.
func (s *BookingService) Conflicts(ctx context.Context, viewer proposition.User) (scheduler.Report, error) {
	props, err := s.List(ctx, ListPropositionsParams{Viewer: viewer, Spec: visibility.Spec{JoinedByMe: true}})
	if err != nil {
		return scheduler.Report{}, err
	}
	return scheduler.DetectOverlaps(props, viewer.ID), nil
}

// pickLocation applies the location policy. Viewers without the location
// permission always get the default location; others get the location they
// asked for, or the default one when they asked for none.
func (s *BookingService) pickLocation(ctx context.Context, viewer proposition.User, requested string) (*proposition.Location, error) {
	if s.locations == nil {
		if requested == "" {
			return nil, nil
		}
		return &proposition.Location{ID: requested}, nil
	}

	if requested == "" || !s.policy.CanChooseLocation(viewer) {
		location, err := s.locations.Default(ctx)
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &location, nil
	}

	location, err := s.locations.Resolve(ctx, viewer, requested)
	if err != nil {
		return nil, err
	}
	return &location, nil
}

// applyMetadata fills the game name from the metadata provider when the
// caller left it empty.
func (s *BookingService) applyMetadata(ctx context.Context, logger *slog.Logger, draft *proposition.Draft) metadata.Status {
	if strings.TrimSpace(draft.GameName) != "" && draft.BGGGameID <= 0 {
		return metadata.StatusSkipped
	}
	game, status, err := metadata.Fetch(ctx, s.metadata, draft.BGGGameID)
	if err != nil {
		logger.WarnContext(ctx, "metadata lookup failed", "bgg_game_id", draft.BGGGameID, "error", err)
	}
	if strings.TrimSpace(draft.GameName) == "" && game.DisplayName != "" {
		draft.GameName = game.DisplayName
	}
	return status
}

func (s *BookingService) announce(ctx context.Context, logger *slog.Logger, kind notify.EventKind, p proposition.Proposition) notify.Status {
	status, err := s.notifier.Notify(ctx, notify.Event{Kind: kind, Proposition: p, OccurredAt: s.now()})
	if err != nil {
		logger.WarnContext(ctx, "notification failed", "table_id", p.ID, "error", err)
		if status == "" || status == notify.StatusSent {
			status = notify.StatusFailed
		}
	}
	return status
}

func checkActor(viewer proposition.User) error {
	if strings.TrimSpace(viewer.ID) == "" {
		return ErrUnauthorized
	}
	if viewer.IsBanned {
		return ErrBanned
	}
	return nil
}
