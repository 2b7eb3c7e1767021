package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/boardgame-tables/internal/persistence"
	"github.com/example/boardgame-tables/internal/proposition"
)

// LocationRepository captures the persistence operations needed by the service.
type LocationRepository interface {
	CreateLocation(ctx context.Context, location proposition.Location) error
	UpdateLocation(ctx context.Context, location proposition.Location) error
	GetLocation(ctx context.Context, id string) (proposition.Location, error)
	GetDefaultLocation(ctx context.Context) (proposition.Location, error)
	EnsureDefaultLocation(ctx context.Context, location proposition.Location) (proposition.Location, error)
	ListLocations(ctx context.Context, filter persistence.LocationFilter) ([]proposition.Location, error)
	DeleteLocation(ctx context.Context, id string) error
}

// UserRepository stores the identities resolved by the identity provider.
type UserRepository interface {
	UpsertUser(ctx context.Context, user proposition.User) error
}

// LocationServiceConfig carries the optional knobs of NewLocationService.
type LocationServiceConfig struct {
	Policy   Policy
	CacheTTL time.Duration
}

// LocationService manages where tables are held and caches the location
// lists shown when proposing.
type LocationService struct {
	locations   LocationRepository
	users       UserRepository
	policy      Policy
	cache       *locationCache
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewLocationService constructs a location service with the provided dependencies.
func NewLocationService(locations LocationRepository, users UserRepository, cfg LocationServiceConfig, idGenerator func() string, now func() time.Time) *LocationService {
	return NewLocationServiceWithLogger(locations, users, cfg, idGenerator, now, nil)
}

// NewLocationServiceWithLogger constructs a location service with a specified logger.
func NewLocationServiceWithLogger(locations LocationRepository, users UserRepository, cfg LocationServiceConfig, idGenerator func() string, now func() time.Time, logger *slog.Logger) *LocationService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &LocationService{
		locations:   locations,
		users:       users,
		policy:      cfg.Policy,
		cache:       newLocationCache(cfg.CacheTTL),
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *LocationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "LocationService", operation, attrs...)
}

// EnsureDefault makes sure the default location exists, seeding it from
// seed when the store has none.
func (s *LocationService) EnsureDefault(ctx context.Context, seed LocationInput) (location proposition.Location, err error) {
	if s == nil || s.locations == nil {
		err = fmt.Errorf("location repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "EnsureDefault", "alias", seed.Alias)
	defer func() {
		logOutcome(ctx, logger, err, "failed to ensure default location", "default location ready", "location_id", location.ID)
	}()

	if vErr := validateLocationInput(seed); vErr.HasErrors() {
		err = vErr
		return
	}

	input := normalizeLocationInput(seed)
	now := s.now()
	location, err = s.locations.EnsureDefaultLocation(ctx, proposition.Location{
		ID:          s.idGenerator(),
		Alias:       input.Alias,
		Street:      input.Street,
		HouseNumber: input.HouseNumber,
		City:        input.City,
		Country:     input.Country,
		IsDefault:   true,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	s.cache.Invalidate()
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// Default returns the default location.
func (s *LocationService) Default(ctx context.Context) (proposition.Location, error) {
	if s == nil || s.locations == nil {
		return proposition.Location{}, fmt.Errorf("location repository not configured")
	}
	if location, ok := s.cache.defaultLocation(); ok {
		return location, nil
	}
	location, err := s.locations.GetDefaultLocation(ctx)
	if err != nil {
		return proposition.Location{}, mapRepoError(err)
	}
	s.cache.storeDefault(location)
	return location, nil
}

// AvailableLocations lists the locations viewer may pick: system locations
// and the viewer's own, default first. Administrators see every location.
func (s *LocationService) AvailableLocations(ctx context.Context, viewer proposition.User) ([]proposition.Location, error) {
	if s == nil || s.locations == nil {
		return nil, fmt.Errorf("location repository not configured")
	}

	key := "user:" + viewer.ID
	filter := persistence.LocationFilter{OwnerID: viewer.ID}
	if viewer.IsAdmin {
		key = "admin"
		filter = persistence.LocationFilter{AllOwners: true}
	}

	if locations, ok := s.cache.available(key); ok {
		return locations, nil
	}
	locations, err := s.locations.ListLocations(ctx, filter)
	if err != nil {
		return nil, mapRepoError(err)
	}
	s.cache.storeAvailable(key, locations)
	return cloneLocations(locations), nil
}

// Resolve returns the location with id when viewer may use it.
func (s *LocationService) Resolve(ctx context.Context, viewer proposition.User, id string) (proposition.Location, error) {
	locations, err := s.AvailableLocations(ctx, viewer)
	if err != nil {
		return proposition.Location{}, err
	}
	for _, location := range locations {
		if location.ID == id {
			return location, nil
		}
	}
	return proposition.Location{}, fieldError("location_id", "unknown location")
}

// CreateLocation adds a personal or, for administrators, a system location.
func (s *LocationService) CreateLocation(ctx context.Context, params CreateLocationParams) (location proposition.Location, err error) {
	if s == nil || s.locations == nil {
		err = fmt.Errorf("location repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateLocation",
		"viewer_id", params.Viewer.ID,
		"system", params.System,
	)
	defer func() {
		logOutcome(ctx, logger, err, "failed to create location", "location created", "location_id", location.ID)
	}()

	viewer := params.Viewer
	switch {
	case viewer.ID == "":
		err = ErrUnauthorized
		return
	case viewer.IsBanned:
		err = ErrBanned
		return
	case params.System && !viewer.IsAdmin:
		err = ErrUnauthorized
		return
	case !s.policy.CanChooseLocation(viewer):
		err = ErrUnauthorized
		return
	}

	if vErr := validateLocationInput(params.Input); vErr.HasErrors() {
		err = vErr
		return
	}

	if err = ensureUser(ctx, s.users, viewer); err != nil {
		return
	}

	input := normalizeLocationInput(params.Input)
	now := s.now()
	location = proposition.Location{
		ID:          s.idGenerator(),
		Alias:       input.Alias,
		Street:      input.Street,
		HouseNumber: input.HouseNumber,
		City:        input.City,
		Country:     input.Country,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if !params.System {
		location.OwnerID = viewer.ID
	}

	err = s.locations.CreateLocation(ctx, location)
	s.cache.Invalidate()
	if err != nil {
		err = mapRepoError(err)
		location = proposition.Location{}
	}
	return
}

// UpdateLocation edits the alias and address of a location.
func (s *LocationService) UpdateLocation(ctx context.Context, params UpdateLocationParams) (location proposition.Location, err error) {
	if s == nil || s.locations == nil {
		err = fmt.Errorf("location repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateLocation",
		"viewer_id", params.Viewer.ID,
		"location_id", params.LocationID,
	)
	defer func() {
		logOutcome(ctx, logger, err, "failed to update location", "location updated")
	}()

	var existing proposition.Location
	existing, err = s.locations.GetLocation(ctx, params.LocationID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if !CanManageLocation(params.Viewer, existing) {
		err = ErrUnauthorized
		return
	}
	if vErr := validateLocationInput(params.Input); vErr.HasErrors() {
		err = vErr
		return
	}

	input := normalizeLocationInput(params.Input)
	updated := existing
	updated.Alias = input.Alias
	updated.Street = input.Street
	updated.HouseNumber = input.HouseNumber
	updated.City = input.City
	updated.Country = input.Country

	err = s.locations.UpdateLocation(ctx, updated)
	s.cache.Invalidate()
	if err != nil {
		err = mapRepoError(err)
		return
	}

	location, err = s.locations.GetLocation(ctx, params.LocationID)
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// DeleteLocation removes a location. Tables held there keep existing with an
// unknown location. The default location cannot be deleted.
func (s *LocationService) DeleteLocation(ctx context.Context, viewer proposition.User, locationID string) (err error) {
	if s == nil || s.locations == nil {
		return fmt.Errorf("location repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteLocation",
		"viewer_id", viewer.ID,
		"location_id", locationID,
	)
	defer func() {
		logOutcome(ctx, logger, err, "failed to delete location", "location deleted")
	}()

	var existing proposition.Location
	existing, err = s.locations.GetLocation(ctx, locationID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if !CanManageLocation(viewer, existing) {
		err = ErrUnauthorized
		return
	}
	if existing.IsDefault {
		err = ErrDefaultLocation
		return
	}

	err = s.locations.DeleteLocation(ctx, locationID)
	s.cache.Invalidate()
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// ensureUser records the viewer so that rosters and ownership can reference it.
func ensureUser(ctx context.Context, users UserRepository, viewer proposition.User) error {
	if users == nil {
		return nil
	}
	if err := users.UpsertUser(ctx, viewer); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			return fieldError("username", "username is already taken")
		}
		return mapRepoError(err)
	}
	return nil
}
