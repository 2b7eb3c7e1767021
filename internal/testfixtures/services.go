package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/boardgame-tables/internal/application"
	"github.com/example/boardgame-tables/internal/metadata"
	"github.com/example/boardgame-tables/internal/notify"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// LocationServiceDeps captures dependencies for constructing a location service.
type LocationServiceDeps struct {
	Locations application.LocationRepository
	Users     application.UserRepository
	Policy    application.Policy
	CacheTTL  time.Duration
	Logger    *slog.Logger
}

// NewLocationService builds a location service using the supplied dependencies.
func (f *ServiceFactory) NewLocationService(deps LocationServiceDeps) *application.LocationService {
	return application.NewLocationServiceWithLogger(
		deps.Locations,
		deps.Users,
		application.LocationServiceConfig{Policy: deps.Policy, CacheTTL: deps.CacheTTL},
		f.IDGenerator.NextFunc(),
		f.Clock.NowFunc(),
		deps.Logger,
	)
}

// BookingServiceDeps captures dependencies for constructing a booking service.
type BookingServiceDeps struct {
	Propositions application.PropositionRepository
	Users        application.UserRepository
	Locations    application.LocationDirectory
	Notifier     notify.Notifier
	Metadata     metadata.Provider
	Policy       application.Policy
	IDGenerator  func() string
	Now          func() time.Time
	Logger       *slog.Logger
}

// NewBookingService builds a booking service using the supplied dependencies
// combined with the factory defaults.
func (f *ServiceFactory) NewBookingService(deps BookingServiceDeps) *application.BookingService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewBookingServiceWithLogger(application.BookingDeps{
		Propositions: deps.Propositions,
		Users:        deps.Users,
		Locations:    deps.Locations,
		Notifier:     deps.Notifier,
		Metadata:     deps.Metadata,
		Policy:       deps.Policy,
	}, idGen, now, deps.Logger)
}

// Services bundles a booking and a location service sharing one SQLite
// harness.
type Services struct {
	Booking   *application.BookingService
	Locations *application.LocationService
}

// NewSQLiteServices wires both services to harness.
func (f *ServiceFactory) NewSQLiteServices(harness *SQLiteHarness, policy application.Policy) Services {
	locations := f.NewLocationService(LocationServiceDeps{
		Locations: harness.Locations,
		Users:     harness.Users,
		Policy:    policy,
	})
	booking := f.NewBookingService(BookingServiceDeps{
		Propositions: harness.Propositions,
		Users:        harness.Users,
		Locations:    locations,
		Policy:       policy,
	})
	return Services{Booking: booking, Locations: locations}
}
