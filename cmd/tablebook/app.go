package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/boardgame-tables/internal/application"
	"github.com/example/boardgame-tables/internal/config"
	"github.com/example/boardgame-tables/internal/logging"
	"github.com/example/boardgame-tables/internal/metadata"
	"github.com/example/boardgame-tables/internal/notify"
	"github.com/example/boardgame-tables/internal/persistence/sqlite"
	"github.com/example/boardgame-tables/internal/proposition"
)

// identity is the acting user as supplied on the command line. The identity
// provider is external, so the flags are trusted.
type identity struct {
	ID       string
	Username string
	Email    string
	Admin    bool
	Banned   bool
}

func (i identity) user() (proposition.User, error) {
	id := strings.TrimSpace(i.ID)
	if id == "" {
		return proposition.User{}, errors.New("no acting user: pass --user or set TABLEBOOK_USER")
	}
	username := strings.TrimSpace(i.Username)
	if username == "" {
		username = id
	}
	return proposition.User{
		ID:       id,
		Username: username,
		Email:    strings.TrimSpace(i.Email),
		IsAdmin:  i.Admin,
		IsBanned: i.Banned,
	}, nil
}

// app holds everything a command needs once configuration is loaded.
type app struct {
	identity *identity

	cfg       config.Config
	logger    *slog.Logger
	storage   *sqlite.Storage
	booking   *application.BookingService
	locations *application.LocationService
	closers   []func()
}

func (a *app) open(ctx context.Context, envFile string, logOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := config.LoadDotEnv(envFile); err != nil {
		return fmt.Errorf("load %s: %w", envFile, err)
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.New(logOut, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger

	storage, err := sqlite.Open(cfg.SQLiteDSN,
		sqlite.WithTimeZone(cfg.Location()),
		sqlite.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	a.storage = storage
	a.closers = append(a.closers, func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	})

	if err := storage.Migrate(ctx); err != nil {
		_ = a.close()
		return err
	}

	policy := application.Policy{CanUsersSetLocation: cfg.CanUsersSetLocation}
	idGenerator := uuid.NewString
	now := time.Now

	a.locations = application.NewLocationServiceWithLogger(
		storage, storage,
		application.LocationServiceConfig{Policy: policy, CacheTTL: cfg.LocationCacheTTL},
		idGenerator, now, logger,
	)
	if _, err := a.locations.EnsureDefault(ctx, application.LocationInput{
		Alias:       cfg.DefaultLocation.Alias,
		Street:      cfg.DefaultLocation.Street,
		HouseNumber: cfg.DefaultLocation.HouseNumber,
		City:        cfg.DefaultLocation.City,
		Country:     cfg.DefaultLocation.Country,
	}); err != nil {
		_ = a.close()
		return fmt.Errorf("seed default location: %w", err)
	}

	provider, err := a.metadataProvider()
	if err != nil {
		_ = a.close()
		return err
	}

	a.booking = application.NewBookingServiceWithLogger(application.BookingDeps{
		Propositions: storage,
		Users:        storage,
		Locations:    a.locations,
		Notifier:     a.notifier(),
		Metadata:     provider,
		Policy:       policy,
	}, idGenerator, now, logger)
	return nil
}

func (a *app) metadataProvider() (metadata.Provider, error) {
	if a.cfg.MetadataCatalog == "" {
		return metadata.None{}, nil
	}
	catalog, err := metadata.LoadCatalog(a.cfg.MetadataCatalog)
	if err != nil {
		return nil, err
	}
	return metadata.NewCached(catalog, a.cfg.MetadataCacheSize)
}

// notifier connects to NATS when configured. A server that cannot be reached
// disables notifications instead of failing the command.
func (a *app) notifier() notify.Notifier {
	if !a.cfg.NotificationsEnabled() {
		return notify.Nop{}
	}
	pub, err := notify.Connect(notify.NATSOptions{
		URL:          a.cfg.NATSURL,
		Subject:      a.cfg.NATSSubject,
		BaseURL:      a.cfg.BaseURL,
		FlushTimeout: a.cfg.NATSFlushTimeout,
		Logger:       a.logger,
	})
	if err != nil {
		a.logger.Warn("notifications disabled", "error", err)
		return notify.Nop{}
	}
	a.closers = append(a.closers, pub.Close)
	return pub
}

func (a *app) close() error {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
	return nil
}

func (a *app) viewer() (proposition.User, error) {
	if a.identity == nil {
		return proposition.User{}, errors.New("no acting user")
	}
	return a.identity.user()
}
