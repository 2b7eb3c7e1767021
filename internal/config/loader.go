package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"slices"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/example/boardgame-tables/internal/logging"
)

// Config captures environment driven configuration values for the booking engine.
type Config struct {
	SQLiteDSN           string          `env:"TABLEBOOK_SQLITE_DSN"               envDefault:"tablebook.db"`
	Timezone            string          `env:"TABLEBOOK_TIMEZONE"                 envDefault:"UTC"`
	CanUsersSetLocation bool            `env:"TABLEBOOK_CAN_USERS_SET_LOCATION"   envDefault:"false"`
	DefaultLocation     DefaultLocation `envPrefix:"TABLEBOOK_DEFAULT_LOCATION_"`
	LocationCacheTTL    time.Duration   `env:"TABLEBOOK_LOCATION_CACHE_TTL"       envDefault:"30s"`
	MetadataCacheSize   int             `env:"TABLEBOOK_METADATA_CACHE_SIZE"      envDefault:"1000"`
	MetadataCatalog     string          `env:"TABLEBOOK_METADATA_CATALOG"`
	NATSURL             string          `env:"TABLEBOOK_NATS_URL"`
	NATSSubject         string          `env:"TABLEBOOK_NATS_SUBJECT"             envDefault:"tablebook.propositions"`
	NATSFlushTimeout    time.Duration   `env:"TABLEBOOK_NATS_FLUSH_TIMEOUT"       envDefault:"2s"`
	BaseURL             string          `env:"TABLEBOOK_BASE_URL"                 envDefault:"http://localhost:8000"`
	LogLevel            string          `env:"TABLEBOOK_LOG_LEVEL"                envDefault:"info"`
	LogFormat           string          `env:"TABLEBOOK_LOG_FORMAT"               envDefault:"text"`
}

// DefaultLocation seeds the default location on first start.
type DefaultLocation struct {
	Alias       string `env:"ALIAS"   envDefault:"Club"`
	Street      string `env:"STREET"`
	HouseNumber string `env:"NUMBER"`
	City        string `env:"CITY"`
	Country     string `env:"COUNTRY"`
}

// Location resolves Timezone. Load has already validated it.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// NotificationsEnabled reports whether a NATS server is configured.
func (c Config) NotificationsEnabled() bool {
	return strings.TrimSpace(c.NATSURL) != ""
}

// LoadDotEnv loads variables from the .env file at path if it exists.
// Variables already present in the environment win.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

// Load parses configuration values from the current process environment.
//
// Defaults come from the envDefault tags. Every missing or invalid entry is
// collected and reported in a single error.
func Load() (Config, error) {
	var cfg Config

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if err := env.Parse(&cfg); err != nil {
		var agg env.AggregateError
		if !errors.As(err, &agg) {
			return Config{}, fmt.Errorf("parse environment: %w", err)
		}
		for _, e := range agg.Errors {
			var parseErr env.ParseError
			if errors.As(e, &parseErr) {
				invalid = append(invalid, envKey(parseErr.Name))
				continue
			}
			return Config{}, fmt.Errorf("parse environment: %w", err)
		}
	}

	cfg.SQLiteDSN = strings.TrimSpace(cfg.SQLiteDSN)
	if cfg.SQLiteDSN == "" {
		missing = append(missing, "TABLEBOOK_SQLITE_DSN")
	}

	cfg.DefaultLocation.Alias = strings.TrimSpace(cfg.DefaultLocation.Alias)
	if cfg.DefaultLocation.Alias == "" {
		missing = append(missing, "TABLEBOOK_DEFAULT_LOCATION_ALIAS")
	}

	if _, err := time.LoadLocation(strings.TrimSpace(cfg.Timezone)); err != nil {
		invalid = append(invalid, "TABLEBOOK_TIMEZONE")
	}
	cfg.Timezone = strings.TrimSpace(cfg.Timezone)

	if cfg.LocationCacheTTL <= 0 && !slices.Contains(invalid, "TABLEBOOK_LOCATION_CACHE_TTL") {
		invalid = append(invalid, "TABLEBOOK_LOCATION_CACHE_TTL")
	}
	if cfg.MetadataCacheSize <= 0 && !slices.Contains(invalid, "TABLEBOOK_METADATA_CACHE_SIZE") {
		invalid = append(invalid, "TABLEBOOK_METADATA_CACHE_SIZE")
	}
	if cfg.NotificationsEnabled() && strings.TrimSpace(cfg.NATSSubject) == "" {
		missing = append(missing, "TABLEBOOK_NATS_SUBJECT")
	}

	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		invalid = append(invalid, "TABLEBOOK_LOG_LEVEL")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.LogFormat)) {
	case "text", "json":
	default:
		invalid = append(invalid, "TABLEBOOK_LOG_FORMAT")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// envKey maps a Config field name to its variable name.
func envKey(field string) string {
	f, ok := reflect.TypeOf(Config{}).FieldByName(field)
	if !ok {
		return field
	}
	key, _, _ := strings.Cut(f.Tag.Get("env"), ",")
	if key == "" {
		return field
	}
	return key
}
