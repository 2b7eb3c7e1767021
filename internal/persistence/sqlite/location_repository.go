package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/example/boardgame-tables/internal/persistence"
	"github.com/example/boardgame-tables/internal/proposition"
)

// LocationRepository implements persistence.LocationRepository using SQLite
type LocationRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
	now    func() time.Time
}

const locationColumns = `id, alias, street, house_number, city, country, owner_id, is_default, created_at, updated_at`

// CreateLocation inserts a new location.
func (r *LocationRepository) CreateLocation(ctx context.Context, location proposition.Location) error {
	return r.insert(ctx, r.pool.DB(), location)
}

func (r *LocationRepository) insert(ctx context.Context, q queryer, location proposition.Location) error {
	if location.ID == "" || strings.TrimSpace(location.Alias) == "" {
		return persistence.ErrConstraintViolation
	}

	created := location.CreatedAt
	if created.IsZero() {
		created = r.now()
	}

	query := `
		INSERT INTO locations (` + locationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, NULLIF(?, ''), ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query,
		location.ID,
		strings.TrimSpace(location.Alias),
		location.Street,
		location.HouseNumber,
		location.City,
		location.Country,
		location.OwnerID,
		boolToInt(location.IsDefault),
		formatInstant(created),
		formatInstant(created),
	)
	return r.mapper.MapError(err)
}

// UpdateLocation replaces the alias and address of a location. Ownership and
// the default flag never change.
func (r *LocationRepository) UpdateLocation(ctx context.Context, location proposition.Location) error {
	if location.ID == "" || strings.TrimSpace(location.Alias) == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		UPDATE locations
		SET alias = ?, street = ?, house_number = ?, city = ?, country = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.pool.DB().ExecContext(ctx, query,
		strings.TrimSpace(location.Alias),
		location.Street,
		location.HouseNumber,
		location.City,
		location.Country,
		formatInstant(r.now()),
		location.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireAffected(result)
}

// GetLocation retrieves a location by ID.
func (r *LocationRepository) GetLocation(ctx context.Context, id string) (proposition.Location, error) {
	row := r.pool.DB().QueryRowContext(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = ?`, id)
	location, err := scanLocation(row)
	if err != nil {
		return proposition.Location{}, r.mapper.MapError(err)
	}
	return location, nil
}

// GetDefaultLocation retrieves the location flagged as default.
func (r *LocationRepository) GetDefaultLocation(ctx context.Context) (proposition.Location, error) {
	return r.getDefault(ctx, r.pool.DB())
}

func (r *LocationRepository) getDefault(ctx context.Context, q queryer) (proposition.Location, error) {
	row := q.QueryRowContext(ctx, `SELECT `+locationColumns+` FROM locations WHERE is_default = 1`)
	location, err := scanLocation(row)
	if err != nil {
		return proposition.Location{}, r.mapper.MapError(err)
	}
	return location, nil
}

// EnsureDefaultLocation returns the default location, creating it from
// location when none exists yet.
func (r *LocationRepository) EnsureDefaultLocation(ctx context.Context, location proposition.Location) (proposition.Location, error) {
	var ensured proposition.Location
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		existing, err := r.getDefault(ctx, tx)
		if err == nil {
			ensured = existing
			return nil
		}
		if !errors.Is(err, persistence.ErrNotFound) {
			return err
		}

		location.OwnerID = ""
		location.IsDefault = true
		if err := r.insert(ctx, tx, location); err != nil {
			return err
		}
		ensured, err = r.getDefault(ctx, tx)
		return err
	})
	if err != nil {
		return proposition.Location{}, err
	}
	return ensured, nil
}

// ListLocations returns system locations plus the user locations selected by
// filter, default first and then by alias.
func (r *LocationRepository) ListLocations(ctx context.Context, filter persistence.LocationFilter) ([]proposition.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations`
	var args []any
	switch {
	case filter.AllOwners:
	case filter.OwnerID != "":
		query += ` WHERE owner_id IS NULL OR owner_id = ?`
		args = append(args, filter.OwnerID)
	default:
		query += ` WHERE owner_id IS NULL`
	}
	query += ` ORDER BY is_default DESC, alias COLLATE NOCASE, id`

	rows, err := r.pool.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var locations []proposition.Location
	for rows.Next() {
		location, err := scanLocation(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		locations = append(locations, location)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return locations, nil
}

// DeleteLocation removes a location. Propositions held there lose their
// location reference. The default location cannot be deleted.
func (r *LocationRepository) DeleteLocation(ctx context.Context, id string) error {
	result, err := r.pool.DB().ExecContext(ctx, `DELETE FROM locations WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireAffected(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLocation(row rowScanner) (proposition.Location, error) {
	var (
		location proposition.Location
		ownerID  sql.NullString
		created  string
		updated  string
	)
	if err := row.Scan(
		&location.ID,
		&location.Alias,
		&location.Street,
		&location.HouseNumber,
		&location.City,
		&location.Country,
		&ownerID,
		&location.IsDefault,
		&created,
		&updated,
	); err != nil {
		return proposition.Location{}, err
	}
	location.OwnerID = ownerID.String
	location.CreatedAt = parseInstant(created)
	location.UpdatedAt = parseInstant(updated)
	return location, nil
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
