package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/boardgame-tables/internal/persistence"
	"github.com/example/boardgame-tables/internal/proposition"
	"github.com/example/boardgame-tables/internal/visibility"
)

// PropositionRepository implements persistence.PropositionRepository using SQLite
type PropositionRepository struct {
	pool     *ConnectionPool
	mapper   *ErrorMapper
	location *time.Location
	now      func() time.Time
}

const propositionSelect = `
	SELECT
		p.id, p.game_name, p.bgg_game_id, p.notes, p.date, p.time,
		p.duration_minutes, p.max_players, p.proposition_type, p.created_at, p.updated_at,
		p.proposed_by, COALESCE(u.username, ''), u.email,
		l.id, l.alias, l.street, l.house_number, l.city, l.country,
		l.owner_id, l.is_default, l.created_at, l.updated_at
	FROM propositions p
	JOIN users u ON u.id = p.proposed_by
	LEFT JOIN locations l ON l.id = p.location_id
`

// CreateProposition inserts a proposition with its expansions. When
// joinCreator is set the proposer becomes the first roster entry in the same
// transaction.
func (r *PropositionRepository) CreateProposition(ctx context.Context, p proposition.Proposition, joinCreator bool) error {
	if err := r.checkRecord(p); err != nil {
		return err
	}

	created := p.CreatedAt
	if created.IsZero() {
		created = r.now()
	}
	start, end := r.interval(p)

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO propositions (
				id, game_name, bgg_game_id, notes, date, time, duration_minutes,
				start_at, end_at, max_players, proposed_by, location_id, proposition_type,
				created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err := tx.ExecContext(ctx, query,
			p.ID,
			strings.TrimSpace(p.GameName),
			p.BGGGameID,
			p.Notes,
			p.Date.Format(dateLayout),
			p.Time.String(),
			p.DurationMinutes,
			formatInstant(start),
			formatInstant(end),
			p.MaxPlayers,
			p.ProposedBy.UserID,
			locationID(p.Location),
			int(p.Type),
			formatInstant(created),
			formatInstant(created),
		)
		if err != nil {
			return r.mapper.MapError(err)
		}

		if err := r.insertExpansions(ctx, tx, p.ID, p.Expansions); err != nil {
			return err
		}

		if joinCreator {
			if err := r.join(ctx, tx, p.ID, p.ProposedBy.UserID, created); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetProposition retrieves a proposition with its roster and expansions.
func (r *PropositionRepository) GetProposition(ctx context.Context, id string) (proposition.Proposition, error) {
	var p proposition.Proposition
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var err error
		p, err = r.get(ctx, tx, id)
		return err
	})
	if err != nil {
		return proposition.Proposition{}, err
	}
	return p, nil
}

// JoinProposition appends userID to the roster. The capacity check and the
// insert are one statement, see the joined_players triggers.
func (r *PropositionRepository) JoinProposition(ctx context.Context, tableID, userID string, joinedAt time.Time) error {
	return r.join(ctx, r.pool.DB(), tableID, userID, joinedAt)
}

func (r *PropositionRepository) join(ctx context.Context, q queryer, tableID, userID string, joinedAt time.Time) error {
	if joinedAt.IsZero() {
		joinedAt = r.now()
	}
	_, err := q.ExecContext(ctx,
		`INSERT INTO joined_players (table_id, user_id, joined_at) VALUES (?, ?, ?)`,
		tableID, userID, formatInstant(joinedAt),
	)
	return r.mapper.MapError(err)
}

// LeaveProposition removes userID from the roster. Removing a non-member is a
// no-op.
func (r *PropositionRepository) LeaveProposition(ctx context.Context, tableID, userID string) error {
	_, err := r.pool.DB().ExecContext(ctx,
		`DELETE FROM joined_players WHERE table_id = ? AND user_id = ?`,
		tableID, userID,
	)
	return r.mapper.MapError(err)
}

// UpdateProposition applies patch to the stored proposition and returns the
// result. The game reference is immutable and max players may not drop below
// the roster size.
func (r *PropositionRepository) UpdateProposition(ctx context.Context, tableID string, patch proposition.Patch, updatedAt time.Time) (proposition.Proposition, error) {
	if updatedAt.IsZero() {
		updatedAt = r.now()
	}

	var updated proposition.Proposition
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		current, err := r.get(ctx, tx, tableID)
		if err != nil {
			return err
		}
		if patch.BGGGameID != nil && *patch.BGGGameID != current.BGGGameID {
			return fmt.Errorf("%w: bgg_game_id is immutable", persistence.ErrConstraintViolation)
		}

		next := patch.Apply(current)
		if err := r.checkRecord(next); err != nil {
			return err
		}
		if next.MaxPlayers < len(current.Players) {
			return persistence.ErrInvalidCapacity
		}

		start, end := r.interval(next)
		query := `
			UPDATE propositions
			SET game_name = ?, notes = ?, date = ?, time = ?, duration_minutes = ?,
				start_at = ?, end_at = ?, max_players = ?, location_id = ?,
				proposition_type = ?, updated_at = ?
			WHERE id = ?
		`
		result, err := tx.ExecContext(ctx, query,
			strings.TrimSpace(next.GameName),
			next.Notes,
			next.Date.Format(dateLayout),
			next.Time.String(),
			next.DurationMinutes,
			formatInstant(start),
			formatInstant(end),
			next.MaxPlayers,
			locationID(next.Location),
			int(next.Type),
			formatInstant(updatedAt),
			tableID,
		)
		if err != nil {
			return r.mapper.MapError(err)
		}
		if err := requireAffected(result); err != nil {
			return err
		}

		if patch.Expansions != nil {
			if _, err := tx.ExecContext(ctx, `DELETE FROM proposition_expansions WHERE table_id = ?`, tableID); err != nil {
				return r.mapper.MapError(err)
			}
			if err := r.insertExpansions(ctx, tx, tableID, next.Expansions); err != nil {
				return err
			}
		}

		updated, err = r.get(ctx, tx, tableID)
		return err
	})
	if err != nil {
		return proposition.Proposition{}, err
	}
	return updated, nil
}

// DeleteProposition removes a proposition and its roster. Deleting a missing
// id is not an error.
func (r *PropositionRepository) DeleteProposition(ctx context.Context, id string) error {
	_, err := r.pool.DB().ExecContext(ctx, `DELETE FROM propositions WHERE id = ?`, id)
	return r.mapper.MapError(err)
}

// ListPropositions returns the propositions matching the pushed down part of
// a listing, ordered by date, time and id.
func (r *PropositionRepository) ListPropositions(ctx context.Context, filter persistence.PropositionFilter) ([]proposition.Proposition, error) {
	where, args := propositionWhere(filter)

	var props []proposition.Proposition
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := propositionSelect + where + ` ORDER BY p.date, p.time, p.id`
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return r.mapper.MapError(err)
		}
		defer rows.Close()

		for rows.Next() {
			p, err := r.scanProposition(rows)
			if err != nil {
				return r.mapper.MapError(err)
			}
			props = append(props, p)
		}
		if err := rows.Err(); err != nil {
			return r.mapper.MapError(err)
		}
		if len(props) == 0 {
			return nil
		}

		scope := `SELECT p.id FROM propositions p LEFT JOIN locations l ON l.id = p.location_id` + where
		return r.attachDetails(ctx, tx, props, scope, args)
	})
	if err != nil {
		return nil, err
	}
	return props, nil
}

func propositionWhere(filter persistence.PropositionFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if filter.EndsAfter != nil {
		clauses = append(clauses, `p.end_at >= ?`)
		args = append(args, formatInstant(*filter.EndsAfter))
	}
	switch filter.Bucket {
	case visibility.BucketDefault:
		clauses = append(clauses, `l.is_default = 1`)
	case visibility.BucketRestOfWorld:
		clauses = append(clauses, `l.is_default = 0`)
	}
	if t, ok := filter.Type.Type(); ok {
		clauses = append(clauses, `p.proposition_type = ?`)
		args = append(args, int(t))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return ` WHERE ` + strings.Join(clauses, ` AND `), args
}

func (r *PropositionRepository) get(ctx context.Context, q queryer, id string) (proposition.Proposition, error) {
	row := q.QueryRowContext(ctx, propositionSelect+` WHERE p.id = ?`, id)
	p, err := r.scanProposition(row)
	if err != nil {
		return proposition.Proposition{}, r.mapper.MapError(err)
	}

	props := []proposition.Proposition{p}
	if err := r.attachDetails(ctx, q, props, `?`, []any{id}); err != nil {
		return proposition.Proposition{}, err
	}
	return props[0], nil
}

// attachDetails loads rosters and expansions for props. scope is a SQL
// expression yielding the table ids in props, bound with args.
func (r *PropositionRepository) attachDetails(ctx context.Context, q queryer, props []proposition.Proposition, scope string, args []any) error {
	index := make(map[string]int, len(props))
	for i := range props {
		index[props[i].ID] = i
	}

	rosterQuery := `
		SELECT jp.table_id, jp.user_id, COALESCE(u.username, ''), u.email
		FROM joined_players jp
		JOIN users u ON u.id = jp.user_id
		WHERE jp.table_id IN (` + scope + `)
		ORDER BY jp.seq
	`
	rows, err := q.QueryContext(ctx, rosterQuery, args...)
	if err != nil {
		return r.mapper.MapError(err)
	}
	for rows.Next() {
		var (
			tableID string
			player  proposition.Player
		)
		if err := rows.Scan(&tableID, &player.UserID, &player.Username, &player.Email); err != nil {
			rows.Close()
			return r.mapper.MapError(err)
		}
		if i, ok := index[tableID]; ok {
			props[i].Players = append(props[i].Players, player)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return r.mapper.MapError(err)
	}
	rows.Close()

	expansionQuery := `
		SELECT table_id, expansion_id, name
		FROM proposition_expansions
		WHERE table_id IN (` + scope + `)
		ORDER BY table_id, position
	`
	rows, err = q.QueryContext(ctx, expansionQuery, args...)
	if err != nil {
		return r.mapper.MapError(err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			tableID   string
			expansion proposition.Expansion
		)
		if err := rows.Scan(&tableID, &expansion.ID, &expansion.Name); err != nil {
			return r.mapper.MapError(err)
		}
		if i, ok := index[tableID]; ok {
			props[i].Expansions = append(props[i].Expansions, expansion)
		}
	}
	return r.mapper.MapError(rows.Err())
}

func (r *PropositionRepository) insertExpansions(ctx context.Context, tx *sql.Tx, tableID string, expansions []proposition.Expansion) error {
	for i, expansion := range proposition.NormalizeExpansions(expansions) {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO proposition_expansions (table_id, expansion_id, name, position) VALUES (?, ?, ?, ?)`,
			tableID, expansion.ID, expansion.Name, i,
		)
		if err != nil {
			return r.mapper.MapError(err)
		}
	}
	return nil
}

func (r *PropositionRepository) scanProposition(row rowScanner) (proposition.Proposition, error) {
	var (
		p          proposition.Proposition
		date       string
		timeOfDay  string
		propType   int
		created    string
		updated    string
		locID      sql.NullString
		locAlias   sql.NullString
		locStreet  sql.NullString
		locNumber  sql.NullString
		locCity    sql.NullString
		locCountry sql.NullString
		locOwner   sql.NullString
		locDefault sql.NullBool
		locCreated sql.NullString
		locUpdated sql.NullString
	)
	if err := row.Scan(
		&p.ID, &p.GameName, &p.BGGGameID, &p.Notes, &date, &timeOfDay,
		&p.DurationMinutes, &p.MaxPlayers, &propType, &created, &updated,
		&p.ProposedBy.UserID, &p.ProposedBy.Username, &p.ProposedBy.Email,
		&locID, &locAlias, &locStreet, &locNumber, &locCity, &locCountry,
		&locOwner, &locDefault, &locCreated, &locUpdated,
	); err != nil {
		return proposition.Proposition{}, err
	}

	parsedDate, err := time.ParseInLocation(dateLayout, date, r.location)
	if err != nil {
		return proposition.Proposition{}, fmt.Errorf("proposition %s: invalid date %q: %w", p.ID, date, err)
	}
	tod, err := proposition.ParseTimeOfDay(timeOfDay)
	if err != nil {
		return proposition.Proposition{}, fmt.Errorf("proposition %s: %w", p.ID, err)
	}

	p.Date = parsedDate
	p.Time = tod
	p.Type = proposition.Type(propType)
	p.CreatedAt = parseInstant(created)
	p.UpdatedAt = parseInstant(updated)

	if locID.Valid {
		p.Location = &proposition.Location{
			ID:          locID.String,
			Alias:       locAlias.String,
			Street:      locStreet.String,
			HouseNumber: locNumber.String,
			City:        locCity.String,
			Country:     locCountry.String,
			OwnerID:     locOwner.String,
			IsDefault:   locDefault.Bool,
			CreatedAt:   parseInstant(locCreated.String),
			UpdatedAt:   parseInstant(locUpdated.String),
		}
	}
	return p, nil
}

// interval computes the stored start and end instants, reading the calendar
// date in the store's time zone.
func (r *PropositionRepository) interval(p proposition.Proposition) (time.Time, time.Time) {
	day := time.Date(p.Date.Year(), p.Date.Month(), p.Date.Day(), 0, 0, 0, 0, r.location)
	start := p.Time.On(day)
	return start, start.Add(p.Duration())
}

func (r *PropositionRepository) checkRecord(p proposition.Proposition) error {
	switch {
	case strings.TrimSpace(p.ID) == "":
		return fmt.Errorf("%w: missing table id", persistence.ErrConstraintViolation)
	case strings.TrimSpace(p.ProposedBy.UserID) == "":
		return fmt.Errorf("%w: missing proposer", persistence.ErrConstraintViolation)
	case p.Date.IsZero():
		return fmt.Errorf("%w: missing date", persistence.ErrConstraintViolation)
	case !p.Time.Valid():
		return fmt.Errorf("%w: invalid time %s", persistence.ErrConstraintViolation, p.Time)
	case !p.Type.Valid():
		return fmt.Errorf("%w: invalid type %s", persistence.ErrConstraintViolation, p.Type)
	}
	return nil
}

func locationID(location *proposition.Location) any {
	if location == nil || location.ID == "" {
		return nil
	}
	return location.ID
}
