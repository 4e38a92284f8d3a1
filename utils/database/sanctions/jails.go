package sanctions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"moderation-bot/model"
)

type jailRow struct {
	ID            int64  `db:"id"`
	UserID        string `db:"user_id"`
	GuildID       string `db:"guild_id"`
	ModeratorID   string `db:"moderator_id"`
	StartTime     string `db:"start_time"`
	EndTime       string `db:"end_time"`
	OriginalRoles string `db:"original_roles"`
}

func (r jailRow) toModel() (model.Jail, error) {
	start, err := parseTime(r.StartTime)
	if err != nil {
		return model.Jail{}, err
	}
	end, err := parseTime(r.EndTime)
	if err != nil {
		return model.Jail{}, err
	}
	var roles []string
	if r.OriginalRoles != "" {
		if err := json.Unmarshal([]byte(r.OriginalRoles), &roles); err != nil {
			return model.Jail{}, fmt.Errorf("failed to decode roles of jail %d: %w", r.ID, err)
		}
	}
	return model.Jail{
		ID:            r.ID,
		UserID:        r.UserID,
		GuildID:       r.GuildID,
		ModeratorID:   r.ModeratorID,
		StartTime:     start,
		EndTime:       end,
		OriginalRoles: roles,
	}, nil
}

func jailsFromRows(rows []jailRow) ([]model.Jail, error) {
	jails := make([]model.Jail, 0, len(rows))
	for _, row := range rows {
		j, err := row.toModel()
		if err != nil {
			return nil, err
		}
		jails = append(jails, j)
	}
	return jails, nil
}

// FindActiveJail returns the subject's jail that has not yet ended, or nil.
func (s *Store) FindActiveJail(ctx context.Context, userID, guildID string) (*model.Jail, error) {
	var row jailRow
	query := `SELECT * FROM jails WHERE user_id = ? AND guild_id = ? AND end_time > ?
			  ORDER BY end_time DESC LIMIT 1`
	err := s.db.GetContext(ctx, &row, query, userID, guildID, formatTime(s.clock()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find jail for user %s: %w", userID, err)
	}
	j, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// CreateJail inserts a jail and returns its ID. It fails with model.ErrActiveJailExists
// when the subject already has an active jail.
func (s *Store) CreateJail(ctx context.Context, jail model.Jail) (int64, error) {
	roles := jail.OriginalRoles
	if roles == nil {
		roles = []string{}
	}
	rolesJSON, err := json.Marshal(roles)
	if err != nil {
		return 0, fmt.Errorf("failed to encode jail roles: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existing int
	err = tx.GetContext(ctx, &existing,
		"SELECT COUNT(*) FROM jails WHERE user_id = ? AND guild_id = ? AND end_time > ?",
		jail.UserID, jail.GuildID, formatTime(s.clock()))
	if err != nil {
		return 0, fmt.Errorf("failed to check existing jail: %w", err)
	}
	if existing > 0 {
		return 0, model.ErrActiveJailExists
	}

	row := jailRow{
		UserID:        jail.UserID,
		GuildID:       jail.GuildID,
		ModeratorID:   jail.ModeratorID,
		StartTime:     formatTime(jail.StartTime),
		EndTime:       formatTime(jail.EndTime),
		OriginalRoles: string(rolesJSON),
	}
	query := `INSERT INTO jails (user_id, guild_id, moderator_id, start_time, end_time, original_roles)
			  VALUES (:user_id, :guild_id, :moderator_id, :start_time, :end_time, :original_roles)`
	result, err := tx.NamedExecContext(ctx, query, row)
	if err != nil {
		return 0, fmt.Errorf("failed to insert jail: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit jail: %w", err)
	}
	return id, nil
}

// ListExpiredJails returns every jail whose end time is at or before now, oldest first.
func (s *Store) ListExpiredJails(ctx context.Context, now time.Time) ([]model.Jail, error) {
	var rows []jailRow
	query := "SELECT * FROM jails WHERE end_time <= ? ORDER BY end_time ASC, id ASC"
	if err := s.db.SelectContext(ctx, &rows, query, formatTime(now)); err != nil {
		return nil, fmt.Errorf("failed to list expired jails: %w", err)
	}
	return jailsFromRows(rows)
}

// ListActiveJails returns every jail that has not ended yet, soonest release first.
func (s *Store) ListActiveJails(ctx context.Context) ([]model.Jail, error) {
	var rows []jailRow
	query := "SELECT * FROM jails WHERE end_time > ? ORDER BY end_time ASC, id ASC"
	if err := s.db.SelectContext(ctx, &rows, query, formatTime(s.clock())); err != nil {
		return nil, fmt.Errorf("failed to list active jails: %w", err)
	}
	return jailsFromRows(rows)
}

// DeleteJail removes a jail record. Deleting a missing ID is not an error.
func (s *Store) DeleteJail(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM jails WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete jail by id %d: %w", id, err)
	}
	return nil
}
