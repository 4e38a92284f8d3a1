package sanctions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"moderation-bot/model"
)

// WarningTTL is how long a warning counts toward escalation.
const WarningTTL = 24 * time.Hour

type warningRow struct {
	ID          int64  `db:"id"`
	UserID      string `db:"user_id"`
	GuildID     string `db:"guild_id"`
	Category    string `db:"category"`
	Reason      string `db:"reason"`
	ModeratorID string `db:"moderator_id"`
	IssuedAt    string `db:"issued_at"`
	ExpiresAt   string `db:"expires_at"`
}

func (r warningRow) toModel() (model.Warning, error) {
	issued, err := parseTime(r.IssuedAt)
	if err != nil {
		return model.Warning{}, err
	}
	expires, err := parseTime(r.ExpiresAt)
	if err != nil {
		return model.Warning{}, err
	}
	return model.Warning{
		ID:          r.ID,
		UserID:      r.UserID,
		GuildID:     r.GuildID,
		Category:    model.Category(r.Category),
		Reason:      r.Reason,
		ModeratorID: r.ModeratorID,
		IssuedAt:    issued,
		ExpiresAt:   expires,
	}, nil
}

// AddWarning records a warning issued now that expires after WarningTTL and returns its ID.
func (s *Store) AddWarning(ctx context.Context, userID, guildID string, category model.Category, reason, moderatorID string) (int64, error) {
	now := s.clock()
	row := warningRow{
		UserID:      userID,
		GuildID:     guildID,
		Category:    string(category),
		Reason:      reason,
		ModeratorID: moderatorID,
		IssuedAt:    formatTime(now),
		ExpiresAt:   formatTime(now.Add(WarningTTL)),
	}
	query := `INSERT INTO warnings (user_id, guild_id, category, reason, moderator_id, issued_at, expires_at)
			  VALUES (:user_id, :guild_id, :category, :reason, :moderator_id, :issued_at, :expires_at)`

	result, err := s.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return 0, fmt.Errorf("failed to insert warning: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	return id, nil
}

// CountActiveWarnings counts unexpired warnings for the subject. An empty category counts all of them.
func (s *Store) CountActiveWarnings(ctx context.Context, userID, guildID string, category model.Category) (int, error) {
	query := "SELECT COUNT(*) FROM warnings WHERE user_id = ? AND guild_id = ? AND expires_at > ?"
	args := []interface{}{userID, guildID, formatTime(s.clock())}
	if category != "" {
		query += " AND category = ?"
		args = append(args, string(category))
	}

	var count int
	if err := s.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count warnings for user %s: %w", userID, err)
	}
	return count, nil
}

// ListActiveWarnings returns unexpired warnings for the subject, newest first.
func (s *Store) ListActiveWarnings(ctx context.Context, userID, guildID string) ([]model.Warning, error) {
	var rows []warningRow
	query := `SELECT * FROM warnings WHERE user_id = ? AND guild_id = ? AND expires_at > ?
			  ORDER BY issued_at DESC, id DESC`
	if err := s.db.SelectContext(ctx, &rows, query, userID, guildID, formatTime(s.clock())); err != nil {
		return nil, fmt.Errorf("failed to list warnings for user %s: %w", userID, err)
	}

	warnings := make([]model.Warning, 0, len(rows))
	for _, row := range rows {
		w, err := row.toModel()
		if err != nil {
			return nil, err
		}
		warnings = append(warnings, w)
	}
	return warnings, nil
}

// GetWarning returns the warning with the given ID, or nil if there is none.
func (s *Store) GetWarning(ctx context.Context, id int64) (*model.Warning, error) {
	var row warningRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM warnings WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get warning by id %d: %w", id, err)
	}
	w, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// DeleteWarning removes a warning. Deleting a missing ID is not an error.
func (s *Store) DeleteWarning(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM warnings WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete warning by id %d: %w", id, err)
	}
	return nil
}
