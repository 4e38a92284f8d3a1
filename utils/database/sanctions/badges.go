package sanctions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"moderation-bot/model"
)

type badgeRow struct {
	ID          int64  `db:"id"`
	UserID      string `db:"user_id"`
	GuildID     string `db:"guild_id"`
	BadgeURL    string `db:"badge_url"`
	Status      string `db:"status"`
	ModeratorID string `db:"moderator_id"`
	Reason      string `db:"reason"`
	MessageID   string `db:"message_id"`
	SubmittedAt string `db:"submitted_at"`
	ReviewedAt  string `db:"reviewed_at"`
}

func (r badgeRow) toModel() (model.BadgeRequest, error) {
	submitted, err := parseTime(r.SubmittedAt)
	if err != nil {
		return model.BadgeRequest{}, err
	}
	req := model.BadgeRequest{
		ID:          r.ID,
		UserID:      r.UserID,
		GuildID:     r.GuildID,
		BadgeURL:    r.BadgeURL,
		Status:      model.BadgeStatus(r.Status),
		ModeratorID: r.ModeratorID,
		Reason:      r.Reason,
		MessageID:   r.MessageID,
		SubmittedAt: submitted,
	}
	if r.ReviewedAt != "" {
		reviewed, err := parseTime(r.ReviewedAt)
		if err != nil {
			return model.BadgeRequest{}, err
		}
		req.ReviewedAt = &reviewed
	}
	return req, nil
}

func badgesFromRows(rows []badgeRow) ([]model.BadgeRequest, error) {
	requests := make([]model.BadgeRequest, 0, len(rows))
	for _, row := range rows {
		req, err := row.toModel()
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, nil
}

// CreateBadgeRequest stores a pending badge request submitted now.
func (s *Store) CreateBadgeRequest(ctx context.Context, userID, guildID, badgeURL string) (int64, error) {
	row := badgeRow{
		UserID:      userID,
		GuildID:     guildID,
		BadgeURL:    badgeURL,
		Status:      string(model.BadgePending),
		SubmittedAt: formatTime(s.clock()),
	}
	query := `INSERT INTO badges (user_id, guild_id, badge_url, status, submitted_at)
			  VALUES (:user_id, :guild_id, :badge_url, :status, :submitted_at)`
	result, err := s.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return 0, fmt.Errorf("failed to insert badge request: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	return id, nil
}

// CountBadgeRequestsSince counts the user's submissions after since, whatever their status.
func (s *Store) CountBadgeRequestsSince(ctx context.Context, userID, guildID string, since time.Time) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM badges WHERE user_id = ? AND guild_id = ? AND submitted_at > ?"
	if err := s.db.GetContext(ctx, &count, query, userID, guildID, formatTime(since)); err != nil {
		return 0, fmt.Errorf("failed to count badge requests for user %s: %w", userID, err)
	}
	return count, nil
}

// GetBadgeRequest returns the request with the given ID, or nil if there is none.
func (s *Store) GetBadgeRequest(ctx context.Context, id int64) (*model.BadgeRequest, error) {
	var row badgeRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM badges WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get badge request by id %d: %w", id, err)
	}
	req, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// SetBadgeMessage records the review message posted for a request.
func (s *Store) SetBadgeMessage(ctx context.Context, id int64, messageID string) error {
	if _, err := s.db.ExecContext(ctx, "UPDATE badges SET message_id = ? WHERE id = ?", messageID, id); err != nil {
		return fmt.Errorf("failed to set message of badge request %d: %w", id, err)
	}
	return nil
}

// ReviewBadgeRequest moves a pending request to status. It reports false when the
// request was not pending anymore.
func (s *Store) ReviewBadgeRequest(ctx context.Context, id int64, status model.BadgeStatus, moderatorID, reason string) (bool, error) {
	query := `UPDATE badges SET status = ?, moderator_id = ?, reason = ?, reviewed_at = ?
			  WHERE id = ? AND status = ?`
	result, err := s.db.ExecContext(ctx, query, string(status), moderatorID, reason, formatTime(s.clock()), id, string(model.BadgePending))
	if err != nil {
		return false, fmt.Errorf("failed to review badge request %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected for badge request %d: %w", id, err)
	}
	return affected == 1, nil
}

// ListBadgeRequests returns the user's requests, newest first.
func (s *Store) ListBadgeRequests(ctx context.Context, userID, guildID string) ([]model.BadgeRequest, error) {
	var rows []badgeRow
	query := "SELECT * FROM badges WHERE user_id = ? AND guild_id = ? ORDER BY submitted_at DESC, id DESC"
	if err := s.db.SelectContext(ctx, &rows, query, userID, guildID); err != nil {
		return nil, fmt.Errorf("failed to list badge requests for user %s: %w", userID, err)
	}
	return badgesFromRows(rows)
}

// ListPendingBadgeRequests returns every request still awaiting review, oldest first.
func (s *Store) ListPendingBadgeRequests(ctx context.Context) ([]model.BadgeRequest, error) {
	var rows []badgeRow
	query := "SELECT * FROM badges WHERE status = ? ORDER BY submitted_at ASC, id ASC"
	if err := s.db.SelectContext(ctx, &rows, query, string(model.BadgePending)); err != nil {
		return nil, fmt.Errorf("failed to list pending badge requests: %w", err)
	}
	return badgesFromRows(rows)
}

// DeletePendingBadgeRequest removes the user's own pending request and reports whether one was removed.
func (s *Store) DeletePendingBadgeRequest(ctx context.Context, id int64, userID string) (bool, error) {
	query := "DELETE FROM badges WHERE id = ? AND user_id = ? AND status = ?"
	result, err := s.db.ExecContext(ctx, query, id, userID, string(model.BadgePending))
	if err != nil {
		return false, fmt.Errorf("failed to delete badge request %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected for badge request %d: %w", id, err)
	}
	return affected == 1, nil
}
