// Package badge runs the member badge request workflow: an upload window,
// rate-limited submission and one-shot moderator review.
package badge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"moderation-bot/metrics"
	"moderation-bot/model"
)

const (
	// WindowTTL is how long a member has to upload after opening a request.
	WindowTTL = 5 * time.Minute
	// MaxPerHour caps submissions per member in any rolling hour.
	MaxPerHour = 3
)

var (
	ErrNoWindow          = errors.New("no open badge upload window")
	ErrRateLimited       = errors.New("too many badge requests in the last hour")
	ErrInvalidAttachment = errors.New("a PNG or JPEG image is required")
	ErrRequestNotFound   = errors.New("badge request not found")
	ErrAlreadyReviewed   = errors.New("badge request was already reviewed")
	ErrReasonRequired    = errors.New("a rejection reason is required")
)

// Store is the persistence the badge workflow needs.
type Store interface {
	CreateBadgeRequest(ctx context.Context, userID, guildID, badgeURL string) (int64, error)
	CountBadgeRequestsSince(ctx context.Context, userID, guildID string, since time.Time) (int, error)
	GetBadgeRequest(ctx context.Context, id int64) (*model.BadgeRequest, error)
	SetBadgeMessage(ctx context.Context, id int64, messageID string) error
	ReviewBadgeRequest(ctx context.Context, id int64, status model.BadgeStatus, moderatorID, reason string) (bool, error)
	ListBadgeRequests(ctx context.Context, userID, guildID string) ([]model.BadgeRequest, error)
	ListPendingBadgeRequests(ctx context.Context) ([]model.BadgeRequest, error)
	DeletePendingBadgeRequest(ctx context.Context, id int64, userID string) (bool, error)
}

// Attachment is an uploaded file as reported by the chat platform.
type Attachment struct {
	URL         string
	Filename    string
	ContentType string
}

// Submission is a member message that may carry a badge image.
type Submission struct {
	UserID      string
	GuildID     string
	Attachments []Attachment
}

// Service coordinates badge windows and requests. Windows live in memory only.
type Service struct {
	store   Store
	metrics *metrics.Metrics
	now     func() time.Time

	mu      sync.Mutex
	windows map[string]time.Time
}

// Option configures a Service.
type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:   store,
		now:     time.Now,
		windows: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenWindow starts (or restarts) the member's upload window and returns when it closes.
func (s *Service) OpenWindow(userID string) time.Time {
	expires := s.now().Add(WindowTTL)
	s.mu.Lock()
	s.windows[userID] = expires
	s.mu.Unlock()
	return expires
}

// HasWindow reports whether the member currently has an open upload window.
func (s *Service) HasWindow(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	expires, ok := s.windows[userID]
	if ok && !s.now().Before(expires) {
		delete(s.windows, userID)
		return false
	}
	return ok
}

// Submit turns a message into a pending badge request. The window is consumed
// only when the request is stored.
func (s *Service) Submit(ctx context.Context, sub Submission) (*model.BadgeRequest, error) {
	if !s.HasWindow(sub.UserID) {
		return nil, ErrNoWindow
	}

	image, ok := firstImage(sub.Attachments)
	if !ok {
		return nil, ErrInvalidAttachment
	}

	now := s.now()
	count, err := s.store.CountBadgeRequestsSince(ctx, sub.UserID, sub.GuildID, now.Add(-time.Hour))
	if err != nil {
		return nil, fmt.Errorf("count badge requests: %w", err)
	}
	if count >= MaxPerHour {
		return nil, ErrRateLimited
	}

	id, err := s.store.CreateBadgeRequest(ctx, sub.UserID, sub.GuildID, image.URL)
	if err != nil {
		return nil, fmt.Errorf("create badge request: %w", err)
	}

	s.mu.Lock()
	delete(s.windows, sub.UserID)
	s.mu.Unlock()

	s.metrics.BadgeRequest(string(model.BadgePending))
	return &model.BadgeRequest{
		ID:          id,
		UserID:      sub.UserID,
		GuildID:     sub.GuildID,
		BadgeURL:    image.URL,
		Status:      model.BadgePending,
		SubmittedAt: now,
	}, nil
}

// AttachReviewMessage remembers which message carries the review buttons.
func (s *Service) AttachReviewMessage(ctx context.Context, id int64, messageID string) error {
	return s.store.SetBadgeMessage(ctx, id, messageID)
}

func (s *Service) Approve(ctx context.Context, id int64, moderatorID string) (*model.BadgeRequest, error) {
	return s.review(ctx, id, model.BadgeApproved, moderatorID, "")
}

func (s *Service) Reject(ctx context.Context, id int64, moderatorID, reason string) (*model.BadgeRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}
	return s.review(ctx, id, model.BadgeRejected, moderatorID, reason)
}

func (s *Service) review(ctx context.Context, id int64, status model.BadgeStatus, moderatorID, reason string) (*model.BadgeRequest, error) {
	ok, err := s.store.ReviewBadgeRequest(ctx, id, status, moderatorID, reason)
	if err != nil {
		return nil, fmt.Errorf("review badge request: %w", err)
	}
	req, err := s.store.GetBadgeRequest(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get badge request: %w", err)
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	if !ok {
		return req, ErrAlreadyReviewed
	}
	s.metrics.BadgeRequest(string(status))
	return req, nil
}

// Status lists the member's requests, newest first.
func (s *Service) Status(ctx context.Context, userID, guildID string) ([]model.BadgeRequest, error) {
	return s.store.ListBadgeRequests(ctx, userID, guildID)
}

// Cancel withdraws the member's own pending request and returns it.
func (s *Service) Cancel(ctx context.Context, userID string, id int64) (*model.BadgeRequest, error) {
	req, err := s.store.GetBadgeRequest(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get badge request: %w", err)
	}
	if req == nil || req.UserID != userID {
		return nil, ErrRequestNotFound
	}
	if req.Status != model.BadgePending {
		return req, ErrAlreadyReviewed
	}
	removed, err := s.store.DeletePendingBadgeRequest(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("cancel badge request: %w", err)
	}
	if !removed {
		return req, ErrAlreadyReviewed
	}
	s.metrics.BadgeRequest("cancelled")
	return req, nil
}

// Pending lists every request awaiting review, used to restore review buttons at startup.
func (s *Service) Pending(ctx context.Context) ([]model.BadgeRequest, error) {
	return s.store.ListPendingBadgeRequests(ctx)
}

// Prune drops closed windows and returns how many were removed.
func (s *Service) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, expires := range s.windows {
		if !now.Before(expires) {
			delete(s.windows, id)
			removed++
		}
	}
	return removed
}

func firstImage(attachments []Attachment) (Attachment, bool) {
	for _, a := range attachments {
		if isImage(a) {
			return a, true
		}
	}
	return Attachment{}, false
}

func isImage(a Attachment) bool {
	switch strings.ToLower(strings.TrimSpace(strings.SplitN(a.ContentType, ";", 2)[0])) {
	case "image/png", "image/jpeg":
		return true
	case "":
		name := strings.ToLower(a.Filename)
		return strings.HasSuffix(name, ".png") || strings.HasSuffix(name, ".jpg") || strings.HasSuffix(name, ".jpeg")
	}
	return false
}
