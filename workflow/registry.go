// Package workflow tracks short-lived interactive sessions (select menus,
// paginated lists, panels) that are owned by one member and expire when idle.
package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrExpired  = errors.New("this interaction has expired")
	ErrNotOwner = errors.New("this interaction belongs to someone else")
)

// Kind names what a session drives.
type Kind string

const (
	KindWarn      Kind = "warn"
	KindJail      Kind = "jail"
	KindUnwarn    Kind = "unwarn"
	KindWarnList  Kind = "warnlist"
	KindUserPanel Kind = "user"
	KindVerify    Kind = "verify"
)

// Idle timeouts per kind.
const (
	SelectIdle = 60 * time.Second
	PanelIdle  = 120 * time.Second
	VerifyIdle = 15 * time.Minute
)

// IdleFor returns the idle timeout used for kind.
func IdleFor(kind Kind) time.Duration {
	switch kind {
	case KindWarnList, KindUserPanel:
		return PanelIdle
	case KindVerify:
		return VerifyIdle
	default:
		return SelectIdle
	}
}

const customIDPrefix = "wf:"

// Session is one interactive flow. Payload carries kind-specific state.
type Session struct {
	ID        string
	Kind      Kind
	OwnerID   string
	GuildID   string
	Payload   any
	ExpiresAt time.Time

	idle time.Duration
}

// CustomID builds a component ID routed back to this session.
func (s *Session) CustomID(action string) string {
	return CustomID(s.ID, action)
}

// Registry holds live sessions in memory.
type Registry struct {
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// Option configures a Registry.
type Option func(*Registry)

func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Begin starts a session owned by ownerID with the kind's idle timeout.
func (r *Registry) Begin(kind Kind, ownerID, guildID string, payload any) *Session {
	idle := IdleFor(kind)
	s := &Session{
		ID:        uuid.NewString(),
		Kind:      kind,
		OwnerID:   ownerID,
		GuildID:   guildID,
		Payload:   payload,
		ExpiresAt: r.now().Add(idle),
		idle:      idle,
	}
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	cp := *s
	return &cp
}

// Get returns a copy of the session if it is live and actorID owns it.
// Expired sessions are removed.
func (r *Registry) Get(id, actorID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrExpired
	}
	if !r.now().Before(s.ExpiresAt) {
		delete(r.sessions, id)
		return nil, ErrExpired
	}
	if s.OwnerID != actorID {
		return nil, ErrNotOwner
	}
	cp := *s
	return &cp, nil
}

// Touch restarts the idle timer and replaces the payload when one is given.
func (r *Registry) Touch(id string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return
	}
	s.ExpiresAt = r.now().Add(s.idle)
	if payload != nil {
		s.Payload = payload
	}
}

// Delete ends a session.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len returns the number of tracked sessions, expired or not.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Prune removes expired sessions and returns how many were removed.
func (r *Registry) Prune() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	removed := 0
	for id, s := range r.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Run prunes on every tick until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Prune()
		}
	}
}

// CustomID builds "wf:<session>:<action>".
func CustomID(sessionID, action string) string {
	return customIDPrefix + sessionID + ":" + action
}

// ParseCustomID splits a workflow component ID. ok is false for foreign IDs.
func ParseCustomID(customID string) (sessionID, action string, ok bool) {
	rest, found := strings.CutPrefix(customID, customIDPrefix)
	if !found {
		return "", "", false
	}
	sessionID, action, found = strings.Cut(rest, ":")
	if !found || sessionID == "" {
		return "", "", false
	}
	return sessionID, action, true
}
