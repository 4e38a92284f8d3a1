package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	nanoid "github.com/jaevor/go-nanoid"
)

const (
	// CodeTTL is how long an issued registration code stays valid.
	CodeTTL = 15 * time.Minute
	// CodePrefix starts every registration code.
	CodePrefix = "KOD-"

	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
)

var (
	ErrUnknownUsername = errors.New("username not found on the profile site")
	ErrNoPending       = errors.New("no registration in progress")
	ErrCodeExpired     = errors.New("registration code expired")
	ErrCodeMismatch    = errors.New("registration code not found in profile")
	ErrNotOwner        = errors.New("registration belongs to another member")
)

// Checker is the subset of ProfileChecker the verifier needs.
type Checker interface {
	UsernameExists(ctx context.Context, username string) bool
	BioContainsToken(ctx context.Context, username, token string) bool
}

// Pending is a registration waiting for the member to publish their code.
type Pending struct {
	UserID    string
	Username  string
	Code      string
	ExpiresAt time.Time
}

// Verifier keeps pending registrations in memory, keyed by member.
type Verifier struct {
	checker Checker
	newCode func() string
	now     func() time.Time

	mu      sync.Mutex
	pending map[string]Pending
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

func WithVerifierClock(now func() time.Time) VerifierOption {
	return func(v *Verifier) { v.now = now }
}

// WithCodeGenerator replaces the random suffix generator.
func WithCodeGenerator(gen func() string) VerifierOption {
	return func(v *Verifier) { v.newCode = gen }
}

func NewVerifier(checker Checker, opts ...VerifierOption) (*Verifier, error) {
	gen, err := nanoid.CustomASCII(codeAlphabet, codeLength)
	if err != nil {
		return nil, fmt.Errorf("failed to create code generator: %w", err)
	}
	v := &Verifier{
		checker: checker,
		newCode: gen,
		now:     time.Now,
		pending: make(map[string]Pending),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Start checks that username exists and issues a fresh code for userID,
// replacing any earlier pending registration of that member.
func (v *Verifier) Start(ctx context.Context, userID, username string) (Pending, error) {
	username = strings.TrimSpace(username)
	if !v.checker.UsernameExists(ctx, username) {
		return Pending{}, ErrUnknownUsername
	}

	p := Pending{
		UserID:    userID,
		Username:  username,
		Code:      CodePrefix + v.newCode(),
		ExpiresAt: v.now().Add(CodeTTL),
	}
	v.mu.Lock()
	v.pending[userID] = p
	v.mu.Unlock()
	return p, nil
}

// Check completes the registration owned by ownerID. Only the owner may check it.
// On ErrCodeMismatch the pending registration is returned so it can be shown again.
func (v *Verifier) Check(ctx context.Context, ownerID, actorID string) (Pending, error) {
	if ownerID != actorID {
		return Pending{}, ErrNotOwner
	}

	v.mu.Lock()
	p, ok := v.pending[ownerID]
	if ok && !v.now().Before(p.ExpiresAt) {
		delete(v.pending, ownerID)
		v.mu.Unlock()
		return Pending{}, ErrCodeExpired
	}
	v.mu.Unlock()
	if !ok {
		return Pending{}, ErrNoPending
	}

	if !v.checker.BioContainsToken(ctx, p.Username, p.Code) {
		return p, ErrCodeMismatch
	}

	v.mu.Lock()
	if cur, ok := v.pending[ownerID]; ok && cur.Code == p.Code {
		delete(v.pending, ownerID)
	}
	v.mu.Unlock()
	return p, nil
}

// Lookup returns the member's pending registration, if any and unexpired.
func (v *Verifier) Lookup(userID string) (Pending, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	p, ok := v.pending[userID]
	if !ok || !v.now().Before(p.ExpiresAt) {
		return Pending{}, false
	}
	return p, true
}

// Prune drops expired registrations and returns how many were removed.
func (v *Verifier) Prune() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	now := v.now()
	removed := 0
	for id, p := range v.pending {
		if !now.Before(p.ExpiresAt) {
			delete(v.pending, id)
			removed++
		}
	}
	return removed
}
