package workflow

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestRegistry() (*Registry, *testClock) {
	clock := &testClock{now: time.Date(2024, 2, 2, 2, 2, 2, 0, time.UTC)}
	return NewRegistry(WithClock(clock.Now)), clock
}

func TestRegistry_OwnerGuard(t *testing.T) {
	r, _ := newTestRegistry()
	s := r.Begin(KindWarn, "mod-1", "g1", "user-1")

	_, err := r.Get(s.ID, "mod-2")
	assert.ErrorIs(t, err, ErrNotOwner)

	got, err := r.Get(s.ID, "mod-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.Payload)
	assert.Equal(t, KindWarn, got.Kind)
}

func TestRegistry_IdleExpiry(t *testing.T) {
	r, clock := newTestRegistry()
	s := r.Begin(KindWarn, "mod-1", "g1", nil)

	clock.Advance(SelectIdle - time.Second)
	r.Touch(s.ID, "picked")
	clock.Advance(SelectIdle - time.Second)

	got, err := r.Get(s.ID, "mod-1")
	require.NoError(t, err, "touch restarts the idle timer")
	assert.Equal(t, "picked", got.Payload)

	clock.Advance(time.Second)
	_, err = r.Get(s.ID, "mod-1")
	assert.ErrorIs(t, err, ErrExpired)
	assert.Zero(t, r.Len(), "expired sessions are dropped on access")
}

func TestRegistry_PanelsLiveLonger(t *testing.T) {
	r, clock := newTestRegistry()
	sel := r.Begin(KindUnwarn, "mod-1", "g1", nil)
	panel := r.Begin(KindWarnList, "mod-1", "g1", nil)

	clock.Advance(90 * time.Second)
	assert.Equal(t, 1, r.Prune())

	_, err := r.Get(sel.ID, "mod-1")
	assert.ErrorIs(t, err, ErrExpired)
	_, err = r.Get(panel.ID, "mod-1")
	assert.NoError(t, err)
}

func TestRegistry_Delete(t *testing.T) {
	r, _ := newTestRegistry()
	s := r.Begin(KindJail, "mod-1", "g1", nil)
	r.Delete(s.ID)

	_, err := r.Get(s.ID, "mod-1")
	assert.ErrorIs(t, err, ErrExpired)
	_, err = r.Get("unknown", "mod-1")
	assert.ErrorIs(t, err, ErrExpired)
}

func TestCustomID(t *testing.T) {
	id := CustomID("abc", "next")
	assert.Equal(t, "wf:abc:next", id)

	sid, action, ok := ParseCustomID(id)
	require.True(t, ok)
	assert.Equal(t, "abc", sid)
	assert.Equal(t, "next", action)

	_, action, ok = ParseCustomID("wf:abc:jail:3600")
	require.True(t, ok)
	assert.Equal(t, "jail:3600", action)

	for _, bad := range []string{"badge_approve:1", "wf:", "wf::x", "wf:abc"} {
		_, _, ok := ParseCustomID(bad)
		assert.False(t, ok, bad)
	}
}

func TestRun_StopsWithContext(t *testing.T) {
	r := NewRegistry()
	r.Begin(KindWarn, "mod-1", "g1", nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
