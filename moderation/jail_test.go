package moderation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moderation-bot/model"
	"moderation-bot/utils/database/sanctions"
)

func (h *harness) jail(t *testing.T, d time.Duration) *model.Jail {
	t.Helper()
	j, err := h.mod.Jail(context.Background(), JailRequest{
		GuildID:  testGuild,
		ActorID:  testModerator,
		TargetID: testTarget,
		Duration: d,
	})
	require.NoError(t, err)
	return j
}

func TestJail_ReplacesRolesAndRecordsSnapshot(t *testing.T) {
	h := newHarness(t)
	h.gw.members[testTarget].RoleIDs = []string{testGuild, "role-member", "role-vip"}

	j := h.jail(t, time.Hour)

	assert.Equal(t, []string{testJailRole}, h.gw.roleIDs(testTarget))
	assert.Equal(t, []string{"role-member", "role-vip"}, j.OriginalRoles)
	assert.Equal(t, h.clock.Now().Add(time.Hour), j.EndTime)

	stored, err := h.store.FindActiveJail(context.Background(), testTarget, testGuild)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, j.ID, stored.ID)
}

func TestJail_AlreadyJailed(t *testing.T) {
	h := newHarness(t)
	h.jail(t, 2*time.Hour)
	h.clock.Advance(time.Hour - 100*time.Second)

	_, err := h.mod.Jail(context.Background(), JailRequest{
		GuildID:  testGuild,
		ActorID:  testModerator,
		TargetID: testTarget,
		Duration: time.Hour,
	})
	var already *AlreadyJailedError
	require.True(t, errors.As(err, &already))
	assert.Equal(t, 3700*time.Second, already.Remaining)
	assert.Contains(t, err.Error(), "01:01:40")
}

func TestJail_MissingJailRole(t *testing.T) {
	h := newHarness(t)
	var roles []model.Role
	for _, r := range h.gw.roles {
		if r.ID != testJailRole {
			roles = append(roles, r)
		}
	}
	h.gw.roles = roles

	_, err := h.mod.Jail(context.Background(), JailRequest{
		GuildID:  testGuild,
		ActorID:  testModerator,
		TargetID: testTarget,
		Duration: time.Hour,
	})
	require.ErrorIs(t, err, ErrJailRoleMissing)
	assert.Equal(t, []string{"role-member", "role-vip"}, h.gw.roleIDs(testTarget))
}

func TestJail_RoleEditRefused(t *testing.T) {
	h := newHarness(t)
	h.gw.setRolesErr = ErrCapabilityDenied

	_, err := h.mod.Jail(context.Background(), JailRequest{
		GuildID:  testGuild,
		ActorID:  testModerator,
		TargetID: testTarget,
		Duration: time.Hour,
	})
	require.ErrorIs(t, err, ErrCapabilityDenied)

	stored, err := h.store.FindActiveJail(context.Background(), testTarget, testGuild)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestJail_Validation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.mod.Jail(ctx, JailRequest{GuildID: testGuild, ActorID: testModerator, TargetID: testTarget})
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = h.mod.Jail(ctx, JailRequest{GuildID: testGuild, ActorID: "plain", TargetID: testTarget, Duration: time.Hour})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = h.mod.Jail(ctx, JailRequest{GuildID: testGuild, ActorID: testModerator, TargetID: "boss", Duration: time.Hour})
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestRelease(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.jail(t, 6*time.Hour)

	j, err := h.mod.Release(ctx, ReleaseRequest{GuildID: testGuild, ActorID: testModerator, TargetID: testTarget})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"role-member", "role-vip"}, h.gw.roleIDs(testTarget))
	assert.NotZero(t, j.ID)

	calls := h.gw.roleCalls()
	_, err = h.mod.Release(ctx, ReleaseRequest{GuildID: testGuild, ActorID: testModerator, TargetID: testTarget})
	assert.ErrorIs(t, err, ErrNotJailed)
	assert.Equal(t, calls, h.gw.roleCalls(), "no role edits for a member who is not jailed")
	assert.ElementsMatch(t, []string{"role-member", "role-vip"}, h.gw.roleIDs(testTarget))
}

func TestRelease_SkipsDeletedRoles(t *testing.T) {
	h := newHarness(t)
	h.jail(t, time.Hour)

	// role-vip was deleted while the member was jailed
	h.gw.roles = []model.Role{
		{ID: testGuild, Position: 0},
		{ID: "role-member", Position: 1},
		{ID: testJailRole, Position: 3},
		{ID: testModRole, Position: 5},
		{ID: "role-bot", Position: 10},
	}
	_, err := h.mod.Release(context.Background(), ReleaseRequest{GuildID: testGuild, ActorID: testModerator, TargetID: testTarget})
	require.NoError(t, err)
	assert.Equal(t, []string{"role-member"}, h.gw.roleIDs(testTarget))
}

func TestSweep(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.jail(t, time.Hour)

	report, err := h.mod.Sweep(ctx, h.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, SweepReport{}, report)

	h.clock.Advance(time.Hour)
	report, err = h.mod.Sweep(ctx, h.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, SweepReport{Released: 1}, report)
	assert.ElementsMatch(t, []string{"role-member", "role-vip"}, h.gw.roleIDs(testTarget))

	expired, err := h.store.ListExpiredJails(ctx, h.clock.Now())
	require.NoError(t, err)
	assert.Empty(t, expired)

	last := h.gw.logs[len(h.gw.logs)-1]
	assert.Equal(t, "Jail expired", last.Title)
}

func TestSweep_UnreachableMemberIsKept(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.jail(t, time.Hour)
	h.clock.Advance(2 * time.Hour)

	h.gw.memberErr[testTarget] = ErrNotFound
	report, err := h.mod.Sweep(ctx, h.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, SweepReport{Skipped: 1}, report)

	expired, err := h.store.ListExpiredJails(ctx, h.clock.Now())
	require.NoError(t, err)
	assert.Len(t, expired, 1)

	h.gw.memberErr[testTarget] = errors.New("rate limited")
	report, err = h.mod.Sweep(ctx, h.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, SweepReport{Failed: 1}, report)

	delete(h.gw.memberErr, testTarget)
	report, err = h.mod.Sweep(ctx, h.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, SweepReport{Released: 1}, report)
}

func TestSweep_UnreachableGuildDoesNotStopBatch(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	start := h.clock.Now()
	goneID, err := h.store.CreateJail(ctx, model.Jail{
		UserID:        "user-gone",
		GuildID:       "g-gone",
		ModeratorID:   testModerator,
		StartTime:     start,
		EndTime:       start.Add(30 * time.Minute),
		OriginalRoles: []string{"role-old"},
	})
	require.NoError(t, err)
	h.jail(t, time.Hour)
	require.Equal(t, []string{testJailRole}, h.gw.roleIDs(testTarget))

	h.clock.Advance(2 * time.Hour)
	report, err := h.mod.Sweep(ctx, h.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, SweepReport{Released: 1, Skipped: 1}, report)
	assert.ElementsMatch(t, []string{"role-member", "role-vip"}, h.gw.roleIDs(testTarget))

	expired, err := h.store.ListExpiredJails(ctx, h.clock.Now())
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, goneID, expired[0].ID)
	assert.Equal(t, "g-gone", expired[0].GuildID)
}

// racingStore lets a competing jail land between the active-jail check and the insert.
type racingStore struct {
	*sanctions.Store
	competing model.Jail
	raced     bool
}

func (r *racingStore) FindActiveJail(ctx context.Context, userID, guildID string) (*model.Jail, error) {
	if !r.raced {
		return nil, nil
	}
	return r.Store.FindActiveJail(ctx, userID, guildID)
}

func (r *racingStore) CreateJail(ctx context.Context, jail model.Jail) (int64, error) {
	if !r.raced {
		r.raced = true
		if _, err := r.Store.CreateJail(ctx, r.competing); err != nil {
			return 0, err
		}
	}
	return r.Store.CreateJail(ctx, jail)
}

func TestJail_LosingConcurrentInsertKeepsWinner(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	now := h.clock.Now()

	store := &racingStore{
		Store: h.store,
		competing: model.Jail{
			UserID:        testTarget,
			GuildID:       testGuild,
			ModeratorID:   "mod-2",
			StartTime:     now,
			EndTime:       now.Add(2 * time.Hour),
			OriginalRoles: []string{"role-member", "role-vip"},
		},
	}
	mod := New(store, h.gw, model.GuildSettings{
		ModeratorRoleID: testModRole,
		JailRoleID:      testJailRole,
	}, WithClock(h.clock.Now))

	_, err := mod.Jail(ctx, JailRequest{
		GuildID:  testGuild,
		ActorID:  testModerator,
		TargetID: testTarget,
		Duration: time.Hour,
	})
	var already *AlreadyJailedError
	require.True(t, errors.As(err, &already))
	assert.Equal(t, 2*time.Hour, already.Remaining)

	assert.Equal(t, []string{testJailRole}, h.gw.roleIDs(testTarget))
	active, err := h.store.FindActiveJail(ctx, testTarget, testGuild)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "mod-2", active.ModeratorID)
}

func TestReapplyJail(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	found, err := h.mod.ReapplyJail(ctx, testGuild, testTarget)
	require.NoError(t, err)
	assert.False(t, found)

	h.jail(t, time.Hour)
	// member left and rejoined with no roles
	h.gw.members[testTarget].RoleIDs = nil

	found, err = h.mod.ReapplyJail(ctx, testGuild, testTarget)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{testJailRole}, h.gw.roleIDs(testTarget))
}
