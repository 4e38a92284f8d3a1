package moderation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moderation-bot/model"
)

func TestManualActions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	req := ActionRequest{GuildID: testGuild, ActorID: testModerator, TargetID: testTarget, Reason: "raid"}

	_, err := h.mod.Kick(ctx, req)
	require.NoError(t, err)
	_, err = h.mod.Ban(ctx, req)
	require.NoError(t, err)
	_, err = h.mod.Mute(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, []string{testTarget}, h.gw.kicked)
	assert.Equal(t, []string{testTarget}, h.gw.banned)
	require.Len(t, h.gw.timeouts, 1)
	assert.Equal(t, h.clock.Now().Add(MuteDuration), h.gw.timeouts[0].Until)
	assert.Equal(t, "raid", h.gw.timeouts[0].Reason)
	require.Len(t, h.gw.logs, 3)
	assert.Equal(t, "Member muted", h.gw.logs[2].Title)
}

func TestManualActions_CapabilityDenied(t *testing.T) {
	h := newHarness(t)
	h.gw.timeoutErr = ErrCapabilityDenied

	_, err := h.mod.Mute(context.Background(), ActionRequest{GuildID: testGuild, ActorID: testModerator, TargetID: testTarget})
	assert.ErrorIs(t, err, ErrCapabilityDenied)
	assert.Empty(t, h.gw.logs)
}

func TestRemoveWarning(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res := h.warn(t, model.CategorySpamFlood)
	otherID, err := h.store.AddWarning(ctx, "plain", testGuild, model.CategorySpamFlood, "r", testModerator)
	require.NoError(t, err)

	_, err = h.mod.RemoveWarning(ctx, RemoveWarningRequest{GuildID: testGuild, ActorID: testModerator, TargetID: testTarget, WarningID: otherID})
	assert.ErrorIs(t, err, ErrWarningNotFound)

	_, err = h.mod.RemoveWarning(ctx, RemoveWarningRequest{GuildID: testGuild, ActorID: "plain", TargetID: testTarget, WarningID: res.WarningID})
	assert.ErrorIs(t, err, ErrUnauthorized)

	w, err := h.mod.RemoveWarning(ctx, RemoveWarningRequest{GuildID: testGuild, ActorID: testModerator, TargetID: testTarget, WarningID: res.WarningID})
	require.NoError(t, err)
	assert.Equal(t, res.WarningID, w.ID)

	_, err = h.mod.RemoveWarning(ctx, RemoveWarningRequest{GuildID: testGuild, ActorID: testModerator, TargetID: testTarget, WarningID: res.WarningID})
	assert.ErrorIs(t, err, ErrWarningNotFound)
}

func TestRemoveWarning_Expired(t *testing.T) {
	h := newHarness(t)
	res := h.warn(t, model.CategorySpamFlood)
	h.clock.Advance(25 * time.Hour)

	_, err := h.mod.RemoveWarning(context.Background(), RemoveWarningRequest{GuildID: testGuild, ActorID: testModerator, TargetID: testTarget, WarningID: res.WarningID})
	assert.ErrorIs(t, err, ErrWarningNotFound)
}

func TestUserSummary(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.warn(t, model.CategorySpamFlood)
	h.warn(t, model.CategoryIncitement)
	h.jail(t, time.Hour)

	summary, err := h.mod.UserSummary(ctx, testGuild, testModerator, testTarget)
	require.NoError(t, err)
	assert.Len(t, summary.ActiveWarnings, 2)
	assert.Equal(t, model.CategoryIncitement, summary.ActiveWarnings[0].Category)
	require.NotNil(t, summary.Jail)
	assert.Equal(t, testTarget, summary.Member.UserID)

	warnings, err := h.mod.ActiveWarnings(ctx, testGuild, testModerator, testTarget)
	require.NoError(t, err)
	assert.Len(t, warnings, 2)

	_, err = h.mod.UserSummary(ctx, testGuild, "plain", testTarget)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
