package moderation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moderation-bot/model"
)

func TestWarn_FollowsLadder(t *testing.T) {
	h := newHarness(t)
	start := h.clock.Now()

	first := h.warn(t, model.CategoryProfaneLanguage)
	assert.Equal(t, ActionWarn, first.Action)
	assert.Equal(t, 1, first.Occurrence)
	assert.Empty(t, h.gw.timeouts)

	second := h.warn(t, model.CategoryProfaneLanguage)
	assert.Equal(t, ActionTimeout, second.Action)
	assert.Equal(t, 900*time.Second, second.Decision.Duration)
	assert.Equal(t, 2, second.TotalActive)
	assert.False(t, second.Escalated)
	require.Len(t, h.gw.timeouts, 1)
	assert.Equal(t, start.Add(900*time.Second), h.gw.timeouts[0].Until)
	assert.Equal(t, DefaultReason(model.CategoryProfaneLanguage), h.gw.timeouts[0].Reason)

	require.Len(t, h.gw.logs, 2)
	assert.Equal(t, model.ColorTimeout, h.gw.logs[1].Color)
}

func TestWarn_ExactMatchFallsBackToWarning(t *testing.T) {
	h := newHarness(t)

	h.warn(t, model.CategoryFamilyInsult)
	h.warn(t, model.CategoryFamilyInsult)
	// The family-insult ladder stops at two, so the third occurrence is a plain warning.
	third := h.warn(t, model.CategoryFamilyInsult)
	assert.Equal(t, 3, third.Occurrence)
	assert.Equal(t, ActionWarn, third.Action)
}

func TestWarn_EscalatesAcrossCategories(t *testing.T) {
	h := newHarness(t)

	h.warn(t, model.CategorySpamFlood)
	h.warn(t, model.CategoryIncitement)
	res := h.warn(t, model.CategoryMoralViolation)

	assert.Equal(t, ActionWarn, res.Action)
	assert.Equal(t, 3, res.TotalActive)
	assert.True(t, res.Escalated)
	require.Len(t, h.gw.timeouts, 1)
	assert.Equal(t, h.clock.Now().Add(EscalationTimeout), h.gw.timeouts[0].Until)

	last := h.gw.logs[len(h.gw.logs)-1]
	assert.Equal(t, "Automatic timeout", last.Title)
}

func TestWarn_ExpiredWarningsDoNotCount(t *testing.T) {
	h := newHarness(t)

	h.warn(t, model.CategorySpamFlood)
	h.clock.Advance(24 * time.Hour)
	res := h.warn(t, model.CategorySpamFlood)

	assert.Equal(t, 1, res.Occurrence)
	assert.Equal(t, ActionWarn, res.Action)
	assert.Equal(t, 1, res.TotalActive)
}

func TestWarn_TimeoutRefusedKeepsWarning(t *testing.T) {
	h := newHarness(t)
	h.gw.timeoutErr = ErrCapabilityDenied

	res := h.warn(t, model.CategoryReligiousInsult)
	assert.Equal(t, ActionError, res.Action)
	assert.ErrorIs(t, res.ApplyErr, ErrCapabilityDenied)

	count, err := h.store.CountActiveWarnings(context.Background(), testTarget, testGuild, model.CategoryReligiousInsult)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.Len(t, h.gw.logs, 1)
	assert.Equal(t, model.ColorError, h.gw.logs[0].Color)
}

func TestWarn_EscalationFailureIsSwallowed(t *testing.T) {
	h := newHarness(t)
	h.warn(t, model.CategorySpamFlood)
	h.warn(t, model.CategoryIncitement)

	h.gw.timeoutErr = errors.New("gateway down")
	res := h.warn(t, model.CategorySexualContent)
	assert.Equal(t, ActionWarn, res.Action)
	assert.False(t, res.Escalated)
	assert.Equal(t, 3, res.TotalActive)
}

func TestWarn_LogFailureIsSwallowed(t *testing.T) {
	h := newHarness(t)
	h.gw.logErr = errors.New("channel gone")

	res := h.warn(t, model.CategorySpamFlood)
	assert.Equal(t, ActionWarn, res.Action)
}

func TestWarn_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		actor   string
		target  string
		cat     model.Category
		wantErr error
	}{
		{name: "not a moderator", actor: "plain", target: testTarget, cat: model.CategorySpamFlood, wantErr: ErrUnauthorized},
		{name: "self", actor: testModerator, target: testModerator, cat: model.CategorySpamFlood, wantErr: ErrInvalidTarget},
		{name: "bot target", actor: testModerator, target: "other-bot", cat: model.CategorySpamFlood, wantErr: ErrInvalidTarget},
		{name: "ranks above bot", actor: testModerator, target: "boss", cat: model.CategorySpamFlood, wantErr: ErrInvalidTarget},
		{name: "missing member", actor: testModerator, target: "ghost", cat: model.CategorySpamFlood, wantErr: ErrNotFound},
		{name: "unknown category", actor: testModerator, target: testTarget, cat: "littering", wantErr: ErrUnknownCategory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			_, err := h.mod.Warn(context.Background(), WarnRequest{
				GuildID:  testGuild,
				ActorID:  tt.actor,
				TargetID: tt.target,
				Category: tt.cat,
			})
			require.ErrorIs(t, err, tt.wantErr)

			count, err := h.store.CountActiveWarnings(context.Background(), tt.target, testGuild, "")
			require.NoError(t, err)
			assert.Zero(t, count, "rejected warnings must not be recorded")
		})
	}
}
