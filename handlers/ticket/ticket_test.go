package ticket

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moderation-bot/model"
)

func TestIsTicketComponent(t *testing.T) {
	assert.True(t, IsTicketComponent(CreateID))
	assert.True(t, IsTicketComponent(ApprovePrefix+"12"))
	assert.False(t, IsTicketComponent("wf:abc:next"))
}

func TestHasPanelButton(t *testing.T) {
	panel := []discordgo.MessageComponent{
		&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			&discordgo.Button{CustomID: CreateID},
		}},
	}
	other := []discordgo.MessageComponent{
		&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			&discordgo.Button{CustomID: ApprovePrefix + "1"},
		}},
	}
	assert.True(t, hasPanelButton(panel))
	assert.False(t, hasPanelButton(other))
	assert.False(t, hasPanelButton(nil))
}

func TestBuildReviewComponents(t *testing.T) {
	rows := buildReviewComponents(42)
	require.Len(t, rows, 1)
	buttons := rows[0].(discordgo.ActionsRow).Components
	assert.Equal(t, "badge_approve:42", buttons[0].(discordgo.Button).CustomID)
	assert.Equal(t, "badge_reject:42", buttons[1].(discordgo.Button).CustomID)
}

func TestBuildReviewEmbed_Status(t *testing.T) {
	req := &model.BadgeRequest{
		ID:          5,
		UserID:      "u1",
		BadgeURL:    "https://cdn.test/badge.png",
		Status:      model.BadgeRejected,
		ModeratorID: "m1",
		Reason:      "blurry",
		SubmittedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	embed := buildReviewEmbed(req)
	assert.Equal(t, model.ColorRemoval, embed.Color)
	require.Len(t, embed.Fields, 2)
	assert.Equal(t, "blurry", embed.Fields[1].Value)
	assert.Equal(t, "https://cdn.test/badge.png", embed.Image.URL)
}

func TestModalValue(t *testing.T) {
	data := discordgo.ModalSubmitInteractionData{
		CustomID: RejectModalPrefix + "3",
		Components: []discordgo.MessageComponent{
			&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				&discordgo.TextInput{CustomID: "reason", Value: "not a badge"},
			}},
		},
	}
	assert.Equal(t, "not a badge", modalValue(data, "reason"))
	assert.Empty(t, modalValue(data, "missing"))
}

func TestBuildStatusEmbed_Limit(t *testing.T) {
	requests := make([]model.BadgeRequest, 12)
	for n := range requests {
		requests[n] = model.BadgeRequest{ID: int64(n + 1), Status: model.BadgePending}
	}
	embed := buildStatusEmbed(requests)
	assert.Len(t, embed.Fields, statusListLimit)
}
