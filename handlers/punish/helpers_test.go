package punish

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"moderation-bot/bot"
	"moderation-bot/model"
	"moderation-bot/moderation"
)

func TestDescribeError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		want  string
		known bool
	}{
		{"unauthorized", moderation.ErrUnauthorized, "moderator role", true},
		{"wrapped not found", fmt.Errorf("lookup: %w", moderation.ErrNotFound), "not in this server", true},
		{"already jailed", &moderation.AlreadyJailedError{Remaining: 90 * time.Minute}, "01:30:00", true},
		{"capability", moderation.ErrCapabilityDenied, "permissions", true},
		{"unexpected", errors.New("disk full"), "reported", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, known := describeError(tt.err)
			assert.Contains(t, msg, tt.want)
			assert.Equal(t, tt.known, known)
		})
	}
}

func TestBuildWarnListEmbed_Pages(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var warnings []model.Warning
	for n := 1; n <= 7; n++ {
		warnings = append(warnings, model.Warning{
			ID:        int64(n),
			Category:  model.CategorySpamFlood,
			Reason:    "flood",
			IssuedAt:  now,
			ExpiresAt: now.Add(24 * time.Hour),
		})
	}

	embed, page := buildWarnListEmbed("42", warnings, 1)
	assert.Equal(t, 1, page)
	assert.Len(t, embed.Fields, warningsPerPage)
	assert.Equal(t, "Page 1/2", embed.Footer.Text)

	embed, page = buildWarnListEmbed("42", warnings, 9)
	assert.Equal(t, 2, page)
	require.Len(t, embed.Fields, 2)
	assert.True(t, strings.HasPrefix(embed.Fields[0].Name, "#6"))
}

func TestBuildWarnResultEmbed(t *testing.T) {
	result := &moderation.WarnResult{
		WarningID:   3,
		Target:      &model.Member{UserID: "7"},
		Occurrence:  2,
		Decision:    moderation.Decision{Action: moderation.ActionTimeout, Description: "1 hour timeout"},
		Action:      moderation.ActionError,
		TotalActive: 3,
		Escalated:   true,
	}
	embed := buildWarnResultEmbed(result, model.CategoryProfaneLanguage)
	assert.Equal(t, model.ColorError, embed.Color)
	assert.Equal(t, "1 hour timeout could not be applied", embed.Fields[2].Value)
	assert.Len(t, embed.Fields, 5)
}

func TestBuildUnwarnSelect_CapsOptions(t *testing.T) {
	warnings := make([]model.Warning, 30)
	for n := range warnings {
		warnings[n] = model.Warning{ID: int64(n + 1), Category: model.CategoryIncitement, Reason: strings.Repeat("x", 150)}
	}
	rows := buildUnwarnSelect("wf:abc:select", warnings)
	require.Len(t, rows, 1)
	assert.Len(t, rows[0].(discordgo.ActionsRow).Components[0].(discordgo.SelectMenu).Options, 25)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("  short ", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}

func TestEditResponse_LogsRejectedEdit(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "Unknown Webhook", "code": 10015}`))
	}))
	defer srv.Close()

	prev := discordgo.EndpointWebhooks
	discordgo.EndpointWebhooks = srv.URL + "/webhooks/"
	t.Cleanup(func() { discordgo.EndpointWebhooks = prev })

	s, err := discordgo.New("Bot test-token")
	require.NoError(t, err)
	core, logs := observer.New(zap.WarnLevel)
	b := &bot.Bot{Logger: zap.New(core)}
	i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{AppID: "app-1", Token: "tok-1"}}

	msg := "done"
	editResponse(s, i, b, "Jail", &discordgo.WebhookEdit{Content: &msg})

	assert.Equal(t, []string{"/webhooks/app-1/tok-1/messages/@original"}, paths)
	entries := logs.FilterMessage("failed to update interaction response").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Jail", entries[0].ContextMap()["operation"])
}
