package ticket

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"moderation-bot/bot"
)

// RestoreReviews re-attaches review buttons to pending requests and posts the
// review message for requests that never got one.
func RestoreReviews(ctx context.Context, s *discordgo.Session, b *bot.Bot) {
	channelID := b.Config.Guild.BadgeModLogChannelID
	if channelID == "" {
		return
	}
	pending, err := b.Badges.Pending(ctx)
	if err != nil {
		b.ReportFailure("Ticket", "RestoreReviews", err)
		return
	}

	restored := 0
	for n := range pending {
		req := &pending[n]
		if req.MessageID == "" {
			postReview(s, b, req)
			restored++
			continue
		}
		components := buildReviewComponents(req.ID)
		_, err := s.ChannelMessageEditComplex(&discordgo.MessageEdit{
			Channel:    channelID,
			ID:         req.MessageID,
			Components: &components,
		})
		if err != nil {
			// The review message is gone; post a fresh one.
			postReview(s, b, req)
		}
		restored++
	}
	if restored > 0 {
		b.Logger.Info("badge reviews restored", zap.Int("count", restored))
	}
}
