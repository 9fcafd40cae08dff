package bot

import (
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/lucybot/internal/monitor"
)

func (b *Bot) onPresenceUpdate(_ *discordgo.Session, p *discordgo.PresenceUpdate) {
	mon := b.deps.Monitor
	if mon == nil || !mon.Enabled() || p.User == nil || b.cfg.ChatChannelID == "" {
		return
	}
	alert, ok := mon.Observe(p.User.ID, activityName(p.Activities), b.now())
	if !ok {
		return
	}

	ctx, done := b.eventContext("presence")
	defer done()
	if _, err := b.api.ChannelMessageSend(b.cfg.ChatChannelID, monitor.FormatAlert(alert), discordgo.WithContext(ctx)); err != nil {
		b.logger.Warn("send presence alert", zap.String("user", alert.UserID), zap.Error(err))
		return
	}
	mon.MarkSent(alert)
	b.logger.Info("presence alert sent", zap.String("user", alert.UserID), zap.String("game", alert.Game))
}

// activityName picks the activity to judge: a game if one is running,
// otherwise the first named non-custom activity.
func activityName(activities []*discordgo.Activity) string {
	for _, a := range activities {
		if a != nil && a.Type == discordgo.ActivityTypeGame && a.Name != "" {
			return a.Name
		}
	}
	for _, a := range activities {
		if a != nil && a.Type != discordgo.ActivityTypeCustom && a.Name != "" {
			return a.Name
		}
	}
	return ""
}
