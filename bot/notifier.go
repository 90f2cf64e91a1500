package bot

import (
	"context"
	"fmt"
	"time"

	"onwhisper/models"
	"onwhisper/service"

	"github.com/bwmarrin/discordgo"
)

// notifier delivers routed log events as embeds over the Discord session.
// It implements service.Notifier.
type notifier struct {
	session *discordgo.Session
}

// NewNotifier wraps a Discord session as a log delivery boundary
func NewNotifier(session *discordgo.Session) service.Notifier {
	return &notifier{session: session}
}

func (n *notifier) ResolveChannel(guildID, channelID int64) error {
	channelStr := formatID(channelID)

	// The state cache answers for channels we have seen; fall back to the API
	if ch, err := n.session.State.Channel(channelStr); err == nil {
		if ch.GuildID != formatID(guildID) {
			return fmt.Errorf("channel %d belongs to a different guild", channelID)
		}
		return nil
	}

	ch, err := n.session.Channel(channelStr)
	if err != nil {
		return fmt.Errorf("channel %d not found: %w", channelID, err)
	}
	if ch.GuildID != formatID(guildID) {
		return fmt.Errorf("channel %d belongs to a different guild", channelID)
	}
	return nil
}

func (n *notifier) Send(ctx context.Context, guildID, channelID int64, category models.LogCategory, event *service.LogEvent) error {
	info := category.Info()

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s %s", info.Emoji, event.Title),
		Description: event.Description,
		Color:       info.Color,
		Footer:      &discordgo.MessageEmbedFooter{Text: info.Name},
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}

	for _, f := range event.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}
	if event.ActorID != 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Moderator", Value: fmt.Sprintf("<@%d>", event.ActorID), Inline: true,
		})
	}
	if event.TargetID != 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "User", Value: fmt.Sprintf("<@%d>", event.TargetID), Inline: true,
		})
	}

	_, err := n.session.ChannelMessageSendEmbed(formatID(channelID), embed)
	if err != nil {
		return fmt.Errorf("failed to send log message to channel %d: %w", channelID, err)
	}
	return nil
}
