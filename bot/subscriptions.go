package bot

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"onwhisper/events"
	"onwhisper/models"
	"onwhisper/service"
)

// registerSubscriptions wires the domain events published by the services to
// their Discord side effects. Handlers run on bus goroutines, after the
// originating operation has committed and released its guild lock.
func (b *Bot) registerSubscriptions() {
	b.eventBus.Subscribe(events.EventTypeConfigChanged, b.onConfigChanged)
	b.eventBus.Subscribe(events.EventTypeWhisperCreated, b.onWhisperCreated)
	b.eventBus.Subscribe(events.EventTypeWhisperClosed, b.onWhisperClosed)
	b.eventBus.Subscribe(events.EventTypeModerationAction, b.onModerationAction)
	b.eventBus.Subscribe(events.EventTypeLevelUp, b.onLevelUp)
}

// Configuration changes are announced through the bot category
func (b *Bot) onConfigChanged(ctx context.Context, event events.Event) {
	changed, ok := event.(events.ConfigChangedEvent)
	if !ok {
		return
	}

	title := "Setting Changed"
	if changed.Removed {
		title = "Setting Reset"
	}
	b.logRouter.Emit(ctx, changed.GuildID, models.CategoryBot, &service.LogEvent{
		Title:       title,
		Description: fmt.Sprintf("`%s` was updated", changed.Key),
	})
}

func (b *Bot) onWhisperCreated(ctx context.Context, event events.Event) {
	created, ok := event.(events.WhisperCreatedEvent)
	if !ok {
		return
	}

	b.dmUser(created.UserID, fmt.Sprintf("📨 Your whisper **#%d** in %s is open. Staff will reply in <#%d>.",
		created.Number, b.guildName(created.GuildID), created.ThreadID))
}

func (b *Bot) onWhisperClosed(ctx context.Context, event events.Event) {
	closed, ok := event.(events.WhisperClosedEvent)
	if !ok || !closed.ClosedByStaff {
		// Members who close their own whisper need no notice
		return
	}

	b.dmUser(closed.UserID, fmt.Sprintf("Your whisper **#%d** in %s was closed by staff.",
		closed.Number, b.guildName(closed.GuildID)))
}

func (b *Bot) onModerationAction(ctx context.Context, event events.Event) {
	action, ok := event.(events.ModerationActionEvent)
	if !ok {
		return
	}

	reason := action.Reason
	if reason == "" {
		reason = "No reason provided"
	}
	b.dmUser(action.UserID, fmt.Sprintf("You received a **%s** in %s (case #%d): %s",
		action.Action, b.guildName(action.GuildID), action.CaseID, reason))
}

func (b *Bot) onLevelUp(ctx context.Context, event events.Event) {
	up, ok := event.(events.LevelUpEvent)
	if !ok {
		return
	}

	b.announceLevelUp(ctx, up)
	b.grantLevelRewards(ctx, up.GuildID, up.UserID, up.NewLevel)
}

// dmUser delivers a direct message, silently giving up when the member has
// DMs disabled.
func (b *Bot) dmUser(userID int64, content string) {
	channel, err := b.session.UserChannelCreate(formatID(userID))
	if err != nil {
		log.Debugf("Error opening DM channel for user %d: %v", userID, err)
		return
	}
	if _, err := b.session.ChannelMessageSend(channel.ID, content); err != nil {
		log.Debugf("Error sending DM to user %d: %v", userID, err)
	}
}

func (b *Bot) guildName(guildID int64) string {
	if guild, err := b.session.State.Guild(formatID(guildID)); err == nil && guild.Name != "" {
		return guild.Name
	}
	return "the server"
}
