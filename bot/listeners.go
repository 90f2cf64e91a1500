package bot

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"onwhisper/models"
	"onwhisper/service"

	"github.com/bwmarrin/discordgo"
)

// Gateway listeners translate raw Discord events into routed log events.
// Routing outcomes are the router's business; listeners never block on them.

func (b *Bot) handleMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	ctx := context.Background()
	guildID := parseID(m.GuildID)
	userID := parseID(m.User.ID)

	b.logRouter.Emit(ctx, guildID, models.CategoryMember, &service.LogEvent{
		Title:       "Member Joined",
		Description: fmt.Sprintf("<@%d> joined the server", userID),
		TargetID:    userID,
	})

	b.applyAutorole(ctx, s, m)
}

func (b *Bot) handleMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	userID := parseID(m.User.ID)

	b.logRouter.Emit(context.Background(), parseID(m.GuildID), models.CategoryMember, &service.LogEvent{
		Title:       "Member Left",
		Description: fmt.Sprintf("**%s** left the server", m.User.Username),
		TargetID:    userID,
	})
}

func (b *Bot) handleMemberUpdate(s *discordgo.Session, m *discordgo.GuildMemberUpdate) {
	if m.BeforeUpdate == nil {
		return
	}

	// Only nickname changes are interesting at member granularity; role
	// changes land in the role category via audit-visible commands
	if m.Nick == m.BeforeUpdate.Nick {
		return
	}

	before := m.BeforeUpdate.Nick
	if before == "" {
		before = m.User.Username
	}
	after := m.Nick
	if after == "" {
		after = m.User.Username
	}

	b.logRouter.Emit(context.Background(), parseID(m.GuildID), models.CategoryMember, &service.LogEvent{
		Title: "Nickname Changed",
		Fields: []service.LogField{
			{Name: "Before", Value: before, Inline: true},
			{Name: "After", Value: after, Inline: true},
		},
		TargetID: parseID(m.User.ID),
	})
}

func (b *Bot) handleMessageDelete(s *discordgo.Session, m *discordgo.MessageDelete) {
	if m.GuildID == "" {
		return
	}

	event := &service.LogEvent{
		Title:       "Message Deleted",
		Description: fmt.Sprintf("Message deleted in <#%s>", m.ChannelID),
	}
	// The cached copy carries author and content when we saw the message
	if m.BeforeDelete != nil && m.BeforeDelete.Author != nil {
		event.TargetID = parseID(m.BeforeDelete.Author.ID)
		if m.BeforeDelete.Content != "" {
			event.Fields = append(event.Fields, service.LogField{Name: "Content", Value: m.BeforeDelete.Content})
		}
	}

	b.logRouter.Emit(context.Background(), parseID(m.GuildID), models.CategoryMessage, event)
}

func (b *Bot) handleMessageUpdate(s *discordgo.Session, m *discordgo.MessageUpdate) {
	if m.GuildID == "" || m.Author == nil || m.Author.Bot {
		return
	}
	if m.BeforeUpdate != nil && m.BeforeUpdate.Content == m.Content {
		return
	}

	event := &service.LogEvent{
		Title:       "Message Edited",
		Description: fmt.Sprintf("Message edited in <#%s>", m.ChannelID),
		TargetID:    parseID(m.Author.ID),
	}
	if m.BeforeUpdate != nil && m.BeforeUpdate.Content != "" {
		event.Fields = append(event.Fields, service.LogField{Name: "Before", Value: m.BeforeUpdate.Content})
	}
	if m.Content != "" {
		event.Fields = append(event.Fields, service.LogField{Name: "After", Value: m.Content})
	}

	b.logRouter.Emit(context.Background(), parseID(m.GuildID), models.CategoryMessage, event)
}

func (b *Bot) handleVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	userID := parseID(v.UserID)
	guildID := parseID(v.GuildID)

	var event *service.LogEvent
	switch {
	case v.BeforeUpdate == nil && v.ChannelID != "":
		event = &service.LogEvent{
			Title:       "Voice Joined",
			Description: fmt.Sprintf("<@%d> joined <#%s>", userID, v.ChannelID),
			TargetID:    userID,
		}
	case v.BeforeUpdate != nil && v.ChannelID == "":
		event = &service.LogEvent{
			Title:       "Voice Left",
			Description: fmt.Sprintf("<@%d> left <#%s>", userID, v.BeforeUpdate.ChannelID),
			TargetID:    userID,
		}
	case v.BeforeUpdate != nil && v.BeforeUpdate.ChannelID != v.ChannelID:
		event = &service.LogEvent{
			Title:       "Voice Moved",
			Description: fmt.Sprintf("<@%d> moved from <#%s> to <#%s>", userID, v.BeforeUpdate.ChannelID, v.ChannelID),
			TargetID:    userID,
		}
	default:
		return // mute/deafen toggles are noise
	}

	b.logRouter.Emit(context.Background(), guildID, models.CategoryVoice, event)
}

func (b *Bot) handleChannelCreate(s *discordgo.Session, c *discordgo.ChannelCreate) {
	if c.GuildID == "" || c.IsThread() {
		return
	}

	b.logRouter.Emit(context.Background(), parseID(c.GuildID), models.CategoryChannel, &service.LogEvent{
		Title:       "Channel Created",
		Description: fmt.Sprintf("**#%s** was created", c.Name),
	})
}

func (b *Bot) handleChannelDelete(s *discordgo.Session, c *discordgo.ChannelDelete) {
	if c.GuildID == "" || c.IsThread() {
		return
	}

	b.logRouter.Emit(context.Background(), parseID(c.GuildID), models.CategoryChannel, &service.LogEvent{
		Title:       "Channel Deleted",
		Description: fmt.Sprintf("**#%s** was deleted", c.Name),
	})
}

func (b *Bot) handleRoleCreate(s *discordgo.Session, r *discordgo.GuildRoleCreate) {
	b.logRouter.Emit(context.Background(), parseID(r.GuildID), models.CategoryRole, &service.LogEvent{
		Title:       "Role Created",
		Description: fmt.Sprintf("<@&%s> was created", r.Role.ID),
	})
}

func (b *Bot) handleRoleDelete(s *discordgo.Session, r *discordgo.GuildRoleDelete) {
	b.logRouter.Emit(context.Background(), parseID(r.GuildID), models.CategoryRole, &service.LogEvent{
		Title:       "Role Deleted",
		Description: fmt.Sprintf("Role `%s` was deleted", r.RoleID),
	})
}

// handleThreadDelete keeps whisper tickets consistent when their thread is
// removed out from under them.
func (b *Bot) handleThreadDelete(s *discordgo.Session, t *discordgo.ThreadDelete) {
	if t.GuildID == "" {
		return
	}

	ctx := context.Background()
	guildID := parseID(t.GuildID)
	threadID := parseID(t.ID)

	err := b.whisperService.DeleteByThread(ctx, guildID, threadID)
	if err != nil && !errors.Is(err, service.ErrNotFound) {
		log.Errorf("Error removing whisper for deleted thread %d: %v", threadID, err)
	}
}
