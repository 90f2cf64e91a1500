package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"onwhisper/models"
	"onwhisper/service"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleWhisperCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	guildID := interactionGuildID(i)
	if guildID == 0 {
		b.respondWithError(s, i, "This command only works in a server.")
		return
	}

	sub := i.ApplicationCommandData().Options[0]
	switch sub.Name {
	case "open":
		b.handleWhisperOpen(ctx, s, i, guildID)
	case "close":
		b.handleWhisperClose(ctx, s, i, guildID)
	case "delete":
		b.handleWhisperDelete(ctx, s, i, guildID)
	case "list":
		b.handleWhisperList(ctx, s, i, guildID)
	case "info":
		b.handleWhisperInfo(ctx, s, i, guildID, sub.Options[0].IntValue())
	}
}

func (b *Bot) handleWhisperOpen(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, guildID int64) {
	userID := interactionUserID(i)

	enabled, err := b.configCache.GetBool(ctx, guildID, models.KeyWhisperEnabled)
	if err == nil && !enabled {
		b.respondWithError(s, i, "Whispers are disabled on this server.")
		return
	}

	channelID, err := b.configCache.GetID(ctx, guildID, models.KeyWhisperChannel)
	if err != nil || channelID == 0 {
		b.respondWithError(s, i, "No whisper channel is configured. Ask an administrator to set `whisper_channel`.")
		return
	}

	// One open whisper per user
	if existing, err := b.whisperService.GetOpenByUser(ctx, guildID, userID); err == nil && existing != nil {
		b.respondWithError(s, i, fmt.Sprintf("You already have an open whisper: <#%d>", existing.ThreadID))
		return
	}

	thread, err := s.ThreadStartComplex(formatID(channelID), &discordgo.ThreadStart{
		Name:                fmt.Sprintf("whisper-%s", i.Member.User.Username),
		Type:                discordgo.ChannelTypeGuildPrivateThread,
		AutoArchiveDuration: 10080,
		Invitable:           false,
	})
	if err != nil {
		log.Errorf("Error creating whisper thread in guild %d: %v", guildID, err)
		b.respondWithError(s, i, "Unable to create a whisper thread. Please try again.")
		return
	}

	whisper, err := b.whisperService.Create(ctx, guildID, userID, parseID(thread.ID))
	if err != nil {
		// The thread exists but the ticket does not; remove the orphan
		if _, derr := s.ChannelDelete(thread.ID); derr != nil {
			log.Errorf("Error deleting orphaned whisper thread %s: %v", thread.ID, derr)
		}
		log.Errorf("Error creating whisper for guild %d user %d: %v", guildID, userID, err)
		b.respondWithError(s, i, "Unable to open a whisper. Please try again.")
		return
	}

	if err := s.ThreadMemberAdd(thread.ID, i.Member.User.ID); err != nil {
		log.Errorf("Error adding user to whisper thread %s: %v", thread.ID, err)
	}

	staffRole, _ := b.configCache.GetID(ctx, guildID, models.KeyWhisperStaff)
	greeting := fmt.Sprintf("🤫 **Whisper #%d** opened by <@%d>.", whisper.Number, userID)
	if staffRole != 0 {
		greeting += fmt.Sprintf(" <@&%d>", staffRole)
	}
	if _, err := s.ChannelMessageSend(thread.ID, greeting); err != nil {
		log.Errorf("Error sending whisper greeting in %s: %v", thread.ID, err)
	}

	b.respondEphemeral(s, i, fmt.Sprintf("✅ Whisper **#%d** opened: <#%s>", whisper.Number, thread.ID))
}

func (b *Bot) handleWhisperClose(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, guildID int64) {
	threadID := parseID(i.ChannelID)

	whisper, err := b.whisperService.CloseByThread(ctx, guildID, threadID, b.isStaff(ctx, guildID, i.Member))
	switch {
	case errors.Is(err, service.ErrNotFound):
		b.respondWithError(s, i, "This channel is not a whisper thread.")
		return
	case errors.Is(err, service.ErrNotOpen):
		b.respondWithError(s, i, "This whisper is already closed.")
		return
	case err != nil:
		log.Errorf("Error closing whisper in thread %d: %v", threadID, err)
		b.respondWithError(s, i, "Unable to close the whisper. Please try again.")
		return
	}

	b.respond(s, i, fmt.Sprintf("🔒 Whisper **#%d** closed.", whisper.Number))

	archived := true
	locked := true
	if _, err := s.ChannelEditComplex(i.ChannelID, &discordgo.ChannelEdit{
		Archived: &archived,
		Locked:   &locked,
	}); err != nil {
		log.Errorf("Error archiving whisper thread %s: %v", i.ChannelID, err)
	}
}

func (b *Bot) handleWhisperDelete(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, guildID int64) {
	if !b.isStaff(ctx, guildID, i.Member) {
		b.respondWithError(s, i, "Only staff can delete whispers.")
		return
	}

	threadID := parseID(i.ChannelID)

	err := b.whisperService.DeleteByThread(ctx, guildID, threadID)
	switch {
	case errors.Is(err, service.ErrNotFound):
		b.respondWithError(s, i, "This channel is not a whisper thread.")
		return
	case err != nil:
		log.Errorf("Error deleting whisper in thread %d: %v", threadID, err)
		b.respondWithError(s, i, "Unable to delete the whisper. Please try again.")
		return
	}

	b.respondEphemeral(s, i, "🗑️ Whisper deleted.")

	if _, err := s.ChannelDelete(i.ChannelID); err != nil {
		log.Errorf("Error deleting whisper thread %s: %v", i.ChannelID, err)
	}
}

func (b *Bot) handleWhisperList(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, guildID int64) {
	if !b.isStaff(ctx, guildID, i.Member) {
		b.respondWithError(s, i, "Only staff can list whispers.")
		return
	}

	open, err := b.whisperService.ListOpen(ctx, guildID)
	if err != nil {
		log.Errorf("Error listing whispers for guild %d: %v", guildID, err)
		b.respondWithError(s, i, "Unable to list whispers. Please try again.")
		return
	}

	if len(open) == 0 {
		b.respondEphemeral(s, i, "No open whispers.")
		return
	}

	var sb strings.Builder
	for _, w := range open {
		fmt.Fprintf(&sb, "**#%d** — <@%d> in <#%d>\n", w.Number, w.UserID, w.ThreadID)
	}

	b.respondWithEmbed(s, i, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Open Whispers (%d)", len(open)),
		Description: sb.String(),
		Color:       0x5865f2,
	})
}

func (b *Bot) handleWhisperInfo(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, guildID, number int64) {
	if !b.isStaff(ctx, guildID, i.Member) {
		b.respondWithError(s, i, "Only staff can look up whispers.")
		return
	}

	whisper, err := b.whisperService.GetByNumber(ctx, guildID, number)
	switch {
	case errors.Is(err, service.ErrNotFound):
		b.respondWithError(s, i, fmt.Sprintf("No whisper **#%d** on this server.", number))
		return
	case err != nil:
		log.Errorf("Error looking up whisper #%d in guild %d: %v", number, guildID, err)
		b.respondWithError(s, i, "Unable to look up the whisper. Please try again.")
		return
	}

	status := "🟢 open"
	if !whisper.IsOpen {
		if whisper.ClosedByStaff {
			status = "🔴 closed by staff"
		} else {
			status = "🔴 closed by the user"
		}
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Whisper #%d", whisper.Number),
		Color: 0x5865f2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User", Value: fmt.Sprintf("<@%d>", whisper.UserID), Inline: true},
			{Name: "Thread", Value: fmt.Sprintf("<#%d>", whisper.ThreadID), Inline: true},
			{Name: "Status", Value: status, Inline: true},
			{Name: "Opened", Value: fmt.Sprintf("<t:%d:f>", whisper.CreatedAt.Unix()), Inline: true},
		},
	}
	if whisper.ClosedAt != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Closed", Value: fmt.Sprintf("<t:%d:f>", whisper.ClosedAt.Unix()), Inline: true,
		})
	}

	b.respondWithEmbed(s, i, embed)
}

// isStaff reports whether the member holds the configured whisper staff role
// or can manage the server.
func (b *Bot) isStaff(ctx context.Context, guildID int64, member *discordgo.Member) bool {
	if member == nil {
		return false
	}
	if member.Permissions&discordgo.PermissionManageServer != 0 {
		return true
	}

	staffRole, err := b.configCache.GetID(ctx, guildID, models.KeyWhisperStaff)
	if err != nil || staffRole == 0 {
		return false
	}
	for _, roleID := range member.Roles {
		if parseID(roleID) == staffRole {
			return true
		}
	}
	return false
}
