package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"onwhisper/service"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleModCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	guildID := interactionGuildID(i)
	if guildID == 0 {
		b.respondWithError(s, i, "This command only works in a server.")
		return
	}

	sub := i.ApplicationCommandData().Options[0]
	switch sub.Name {
	case "log":
		b.handleModLog(ctx, s, i, guildID, sub.Options)
	case "case":
		b.handleModCase(ctx, s, i, guildID, sub.Options[0].IntValue())
	case "history":
		b.handleModHistory(ctx, s, i, guildID, sub.Options)
	}
}

func (b *Bot) handleModLog(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, guildID int64, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	var target *discordgo.User
	var action, reason string
	for _, opt := range opts {
		switch opt.Name {
		case "user":
			target = opt.UserValue(s)
		case "action":
			action = opt.StringValue()
		case "reason":
			reason = opt.StringValue()
		}
	}
	if target == nil {
		b.respondWithError(s, i, "Invalid user.")
		return
	}

	entry, err := b.moderationService.LogAction(ctx, guildID, parseID(target.ID), action, reason, interactionUserID(i))
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			b.respondWithError(s, i, fmt.Sprintf("Cannot record the action: %v", err))
			return
		}
		log.Errorf("Error recording moderation action in guild %d: %v", guildID, err)
		b.respondWithError(s, i, "Unable to record the action. Please try again.")
		return
	}

	b.respond(s, i, fmt.Sprintf("🛡️ Case **#%d** recorded: **%s** for <@%s>.", entry.CaseID, action, target.ID))
}

func (b *Bot) handleModCase(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, guildID, caseID int64) {
	entry, err := b.moderationService.GetCase(ctx, guildID, caseID)
	switch {
	case errors.Is(err, service.ErrNotFound):
		b.respondWithError(s, i, fmt.Sprintf("No case **#%d** on this server.", caseID))
		return
	case err != nil:
		log.Errorf("Error loading case #%d in guild %d: %v", caseID, guildID, err)
		b.respondWithError(s, i, "Unable to load the case. Please try again.")
		return
	}

	reason := entry.Reason
	if reason == "" {
		reason = "No reason provided"
	}

	b.respondWithEmbed(s, i, &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Case #%d — %s", entry.CaseID, entry.Action),
		Color: 0xe74c3c,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User", Value: fmt.Sprintf("<@%d>", entry.UserID), Inline: true},
			{Name: "Moderator", Value: fmt.Sprintf("<@%d>", entry.ModeratorID), Inline: true},
			{Name: "When", Value: fmt.Sprintf("<t:%d:f>", entry.CreatedAt.Unix()), Inline: true},
			{Name: "Reason", Value: reason},
		},
	})
}

func (b *Bot) handleModHistory(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, guildID int64, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	target := opts[0].UserValue(s)
	if target == nil {
		b.respondWithError(s, i, "Invalid user.")
		return
	}

	history, err := b.moderationService.History(ctx, guildID, parseID(target.ID), 0)
	if err != nil {
		log.Errorf("Error loading history for user %s in guild %d: %v", target.ID, guildID, err)
		b.respondWithError(s, i, "Unable to load the history. Please try again.")
		return
	}

	if len(history) == 0 {
		b.respondEphemeral(s, i, fmt.Sprintf("<@%s> has a clean record.", target.ID))
		return
	}

	var sb strings.Builder
	for _, entry := range history {
		reason := entry.Reason
		if reason == "" {
			reason = "no reason"
		}
		fmt.Fprintf(&sb, "**#%d** %s — %s (<t:%d:d>)\n", entry.CaseID, entry.Action, reason, entry.CreatedAt.Unix())
	}

	b.respondWithEmbed(s, i, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("History for %s (%d cases)", target.Username, len(history)),
		Description: sb.String(),
		Color:       0xe74c3c,
	})
}
