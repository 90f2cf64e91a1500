package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"onwhisper/models"
	"onwhisper/service"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleConfigCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	guildID := interactionGuildID(i)
	if guildID == 0 {
		b.respondWithError(s, i, "This command only works in a server.")
		return
	}

	sub := i.ApplicationCommandData().Options[0]
	switch sub.Name {
	case "show":
		b.handleConfigShow(ctx, s, i, guildID)
	case "set":
		b.handleConfigSet(ctx, s, i, guildID, sub.Options)
	case "remove":
		b.handleConfigRemove(ctx, s, i, guildID, sub.Options)
	}
}

func (b *Bot) handleConfigShow(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, guildID int64) {
	all, err := b.configCache.GetAll(ctx, guildID)
	if err != nil {
		log.Errorf("Error loading settings for guild %d: %v", guildID, err)
		b.respondWithError(s, i, "Unable to load settings. Please try again.")
		return
	}

	keys := make([]string, 0, len(all))
	for key := range all {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, key := range keys {
		value := all[key]
		display := value.Stored()
		if value.Type == models.SettingID {
			if value.ID == 0 {
				display = "not set"
			} else {
				display = fmt.Sprintf("<#%d>", value.ID)
			}
		}
		fmt.Fprintf(&sb, "`%s` — %s\n", key, display)
	}

	b.respondWithEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "Server Settings",
		Description: sb.String(),
		Color:       0x5865f2,
	})
}

func (b *Bot) handleConfigSet(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, guildID int64, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	var key, value string
	for _, opt := range opts {
		switch opt.Name {
		case "key":
			key = opt.StringValue()
		case "value":
			value = opt.StringValue()
		}
	}

	if err := b.configCache.SetFromString(ctx, guildID, key, value); err != nil {
		if errors.Is(err, service.ErrValidation) {
			b.respondWithError(s, i, fmt.Sprintf("Cannot set `%s`: %v", key, err))
			return
		}
		log.Errorf("Error setting %s for guild %d: %v", key, guildID, err)
		b.respondWithError(s, i, "Unable to save the setting. Please try again.")
		return
	}

	b.respondEphemeral(s, i, fmt.Sprintf("✅ `%s` updated.", key))
}

func (b *Bot) handleConfigRemove(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, guildID int64, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	key := opts[0].StringValue()

	err := b.configCache.Remove(ctx, guildID, key)
	switch {
	case errors.Is(err, service.ErrNotFound):
		b.respondEphemeral(s, i, fmt.Sprintf("`%s` was already at its default.", key))
	case errors.Is(err, service.ErrValidation):
		b.respondWithError(s, i, fmt.Sprintf("Unknown setting `%s`.", key))
	case err != nil:
		log.Errorf("Error removing %s for guild %d: %v", key, guildID, err)
		b.respondWithError(s, i, "Unable to reset the setting. Please try again.")
	default:
		b.respondEphemeral(s, i, fmt.Sprintf("✅ `%s` reset to its default.", key))
	}
}

func (b *Bot) handleResetCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	guildID := interactionGuildID(i)
	if guildID == 0 {
		b.respondWithError(s, i, "This command only works in a server.")
		return
	}

	confirm := i.ApplicationCommandData().Options[0].StringValue()

	guild, err := s.State.Guild(i.GuildID)
	if err != nil {
		guild, err = s.Guild(i.GuildID)
	}
	if err != nil {
		log.Errorf("Error loading guild %d: %v", guildID, err)
		b.respondWithError(s, i, "Unable to verify the server. Please try again.")
		return
	}

	if confirm != guild.Name {
		b.respondWithError(s, i, fmt.Sprintf("Type the server name (`%s`) to confirm the reset.", guild.Name))
		return
	}

	if err := b.guildDataService.ResetGuild(ctx, guildID); err != nil {
		log.Errorf("Error resetting guild %d: %v", guildID, err)
		b.respondWithError(s, i, "Reset failed, no data was removed. Please try again.")
		return
	}

	b.respond(s, i, "🗑️ All stored data for this server has been deleted. Settings are back to their defaults.")
}
