package bot

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"onwhisper/events"
	"onwhisper/models"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleLevelCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	guildID := interactionGuildID(i)
	if guildID == 0 {
		b.respondWithError(s, i, "This command only works in a server.")
		return
	}

	sub := i.ApplicationCommandData().Options[0]
	switch sub.Name {
	case "rank":
		b.handleLevelRank(ctx, s, i, guildID, sub.Options)
	case "leaderboard":
		b.handleLevelLeaderboard(ctx, s, i, guildID)
	case "reward":
		b.handleLevelReward(ctx, s, i, guildID, sub.Options)
	}
}

func (b *Bot) handleLevelRank(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, guildID int64, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	userID := interactionUserID(i)
	mention := fmt.Sprintf("<@%d>", userID)
	for _, opt := range opts {
		if opt.Name == "user" {
			if target := opt.UserValue(s); target != nil {
				userID = parseID(target.ID)
				mention = fmt.Sprintf("<@%s>", target.ID)
			}
		}
	}

	user, err := b.levelingService.GetUser(ctx, guildID, userID)
	if err != nil {
		log.Errorf("Error loading XP for user %d in guild %d: %v", userID, guildID, err)
		b.respondWithError(s, i, "Unable to load the rank. Please try again.")
		return
	}
	if user == nil {
		b.respondEphemeral(s, i, fmt.Sprintf("%s has no XP yet.", mention))
		return
	}

	b.respond(s, i, fmt.Sprintf("%s is level **%d** with **%d XP**.", mention, user.Level, user.XP))
}

func (b *Bot) handleLevelLeaderboard(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, guildID int64) {
	top, err := b.levelingService.Leaderboard(ctx, guildID, 10)
	if err != nil {
		log.Errorf("Error loading leaderboard for guild %d: %v", guildID, err)
		b.respondWithError(s, i, "Unable to load the leaderboard. Please try again.")
		return
	}

	if len(top) == 0 {
		b.respondEphemeral(s, i, "Nobody has earned XP yet.")
		return
	}

	var sb strings.Builder
	for rank, user := range top {
		fmt.Fprintf(&sb, "**%d.** <@%d> — level %d (%d XP)\n", rank+1, user.UserID, user.Level, user.XP)
	}

	b.respondWithEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "🏆 Leaderboard",
		Description: sb.String(),
		Color:       0xf1c40f,
	})
}

func (b *Bot) handleLevelReward(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, guildID int64, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	var level int64
	var role *discordgo.Role
	for _, opt := range opts {
		switch opt.Name {
		case "level":
			level = opt.IntValue()
		case "role":
			role = opt.RoleValue(s, i.GuildID)
		}
	}
	if role == nil {
		b.respondWithError(s, i, "Invalid role.")
		return
	}

	if err := b.levelingService.SetReward(ctx, guildID, int(level), parseID(role.ID)); err != nil {
		log.Errorf("Error setting level reward for guild %d: %v", guildID, err)
		b.respondWithError(s, i, "Unable to save the reward. Please try again.")
		return
	}

	b.respondEphemeral(s, i, fmt.Sprintf("✅ Members reaching level **%d** will get <@&%s>.", level, role.ID))
}

// handleMessageCreate grants message XP. Level-up side effects (announcement,
// reward roles) run off the level-up event, see subscriptions.go.
func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	ctx := context.Background()
	guildID := parseID(m.GuildID)
	userID := parseID(m.Author.ID)

	if _, _, err := b.levelingService.AddXP(ctx, guildID, userID, parseID(m.ChannelID)); err != nil {
		log.Debugf("Error granting XP to user %d in guild %d: %v", userID, guildID, err)
	}
}

func (b *Bot) announceLevelUp(ctx context.Context, up events.LevelUpEvent) {
	template, err := b.configCache.GetString(ctx, up.GuildID, models.KeyLevelUpMessage)
	if err != nil || template == "" {
		return
	}

	message := strings.ReplaceAll(template, "{user}", fmt.Sprintf("<@%d>", up.UserID))
	message = strings.ReplaceAll(message, "{level}", fmt.Sprintf("%d", up.NewLevel))

	// Announce in the configured channel, or where the triggering message landed
	channelID := up.ChannelID
	if configured, err := b.configCache.GetID(ctx, up.GuildID, models.KeyLevelChannel); err == nil && configured != 0 {
		channelID = configured
	}
	if channelID == 0 {
		return
	}

	if _, err := b.session.ChannelMessageSend(formatID(channelID), message); err != nil {
		log.Errorf("Error announcing level up in guild %d: %v", up.GuildID, err)
	}
}

func (b *Bot) grantLevelRewards(ctx context.Context, guildID, userID int64, level int) {
	roles, err := b.levelingService.RewardsForLevel(ctx, guildID, level)
	if err != nil {
		log.Errorf("Error loading level rewards for guild %d: %v", guildID, err)
		return
	}

	for _, roleID := range roles {
		if err := b.session.GuildMemberRoleAdd(formatID(guildID), formatID(userID), formatID(roleID)); err != nil {
			log.Errorf("Error granting reward role %d in guild %d: %v", roleID, guildID, err)
		}
	}
}
