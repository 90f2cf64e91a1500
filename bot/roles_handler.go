package bot

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"onwhisper/models"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleRolesCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	guildID := interactionGuildID(i)
	if guildID == 0 {
		b.respondWithError(s, i, "This command only works in a server.")
		return
	}

	sub := i.ApplicationCommandData().Options[0]
	switch sub.Name {
	case "autorole":
		b.handleAutorole(ctx, s, i, guildID, sub.Options)
	case "color":
		b.handleColorRole(ctx, s, i, guildID, sub.Options)
	case "reaction":
		b.handleReactionRoleBind(ctx, s, i, guildID, sub.Options)
	}
}

func (b *Bot) handleColorRole(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, guildID int64, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	var target *discordgo.User
	var role *discordgo.Role
	for _, opt := range opts {
		switch opt.Name {
		case "user":
			target = opt.UserValue(s)
		case "role":
			role = opt.RoleValue(s, i.GuildID)
		}
	}
	if target == nil || role == nil {
		b.respondWithError(s, i, "Invalid user or role.")
		return
	}

	userID := parseID(target.ID)

	// Swap out the previous color role before recording the new one
	if previous, err := b.roleService.GetColorRole(ctx, guildID, userID); err == nil && previous != 0 && previous != parseID(role.ID) {
		if err := s.GuildMemberRoleRemove(i.GuildID, target.ID, formatID(previous)); err != nil {
			log.Errorf("Error removing previous color role %d in guild %d: %v", previous, guildID, err)
		}
	}

	if err := b.roleService.SetColorRole(ctx, guildID, userID, parseID(role.ID)); err != nil {
		log.Errorf("Error setting color role for user %d in guild %d: %v", userID, guildID, err)
		b.respondWithError(s, i, "Unable to save the color role. Please try again.")
		return
	}

	if err := s.GuildMemberRoleAdd(i.GuildID, target.ID, role.ID); err != nil {
		log.Errorf("Error granting color role %s in guild %d: %v", role.ID, guildID, err)
	}

	b.respondEphemeral(s, i, fmt.Sprintf("🎨 <@%s> now has <@&%s>.", target.ID, role.ID))
}

func (b *Bot) handleAutorole(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, guildID int64, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	role := opts[0].RoleValue(s, i.GuildID)
	if role == nil {
		b.respondWithError(s, i, "Invalid role.")
		return
	}

	if err := b.roleService.SetAutorole(ctx, guildID, parseID(role.ID)); err != nil {
		log.Errorf("Error setting autorole for guild %d: %v", guildID, err)
		b.respondWithError(s, i, "Unable to save the autorole. Please try again.")
		return
	}

	b.respondEphemeral(s, i, fmt.Sprintf("✅ New members will get <@&%s>. Enable it with `/config set autorole_enabled true`.", role.ID))
}

func (b *Bot) handleReactionRoleBind(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, guildID int64, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	var messageStr, emoji string
	var role *discordgo.Role
	for _, opt := range opts {
		switch opt.Name {
		case "message":
			messageStr = opt.StringValue()
		case "emoji":
			emoji = opt.StringValue()
		case "role":
			role = opt.RoleValue(s, i.GuildID)
		}
	}

	messageID := parseID(messageStr)
	if messageID == 0 || role == nil {
		b.respondWithError(s, i, "Invalid message id or role.")
		return
	}

	if err := b.roleService.SetReactionRole(ctx, guildID, messageID, emoji, parseID(role.ID)); err != nil {
		log.Errorf("Error binding reaction role in guild %d: %v", guildID, err)
		b.respondWithError(s, i, "Unable to bind the reaction role. Please try again.")
		return
	}

	b.respondEphemeral(s, i, fmt.Sprintf("✅ Reacting with %s on that message now grants <@&%s>.", emoji, role.ID))
}

// reactionEmojiKey normalizes a reaction's emoji to the stored form: the
// name for unicode emoji, name:id for custom ones.
func reactionEmojiKey(emoji discordgo.Emoji) string {
	if emoji.ID != "" {
		return emoji.Name + ":" + emoji.ID
	}
	return emoji.Name
}

func (b *Bot) handleReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r.GuildID == "" || r.UserID == s.State.User.ID {
		return
	}

	ctx := context.Background()
	guildID := parseID(r.GuildID)

	bindings, err := b.roleService.ListReactionRoles(ctx, guildID, parseID(r.MessageID))
	if err != nil || len(bindings) == 0 {
		return
	}

	key := reactionEmojiKey(r.Emoji)
	for _, binding := range bindings {
		if binding.Emoji != key {
			continue
		}
		if err := s.GuildMemberRoleAdd(r.GuildID, r.UserID, formatID(binding.RoleID)); err != nil {
			log.Errorf("Error granting reaction role %d in guild %d: %v", binding.RoleID, guildID, err)
		}
		return
	}
}

func (b *Bot) handleReactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	if r.GuildID == "" || r.UserID == s.State.User.ID {
		return
	}

	ctx := context.Background()
	guildID := parseID(r.GuildID)

	bindings, err := b.roleService.ListReactionRoles(ctx, guildID, parseID(r.MessageID))
	if err != nil || len(bindings) == 0 {
		return
	}

	key := reactionEmojiKey(r.Emoji)
	for _, binding := range bindings {
		if binding.Emoji != key {
			continue
		}
		if err := s.GuildMemberRoleRemove(r.GuildID, r.UserID, formatID(binding.RoleID)); err != nil {
			log.Errorf("Error revoking reaction role %d in guild %d: %v", binding.RoleID, guildID, err)
		}
		return
	}
}

// applyAutorole grants the configured join role to a new member when the
// feature is enabled.
func (b *Bot) applyAutorole(ctx context.Context, s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	guildID := parseID(m.GuildID)

	enabled, err := b.configCache.GetBool(ctx, guildID, models.KeyAutoroleEnabled)
	if err != nil || !enabled {
		return
	}

	roleID, err := b.roleService.GetAutorole(ctx, guildID)
	if err != nil || roleID == 0 {
		return
	}

	if err := s.GuildMemberRoleAdd(m.GuildID, m.User.ID, formatID(roleID)); err != nil {
		log.Errorf("Error applying autorole %d in guild %d: %v", roleID, guildID, err)
	}
}
