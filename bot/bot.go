package bot

import (
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"

	"onwhisper/events"
	"onwhisper/service"

	"github.com/bwmarrin/discordgo"
)

// Config holds bot configuration
type Config struct {
	Token   string
	GuildID string
}

type Bot struct {
	config            Config
	session           *discordgo.Session
	configCache       service.ConfigCache
	logRouter         service.LogRouter
	whisperService    service.WhisperService
	moderationService service.ModerationService
	levelingService   service.LevelingService
	roleService       service.RoleService
	guildDataService  service.GuildDataService
	eventBus          *events.Bus
}

// NewSession creates the Discord session the bot and the log notifier share.
// The caller wires the notifier into the log router before starting the bot.
func NewSession(token string) (*discordgo.Session, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsAll
	return dg, nil
}

func New(config Config, dg *discordgo.Session, configCache service.ConfigCache, logRouter service.LogRouter, whisperService service.WhisperService, moderationService service.ModerationService, levelingService service.LevelingService, roleService service.RoleService, guildDataService service.GuildDataService, eventBus *events.Bus) (*Bot, error) {
	bot := &Bot{
		config:            config,
		session:           dg,
		configCache:       configCache,
		logRouter:         logRouter,
		whisperService:    whisperService,
		moderationService: moderationService,
		levelingService:   levelingService,
		roleService:       roleService,
		guildDataService:  guildDataService,
		eventBus:          eventBus,
	}

	// Slash command dispatch
	dg.AddHandler(bot.handleCommands)

	// Gateway listeners that feed the log router
	dg.AddHandler(bot.handleMemberAdd)
	dg.AddHandler(bot.handleMemberRemove)
	dg.AddHandler(bot.handleMemberUpdate)
	dg.AddHandler(bot.handleMessageDelete)
	dg.AddHandler(bot.handleMessageUpdate)
	dg.AddHandler(bot.handleVoiceStateUpdate)
	dg.AddHandler(bot.handleChannelCreate)
	dg.AddHandler(bot.handleChannelDelete)
	dg.AddHandler(bot.handleRoleCreate)
	dg.AddHandler(bot.handleRoleDelete)
	dg.AddHandler(bot.handleThreadDelete)

	// Feature listeners
	dg.AddHandler(bot.handleMessageCreate)
	dg.AddHandler(bot.handleReactionAdd)
	dg.AddHandler(bot.handleReactionRemove)

	bot.registerSubscriptions()

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	log.WithField("user", dg.State.User.Username).Info("Bot connected")
	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

// parseID converts a Discord snowflake string to int64. Zero on failure.
func parseID(s string) int64 {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// interactionGuildID returns the guild the interaction came from, 0 for DMs
func interactionGuildID(i *discordgo.InteractionCreate) int64 {
	return parseID(i.GuildID)
}

// interactionUserID returns the invoking user's id for guild interactions
func interactionUserID(i *discordgo.InteractionCreate) int64 {
	if i.Member != nil && i.Member.User != nil {
		return parseID(i.Member.User.ID)
	}
	if i.User != nil {
		return parseID(i.User.ID)
	}
	return 0
}

func (b *Bot) respond(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
		},
	})
	if err != nil {
		log.Errorf("Error sending response: %v", err)
	}
}

func (b *Bot) respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error sending ephemeral response: %v", err)
	}
}

func (b *Bot) respondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	b.respondEphemeral(s, i, "❌ "+message)
}

func (b *Bot) respondWithEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
	if err != nil {
		log.Errorf("Error sending embed response: %v", err)
	}
}
