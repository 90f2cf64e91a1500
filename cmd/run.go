package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"onwhisper/bot"
	"onwhisper/config"
	"onwhisper/database"
	"onwhisper/events"
	"onwhisper/repository"
	"onwhisper/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting onwhisper bot...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus and lock arena
	eventBus := events.NewBus()
	guildLocks := service.NewGuildLocks()

	// Initialize repositories
	settingRepo := repository.NewGuildSettingRepository(db)
	whisperRepo := repository.NewWhisperRepository(db)
	moderationRepo := repository.NewModerationLogRepository(db)
	levelingRepo := repository.NewLevelingRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	guildDataRepo := repository.NewGuildDataRepository(db)

	// The Discord session exists before the services so the log router can
	// deliver through it
	session, err := bot.NewSession(cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}
	notifier := bot.NewNotifier(session)

	// Initialize services
	log.Println("Initializing services...")
	configCache := service.NewConfigCache(settingRepo, guildLocks, eventBus)
	logRouter := service.NewLogRouter(configCache, notifier)
	whisperService := service.NewWhisperService(whisperRepo, logRouter, guildLocks, eventBus)
	moderationService := service.NewModerationService(moderationRepo, logRouter, guildLocks, eventBus)
	levelingService := service.NewLevelingService(levelingRepo, configCache, guildLocks, eventBus)
	roleService := service.NewRoleService(roleRepo, guildLocks)
	guildDataService := service.NewGuildDataService(guildDataRepo, configCache, guildLocks)
	log.Println("Services initialized successfully")

	// Initialize Discord bot
	log.Println("Initializing Discord bot...")
	botConfig := bot.Config{
		Token:   cfg.DiscordToken,
		GuildID: cfg.DiscordGuildID,
	}
	discordBot, err := bot.New(botConfig, session, configCache, logRouter, whisperService, moderationService, levelingService, roleService, guildDataService, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Println("Discord bot initialized successfully")

	// Wait for context cancellation
	log.Printf("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down bot...")

	if err := discordBot.Close(); err != nil {
		log.Printf("Error closing Discord bot: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Println("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}
