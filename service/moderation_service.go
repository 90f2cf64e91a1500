package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"onwhisper/events"
	"onwhisper/models"
)

const defaultHistoryLimit = 25

// moderationService implements the ModerationService interface
type moderationService struct {
	repo   ModerationLogRepository
	router LogRouter
	locks  *GuildLocks
	bus    *events.Bus
}

// NewModerationService creates a new moderation case log service
func NewModerationService(repo ModerationLogRepository, router LogRouter, locks *GuildLocks, bus *events.Bus) ModerationService {
	return &moderationService{
		repo:   repo,
		router: router,
		locks:  locks,
		bus:    bus,
	}
}

func (s *moderationService) LogAction(ctx context.Context, guildID, userID int64, action, reason string, moderatorID int64) (*models.ModerationCase, error) {
	if guildID <= 0 || userID <= 0 || moderatorID <= 0 {
		return nil, fmt.Errorf("guild, user and moderator ids must be positive: %w", ErrValidation)
	}
	if action == "" {
		return nil, fmt.Errorf("action must not be empty: %w", ErrValidation)
	}

	entry := &models.ModerationCase{
		GuildID:     guildID,
		UserID:      userID,
		Action:      action,
		Reason:      reason,
		ModeratorID: moderatorID,
	}

	pending := events.NewTransactionalBus(s.bus)
	defer pending.Discard()

	// Case id assignment is a read-modify-write on the guild's case log
	release, err := s.locks.Acquire(ctx, guildID)
	if err != nil {
		return nil, err
	}
	err = s.repo.Create(ctx, entry)
	if err != nil {
		release()
		return nil, err
	}
	pending.Publish(events.ModerationActionEvent{
		GuildID:     guildID,
		CaseID:      entry.CaseID,
		UserID:      userID,
		Action:      action,
		Reason:      reason,
		ModeratorID: moderatorID,
	})
	release()

	log.WithFields(log.Fields{
		"guildID": guildID,
		"caseID":  entry.CaseID,
		"action":  action,
		"userID":  userID,
	}).Info("Moderation case recorded")

	displayReason := reason
	if displayReason == "" {
		displayReason = "No reason provided"
	}
	result := s.router.Emit(ctx, guildID, models.CategoryModeration, &LogEvent{
		Title:       fmt.Sprintf("Moderation: %s", action),
		Description: fmt.Sprintf("Case **#%d** recorded", entry.CaseID),
		Fields: []LogField{
			{Name: "Case", Value: fmt.Sprintf("#%d", entry.CaseID), Inline: true},
			{Name: "Reason", Value: displayReason},
		},
		ActorID:  moderatorID,
		TargetID: userID,
	})
	logEmitResult(guildID, models.CategoryModeration, result)

	pending.Flush(ctx)
	return entry, nil
}

func (s *moderationService) GetCase(ctx context.Context, guildID, caseID int64) (*models.ModerationCase, error) {
	entry, err := s.repo.GetByCaseID(ctx, guildID, caseID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, fmt.Errorf("no case #%d in guild %d: %w", caseID, guildID, ErrNotFound)
	}
	return entry, nil
}

func (s *moderationService) History(ctx context.Context, guildID, userID int64, limit int) ([]*models.ModerationCase, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.repo.ListByUser(ctx, guildID, userID, limit)
}
