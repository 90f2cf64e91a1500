package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// guildDataService implements the GuildDataService interface
type guildDataService struct {
	repo   GuildDataRepository
	config ConfigCache
	locks  *GuildLocks
}

// NewGuildDataService creates a new tenant maintenance service
func NewGuildDataService(repo GuildDataRepository, config ConfigCache, locks *GuildLocks) GuildDataService {
	return &guildDataService{
		repo:   repo,
		config: config,
		locks:  locks,
	}
}

// ResetGuild wipes every row the guild owns in one transaction, then evicts
// the guild's cached configuration so the next read sees pure defaults.
func (s *guildDataService) ResetGuild(ctx context.Context, guildID int64) error {
	if guildID <= 0 {
		return fmt.Errorf("guild id must be positive: %w", ErrValidation)
	}

	release, err := s.locks.Acquire(ctx, guildID)
	if err != nil {
		return err
	}
	defer release()

	if err := s.repo.ResetGuild(ctx, guildID); err != nil {
		return fmt.Errorf("failed to reset guild %d: %w", guildID, err)
	}

	s.config.Invalidate(guildID)

	log.WithFields(log.Fields{
		"guildID": guildID,
	}).Warn("Guild data reset")

	return nil
}
