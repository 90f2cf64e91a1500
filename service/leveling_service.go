package service

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"onwhisper/events"
	"onwhisper/models"
)

// levelingService implements the LevelingService interface
type levelingService struct {
	repo   LevelingRepository
	config ConfigCache
	locks  *GuildLocks
	bus    *events.Bus

	now func() time.Time
}

// NewLevelingService creates a new leveling service
func NewLevelingService(repo LevelingRepository, config ConfigCache, locks *GuildLocks, bus *events.Bus) LevelingService {
	return &levelingService{
		repo:   repo,
		config: config,
		locks:  locks,
		bus:    bus,
		now:    time.Now,
	}
}

// AddXP grants one message's worth of XP. The guild's xp_cooldown setting
// throttles accrual per member; xp_rate sets the amount per message.
func (s *levelingService) AddXP(ctx context.Context, guildID, userID, channelID int64) (*models.LevelingUser, bool, error) {
	if guildID <= 0 || userID <= 0 {
		return nil, false, fmt.Errorf("guild and user ids must be positive: %w", ErrValidation)
	}

	rate, err := s.config.GetInt(ctx, guildID, models.KeyXPRate)
	if err != nil {
		return nil, false, err
	}
	cooldown, err := s.config.GetInt(ctx, guildID, models.KeyXPCooldown)
	if err != nil {
		return nil, false, err
	}

	pending := events.NewTransactionalBus(s.bus)
	defer pending.Discard()

	release, err := s.locks.Acquire(ctx, guildID)
	if err != nil {
		return nil, false, err
	}

	user, leveledUp, err := s.addXPLocked(ctx, guildID, userID, rate, cooldown)
	if err == nil && leveledUp {
		pending.Publish(events.LevelUpEvent{
			GuildID:   guildID,
			UserID:    userID,
			ChannelID: channelID,
			OldLevel:  models.LevelForXP(user.XP - rate),
			NewLevel:  user.Level,
			XP:        user.XP,
		})
	}
	release()
	if err != nil || user == nil {
		return user, false, err
	}

	pending.Flush(ctx)
	return user, leveledUp, nil
}

func (s *levelingService) addXPLocked(ctx context.Context, guildID, userID, rate, cooldown int64) (*models.LevelingUser, bool, error) {
	user, err := s.repo.GetUser(ctx, guildID, userID)
	if err != nil {
		return nil, false, err
	}
	if user == nil {
		user = &models.LevelingUser{GuildID: guildID, UserID: userID}
	}

	now := s.now().UTC()
	if user.LastXPAt != nil && now.Sub(*user.LastXPAt) < time.Duration(cooldown)*time.Second {
		return nil, false, nil // still cooling down, not an error
	}

	oldLevel := user.Level
	user.XP += rate
	user.Level = models.LevelForXP(user.XP)
	user.LastXPAt = &now

	if err := s.repo.SaveUser(ctx, user); err != nil {
		return nil, false, err
	}

	leveledUp := user.Level > oldLevel
	if leveledUp {
		log.WithFields(log.Fields{
			"guildID": guildID,
			"userID":  userID,
			"level":   user.Level,
		}).Info("Member leveled up")
	}

	return user, leveledUp, nil
}

func (s *levelingService) GetUser(ctx context.Context, guildID, userID int64) (*models.LevelingUser, error) {
	return s.repo.GetUser(ctx, guildID, userID)
}

func (s *levelingService) Leaderboard(ctx context.Context, guildID int64, limit int) ([]*models.LevelingUser, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.repo.Leaderboard(ctx, guildID, limit)
}

func (s *levelingService) SetReward(ctx context.Context, guildID int64, level int, roleID int64) error {
	if level <= 0 || roleID <= 0 {
		return fmt.Errorf("level and role id must be positive: %w", ErrValidation)
	}

	release, err := s.locks.Acquire(ctx, guildID)
	if err != nil {
		return err
	}
	defer release()

	return s.repo.SetReward(ctx, guildID, level, roleID)
}

func (s *levelingService) RemoveReward(ctx context.Context, guildID int64, level int) error {
	release, err := s.locks.Acquire(ctx, guildID)
	if err != nil {
		return err
	}
	defer release()

	found, err := s.repo.RemoveReward(ctx, guildID, level)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no reward for level %d in guild %d: %w", level, guildID, ErrNotFound)
	}
	return nil
}

func (s *levelingService) ListRewards(ctx context.Context, guildID int64) ([]*models.LevelReward, error) {
	return s.repo.ListRewards(ctx, guildID)
}

func (s *levelingService) RewardsForLevel(ctx context.Context, guildID int64, level int) ([]int64, error) {
	rewards, err := s.repo.ListRewards(ctx, guildID)
	if err != nil {
		return nil, err
	}

	var roles []int64
	for _, reward := range rewards {
		if reward.Level <= level {
			roles = append(roles, reward.RoleID)
		}
	}
	return roles, nil
}
