package service

import (
	"context"
	"fmt"

	"onwhisper/models"
)

// roleService implements the RoleService interface
type roleService struct {
	repo  RoleRepository
	locks *GuildLocks
}

// NewRoleService creates a new role automation service
func NewRoleService(repo RoleRepository, locks *GuildLocks) RoleService {
	return &roleService{
		repo:  repo,
		locks: locks,
	}
}

func (s *roleService) SetAutorole(ctx context.Context, guildID, roleID int64) error {
	if guildID <= 0 || roleID <= 0 {
		return fmt.Errorf("guild and role ids must be positive: %w", ErrValidation)
	}

	release, err := s.locks.Acquire(ctx, guildID)
	if err != nil {
		return err
	}
	defer release()

	return s.repo.SetAutorole(ctx, guildID, roleID)
}

func (s *roleService) GetAutorole(ctx context.Context, guildID int64) (int64, error) {
	return s.repo.GetAutorole(ctx, guildID)
}

func (s *roleService) SetReactionRole(ctx context.Context, guildID, messageID int64, emoji string, roleID int64) error {
	if guildID <= 0 || messageID <= 0 || roleID <= 0 {
		return fmt.Errorf("guild, message and role ids must be positive: %w", ErrValidation)
	}
	if emoji == "" {
		return fmt.Errorf("emoji must not be empty: %w", ErrValidation)
	}

	release, err := s.locks.Acquire(ctx, guildID)
	if err != nil {
		return err
	}
	defer release()

	return s.repo.SetReactionRole(ctx, &models.ReactionRole{
		GuildID:   guildID,
		MessageID: messageID,
		Emoji:     emoji,
		RoleID:    roleID,
	})
}

func (s *roleService) RemoveReactionRole(ctx context.Context, guildID, messageID int64, emoji string) error {
	release, err := s.locks.Acquire(ctx, guildID)
	if err != nil {
		return err
	}
	defer release()

	found, err := s.repo.RemoveReactionRole(ctx, guildID, messageID, emoji)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no reaction role for %s on message %d: %w", emoji, messageID, ErrNotFound)
	}
	return nil
}

func (s *roleService) ListReactionRoles(ctx context.Context, guildID, messageID int64) ([]*models.ReactionRole, error) {
	return s.repo.ListReactionRoles(ctx, guildID, messageID)
}

func (s *roleService) SetColorRole(ctx context.Context, guildID, userID, roleID int64) error {
	if guildID <= 0 || userID <= 0 || roleID <= 0 {
		return fmt.Errorf("guild, user and role ids must be positive: %w", ErrValidation)
	}

	release, err := s.locks.Acquire(ctx, guildID)
	if err != nil {
		return err
	}
	defer release()

	return s.repo.SetColorRole(ctx, &models.ColorRole{
		GuildID: guildID,
		UserID:  userID,
		RoleID:  roleID,
	})
}

func (s *roleService) GetColorRole(ctx context.Context, guildID, userID int64) (int64, error) {
	return s.repo.GetColorRole(ctx, guildID, userID)
}
