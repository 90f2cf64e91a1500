package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"onwhisper/database"
	"onwhisper/models"
)

// LevelingRepository implements XP and level-reward persistence
type LevelingRepository struct {
	db *database.DB
}

// NewLevelingRepository creates a new leveling repository
func NewLevelingRepository(db *database.DB) *LevelingRepository {
	return &LevelingRepository{db: db}
}

// GetUser retrieves a member's XP row, or nil when they have none yet
func (r *LevelingRepository) GetUser(ctx context.Context, guildID, userID int64) (*models.LevelingUser, error) {
	query := `
		SELECT guild_id, user_id, xp, level, last_xp_at
		FROM leveling_users
		WHERE guild_id = $1 AND user_id = $2
	`

	var u models.LevelingUser
	err := r.db.QueryRow(ctx, query, guildID, userID).Scan(&u.GuildID, &u.UserID, &u.XP, &u.Level, &u.LastXPAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get leveling user %d in guild %d: %w", userID, guildID, err)
	}

	return &u, nil
}

// SaveUser upserts a member's XP row
func (r *LevelingRepository) SaveUser(ctx context.Context, u *models.LevelingUser) error {
	query := `
		INSERT INTO leveling_users (guild_id, user_id, xp, level, last_xp_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (guild_id, user_id)
		DO UPDATE SET xp = EXCLUDED.xp, level = EXCLUDED.level, last_xp_at = EXCLUDED.last_xp_at
	`

	if _, err := r.db.Exec(ctx, query, u.GuildID, u.UserID, u.XP, u.Level, u.LastXPAt); err != nil {
		return fmt.Errorf("failed to save leveling user %d in guild %d: %w", u.UserID, u.GuildID, err)
	}

	return nil
}

// Leaderboard returns the guild's top members by level, then XP
func (r *LevelingRepository) Leaderboard(ctx context.Context, guildID int64, limit int) ([]*models.LevelingUser, error) {
	query := `
		SELECT guild_id, user_id, xp, level, last_xp_at
		FROM leveling_users
		WHERE guild_id = $1
		ORDER BY level DESC, xp DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	var users []*models.LevelingUser
	for rows.Next() {
		var u models.LevelingUser
		if err := rows.Scan(&u.GuildID, &u.UserID, &u.XP, &u.Level, &u.LastXPAt); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read leaderboard rows: %w", err)
	}

	return users, nil
}

// SetReward upserts the role granted at a level
func (r *LevelingRepository) SetReward(ctx context.Context, guildID int64, level int, roleID int64) error {
	query := `
		INSERT INTO leveling_roles (guild_id, level, role_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (guild_id, level) DO UPDATE SET role_id = EXCLUDED.role_id
	`

	if _, err := r.db.Exec(ctx, query, guildID, level, roleID); err != nil {
		return fmt.Errorf("failed to set level reward for guild %d level %d: %w", guildID, level, err)
	}

	return nil
}

// RemoveReward deletes a level reward. Returns false when none existed.
func (r *LevelingRepository) RemoveReward(ctx context.Context, guildID int64, level int) (bool, error) {
	query := `
		DELETE FROM leveling_roles
		WHERE guild_id = $1 AND level = $2
	`

	tag, err := r.db.Exec(ctx, query, guildID, level)
	if err != nil {
		return false, fmt.Errorf("failed to remove level reward for guild %d level %d: %w", guildID, level, err)
	}

	return tag.RowsAffected() > 0, nil
}

// ListRewards returns all level rewards for a guild in level order
func (r *LevelingRepository) ListRewards(ctx context.Context, guildID int64) ([]*models.LevelReward, error) {
	query := `
		SELECT guild_id, level, role_id
		FROM leveling_roles
		WHERE guild_id = $1
		ORDER BY level
	`

	rows, err := r.db.Query(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list level rewards for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	var rewards []*models.LevelReward
	for rows.Next() {
		var lr models.LevelReward
		if err := rows.Scan(&lr.GuildID, &lr.Level, &lr.RoleID); err != nil {
			return nil, fmt.Errorf("failed to scan level reward row: %w", err)
		}
		rewards = append(rewards, &lr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read level reward rows: %w", err)
	}

	return rewards, nil
}
