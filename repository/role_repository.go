package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"onwhisper/database"
	"onwhisper/models"
)

// RoleRepository implements autorole, reaction-role and color-role persistence
type RoleRepository struct {
	db *database.DB
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *database.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// SetAutorole upserts the role assigned to new members of a guild
func (r *RoleRepository) SetAutorole(ctx context.Context, guildID, roleID int64) error {
	query := `
		INSERT INTO autoroles (guild_id, role_id)
		VALUES ($1, $2)
		ON CONFLICT (guild_id) DO UPDATE SET role_id = EXCLUDED.role_id
	`

	if _, err := r.db.Exec(ctx, query, guildID, roleID); err != nil {
		return fmt.Errorf("failed to set autorole for guild %d: %w", guildID, err)
	}

	return nil
}

// GetAutorole returns the guild's autorole id, or 0 when none is configured
func (r *RoleRepository) GetAutorole(ctx context.Context, guildID int64) (int64, error) {
	query := `
		SELECT role_id
		FROM autoroles
		WHERE guild_id = $1
	`

	var roleID int64
	err := r.db.QueryRow(ctx, query, guildID).Scan(&roleID)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get autorole for guild %d: %w", guildID, err)
	}

	return roleID, nil
}

// SetReactionRole upserts an emoji -> role binding on a message
func (r *RoleRepository) SetReactionRole(ctx context.Context, rr *models.ReactionRole) error {
	query := `
		INSERT INTO reaction_roles (guild_id, message_id, emoji, role_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (guild_id, message_id, emoji) DO UPDATE SET role_id = EXCLUDED.role_id
	`

	if _, err := r.db.Exec(ctx, query, rr.GuildID, rr.MessageID, rr.Emoji, rr.RoleID); err != nil {
		return fmt.Errorf("failed to set reaction role for guild %d message %d: %w", rr.GuildID, rr.MessageID, err)
	}

	return nil
}

// RemoveReactionRole deletes a binding. Returns false when none existed.
func (r *RoleRepository) RemoveReactionRole(ctx context.Context, guildID, messageID int64, emoji string) (bool, error) {
	query := `
		DELETE FROM reaction_roles
		WHERE guild_id = $1 AND message_id = $2 AND emoji = $3
	`

	tag, err := r.db.Exec(ctx, query, guildID, messageID, emoji)
	if err != nil {
		return false, fmt.Errorf("failed to remove reaction role for guild %d message %d: %w", guildID, messageID, err)
	}

	return tag.RowsAffected() > 0, nil
}

// ListReactionRoles returns all bindings on a message
func (r *RoleRepository) ListReactionRoles(ctx context.Context, guildID, messageID int64) ([]*models.ReactionRole, error) {
	query := `
		SELECT guild_id, message_id, emoji, role_id
		FROM reaction_roles
		WHERE guild_id = $1 AND message_id = $2
	`

	rows, err := r.db.Query(ctx, query, guildID, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reaction roles for guild %d message %d: %w", guildID, messageID, err)
	}
	defer rows.Close()

	var bindings []*models.ReactionRole
	for rows.Next() {
		var rr models.ReactionRole
		if err := rows.Scan(&rr.GuildID, &rr.MessageID, &rr.Emoji, &rr.RoleID); err != nil {
			return nil, fmt.Errorf("failed to scan reaction role row: %w", err)
		}
		bindings = append(bindings, &rr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reaction role rows: %w", err)
	}

	return bindings, nil
}

// SetColorRole records the color role a member currently holds
func (r *RoleRepository) SetColorRole(ctx context.Context, cr *models.ColorRole) error {
	query := `
		INSERT INTO color_roles (guild_id, user_id, role_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (guild_id, user_id) DO UPDATE SET role_id = EXCLUDED.role_id
	`

	if _, err := r.db.Exec(ctx, query, cr.GuildID, cr.UserID, cr.RoleID); err != nil {
		return fmt.Errorf("failed to set color role for guild %d user %d: %w", cr.GuildID, cr.UserID, err)
	}

	return nil
}

// GetColorRole returns a member's color role id, or 0 when they have none
func (r *RoleRepository) GetColorRole(ctx context.Context, guildID, userID int64) (int64, error) {
	query := `
		SELECT role_id
		FROM color_roles
		WHERE guild_id = $1 AND user_id = $2
	`

	var roleID int64
	err := r.db.QueryRow(ctx, query, guildID, userID).Scan(&roleID)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get color role for guild %d user %d: %w", guildID, userID, err)
	}

	return roleID, nil
}
