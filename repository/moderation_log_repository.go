package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"onwhisper/database"
	"onwhisper/models"
)

// ModerationLogRepository implements moderation case persistence
type ModerationLogRepository struct {
	db *database.DB
}

// NewModerationLogRepository creates a new moderation log repository
func NewModerationLogRepository(db *database.DB) *ModerationLogRepository {
	return &ModerationLogRepository{db: db}
}

// Create appends a case record, assigning the guild's next case id in the
// same statement. Callers must hold the guild lock so concurrent appends
// cannot race on the id computation.
func (r *ModerationLogRepository) Create(ctx context.Context, entry *models.ModerationCase) error {
	query := `
		INSERT INTO moderation_logs (guild_id, case_id, user_id, action, reason, moderator_id)
		SELECT $1, COALESCE(MAX(case_id), 0) + 1, $2, $3, $4, $5
		FROM moderation_logs
		WHERE guild_id = $1
		RETURNING case_id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		entry.GuildID,
		entry.UserID,
		entry.Action,
		entry.Reason,
		entry.ModeratorID,
	).Scan(&entry.CaseID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create moderation case for guild %d: %w", entry.GuildID, err)
	}

	return nil
}

// GetByCaseID retrieves one case record, or nil when it does not exist
func (r *ModerationLogRepository) GetByCaseID(ctx context.Context, guildID, caseID int64) (*models.ModerationCase, error) {
	query := `
		SELECT guild_id, case_id, user_id, action, reason, moderator_id, created_at
		FROM moderation_logs
		WHERE guild_id = $1 AND case_id = $2
	`

	var c models.ModerationCase
	err := r.db.QueryRow(ctx, query, guildID, caseID).Scan(
		&c.GuildID, &c.CaseID, &c.UserID, &c.Action, &c.Reason, &c.ModeratorID, &c.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get moderation case %d for guild %d: %w", caseID, guildID, err)
	}

	return &c, nil
}

// ListByUser returns a user's case history for a guild, newest first
func (r *ModerationLogRepository) ListByUser(ctx context.Context, guildID, userID int64, limit int) ([]*models.ModerationCase, error) {
	query := `
		SELECT guild_id, case_id, user_id, action, reason, moderator_id, created_at
		FROM moderation_logs
		WHERE guild_id = $1 AND user_id = $2
		ORDER BY case_id DESC
		LIMIT $3
	`

	rows, err := r.db.Query(ctx, query, guildID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list moderation cases for guild %d user %d: %w", guildID, userID, err)
	}
	defer rows.Close()

	var cases []*models.ModerationCase
	for rows.Next() {
		var c models.ModerationCase
		if err := rows.Scan(&c.GuildID, &c.CaseID, &c.UserID, &c.Action, &c.Reason, &c.ModeratorID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan moderation case row: %w", err)
		}
		cases = append(cases, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read moderation case rows: %w", err)
	}

	return cases, nil
}
