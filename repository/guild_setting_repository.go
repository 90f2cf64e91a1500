package repository

import (
	"context"
	"fmt"

	"onwhisper/database"
)

// GuildSettingRepository provides typed access to guild-scoped setting rows.
// It owns no policy: defaults and type coercion live in the config cache.
type GuildSettingRepository struct {
	db *database.DB
}

// NewGuildSettingRepository creates a new guild setting repository
func NewGuildSettingRepository(db *database.DB) *GuildSettingRepository {
	return &GuildSettingRepository{db: db}
}

// GetAll returns every stored setting row for a guild as key -> raw value
func (r *GuildSettingRepository) GetAll(ctx context.Context, guildID int64) (map[string]string, error) {
	query := `
		SELECT setting, value
		FROM guild_settings
		WHERE guild_id = $1
	`

	rows, err := r.db.Query(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting row: %w", err)
		}
		settings[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read setting rows: %w", err)
	}

	return settings, nil
}

// Set writes a setting row, replacing any existing value for the key
func (r *GuildSettingRepository) Set(ctx context.Context, guildID int64, key, value string) error {
	query := `
		INSERT INTO guild_settings (guild_id, setting, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (guild_id, setting) DO UPDATE SET value = EXCLUDED.value
	`

	if _, err := r.db.Exec(ctx, query, guildID, key, value); err != nil {
		return fmt.Errorf("failed to set setting %q for guild %d: %w", key, guildID, err)
	}

	return nil
}

// Remove deletes a setting row. Returns false when no row existed.
func (r *GuildSettingRepository) Remove(ctx context.Context, guildID int64, key string) (bool, error) {
	query := `
		DELETE FROM guild_settings
		WHERE guild_id = $1 AND setting = $2
	`

	tag, err := r.db.Exec(ctx, query, guildID, key)
	if err != nil {
		return false, fmt.Errorf("failed to remove setting %q for guild %d: %w", key, guildID, err)
	}

	return tag.RowsAffected() > 0, nil
}
