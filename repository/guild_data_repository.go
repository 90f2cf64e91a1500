package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"onwhisper/database"
)

// guildTables lists every table carrying guild-partitioned rows. Tenant
// reset deletes from all of them in one transaction.
var guildTables = []string{
	"guild_settings",
	"leveling_users",
	"leveling_roles",
	"autoroles",
	"reaction_roles",
	"color_roles",
	"whispers",
	"whisper_counters",
	"moderation_logs",
}

// GuildDataRepository implements whole-tenant maintenance operations
type GuildDataRepository struct {
	db *database.DB
}

// NewGuildDataRepository creates a new guild data repository
func NewGuildDataRepository(db *database.DB) *GuildDataRepository {
	return &GuildDataRepository{db: db}
}

// ResetGuild deletes every row belonging to the guild across all tables.
// Other guilds' rows are untouched. All-or-nothing: a failure on any table
// rolls the whole reset back.
func (r *GuildDataRepository) ResetGuild(ctx context.Context, guildID int64) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for _, table := range guildTables {
			query := fmt.Sprintf("DELETE FROM %s WHERE guild_id = $1", table)
			if _, err := tx.Exec(ctx, query, guildID); err != nil {
				return fmt.Errorf("failed to reset table %s for guild %d: %w", table, guildID, err)
			}
		}
		return nil
	})
}
