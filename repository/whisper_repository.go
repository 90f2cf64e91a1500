package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"onwhisper/database"
	"onwhisper/models"
	"onwhisper/service"
)

// uniqueViolation is the Postgres error code for primary/unique key conflicts
const uniqueViolation = "23505"

// WhisperRepository implements whisper ticket persistence
type WhisperRepository struct {
	db *database.DB
}

// NewWhisperRepository creates a new whisper repository
func NewWhisperRepository(db *database.DB) *WhisperRepository {
	return &WhisperRepository{db: db}
}

// Create inserts a new open whisper ticket, assigning the guild's next
// sequential number. The counter bump and the insert run as one atomic
// statement, so the number is assigned exactly once and never reused even
// after tickets are deleted.
func (r *WhisperRepository) Create(ctx context.Context, guildID, userID, threadID int64) (*models.Whisper, error) {
	query := `
		WITH bump AS (
			INSERT INTO whisper_counters (guild_id, counter)
			VALUES ($1, 1)
			ON CONFLICT (guild_id) DO UPDATE SET counter = whisper_counters.counter + 1
			RETURNING counter
		)
		INSERT INTO whispers (guild_id, user_id, thread_id, whisper_number)
		SELECT $1, $2, $3, counter FROM bump
		RETURNING whisper_number, created_at
	`

	whisper := &models.Whisper{
		GuildID:  guildID,
		UserID:   userID,
		ThreadID: threadID,
		IsOpen:   true,
	}

	err := r.db.QueryRow(ctx, query, guildID, userID, threadID).Scan(&whisper.Number, &whisper.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("whisper for guild %d thread %d: %w", guildID, threadID, service.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("failed to create whisper for guild %d: %w", guildID, err)
	}

	return whisper, nil
}

const whisperColumns = `guild_id, user_id, thread_id, whisper_number, is_open, closed_by_staff, created_at, closed_at`

func scanWhisper(row pgx.Row) (*models.Whisper, error) {
	var w models.Whisper
	err := row.Scan(
		&w.GuildID,
		&w.UserID,
		&w.ThreadID,
		&w.Number,
		&w.IsOpen,
		&w.ClosedByStaff,
		&w.CreatedAt,
		&w.ClosedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan whisper: %w", err)
	}
	return &w, nil
}

// GetByThread retrieves a whisper by its platform thread id
func (r *WhisperRepository) GetByThread(ctx context.Context, guildID, threadID int64) (*models.Whisper, error) {
	query := `
		SELECT ` + whisperColumns + `
		FROM whispers
		WHERE guild_id = $1 AND thread_id = $2
	`
	return scanWhisper(r.db.QueryRow(ctx, query, guildID, threadID))
}

// GetByNumber retrieves a whisper by its guild-scoped sequential number.
// Deleted whispers are gone: their numbers report not found.
func (r *WhisperRepository) GetByNumber(ctx context.Context, guildID, number int64) (*models.Whisper, error) {
	query := `
		SELECT ` + whisperColumns + `
		FROM whispers
		WHERE guild_id = $1 AND whisper_number = $2
	`
	return scanWhisper(r.db.QueryRow(ctx, query, guildID, number))
}

// GetOpenByUser retrieves the user's open whisper in a guild, if any
func (r *WhisperRepository) GetOpenByUser(ctx context.Context, guildID, userID int64) (*models.Whisper, error) {
	query := `
		SELECT ` + whisperColumns + `
		FROM whispers
		WHERE guild_id = $1 AND user_id = $2 AND is_open
		ORDER BY created_at DESC
		LIMIT 1
	`
	return scanWhisper(r.db.QueryRow(ctx, query, guildID, userID))
}

// ListOpen returns all open whispers for a guild in creation order
func (r *WhisperRepository) ListOpen(ctx context.Context, guildID int64) ([]*models.Whisper, error) {
	query := `
		SELECT ` + whisperColumns + `
		FROM whispers
		WHERE guild_id = $1 AND is_open
		ORDER BY whisper_number
	`

	rows, err := r.db.Query(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list open whispers for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	var whispers []*models.Whisper
	for rows.Next() {
		var w models.Whisper
		if err := rows.Scan(
			&w.GuildID,
			&w.UserID,
			&w.ThreadID,
			&w.Number,
			&w.IsOpen,
			&w.ClosedByStaff,
			&w.CreatedAt,
			&w.ClosedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan whisper row: %w", err)
		}
		whispers = append(whispers, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read whisper rows: %w", err)
	}

	return whispers, nil
}

// Close transitions an open whisper to closed, stamping the close time and
// who closed it. Returns nil when no open ticket exists for the thread; the
// close timestamp and staff flag of an already-closed ticket are never
// touched again.
func (r *WhisperRepository) Close(ctx context.Context, guildID, threadID int64, closedByStaff bool) (*models.Whisper, error) {
	query := `
		UPDATE whispers
		SET is_open = FALSE, closed_at = NOW(), closed_by_staff = $3
		WHERE guild_id = $1 AND thread_id = $2 AND is_open
		RETURNING ` + whisperColumns + `
	`
	return scanWhisper(r.db.QueryRow(ctx, query, guildID, threadID, closedByStaff))
}

// Delete permanently removes a whisper row in either state. Returns false
// when no row existed. The guild counter is untouched, so the freed number
// is never reassigned.
func (r *WhisperRepository) Delete(ctx context.Context, guildID, threadID int64) (bool, error) {
	query := `
		DELETE FROM whispers
		WHERE guild_id = $1 AND thread_id = $2
	`

	tag, err := r.db.Exec(ctx, query, guildID, threadID)
	if err != nil {
		return false, fmt.Errorf("failed to delete whisper for guild %d thread %d: %w", guildID, threadID, err)
	}

	return tag.RowsAffected() > 0, nil
}
