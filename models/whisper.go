package models

import (
	"time"
)

// Whisper represents one anonymous contact thread between a user and staff.
// Number is a guild-scoped sequential identifier assigned once at creation
// and never reused, even after the whisper is deleted.
type Whisper struct {
	GuildID       int64      `db:"guild_id"`
	UserID        int64      `db:"user_id"`
	ThreadID      int64      `db:"thread_id"`
	Number        int64      `db:"whisper_number"`
	IsOpen        bool       `db:"is_open"`
	ClosedByStaff bool       `db:"closed_by_staff"`
	CreatedAt     time.Time  `db:"created_at"`
	ClosedAt      *time.Time `db:"closed_at"`
}
