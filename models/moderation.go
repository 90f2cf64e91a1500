package models

import (
	"time"
)

// ModerationCase is an append-only moderation case record. Case ids are
// monotonically increasing per guild and never reassigned.
type ModerationCase struct {
	GuildID     int64     `db:"guild_id"`
	CaseID      int64     `db:"case_id"`
	UserID      int64     `db:"user_id"`
	Action      string    `db:"action"`
	Reason      string    `db:"reason"`
	ModeratorID int64     `db:"moderator_id"`
	CreatedAt   time.Time `db:"created_at"`
}

// Moderation action kinds recorded in the case log.
const (
	ActionWarn    = "warn"
	ActionMute    = "mute"
	ActionUnmute  = "unmute"
	ActionKick    = "kick"
	ActionBan     = "ban"
	ActionUnban   = "unban"
	ActionTimeout = "timeout"
)
