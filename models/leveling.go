package models

import (
	"math"
	"time"
)

// LevelingUser tracks a member's XP progress within one guild.
type LevelingUser struct {
	GuildID  int64      `db:"guild_id"`
	UserID   int64      `db:"user_id"`
	XP       int64      `db:"xp"`
	Level    int        `db:"level"`
	LastXPAt *time.Time `db:"last_xp_at"`
}

// LevelReward maps a level to the role granted when it is reached.
type LevelReward struct {
	GuildID int64 `db:"guild_id"`
	Level   int   `db:"level"`
	RoleID  int64 `db:"role_id"`
}

// LevelForXP returns the level reached at the given XP total.
func LevelForXP(xp int64) int {
	if xp <= 0 {
		return 0
	}
	return int(math.Sqrt(float64(xp) / 100))
}
