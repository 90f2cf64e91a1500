package models

// ReactionRole binds an emoji on a message to a role grant.
type ReactionRole struct {
	GuildID   int64  `db:"guild_id"`
	MessageID int64  `db:"message_id"`
	Emoji     string `db:"emoji"`
	RoleID    int64  `db:"role_id"`
}

// ColorRole records the color role currently held by a member.
type ColorRole struct {
	GuildID int64 `db:"guild_id"`
	UserID  int64 `db:"user_id"`
	RoleID  int64 `db:"role_id"`
}
