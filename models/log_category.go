package models

// LogCategory is one of the fixed event classes routed to guild log channels.
type LogCategory string

const (
	CategoryMember     LogCategory = "member"
	CategoryMessage    LogCategory = "message"
	CategoryModeration LogCategory = "moderation"
	CategoryVoice      LogCategory = "voice"
	CategoryChannel    LogCategory = "channel"
	CategoryRole       LogCategory = "role"
	CategoryBot        LogCategory = "bot"
	CategoryWhisper    LogCategory = "whisper"
)

// AllCategories lists every routed category in display order.
var AllCategories = []LogCategory{
	CategoryMember,
	CategoryMessage,
	CategoryModeration,
	CategoryVoice,
	CategoryChannel,
	CategoryRole,
	CategoryBot,
	CategoryWhisper,
}

// EnabledKey returns the setting key for the category's toggle.
func (c LogCategory) EnabledKey() string {
	return "log_" + string(c) + "_events"
}

// ChannelKey returns the setting key for the category's destination channel.
func (c LogCategory) ChannelKey() string {
	return "log_" + string(c) + "_channel"
}

// Valid reports whether c is one of the fixed categories.
func (c LogCategory) Valid() bool {
	switch c {
	case CategoryMember, CategoryMessage, CategoryModeration, CategoryVoice,
		CategoryChannel, CategoryRole, CategoryBot, CategoryWhisper:
		return true
	}
	return false
}

// CategoryInfo carries presentation metadata for a log category.
type CategoryInfo struct {
	Name  string
	Emoji string
	Color int
}

var categoryInfo = map[LogCategory]CategoryInfo{
	CategoryMember:     {"Member Events", "🚪", 0x2ecc71},
	CategoryMessage:    {"Message Events", "💬", 0x3498db},
	CategoryModeration: {"Moderation Events", "🛡️", 0xe74c3c},
	CategoryVoice:      {"Voice Events", "🔊", 0x9b59b6},
	CategoryChannel:    {"Channel Events", "📂", 0xe67e22},
	CategoryRole:       {"Role Events", "🎭", 0xf1c40f},
	CategoryBot:        {"Bot Events", "🤖", 0x95a5a6},
	CategoryWhisper:    {"Whisper Events", "🤫", 0x5865f2},
}

// Info returns the category's presentation metadata.
func (c LogCategory) Info() CategoryInfo {
	return categoryInfo[c]
}
