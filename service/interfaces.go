package service

import (
	"context"

	"onwhisper/models"
)

// GuildSettingRepository defines the interface for guild setting row access
type GuildSettingRepository interface {
	// GetAll returns every stored setting row for a guild as key -> raw value
	GetAll(ctx context.Context, guildID int64) (map[string]string, error)

	// Set writes a setting row, replacing any existing value
	Set(ctx context.Context, guildID int64, key, value string) error

	// Remove deletes a setting row; false when no row existed
	Remove(ctx context.Context, guildID int64, key string) (bool, error)
}

// WhisperRepository defines the interface for whisper ticket data access
type WhisperRepository interface {
	// Create inserts an open ticket with the guild's next sequential number,
	// assigned atomically with the insert. Returns ErrAlreadyExists when the
	// thread already hosts a ticket.
	Create(ctx context.Context, guildID, userID, threadID int64) (*models.Whisper, error)

	// GetByThread retrieves a ticket by thread id; nil when absent
	GetByThread(ctx context.Context, guildID, threadID int64) (*models.Whisper, error)

	// GetByNumber retrieves a ticket by sequential number; nil when absent
	GetByNumber(ctx context.Context, guildID, number int64) (*models.Whisper, error)

	// GetOpenByUser retrieves the user's open ticket, if any
	GetOpenByUser(ctx context.Context, guildID, userID int64) (*models.Whisper, error)

	// ListOpen returns all open tickets for a guild in creation order
	ListOpen(ctx context.Context, guildID int64) ([]*models.Whisper, error)

	// Close transitions an open ticket to closed; nil when no open ticket
	// exists for the thread
	Close(ctx context.Context, guildID, threadID int64, closedByStaff bool) (*models.Whisper, error)

	// Delete permanently removes a ticket; false when no row existed
	Delete(ctx context.Context, guildID, threadID int64) (bool, error)
}

// ModerationLogRepository defines the interface for moderation case access
type ModerationLogRepository interface {
	// Create appends a case record, assigning the guild's next case id
	Create(ctx context.Context, entry *models.ModerationCase) error

	// GetByCaseID retrieves one case record; nil when absent
	GetByCaseID(ctx context.Context, guildID, caseID int64) (*models.ModerationCase, error)

	// ListByUser returns a user's case history, newest first
	ListByUser(ctx context.Context, guildID, userID int64, limit int) ([]*models.ModerationCase, error)
}

// LevelingRepository defines the interface for XP and level-reward access
type LevelingRepository interface {
	GetUser(ctx context.Context, guildID, userID int64) (*models.LevelingUser, error)
	SaveUser(ctx context.Context, u *models.LevelingUser) error
	Leaderboard(ctx context.Context, guildID int64, limit int) ([]*models.LevelingUser, error)
	SetReward(ctx context.Context, guildID int64, level int, roleID int64) error
	RemoveReward(ctx context.Context, guildID int64, level int) (bool, error)
	ListRewards(ctx context.Context, guildID int64) ([]*models.LevelReward, error)
}

// RoleRepository defines the interface for role automation data access
type RoleRepository interface {
	SetAutorole(ctx context.Context, guildID, roleID int64) error
	GetAutorole(ctx context.Context, guildID int64) (int64, error)
	SetReactionRole(ctx context.Context, rr *models.ReactionRole) error
	RemoveReactionRole(ctx context.Context, guildID, messageID int64, emoji string) (bool, error)
	ListReactionRoles(ctx context.Context, guildID, messageID int64) ([]*models.ReactionRole, error)
	SetColorRole(ctx context.Context, cr *models.ColorRole) error
	GetColorRole(ctx context.Context, guildID, userID int64) (int64, error)
}

// GuildDataRepository defines the interface for whole-tenant maintenance
type GuildDataRepository interface {
	// ResetGuild deletes every row belonging to the guild across all tables
	ResetGuild(ctx context.Context, guildID int64) error
}

// ConfigCache defines the typed, per-guild configuration surface. Getters
// never fail for a declared key: when the key was never set, or the stored
// value cannot be coerced to its declared type, the compiled-in default is
// returned. The error reports store failures on cache misses.
type ConfigCache interface {
	GetBool(ctx context.Context, guildID int64, key string) (bool, error)
	GetInt(ctx context.Context, guildID int64, key string) (int64, error)
	GetString(ctx context.Context, guildID int64, key string) (string, error)
	GetID(ctx context.Context, guildID int64, key string) (int64, error)

	// GetAll returns every declared key resolved to its typed value
	GetAll(ctx context.Context, guildID int64) (map[string]models.SettingValue, error)

	// Set writes a typed value through to the store and invalidates the
	// guild's cache entry. The value's type must match the key's declaration.
	Set(ctx context.Context, guildID int64, key string, value models.SettingValue) error

	// SetFromString coerces a user-supplied string to the key's declared
	// type and writes it. Returns ErrValidation on unknown key or bad value.
	SetFromString(ctx context.Context, guildID int64, key, raw string) error

	// Remove deletes the stored row so the key reverts to its default.
	// Returns ErrNotFound when the key was never set.
	Remove(ctx context.Context, guildID int64, key string) error

	// Invalidate evicts a guild's cached snapshot
	Invalidate(guildID int64)
}

// EmitStatus classifies the outcome of a log emit
type EmitStatus int

const (
	EmitDelivered EmitStatus = iota
	EmitSuppressed
	EmitFailed
)

// Suppression and failure reasons reported in EmitResult
const (
	ReasonMasterDisabled   = "master logging disabled"
	ReasonCategoryDisabled = "category disabled"
	ReasonNoDestination    = "no destination configured"
	ReasonUnresolvable     = "destination unresolvable"
)

// EmitResult reports what happened to one emitted event
type EmitResult struct {
	Status    EmitStatus
	Reason    string
	ChannelID int64 // destination, when delivered
}

// Delivered reports whether the event reached a channel
func (r EmitResult) Delivered() bool { return r.Status == EmitDelivered }

// LogField is one name/value pair rendered on a log message
type LogField struct {
	Name   string
	Value  string
	Inline bool
}

// LogEvent is the payload handed to the logging router
type LogEvent struct {
	Title       string
	Description string
	Fields      []LogField
	ActorID     int64 // user who performed the action, 0 when not applicable
	TargetID    int64 // user affected by the action, 0 when not applicable
}

// Notifier is the chat-platform delivery boundary used by the log router
type Notifier interface {
	// ResolveChannel reports whether the channel exists and is writable
	ResolveChannel(guildID, channelID int64) error

	// Send delivers a rendered event to a channel
	Send(ctx context.Context, guildID, channelID int64, category models.LogCategory, event *LogEvent) error
}

// LogRouter routes category events to per-guild log channels
type LogRouter interface {
	// Emit resolves the destination for one event and delivers it. Never
	// returns an error: failures are reported in the result.
	Emit(ctx context.Context, guildID int64, category models.LogCategory, event *LogEvent) EmitResult
}

// WhisperService owns the whisper ticket lifecycle
type WhisperService interface {
	// Create opens a new ticket and returns it with its assigned number
	Create(ctx context.Context, guildID, userID, threadID int64) (*models.Whisper, error)

	// CloseByThread closes an open ticket. ErrNotFound when no ticket exists
	// for the thread, ErrNotOpen when it is already closed.
	CloseByThread(ctx context.Context, guildID, threadID int64, closedByStaff bool) (*models.Whisper, error)

	// DeleteByThread permanently removes a ticket in either state
	DeleteByThread(ctx context.Context, guildID, threadID int64) error

	// GetByNumber retrieves a ticket by its sequential number
	GetByNumber(ctx context.Context, guildID, number int64) (*models.Whisper, error)

	// GetOpenByUser retrieves the user's open ticket, if any; nil when none
	GetOpenByUser(ctx context.Context, guildID, userID int64) (*models.Whisper, error)

	// ListOpen returns all open tickets for a guild
	ListOpen(ctx context.Context, guildID int64) ([]*models.Whisper, error)
}

// ModerationService owns the append-only moderation case log
type ModerationService interface {
	// LogAction records a case and returns it with its assigned case id
	LogAction(ctx context.Context, guildID, userID int64, action, reason string, moderatorID int64) (*models.ModerationCase, error)

	// GetCase retrieves one case by id
	GetCase(ctx context.Context, guildID, caseID int64) (*models.ModerationCase, error)

	// History returns a user's case history, newest first
	History(ctx context.Context, guildID, userID int64, limit int) ([]*models.ModerationCase, error)
}

// LevelingService owns XP accrual and level rewards
type LevelingService interface {
	// AddXP grants message XP subject to the guild's rate and cooldown.
	// channelID is where the triggering message was sent; it rides the
	// level-up event for announcements. Returns the updated row and whether
	// a level boundary was crossed.
	AddXP(ctx context.Context, guildID, userID, channelID int64) (*models.LevelingUser, bool, error)

	// GetUser returns a member's XP row; nil when they have none
	GetUser(ctx context.Context, guildID, userID int64) (*models.LevelingUser, error)

	// Leaderboard returns the guild's top members
	Leaderboard(ctx context.Context, guildID int64, limit int) ([]*models.LevelingUser, error)

	SetReward(ctx context.Context, guildID int64, level int, roleID int64) error
	RemoveReward(ctx context.Context, guildID int64, level int) error
	ListRewards(ctx context.Context, guildID int64) ([]*models.LevelReward, error)

	// RewardsForLevel returns the role ids earned at or below a level
	RewardsForLevel(ctx context.Context, guildID int64, level int) ([]int64, error)
}

// RoleService owns role automation state
type RoleService interface {
	SetAutorole(ctx context.Context, guildID, roleID int64) error
	GetAutorole(ctx context.Context, guildID int64) (int64, error)
	SetReactionRole(ctx context.Context, guildID, messageID int64, emoji string, roleID int64) error
	RemoveReactionRole(ctx context.Context, guildID, messageID int64, emoji string) error
	ListReactionRoles(ctx context.Context, guildID, messageID int64) ([]*models.ReactionRole, error)
	SetColorRole(ctx context.Context, guildID, userID, roleID int64) error
	GetColorRole(ctx context.Context, guildID, userID int64) (int64, error)
}

// GuildDataService owns tenant reset
type GuildDataService interface {
	// ResetGuild deletes all of a guild's rows and evicts its cache entry
	ResetGuild(ctx context.Context, guildID int64) error
}
