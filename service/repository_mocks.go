package service

import (
	"context"

	"onwhisper/models"

	"github.com/stretchr/testify/mock"
)

// MockGuildSettingRepository is a mock implementation of GuildSettingRepository
type MockGuildSettingRepository struct {
	mock.Mock
}

func (m *MockGuildSettingRepository) GetAll(ctx context.Context, guildID int64) (map[string]string, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockGuildSettingRepository) Set(ctx context.Context, guildID int64, key, value string) error {
	args := m.Called(ctx, guildID, key, value)
	return args.Error(0)
}

func (m *MockGuildSettingRepository) Remove(ctx context.Context, guildID int64, key string) (bool, error) {
	args := m.Called(ctx, guildID, key)
	return args.Bool(0), args.Error(1)
}

// MockWhisperRepository is a mock implementation of WhisperRepository
type MockWhisperRepository struct {
	mock.Mock
}

func (m *MockWhisperRepository) Create(ctx context.Context, guildID, userID, threadID int64) (*models.Whisper, error) {
	args := m.Called(ctx, guildID, userID, threadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Whisper), args.Error(1)
}

func (m *MockWhisperRepository) GetByThread(ctx context.Context, guildID, threadID int64) (*models.Whisper, error) {
	args := m.Called(ctx, guildID, threadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Whisper), args.Error(1)
}

func (m *MockWhisperRepository) GetByNumber(ctx context.Context, guildID, number int64) (*models.Whisper, error) {
	args := m.Called(ctx, guildID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Whisper), args.Error(1)
}

func (m *MockWhisperRepository) GetOpenByUser(ctx context.Context, guildID, userID int64) (*models.Whisper, error) {
	args := m.Called(ctx, guildID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Whisper), args.Error(1)
}

func (m *MockWhisperRepository) ListOpen(ctx context.Context, guildID int64) ([]*models.Whisper, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Whisper), args.Error(1)
}

func (m *MockWhisperRepository) Close(ctx context.Context, guildID, threadID int64, closedByStaff bool) (*models.Whisper, error) {
	args := m.Called(ctx, guildID, threadID, closedByStaff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Whisper), args.Error(1)
}

func (m *MockWhisperRepository) Delete(ctx context.Context, guildID, threadID int64) (bool, error) {
	args := m.Called(ctx, guildID, threadID)
	return args.Bool(0), args.Error(1)
}

// MockModerationLogRepository is a mock implementation of ModerationLogRepository
type MockModerationLogRepository struct {
	mock.Mock
}

func (m *MockModerationLogRepository) Create(ctx context.Context, entry *models.ModerationCase) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockModerationLogRepository) GetByCaseID(ctx context.Context, guildID, caseID int64) (*models.ModerationCase, error) {
	args := m.Called(ctx, guildID, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ModerationCase), args.Error(1)
}

func (m *MockModerationLogRepository) ListByUser(ctx context.Context, guildID, userID int64, limit int) ([]*models.ModerationCase, error) {
	args := m.Called(ctx, guildID, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ModerationCase), args.Error(1)
}

// MockLevelingRepository is a mock implementation of LevelingRepository
type MockLevelingRepository struct {
	mock.Mock
}

func (m *MockLevelingRepository) GetUser(ctx context.Context, guildID, userID int64) (*models.LevelingUser, error) {
	args := m.Called(ctx, guildID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LevelingUser), args.Error(1)
}

func (m *MockLevelingRepository) SaveUser(ctx context.Context, u *models.LevelingUser) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockLevelingRepository) Leaderboard(ctx context.Context, guildID int64, limit int) ([]*models.LevelingUser, error) {
	args := m.Called(ctx, guildID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LevelingUser), args.Error(1)
}

func (m *MockLevelingRepository) SetReward(ctx context.Context, guildID int64, level int, roleID int64) error {
	args := m.Called(ctx, guildID, level, roleID)
	return args.Error(0)
}

func (m *MockLevelingRepository) RemoveReward(ctx context.Context, guildID int64, level int) (bool, error) {
	args := m.Called(ctx, guildID, level)
	return args.Bool(0), args.Error(1)
}

func (m *MockLevelingRepository) ListRewards(ctx context.Context, guildID int64) ([]*models.LevelReward, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LevelReward), args.Error(1)
}

// MockRoleRepository is a mock implementation of RoleRepository
type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) SetAutorole(ctx context.Context, guildID, roleID int64) error {
	args := m.Called(ctx, guildID, roleID)
	return args.Error(0)
}

func (m *MockRoleRepository) GetAutorole(ctx context.Context, guildID int64) (int64, error) {
	args := m.Called(ctx, guildID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRoleRepository) SetReactionRole(ctx context.Context, rr *models.ReactionRole) error {
	args := m.Called(ctx, rr)
	return args.Error(0)
}

func (m *MockRoleRepository) RemoveReactionRole(ctx context.Context, guildID, messageID int64, emoji string) (bool, error) {
	args := m.Called(ctx, guildID, messageID, emoji)
	return args.Bool(0), args.Error(1)
}

func (m *MockRoleRepository) ListReactionRoles(ctx context.Context, guildID, messageID int64) ([]*models.ReactionRole, error) {
	args := m.Called(ctx, guildID, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ReactionRole), args.Error(1)
}

func (m *MockRoleRepository) SetColorRole(ctx context.Context, cr *models.ColorRole) error {
	args := m.Called(ctx, cr)
	return args.Error(0)
}

func (m *MockRoleRepository) GetColorRole(ctx context.Context, guildID, userID int64) (int64, error) {
	args := m.Called(ctx, guildID, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockGuildDataRepository is a mock implementation of GuildDataRepository
type MockGuildDataRepository struct {
	mock.Mock
}

func (m *MockGuildDataRepository) ResetGuild(ctx context.Context, guildID int64) error {
	args := m.Called(ctx, guildID)
	return args.Error(0)
}

// MockLogRouter is a mock implementation of LogRouter
type MockLogRouter struct {
	mock.Mock
}

func (m *MockLogRouter) Emit(ctx context.Context, guildID int64, category models.LogCategory, event *LogEvent) EmitResult {
	args := m.Called(ctx, guildID, category, event)
	return args.Get(0).(EmitResult)
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) ResolveChannel(guildID, channelID int64) error {
	args := m.Called(guildID, channelID)
	return args.Error(0)
}

func (m *MockNotifier) Send(ctx context.Context, guildID, channelID int64, category models.LogCategory, event *LogEvent) error {
	args := m.Called(ctx, guildID, channelID, category, event)
	return args.Error(0)
}
