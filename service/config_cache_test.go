package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"onwhisper/events"
	"onwhisper/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfigCache(repo GuildSettingRepository) ConfigCache {
	return NewConfigCache(repo, NewGuildLocks(), events.NewBus())
}

func TestConfigCache_DefaultsWhenUnset(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockGuildSettingRepository)
	mockRepo.On("GetAll", ctx, int64(42)).Return(map[string]string{}, nil).Once()

	cache := newTestConfigCache(mockRepo)

	rate, err := cache.GetInt(ctx, 42, models.KeyXPRate)
	assert.NoError(t, err)
	assert.Equal(t, int64(10), rate)

	enabled, err := cache.GetBool(ctx, 42, models.KeyLoggingEnabled)
	assert.NoError(t, err)
	assert.True(t, enabled)

	channel, err := cache.GetID(ctx, 42, models.KeyLogChannel)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), channel)

	prefix, err := cache.GetString(ctx, 42, models.KeyPrefix)
	assert.NoError(t, err)
	assert.Equal(t, "!", prefix)

	// Every read above was served from one snapshot load
	mockRepo.AssertExpectations(t)
}

func TestConfigCache_ReadYourWrite(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockGuildSettingRepository)
	mockRepo.On("GetAll", ctx, int64(42)).Return(map[string]string{}, nil).Once()
	mockRepo.On("Set", ctx, int64(42), models.KeyXPRate, "25").Return(nil).Once()
	// The write evicts the snapshot, so the next read reloads
	mockRepo.On("GetAll", ctx, int64(42)).Return(map[string]string{models.KeyXPRate: "25"}, nil).Once()

	cache := newTestConfigCache(mockRepo)

	rate, err := cache.GetInt(ctx, 42, models.KeyXPRate)
	require.NoError(t, err)
	assert.Equal(t, int64(10), rate)

	require.NoError(t, cache.Set(ctx, 42, models.KeyXPRate, models.IntValue(25)))

	rate, err = cache.GetInt(ctx, 42, models.KeyXPRate)
	require.NoError(t, err)
	assert.Equal(t, int64(25), rate)

	mockRepo.AssertExpectations(t)
}

func TestConfigCache_CorruptStoredValueFallsBackToDefault(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockGuildSettingRepository)
	mockRepo.On("GetAll", ctx, int64(42)).Return(map[string]string{
		models.KeyXPRate:         "not a number",
		models.KeyLoggingEnabled: "maybe",
	}, nil)

	cache := newTestConfigCache(mockRepo)

	rate, err := cache.GetInt(ctx, 42, models.KeyXPRate)
	assert.NoError(t, err)
	assert.Equal(t, int64(10), rate)

	enabled, err := cache.GetBool(ctx, 42, models.KeyLoggingEnabled)
	assert.NoError(t, err)
	assert.True(t, enabled)
}

func TestConfigCache_SetUnknownKeyRejected(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockGuildSettingRepository)
	cache := newTestConfigCache(mockRepo)

	err := cache.Set(ctx, 42, "no_such_key", models.IntValue(1))
	assert.ErrorIs(t, err, ErrValidation)

	err = cache.SetFromString(ctx, 42, "no_such_key", "1")
	assert.ErrorIs(t, err, ErrValidation)

	mockRepo.AssertNotCalled(t, "Set")
}

func TestConfigCache_SetTypeMismatchRejected(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockGuildSettingRepository)
	cache := newTestConfigCache(mockRepo)

	err := cache.Set(ctx, 42, models.KeyXPRate, models.StringValue("10"))
	assert.ErrorIs(t, err, ErrValidation)

	mockRepo.AssertNotCalled(t, "Set")
}

func TestConfigCache_SetFromStringCoercion(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		key    string
		raw    string
		stored string
	}{
		{"bool word yes", models.KeyLoggingEnabled, "yes", "true"},
		{"bool word off", models.KeyLoggingEnabled, "off", "false"},
		{"bool literal", models.KeyWhisperEnabled, "true", "true"},
		{"int with spaces", models.KeyXPRate, " 15 ", "15"},
		{"channel mention", models.KeyLogChannel, "<#123456789>", "123456789"},
		{"role mention", models.KeyWhisperStaff, "<@&987654321>", "987654321"},
		{"bare id", models.KeyModLogChannel, "555", "555"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockGuildSettingRepository)
			mockRepo.On("Set", ctx, int64(42), tt.key, tt.stored).Return(nil).Once()

			cache := newTestConfigCache(mockRepo)

			require.NoError(t, cache.SetFromString(ctx, 42, tt.key, tt.raw))
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestConfigCache_SetFromStringBadValueRejected(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockGuildSettingRepository)
	cache := newTestConfigCache(mockRepo)

	assert.ErrorIs(t, cache.SetFromString(ctx, 42, models.KeyXPRate, "lots"), ErrValidation)
	assert.ErrorIs(t, cache.SetFromString(ctx, 42, models.KeyLogChannel, "general"), ErrValidation)
	assert.ErrorIs(t, cache.SetFromString(ctx, 42, models.KeyLoggingEnabled, "perhaps"), ErrValidation)

	mockRepo.AssertNotCalled(t, "Set")
}

func TestConfigCache_RemoveRevertsToDefault(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockGuildSettingRepository)
	mockRepo.On("GetAll", ctx, int64(42)).Return(map[string]string{models.KeyXPRate: "99"}, nil).Once()
	mockRepo.On("Remove", ctx, int64(42), models.KeyXPRate).Return(true, nil).Once()
	mockRepo.On("GetAll", ctx, int64(42)).Return(map[string]string{}, nil).Once()

	cache := newTestConfigCache(mockRepo)

	rate, err := cache.GetInt(ctx, 42, models.KeyXPRate)
	require.NoError(t, err)
	assert.Equal(t, int64(99), rate)

	require.NoError(t, cache.Remove(ctx, 42, models.KeyXPRate))

	rate, err = cache.GetInt(ctx, 42, models.KeyXPRate)
	require.NoError(t, err)
	assert.Equal(t, int64(10), rate)

	mockRepo.AssertExpectations(t)
}

func TestConfigCache_RemoveUnsetKeyNotFound(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockGuildSettingRepository)
	mockRepo.On("Remove", ctx, int64(42), models.KeyXPRate).Return(false, nil)

	cache := newTestConfigCache(mockRepo)

	assert.ErrorIs(t, cache.Remove(ctx, 42, models.KeyXPRate), ErrNotFound)
}

func TestConfigCache_GuildIsolation(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockGuildSettingRepository)
	mockRepo.On("GetAll", ctx, int64(1)).Return(map[string]string{models.KeyXPRate: "100"}, nil)
	mockRepo.On("GetAll", ctx, int64(2)).Return(map[string]string{}, nil)

	cache := newTestConfigCache(mockRepo)

	rate1, err := cache.GetInt(ctx, 1, models.KeyXPRate)
	require.NoError(t, err)
	rate2, err := cache.GetInt(ctx, 2, models.KeyXPRate)
	require.NoError(t, err)

	assert.Equal(t, int64(100), rate1)
	assert.Equal(t, int64(10), rate2)
}

func TestConfigCache_GetAllResolvesEveryDeclaredKey(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockGuildSettingRepository)
	mockRepo.On("GetAll", ctx, int64(42)).Return(map[string]string{models.KeyXPRate: "30"}, nil)

	cache := newTestConfigCache(mockRepo)

	all, err := cache.GetAll(ctx, 42)
	require.NoError(t, err)

	assert.Len(t, all, len(models.SettingDefs))
	assert.Equal(t, int64(30), all[models.KeyXPRate].Int)
	assert.True(t, all[models.KeyLoggingEnabled].Bool)
	for _, cat := range models.AllCategories {
		assert.True(t, all[cat.EnabledKey()].Bool)
	}
}

func TestConfigCache_ConcurrentReadsLoadOnce(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockGuildSettingRepository)
	mockRepo.On("GetAll", ctx, int64(42)).Return(map[string]string{models.KeyXPRate: "7"}, nil).Once()

	cache := newTestConfigCache(mockRepo)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rate, err := cache.GetInt(ctx, 42, models.KeyXPRate)
			if err != nil {
				errs <- err
				return
			}
			if rate != 7 {
				errs <- fmt.Errorf("got rate %d, want 7", rate)
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	mockRepo.AssertExpectations(t)
}
