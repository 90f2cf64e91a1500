package service

import (
	"context"
	"errors"
	"testing"

	"onwhisper/events"
	"onwhisper/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGuildDataService_ResetEvictsConfigSnapshot(t *testing.T) {
	ctx := context.Background()

	mockSettings := new(MockGuildSettingRepository)
	mockSettings.On("GetAll", ctx, int64(42)).Return(map[string]string{models.KeyXPRate: "99"}, nil).Once()
	// Reload after the reset sees an empty store
	mockSettings.On("GetAll", ctx, int64(42)).Return(map[string]string{}, nil).Once()

	mockData := new(MockGuildDataRepository)
	mockData.On("ResetGuild", ctx, int64(42)).Return(nil)

	locks := NewGuildLocks()
	bus := events.NewBus()
	cache := NewConfigCache(mockSettings, locks, bus)
	svc := NewGuildDataService(mockData, cache, locks)

	rate, err := cache.GetInt(ctx, 42, models.KeyXPRate)
	require.NoError(t, err)
	assert.Equal(t, int64(99), rate)

	require.NoError(t, svc.ResetGuild(ctx, 42))

	rate, err = cache.GetInt(ctx, 42, models.KeyXPRate)
	require.NoError(t, err)
	assert.Equal(t, int64(10), rate)

	mockSettings.AssertExpectations(t)
	mockData.AssertExpectations(t)
}

func TestGuildDataService_ResetFailureKeepsCache(t *testing.T) {
	ctx := context.Background()

	mockSettings := new(MockGuildSettingRepository)
	mockSettings.On("GetAll", ctx, int64(42)).Return(map[string]string{models.KeyXPRate: "99"}, nil).Once()

	mockData := new(MockGuildDataRepository)
	mockData.On("ResetGuild", ctx, int64(42)).Return(errors.New("connection lost"))

	locks := NewGuildLocks()
	bus := events.NewBus()
	cache := NewConfigCache(mockSettings, locks, bus)
	svc := NewGuildDataService(mockData, cache, locks)

	_, err := cache.GetInt(ctx, 42, models.KeyXPRate)
	require.NoError(t, err)

	assert.Error(t, svc.ResetGuild(ctx, 42))

	// The snapshot was not evicted, so no reload happens
	rate, err := cache.GetInt(ctx, 42, models.KeyXPRate)
	require.NoError(t, err)
	assert.Equal(t, int64(99), rate)

	mockSettings.AssertExpectations(t)
}

func TestGuildDataService_ValidationRejectsNonPositiveGuild(t *testing.T) {
	ctx := context.Background()

	mockData := new(MockGuildDataRepository)
	svc := NewGuildDataService(mockData, NewConfigCache(new(MockGuildSettingRepository), NewGuildLocks(), events.NewBus()), NewGuildLocks())

	assert.ErrorIs(t, svc.ResetGuild(ctx, 0), ErrValidation)
	mockData.AssertNotCalled(t, "ResetGuild", mock.Anything, mock.Anything)
}
