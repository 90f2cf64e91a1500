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

func TestModerationService_LogActionAssignsCaseID(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockModerationLogRepository)
	mockRepo.On("Create", ctx, mock.MatchedBy(func(e *models.ModerationCase) bool {
		return e.GuildID == 42 && e.UserID == 7 && e.Action == models.ActionWarn && e.ModeratorID == 9
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.ModerationCase).CaseID = 1
	}).Return(nil)

	mockRouter := new(MockLogRouter)
	mockRouter.On("Emit", ctx, int64(42), models.CategoryModeration, mock.MatchedBy(func(e *LogEvent) bool {
		return e.ActorID == 9 && e.TargetID == 7
	})).Return(EmitResult{Status: EmitDelivered, ChannelID: 100})

	svc := NewModerationService(mockRepo, mockRouter, NewGuildLocks(), events.NewBus())

	entry, err := svc.LogAction(ctx, 42, 7, models.ActionWarn, "spamming", 9)
	require.NoError(t, err)
	assert.Equal(t, int64(1), entry.CaseID)

	mockRepo.AssertExpectations(t)
	mockRouter.AssertExpectations(t)
}

func TestModerationService_LogActionValidation(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockModerationLogRepository)
	svc := NewModerationService(mockRepo, new(MockLogRouter), NewGuildLocks(), events.NewBus())

	_, err := svc.LogAction(ctx, 0, 7, models.ActionBan, "", 9)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.LogAction(ctx, 42, 7, "", "", 9)
	assert.ErrorIs(t, err, ErrValidation)

	mockRepo.AssertNotCalled(t, "Create")
}

func TestModerationService_LogActionRepoErrorSkipsEmit(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockModerationLogRepository)
	mockRepo.On("Create", ctx, mock.Anything).Return(errors.New("connection lost"))

	mockRouter := new(MockLogRouter)
	svc := NewModerationService(mockRepo, mockRouter, NewGuildLocks(), events.NewBus())

	_, err := svc.LogAction(ctx, 42, 7, models.ActionKick, "", 9)
	assert.Error(t, err)
	mockRouter.AssertNotCalled(t, "Emit")
}

func TestModerationService_GetCaseNotFound(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockModerationLogRepository)
	mockRepo.On("GetByCaseID", ctx, int64(42), int64(5)).Return(nil, nil)

	svc := NewModerationService(mockRepo, new(MockLogRouter), NewGuildLocks(), events.NewBus())

	_, err := svc.GetCase(ctx, 42, 5)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestModerationService_HistoryDefaultsLimit(t *testing.T) {
	ctx := context.Background()

	cases := []*models.ModerationCase{
		{GuildID: 42, CaseID: 2, UserID: 7, Action: models.ActionMute},
		{GuildID: 42, CaseID: 1, UserID: 7, Action: models.ActionWarn},
	}

	mockRepo := new(MockModerationLogRepository)
	mockRepo.On("ListByUser", ctx, int64(42), int64(7), defaultHistoryLimit).Return(cases, nil)

	svc := NewModerationService(mockRepo, new(MockLogRouter), NewGuildLocks(), events.NewBus())

	got, err := svc.History(ctx, 42, 7, 0)
	require.NoError(t, err)
	assert.Equal(t, cases, got)
}
