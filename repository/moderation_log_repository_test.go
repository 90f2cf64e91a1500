package repository

import (
	"context"
	"testing"

	"onwhisper/models"
	"onwhisper/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModerationLogRepository_CaseIDsArePerGuild(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewModerationLogRepository(testDB.DB)
	ctx := context.Background()

	first := &models.ModerationCase{GuildID: 42, UserID: 7, Action: models.ActionWarn, Reason: "spam", ModeratorID: 9}
	require.NoError(t, repo.Create(ctx, first))
	assert.Equal(t, int64(1), first.CaseID)

	second := &models.ModerationCase{GuildID: 42, UserID: 8, Action: models.ActionBan, ModeratorID: 9}
	require.NoError(t, repo.Create(ctx, second))
	assert.Equal(t, int64(2), second.CaseID)

	other := &models.ModerationCase{GuildID: 43, UserID: 7, Action: models.ActionKick, ModeratorID: 9}
	require.NoError(t, repo.Create(ctx, other))
	assert.Equal(t, int64(1), other.CaseID)
}

func TestModerationLogRepository_GetByCaseID(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewModerationLogRepository(testDB.DB)
	ctx := context.Background()

	missing, err := repo.GetByCaseID(ctx, 42, 1)
	require.NoError(t, err)
	assert.Nil(t, missing)

	entry := &models.ModerationCase{GuildID: 42, UserID: 7, Action: models.ActionMute, Reason: "noise", ModeratorID: 9}
	require.NoError(t, repo.Create(ctx, entry))

	got, err := repo.GetByCaseID(ctx, 42, entry.CaseID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.ActionMute, got.Action)
	assert.Equal(t, "noise", got.Reason)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestModerationLogRepository_ListByUserNewestFirst(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewModerationLogRepository(testDB.DB)
	ctx := context.Background()

	for _, action := range []string{models.ActionWarn, models.ActionMute, models.ActionKick} {
		entry := &models.ModerationCase{GuildID: 42, UserID: 7, Action: action, ModeratorID: 9}
		require.NoError(t, repo.Create(ctx, entry))
	}
	other := &models.ModerationCase{GuildID: 42, UserID: 8, Action: models.ActionBan, ModeratorID: 9}
	require.NoError(t, repo.Create(ctx, other))

	history, err := repo.ListByUser(ctx, 42, 7, 10)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, models.ActionKick, history[0].Action)
	assert.Equal(t, models.ActionWarn, history[2].Action)

	limited, err := repo.ListByUser(ctx, 42, 7, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, models.ActionKick, limited[0].Action)
}
