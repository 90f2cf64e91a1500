package repository

import (
	"context"
	"testing"

	"onwhisper/models"
	"onwhisper/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuildDataRepository_ResetGuildWipesOnlyThatGuild(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	settings := NewGuildSettingRepository(testDB.DB)
	whispers := NewWhisperRepository(testDB.DB)
	moderation := NewModerationLogRepository(testDB.DB)
	leveling := NewLevelingRepository(testDB.DB)
	reset := NewGuildDataRepository(testDB.DB)

	// Populate two guilds
	for _, guildID := range []int64{42, 43} {
		require.NoError(t, settings.Set(ctx, guildID, "xp_rate", "25"))
		_, err := whispers.Create(ctx, guildID, 7, guildID*10)
		require.NoError(t, err)
		require.NoError(t, moderation.Create(ctx, &models.ModerationCase{
			GuildID: guildID, UserID: 7, Action: models.ActionWarn, ModeratorID: 9,
		}))
		require.NoError(t, leveling.SaveUser(ctx, &models.LevelingUser{GuildID: guildID, UserID: 7, XP: 100, Level: 1}))
	}

	require.NoError(t, reset.ResetGuild(ctx, 42))

	// Guild 42 is empty
	all, err := settings.GetAll(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, all)

	open, err := whispers.ListOpen(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, open)

	entry, err := moderation.GetByCaseID(ctx, 42, 1)
	require.NoError(t, err)
	assert.Nil(t, entry)

	user, err := leveling.GetUser(ctx, 42, 7)
	require.NoError(t, err)
	assert.Nil(t, user)

	// Guild 43 is untouched
	all, err = settings.GetAll(ctx, 43)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	open, err = whispers.ListOpen(ctx, 43)
	require.NoError(t, err)
	assert.Len(t, open, 1)

	user, err = leveling.GetUser(ctx, 43, 7)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, int64(100), user.XP)
}

func TestGuildDataRepository_ResetClearsWhisperCounter(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	whispers := NewWhisperRepository(testDB.DB)
	reset := NewGuildDataRepository(testDB.DB)

	w, err := whispers.Create(ctx, 42, 7, 555)
	require.NoError(t, err)
	require.Equal(t, int64(1), w.Number)

	require.NoError(t, reset.ResetGuild(ctx, 42))

	// A reset guild starts numbering from scratch
	w, err = whispers.Create(ctx, 42, 7, 556)
	require.NoError(t, err)
	assert.Equal(t, int64(1), w.Number)
}
