package model_test

import (
	"context"
	"testing"

	"stellarbot/src-server/model"
	"stellarbot/src-server/model/modeltest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func readGuildConfig(t *testing.T, ctx context.Context, db bun.IDB, guildID string) *model.GuildConfig {
	t.Helper()
	cfg := new(model.GuildConfig)
	require.NoError(t, db.NewSelect().Model(cfg).Where("guild_id = ?", guildID).Scan(ctx))
	return cfg
}

func TestGuildConfigWarningNotificationsDefault(t *testing.T) {
	ctx := context.Background()
	db := modeltest.NewDB(t)

	require.NoError(t, model.NewGuildConfig("20").Upsert(ctx, db))
	// a row written without the column, e.g. by another bot sharing the table
	_, err := db.NewRaw("INSERT INTO realmguildconfig (guild_id) VALUES (?)", "21").Exec(ctx)
	require.NoError(t, err)

	for _, id := range []string{"20", "21"} {
		cfg := readGuildConfig(t, ctx, db, id)
		require.NotNil(t, cfg.WarningNotifications, id)
		assert.True(t, *cfg.WarningNotifications, id)
		assert.True(t, cfg.Warns(), id)
	}
}

func TestGuildConfigWarningNotificationsOff(t *testing.T) {
	ctx := context.Background()
	db := modeltest.NewDB(t)

	off := false
	cfg := model.NewGuildConfig("22")
	cfg.WarningNotifications = &off
	require.NoError(t, cfg.Upsert(ctx, db))
	assert.False(t, readGuildConfig(t, ctx, db, "22").Warns())

	on := true
	cfg.WarningNotifications = &on
	require.NoError(t, cfg.Upsert(ctx, db))
	assert.True(t, readGuildConfig(t, ctx, db, "22").Warns())
}

func TestGuildConfigUpsertRequiresGuildID(t *testing.T) {
	assert.Error(t, (&model.GuildConfig{}).Upsert(context.Background(), modeltest.NewDB(t)))
}
