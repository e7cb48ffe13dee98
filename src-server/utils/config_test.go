package utils_test

import (
	"testing"
	"time"

	"stellarbot/src-server/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(overrides map[string]string) func(string) string {
	values := map[string]string{
		"DISCORD_GUILD_ID":  "1",
		"DISCORD_APP_TOKEN": "token",
		"DISCORD_CLIENT_ID": "2",
	}
	for k, v := range overrides {
		values[k] = v
	}
	return func(key string) string { return values[key] }
}

func TestLoadConfigDefaults(t *testing.T) {
	c, err := utils.LoadConfig(env(nil))
	require.NoError(t, err)

	assert.Equal(t, "1", c.GetDiscordGuildID())
	assert.Equal(t, "file:./sqlite.db?mode=rwc", c.GetDatabaseURL())
	assert.Equal(t, "127.0.0.1:8000", c.GetVoteListenAddr())
	assert.Equal(t, 12*time.Hour, c.GetPremiumSweepInterval())
	assert.Equal(t, 72*time.Hour, c.GetPremiumGracePeriod())
	assert.Equal(t, 15*time.Second, c.GetMetricCollectionInterval())
	assert.Empty(t, c.GetOwnerID())
	assert.Empty(t, c.GetRedisURL())
	assert.Empty(t, c.GetTopggAuth())
}

func TestLoadConfigRequired(t *testing.T) {
	for _, key := range []string{"DISCORD_GUILD_ID", "DISCORD_APP_TOKEN", "DISCORD_CLIENT_ID"} {
		_, err := utils.LoadConfig(env(map[string]string{key: "  "}))
		assert.ErrorContains(t, err, key)
	}
}

func TestLoadConfigClampsSweepInterval(t *testing.T) {
	c, err := utils.LoadConfig(env(map[string]string{"PREMIUM_SWEEP_INTERVAL": "1h"}))
	require.NoError(t, err)
	assert.Equal(t, 6*time.Hour, c.GetPremiumSweepInterval())

	c, err = utils.LoadConfig(env(map[string]string{"PREMIUM_SWEEP_INTERVAL": "48h"}))
	require.NoError(t, err)
	assert.Equal(t, 12*time.Hour, c.GetPremiumSweepInterval())

	c, err = utils.LoadConfig(env(map[string]string{"PREMIUM_SWEEP_INTERVAL": "8h"}))
	require.NoError(t, err)
	assert.Equal(t, 8*time.Hour, c.GetPremiumSweepInterval())
}

func TestLoadConfigBadDuration(t *testing.T) {
	_, err := utils.LoadConfig(env(map[string]string{"PREMIUM_GRACE_PERIOD": "three days"}))
	assert.ErrorContains(t, err, "PREMIUM_GRACE_PERIOD")

	_, err = utils.LoadConfig(env(map[string]string{"METRIC_COLLECTION_INTERVAL": "-1s"}))
	assert.ErrorContains(t, err, "METRIC_COLLECTION_INTERVAL")
}
