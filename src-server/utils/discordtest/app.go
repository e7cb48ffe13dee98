package discordtest

import (
	"testing"

	"stellarbot/src-server/model/modeltest"
	"stellarbot/src-server/store"
	"stellarbot/src-server/utils"
)

const (
	GuildID = "775912554928144384"
	OwnerID = "100000000000000001"
)

// Env is the environment NewApp builds its config from.
var Env = map[string]string{
	"DISCORD_GUILD_ID":  GuildID,
	"DISCORD_APP_TOKEN": "test-token",
	"DISCORD_CLIENT_ID": "200000000000000002",
	"OWNER_ID":          OwnerID,
	"TOPGG_AUTH":        "topgg-secret",
	"DBL_AUTH":          "dbl-secret",
	"DISCORDSCOM_AUTH":  "discordscom-secret",
}

// NewApp returns an AppState backed by a fresh in-memory database, an
// in-memory marker store and a Fake for Discord.
func NewApp(t testing.TB) (*utils.AppState, *Fake) {
	t.Helper()

	config, err := utils.LoadConfig(func(key string) string { return Env[key] })
	if err != nil {
		t.Fatal(err)
	}
	fake := New(GuildID)
	markers := store.NewMemory()
	t.Cleanup(func() { markers.Close() })

	return utils.New(config, modeltest.NewDB(t), fake, markers), fake
}
