package listener_test

import (
	"context"
	"errors"
	"testing"

	"stellarbot/src-server/listener"
	"stellarbot/src-server/utils/discordtest"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type requester struct {
	guilds []string
	err    error
}

func (r *requester) RequestGuildMembers(guildID, query string, limit int, nonce string, presences bool) error {
	r.guilds = append(r.guilds, guildID)
	return r.err
}

func guildCreate(id string) *discordgo.GuildCreate {
	return &discordgo.GuildCreate{Guild: &discordgo.Guild{ID: id, MemberCount: 3}}
}

func TestMemberCacheRequestsHomeGuild(t *testing.T) {
	ctx := context.Background()
	as, _ := discordtest.NewApp(t)
	r := &requester{}
	members := listener.NewMemberCache(as, r)

	require.NoError(t, members.OnGuildCreate(ctx, guildCreate("901")))
	require.NoError(t, members.OnGuildCreate(ctx, guildCreate(discordtest.GuildID)))

	assert.Equal(t, []string{discordtest.GuildID}, r.guilds)
}

func TestMemberCacheRequestFailure(t *testing.T) {
	as, _ := discordtest.NewApp(t)
	members := listener.NewMemberCache(as, &requester{err: errors.New("not connected")})

	err := members.OnGuildCreate(context.Background(), guildCreate(discordtest.GuildID))
	assert.ErrorContains(t, err, "not connected")
}
