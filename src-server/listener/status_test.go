package listener_test

import (
	"context"
	"testing"

	"stellarbot/src-server/listener"
	"stellarbot/src-server/utils"
	"stellarbot/src-server/utils/discordtest"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func presence(userID string, status discordgo.Status, activities ...string) *discordgo.PresenceUpdate {
	e := &discordgo.PresenceUpdate{GuildID: discordtest.GuildID}
	e.User = &discordgo.User{ID: userID}
	e.Status = status
	for _, name := range activities {
		e.Activities = append(e.Activities, &discordgo.Activity{Name: name})
	}
	return e
}

func TestStatusNotice(t *testing.T) {
	msg, ok := listener.StatusNotice("1", discordgo.StatusOffline, 0)
	assert.True(t, ok)
	assert.Contains(t, msg, "<@1> is offline.")

	msg, ok = listener.StatusNotice("1", discordgo.StatusOnline, 1)
	assert.True(t, ok)
	assert.Equal(t, "<@1> is back online.", msg)

	_, ok = listener.StatusNotice("1", discordgo.StatusOnline, 0)
	assert.False(t, ok, "still starting up")
	_, ok = listener.StatusNotice("1", discordgo.StatusIdle, 1)
	assert.False(t, ok)
}

func TestStatusWatcherAnnouncesChangesOnly(t *testing.T) {
	ctx := context.Background()
	as, fake := discordtest.NewApp(t)
	fake.AddMember(&discordgo.Member{User: &discordgo.User{ID: "500", Bot: true}, Roles: []string{utils.TrackedBotRoleID}})
	w := listener.NewStatusWatcher(as)

	for _, e := range []*discordgo.PresenceUpdate{
		presence("500", discordgo.StatusOffline),
		presence("500", discordgo.StatusOffline),
		presence("500", discordgo.StatusOnline), // no activity yet
		presence("500", discordgo.StatusOnline, "/help"),
		presence("500", discordgo.StatusOnline, "/help"),
	} {
		require.NoError(t, w.OnPresenceUpdate(ctx, e))
	}

	sent := fake.SentTo(utils.StatusChannelID)
	require.Len(t, sent, 2)
	assert.Contains(t, sent[0].Content, "is offline")
	assert.Equal(t, "<@500> is back online.", sent[1].Content)
}

func TestStatusWatcherIgnoresUntracked(t *testing.T) {
	ctx := context.Background()
	as, fake := discordtest.NewApp(t)
	fake.AddMember(&discordgo.Member{User: &discordgo.User{ID: "501"}})
	w := listener.NewStatusWatcher(as)

	require.NoError(t, w.OnPresenceUpdate(ctx, presence("501", discordgo.StatusOffline)))
	require.NoError(t, w.OnPresenceUpdate(ctx, presence("502", discordgo.StatusOffline))) // not a member

	other := presence("500", discordgo.StatusOffline)
	other.GuildID = "1"
	require.NoError(t, w.OnPresenceUpdate(ctx, other))

	assert.Empty(t, fake.SentTo(utils.StatusChannelID))
}
