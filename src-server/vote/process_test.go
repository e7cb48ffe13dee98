package vote_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"stellarbot/src-server/store"
	"stellarbot/src-server/utils"
	"stellarbot/src-server/utils/discordtest"
	"stellarbot/src-server/vote"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func voter(id string, roles ...string) *discordgo.Member {
	return &discordgo.Member{
		User:     &discordgo.User{ID: id, Username: "voter" + id, Discriminator: "0"},
		JoinedAt: time.Now().Add(-time.Hour),
		Roles:    roles,
	}
}

func topggVote(userID string) vote.Vote {
	return vote.Vote{
		UserID:     userID,
		BotID:      utils.PlayerlistBotID,
		SiteName:   "Top.gg",
		VoteURL:    "https://top.gg/bot/" + utils.PlayerlistBotID,
		Username:   "<@" + userID + ">",
		MarksVoted: true,
	}
}

func TestProcessFirstVote(t *testing.T) {
	ctx := context.Background()
	as, fake := discordtest.NewApp(t)
	fake.AddMember(voter("300"))

	require.NoError(t, vote.Process(ctx, as, topggVote("300")))

	assert.True(t, utils.MemberHasRole(fake.Member("300"), utils.VoteRoleID))
	sent := fake.SentTo(utils.VoteChannelID)
	require.Len(t, sent, 1)
	assert.Equal(t, "<@300>", sent[0].Content)
	require.Len(t, sent[0].Embeds, 1)
	embed := sent[0].Embeds[0]
	assert.Equal(t, "Vote Received", embed.Title)
	assert.Contains(t, embed.Description, "<@300> (**voter300**)")
	assert.Contains(t, embed.Description, "<@&"+utils.VoteRoleID+">")
	require.Len(t, embed.Fields, 1)
	assert.Equal(t, "Vote for this bot!", embed.Fields[0].Name)
	assert.Contains(t, embed.Fields[0].Value, "https://top.gg/bot/")

	voted, err := as.Markers.Has(ctx, store.VotedKey("300"))
	require.NoError(t, err)
	assert.True(t, voted)
}

func TestProcessRepeatVoteDoesNotPing(t *testing.T) {
	as, fake := discordtest.NewApp(t)
	fake.AddMember(voter("300", utils.VoteRoleID))

	require.NoError(t, vote.Process(context.Background(), as, topggVote("300")))

	assert.Empty(t, fake.RoleAdds)
	sent := fake.SentTo(utils.VoteChannelID)
	require.Len(t, sent, 1)
	assert.Empty(t, sent[0].Content)
	assert.NotContains(t, sent[0].Embeds[0].Description, "first time")
}

func TestProcessVoterOutsideGuild(t *testing.T) {
	as, fake := discordtest.NewApp(t)
	fake.AddUser(&discordgo.User{ID: "301", Username: "outsider", Discriminator: "0"})

	v := topggVote("301")
	v.MarksVoted = false
	require.NoError(t, vote.Process(context.Background(), as, v))

	assert.Empty(t, fake.RoleAdds)
	sent := fake.SentTo(utils.VoteChannelID)
	require.Len(t, sent, 1)
	assert.Empty(t, sent[0].Content)
	assert.Contains(t, sent[0].Embeds[0].Description, "<@301> (**outsider**)")
}

func TestProcessUnknownUserUsesPayloadName(t *testing.T) {
	as, fake := discordtest.NewApp(t)

	v := vote.Vote{UserID: "302", BotID: utils.PlayerlistBotID, SiteName: "Discord Bot List", Username: "<@302> (**@ghost**)"}
	require.NoError(t, vote.Process(context.Background(), as, v))

	sent := fake.SentTo(utils.VoteChannelID)
	require.Len(t, sent, 1)
	assert.True(t, strings.HasPrefix(sent[0].Embeds[0].Description, "<@302> (**@ghost**) has voted"))
}

func TestProcessRoleFailure(t *testing.T) {
	as, fake := discordtest.NewApp(t)
	fake.AddMember(voter("300"))
	fake.RoleAddErr = discordtest.Forbidden()

	err := vote.Process(context.Background(), as, topggVote("300"))
	require.Error(t, err)
	assert.Empty(t, fake.SentTo(utils.VoteChannelID))
}

func TestDispatcherProcessesQueuedVotes(t *testing.T) {
	as, fake := discordtest.NewApp(t)
	fake.AddMember(voter("300"))
	fake.AddMember(voter("303", utils.VoteRoleID))

	d := vote.NewDispatcher(as, 4)
	go d.Run(context.Background())

	assert.True(t, d.Enqueue(topggVote("300")))
	assert.True(t, d.Enqueue(topggVote("303")))
	d.Close()

	assert.Len(t, fake.SentTo(utils.VoteChannelID), 2)
	assert.False(t, d.Enqueue(topggVote("300")), "closed dispatcher takes no votes")
}

func TestDispatcherReportsFailures(t *testing.T) {
	as, fake := discordtest.NewApp(t)
	fake.AddMember(voter("300"))
	fake.RoleAddErr = errors.New("boom")

	d := vote.NewDispatcher(as, 1)
	go d.Run(context.Background())
	require.True(t, d.Enqueue(topggVote("300")))
	d.Close()

	assert.Empty(t, fake.SentTo(utils.VoteChannelID))
	assert.NotEmpty(t, fake.SentTo(discordtest.DMChannelID(discordtest.OwnerID)), "owner gets the report")
}

func TestDispatcherFullQueue(t *testing.T) {
	as, _ := discordtest.NewApp(t)
	d := vote.NewDispatcher(as, 1)

	assert.True(t, d.Enqueue(topggVote("300")))
	assert.False(t, d.Enqueue(topggVote("301")))

	go d.Run(context.Background())
	d.Close()
}
