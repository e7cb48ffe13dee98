package vote

import (
	"context"
	"fmt"
	"time"

	"stellarbot/src-server/metric"
	"stellarbot/src-server/store"
	"stellarbot/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

const votedTTL = 12 * time.Hour

// Process rewards the voter with the vote role if they don't have it yet
// and thanks them in the vote channel.
func Process(ctx context.Context, as *utils.AppState, v Vote) error {
	guildID := as.Config.GetDiscordGuildID()

	if v.MarksVoted {
		if err := as.Markers.Set(ctx, store.VotedKey(v.UserID), votedTTL); err != nil {
			return fmt.Errorf("Process: can't mark vote: %w", err)
		}
	}

	username := v.Username
	if username == "" {
		username = "<@" + v.UserID + ">"
	}
	gotRole := false

	member, err := utils.FetchMember(as.Discord, guildID, v.UserID)
	if err != nil {
		return fmt.Errorf("Process: can't fetch member: %w", err)
	}
	if member != nil {
		username = utils.UserLabel(member.User)
		if !utils.MemberHasRole(member, utils.VoteRoleID) {
			if err := as.Discord.GuildMemberRoleAdd(guildID, v.UserID, utils.VoteRoleID); err != nil {
				return fmt.Errorf("Process: can't add vote role: %w", err)
			}
			gotRole = true
		}
	} else if user, err := as.Discord.User(v.UserID); err == nil && user != nil {
		username = utils.UserLabel(user)
	}

	msg := Announcement(v, username, gotRole)
	startTimer := time.Now()
	if _, err := as.Discord.ChannelMessageSendComplex(utils.VoteChannelID, msg); err != nil {
		return fmt.Errorf("Process: can't announce vote: %w", err)
	}
	utils.Observe(as.MetricChans.DiscordSendMessage, startTimer)
	metric.VotesReceived.WithLabelValues(v.SiteName).Inc()

	return nil
}

// Announcement is the thank-you message for a vote. First-time voters get
// pinged and told about the role.
func Announcement(v Vote, username string, firstTime bool) *discordgo.MessageSend {
	description := fmt.Sprintf(
		"%s has voted for <@%s> on **%s** - thank you so much!",
		username, v.BotID, v.SiteName,
	)
	if firstTime {
		description += fmt.Sprintf(
			"\n\nThey also got the <@&%s> role for voting for the first time! "+
				"Consider voting too if you want a cool role like that.",
			utils.VoteRoleID,
		)
	}

	msg := &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "Vote Received",
			Description: description,
			Color:       utils.EmbedColor,
			Fields: []*discordgo.MessageEmbedField{{
				Name:  "Vote for this bot!",
				Value: fmt.Sprintf("[Click here!](%s)", v.VoteURL),
			}},
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}},
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Users: []string{v.UserID},
		},
	}
	if firstTime {
		msg.Content = "<@" + v.UserID + ">"
	}
	return msg
}
