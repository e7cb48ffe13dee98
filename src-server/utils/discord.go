package utils

import (
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/bwmarrin/discordgo"
)

// Discord is the part of the Discord REST API the bot logic talks to.
// *discordgo.Session satisfies it.
type Discord interface {
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildMembers(guildID string, after string, limit int, options ...discordgo.RequestOption) ([]*discordgo.Member, error)
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberEdit(guildID, userID string, data *discordgo.GuildMemberParams, options ...discordgo.RequestOption) (*discordgo.Member, error)
	User(userID string, options ...discordgo.RequestOption) (*discordgo.User, error)
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
}

var _ Discord = (*discordgo.Session)(nil)

const guildMembersPageSize = 1000

// RoleHolders lists every member of the guild that has roleID.
func RoleHolders(d Discord, guildID, roleID string) ([]*discordgo.Member, error) {
	holders := make([]*discordgo.Member, 0)
	after := ""
	for {
		members, err := d.GuildMembers(guildID, after, guildMembersPageSize)
		if err != nil {
			return nil, fmt.Errorf("RoleHolders: can't list guild members: %w", err)
		}
		for _, member := range members {
			if MemberHasRole(member, roleID) {
				holders = append(holders, member)
			}
		}
		if len(members) < guildMembersPageSize {
			return holders, nil
		}
		after = members[len(members)-1].User.ID
	}
}

func MemberHasRole(member *discordgo.Member, roleID string) bool {
	if member == nil {
		return false
	}
	return slices.Contains(member.Roles, roleID)
}

// FetchMember is GuildMember that returns nil, nil when the user isn't in
// the guild.
func FetchMember(d Discord, guildID, userID string) (*discordgo.Member, error) {
	member, err := d.GuildMember(guildID, userID)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return member, nil
}

// IsNotFound reports whether err is a 404 from Discord.
func IsNotFound(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}

// SendDM sends content to the user's DMs. Delivery failures (closed DMs,
// blocked bot) are ignored.
func SendDM(d Discord, userID, content string) {
	channel, err := d.UserChannelCreate(userID)
	if err != nil {
		return
	}
	_, _ = d.ChannelMessageSend(channel.ID, content)
}

// Mention and tag of the user, like "<@1> (**name**)".
func UserLabel(user *discordgo.User) string {
	if user == nil {
		return ""
	}
	return fmt.Sprintf("%s (**%s**)", user.Mention(), user.String())
}
