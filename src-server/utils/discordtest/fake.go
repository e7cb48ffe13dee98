// Package discordtest fakes the Discord REST calls the bot makes, keeping
// one guild's members in memory.
package discordtest

import (
	"cmp"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"

	"stellarbot/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

type RoleChange struct {
	GuildID string
	UserID  string
	RoleID  string
}

type SentMessage struct {
	ChannelID string
	Content   string
	Embeds    []*discordgo.MessageEmbed
}

type Fake struct {
	GuildID string

	mu       sync.Mutex
	members  map[string]*discordgo.Member
	users    map[string]*discordgo.User
	closedDM map[string]bool
	nextID   int

	RoleAdds    []RoleChange
	RoleRemoves []RoleChange
	Edits       []RoleChange
	Sent        []SentMessage
	Deleted     []string

	// returned by the matching call when set
	RoleAddErr    error
	RoleRemoveErr error
	SendErr       error
}

var _ utils.Discord = (*Fake)(nil)

func New(guildID string) *Fake {
	return &Fake{
		GuildID:  guildID,
		members:  make(map[string]*discordgo.Member),
		users:    make(map[string]*discordgo.User),
		closedDM: make(map[string]bool),
	}
}

// AddMember puts a member in the guild, registering its user too.
func (f *Fake) AddMember(member *discordgo.Member) *discordgo.Member {
	f.mu.Lock()
	defer f.mu.Unlock()
	member.GuildID = f.GuildID
	f.members[member.User.ID] = member
	f.users[member.User.ID] = member.User
	return member
}

// AddUser registers a user that isn't in the guild.
func (f *Fake) AddUser(user *discordgo.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
}

func (f *Fake) CloseDMs(userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closedDM[userID] = true
}

// Member returns a copy of the member as currently stored.
func (f *Fake) Member(userID string) *discordgo.Member {
	f.mu.Lock()
	defer f.mu.Unlock()
	member, ok := f.members[userID]
	if !ok {
		return nil
	}
	c := *member
	c.Roles = slices.Clone(member.Roles)
	return &c
}

// SentTo returns the messages sent to channelID.
func (f *Fake) SentTo(channelID string) []SentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]SentMessage, 0)
	for _, msg := range f.Sent {
		if msg.ChannelID == channelID {
			out = append(out, msg)
		}
	}
	return out
}

func DMChannelID(userID string) string {
	return "dm-" + userID
}

func NotFound() error {
	return &discordgo.RESTError{
		Response: &http.Response{StatusCode: http.StatusNotFound, Status: "404 Not Found"},
		Message:  &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownMember, Message: "Unknown Member"},
	}
}

func Forbidden() error {
	return &discordgo.RESTError{
		Response: &http.Response{StatusCode: http.StatusForbidden, Status: "403 Forbidden"},
		Message:  &discordgo.APIErrorMessage{Code: discordgo.ErrCodeCannotSendMessagesToThisUser, Message: "Cannot send messages to this user"},
	}
}

func (f *Fake) checkGuild(guildID string) error {
	if guildID != f.GuildID {
		return fmt.Errorf("discordtest: unknown guild %s", guildID)
	}
	return nil
}

func compareSnowflakes(a, b string) int {
	if c := cmp.Compare(len(a), len(b)); c != 0 {
		return c
	}
	return cmp.Compare(a, b)
}

func (f *Fake) GuildMember(guildID, userID string, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	if err := f.checkGuild(guildID); err != nil {
		return nil, err
	}
	member := f.Member(userID)
	if member == nil {
		return nil, NotFound()
	}
	return member, nil
}

func (f *Fake) GuildMembers(guildID string, after string, limit int, _ ...discordgo.RequestOption) ([]*discordgo.Member, error) {
	if err := f.checkGuild(guildID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	ids := make([]string, 0, len(f.members))
	for id := range f.members {
		if after == "" || compareSnowflakes(id, after) > 0 {
			ids = append(ids, id)
		}
	}
	f.mu.Unlock()

	slices.SortFunc(ids, compareSnowflakes)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	members := make([]*discordgo.Member, 0, len(ids))
	for _, id := range ids {
		members = append(members, f.Member(id))
	}
	return members, nil
}

func (f *Fake) GuildMemberRoleAdd(guildID, userID, roleID string, _ ...discordgo.RequestOption) error {
	if err := f.checkGuild(guildID); err != nil {
		return err
	}
	if f.RoleAddErr != nil {
		return f.RoleAddErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	member, ok := f.members[userID]
	if !ok {
		return NotFound()
	}
	if !slices.Contains(member.Roles, roleID) {
		member.Roles = append(member.Roles, roleID)
	}
	f.RoleAdds = append(f.RoleAdds, RoleChange{guildID, userID, roleID})
	return nil
}

func (f *Fake) GuildMemberRoleRemove(guildID, userID, roleID string, _ ...discordgo.RequestOption) error {
	if err := f.checkGuild(guildID); err != nil {
		return err
	}
	if f.RoleRemoveErr != nil {
		return f.RoleRemoveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	member, ok := f.members[userID]
	if !ok {
		return NotFound()
	}
	member.Roles = slices.DeleteFunc(member.Roles, func(r string) bool { return r == roleID })
	f.RoleRemoves = append(f.RoleRemoves, RoleChange{guildID, userID, roleID})
	return nil
}

func (f *Fake) GuildMemberEdit(guildID, userID string, data *discordgo.GuildMemberParams, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	if err := f.checkGuild(guildID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	member, ok := f.members[userID]
	if !ok {
		f.mu.Unlock()
		return nil, NotFound()
	}
	if data != nil && data.Roles != nil {
		member.Roles = slices.Clone(*data.Roles)
		for _, roleID := range member.Roles {
			f.Edits = append(f.Edits, RoleChange{guildID, userID, roleID})
		}
	}
	f.mu.Unlock()
	return f.Member(userID), nil
}

func (f *Fake) User(userID string, _ ...discordgo.RequestOption) (*discordgo.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return nil, &discordgo.RESTError{
			Response: &http.Response{StatusCode: http.StatusNotFound},
			Message:  &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownUser, Message: "Unknown User"},
		}
	}
	return user, nil
}

func (f *Fake) UserChannelCreate(recipientID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	return &discordgo.Channel{ID: DMChannelID(recipientID), Type: discordgo.ChannelTypeDM}, nil
}

func (f *Fake) send(channelID string, msg SentMessage) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SendErr != nil {
		return nil, f.SendErr
	}
	for userID := range f.closedDM {
		if channelID == DMChannelID(userID) {
			return nil, Forbidden()
		}
	}
	f.Sent = append(f.Sent, msg)
	f.nextID++
	return &discordgo.Message{ID: fmt.Sprint(f.nextID), ChannelID: channelID, Content: msg.Content, Embeds: msg.Embeds}, nil
}

func (f *Fake) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	return f.send(channelID, SentMessage{ChannelID: channelID, Content: content})
}

func (f *Fake) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if data == nil {
		return nil, errors.New("discordtest: nil message")
	}
	return f.send(channelID, SentMessage{ChannelID: channelID, Content: data.Content, Embeds: data.Embeds})
}

func (f *Fake) ChannelMessageDelete(channelID, messageID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Deleted = append(f.Deleted, channelID+"/"+messageID)
	return nil
}
