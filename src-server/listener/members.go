package listener

import (
	"context"
	"fmt"
	"log/slog"

	"stellarbot/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

type MemberRequester interface {
	RequestGuildMembers(guildID, query string, limit int, nonce string, presences bool) error
}

// MemberCache asks the gateway for every member of the home guild once it
// becomes available. discordgo only has a BeforeUpdate for cached members,
// and premium role removals are detected by comparing against it.
type MemberCache struct {
	as        *utils.AppState
	requester MemberRequester
}

func NewMemberCache(as *utils.AppState, requester MemberRequester) *MemberCache {
	return &MemberCache{as: as, requester: requester}
}

func (m *MemberCache) OnGuildCreate(ctx context.Context, e *discordgo.GuildCreate) error {
	if e.Guild == nil || e.ID != m.as.Config.GetDiscordGuildID() {
		return nil
	}
	// the chunks arrive as GUILD_MEMBERS_CHUNK and discordgo's state
	// tracker stores them
	if err := m.requester.RequestGuildMembers(e.ID, "", 0, "", false); err != nil {
		return fmt.Errorf("OnGuildCreate: can't request members: %w", err)
	}
	slog.Debug("requested home guild members", "guild", e.ID, "member_count", e.MemberCount)
	return nil
}
