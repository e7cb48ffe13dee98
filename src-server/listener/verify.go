package listener

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"stellarbot/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

// long enough for Discord to show a notification, short enough that
// nobody sees the message
const verifyPingLifetime = 200 * time.Millisecond

// VerifyPing pings new members in the verify channel so they notice it.
func VerifyPing(ctx context.Context, as *utils.AppState, member *discordgo.Member) error {
	if member == nil || member.User == nil || member.GuildID != as.Config.GetDiscordGuildID() {
		return nil
	}

	msg, err := as.Discord.ChannelMessageSend(utils.VerifyChannelID, member.User.Mention())
	if err != nil {
		return fmt.Errorf("VerifyPing: can't ping: %w", err)
	}

	select {
	case <-time.After(verifyPingLifetime):
	case <-ctx.Done():
	}
	if err := as.Discord.ChannelMessageDelete(msg.ChannelID, msg.ID); err != nil && !utils.IsNotFound(err) {
		slog.Warn("VerifyPing: can't delete ping", "user", member.User.ID, "error", err)
	}
	return nil
}
