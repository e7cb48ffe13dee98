// Package listener holds the gateway event handlers that aren't about
// premium: the bot status watcher, the verify channel ping, the ready
// notice and the home guild member cache fill.
package listener

import (
	"context"

	"stellarbot/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

// Register hooks every listener into the gateway event router.
func Register(as *utils.AppState) {
	watcher := NewStatusWatcher(as)
	as.Events.On(utils.EventPresenceUpdate, "bot status watch", utils.Typed(watcher.OnPresenceUpdate))

	as.Events.On(utils.EventMemberAdd, "verify ping", utils.Typed(
		func(ctx context.Context, e *discordgo.GuildMemberAdd) error {
			return VerifyPing(ctx, as, e.Member)
		},
	))

	if as.DgSession != nil {
		ready := NewReady(as, as.DgSession)
		as.Events.On(utils.EventReady, "ready notice", utils.Typed(ready.OnReady))

		members := NewMemberCache(as, as.DgSession)
		as.Events.On(utils.EventGuildCreate, "member cache fill", utils.Typed(members.OnGuildCreate))
	}
}
