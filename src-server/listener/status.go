package listener

import (
	"context"
	"fmt"
	"time"

	"stellarbot/src-server/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/patrickmn/go-cache"
)

const untrackedTTL = time.Hour

// StatusWatcher posts to the status channel when one of the tracked bots
// goes down or comes back.
type StatusWatcher struct {
	as *utils.AppState
	// user id -> last announced discordgo.Status
	last *cache.Cache
	// user ids known not to have the tracked bot role
	untracked *cache.Cache
}

func NewStatusWatcher(as *utils.AppState) *StatusWatcher {
	return &StatusWatcher{
		as:        as,
		last:      utils.NewCache(cache.NoExpiration),
		untracked: utils.NewCache(untrackedTTL),
	}
}

// StatusNotice is the message for a status, or false if the status isn't
// worth announcing. Bots like Seraphim only set an activity once they're
// done starting up, so "online" without one doesn't count yet.
func StatusNotice(userID string, status discordgo.Status, activities int) (string, bool) {
	switch {
	case status == discordgo.StatusOffline:
		return fmt.Sprintf(
			"<@%s> is offline. Please wait - this tends to happen semi-frequently, "+
				"and the bot will come back up soon automatically.",
			userID,
		), true
	case status == discordgo.StatusOnline && activities > 0:
		return fmt.Sprintf("<@%s> is back online.", userID), true
	default:
		return "", false
	}
}

func (w *StatusWatcher) OnPresenceUpdate(ctx context.Context, e *discordgo.PresenceUpdate) error {
	if e.GuildID != w.as.Config.GetDiscordGuildID() || e.User == nil {
		return nil
	}
	userID := e.User.ID

	notice, ok := StatusNotice(userID, e.Status, len(e.Activities))
	if !ok {
		return nil
	}
	if last, found := w.last.Get(userID); found && last.(discordgo.Status) == e.Status {
		return nil
	}
	if _, found := w.untracked.Get(userID); found {
		return nil
	}

	member, err := utils.FetchMember(w.as.Discord, e.GuildID, userID)
	if err != nil {
		return fmt.Errorf("OnPresenceUpdate: can't fetch member: %w", err)
	}
	if member == nil || !utils.MemberHasRole(member, utils.TrackedBotRoleID) {
		w.untracked.SetDefault(userID, struct{}{})
		return nil
	}

	startTimer := time.Now()
	if _, err := w.as.Discord.ChannelMessageSend(utils.StatusChannelID, notice); err != nil {
		return fmt.Errorf("OnPresenceUpdate: can't post status: %w", err)
	}
	utils.Observe(w.as.MetricChans.DiscordSendMessage, startTimer)
	w.last.Set(userID, e.Status, cache.NoExpiration)
	return nil
}
