package listener

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"stellarbot/src-server/utils"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/atomic"
)

const watchingStatus = "over Sonic49's Bot Support"

type ReadySession interface {
	UpdateWatchStatus(idle int, name string) error
	Application(appID string) (*discordgo.Application, error)
}

// Ready sets the bot's status and tells the owner about (re)connects.
type Ready struct {
	as        *utils.AppState
	session   ReadySession
	connected atomic.Bool
}

func NewReady(as *utils.AppState, session ReadySession) *Ready {
	return &Ready{as: as, session: session}
}

func ReadyNotice(reconnect bool, at time.Time) string {
	word := "Connected"
	if reconnect {
		word = "Reconnected"
	}
	return fmt.Sprintf("%s at `%s`!", word, at.UTC().Format("01/02/06 15:04:05 UTC"))
}

func (r *Ready) OnReady(ctx context.Context, e *discordgo.Ready) error {
	if e.User != nil {
		slog.Info("logged in", "user", e.User.String(), "id", e.User.ID, "guilds", len(e.Guilds))
	}

	if err := r.session.UpdateWatchStatus(0, watchingStatus); err != nil {
		slog.Warn("OnReady: can't set status", "error", err)
	}

	if r.as.GetOwnerID() == "" {
		app, err := r.session.Application("@me")
		if err != nil {
			return fmt.Errorf("OnReady: can't fetch application: %w", err)
		}
		if app.Owner != nil {
			r.as.SetOwnerID(app.Owner.ID)
		}
	}

	reconnect := r.connected.Swap(true)
	if err := r.as.MsgToOwner(ReadyNotice(reconnect, time.Now())); err != nil {
		slog.Warn("OnReady: can't tell owner", "error", err)
	}
	return nil
}
