package handler

import (
	"context"
	"fmt"
	"log/slog"

	"stellarbot/src-server/premium"
	"stellarbot/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

var adminPermission int64 = discordgo.PermissionAdministrator

func ResyncPremium(as *utils.AppState) {
	id := "resync-premium"
	as.AddAppCmdHandler(id, resyncPremiumHandler(as))
	as.AddAppCmdInfo(id, &discordgo.ApplicationCommand{
		Name:                     id,
		Description:              "Deletes Ko-fi premium codes whose owner no longer has the premium role.",
		DefaultMemberPermissions: &adminPermission,
	})
}

func ResyncReply(removed int) string {
	return fmt.Sprintf("Done! Removed %d code(s).", removed)
}

func resyncPremiumHandler(as *utils.AppState) utils.InteractionHandler {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		if err := utils.RequireAdmin(i); err != nil {
			return err
		}
		// listing every role holder can take a while
		if err := utils.InteractDeferHidden(s, i); err != nil {
			return fmt.Errorf("resyncPremiumHandler: can't defer: %w", err)
		}

		removed, err := premium.Resync(context.Background(), as)
		if err != nil {
			return fmt.Errorf("resyncPremiumHandler: %w", err)
		}
		slog.Info("premium resync done", "removed", removed, "by", utils.InteractionUserID(i))

		return utils.InteractEditDeferred(s, i, ResyncReply(removed))
	}
}
