// Package premium keeps the premium role in line with the premium codes in
// the database.
//
// The role is the source of truth for codes bought through Ko-fi: losing
// the role (or leaving the server) deletes the code. Codes with a customer
// id come from Stripe and are only ever touched by the dashboard.
package premium

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"stellarbot/src-server/metric"
	"stellarbot/src-server/model"
	"stellarbot/src-server/store"
	"stellarbot/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

const (
	reasonRoleRemoved = "role_removed"
	reasonMemberLeft  = "member_left"
	reasonResync      = "resync"

	// long enough to count as once; bounded so Redis doesn't keep one key
	// per member forever
	noticeTTL = 365 * 24 * time.Hour
)

var (
	noCodeNotice = fmt.Sprintf(`
Hello! Thanks for picking up the Premium Supporter role. It looks like you don't have a Realms Playerlist Premium code yet, so here's how to get one:

- If you used Ko-Fi, go to <#%s> and open a ticket, as *you will not get the code otherwise.*
- If you used Stripe, you should have gotten the code when you purchased Premium. If you somehow didn't, please email discord@astrea.cc right away.
- Premium can also be managed through the dashboard: https://rpldash.astrea.cc/premium/
`, utils.TicketChannelID)
)

// Register hooks the premium watch into the gateway event router.
func Register(as *utils.AppState) {
	as.Events.On(utils.EventMemberUpdate, "premium role watch", utils.Typed(
		func(ctx context.Context, e *discordgo.GuildMemberUpdate) error {
			return OnMemberUpdate(ctx, as, e)
		},
	))
	as.Events.On(utils.EventMemberAdd, "premium join", utils.Typed(
		func(ctx context.Context, e *discordgo.GuildMemberAdd) error {
			return OnMemberJoin(ctx, as, e.Member)
		},
	))
	as.Events.On(utils.EventMemberRemove, "premium leave", utils.Typed(
		func(ctx context.Context, e *discordgo.GuildMemberRemove) error {
			return OnMemberLeave(ctx, as, e.Member)
		},
	))
}

func isHomeGuild(as *utils.AppState, member *discordgo.Member) bool {
	return member != nil && member.User != nil && member.GuildID == as.Config.GetDiscordGuildID()
}

// OnMemberUpdate reacts to the premium role being added or removed.
func OnMemberUpdate(ctx context.Context, as *utils.AppState, e *discordgo.GuildMemberUpdate) error {
	if !isHomeGuild(as, e.Member) {
		return nil
	}
	if e.BeforeUpdate == nil {
		// Without the old roles there's no telling what changed. Deleting
		// the codes of someone without the role is a no-op when there
		// are none, so that case is always handled.
		if utils.MemberHasRole(e.Member, utils.PremiumRoleID) {
			slog.Debug("member update without cached member", "user", e.User.ID)
			return nil
		}
		return OnRoleRemoved(ctx, as, e.User.ID)
	}

	hadRole := utils.MemberHasRole(e.BeforeUpdate, utils.PremiumRoleID)
	hasRole := utils.MemberHasRole(e.Member, utils.PremiumRoleID)
	switch {
	case hadRole && !hasRole:
		return OnRoleRemoved(ctx, as, e.User.ID)
	case !hadRole && hasRole:
		return OnRoleAdded(ctx, as, e.User.ID)
	default:
		return nil
	}
}

// OnRoleRemoved deletes the user's Ko-fi codes.
func OnRoleRemoved(ctx context.Context, as *utils.AppState, userID string) error {
	if err := deleteCodesOfUser(ctx, as, userID, reasonRoleRemoved); err != nil {
		return fmt.Errorf("OnRoleRemoved: %w", err)
	}
	return nil
}

// OnRoleAdded tells users who got the role without having a code how to
// get one. They're told once; the marker outlives restarts when Redis
// backs the marker store.
func OnRoleAdded(ctx context.Context, as *utils.AppState, userID string) error {
	startTimer := time.Now()
	hasCode, err := model.HasPremiumCode(ctx, as.BunDB, userID)
	utils.Observe(as.MetricChans.DatabaseRead, startTimer)
	if err != nil {
		return fmt.Errorf("OnRoleAdded: %w", err)
	}
	if hasCode {
		return nil
	}

	first, err := as.Markers.Mark(ctx, store.PremiumNoticeKey(userID), noticeTTL)
	if err != nil {
		return fmt.Errorf("OnRoleAdded: %w", err)
	}
	if first {
		utils.SendDM(as.Discord, userID, noCodeNotice)
	}
	return nil
}

// OnMemberJoin gives the premium roles back to returning Stripe customers.
func OnMemberJoin(ctx context.Context, as *utils.AppState, member *discordgo.Member) error {
	if !isHomeGuild(as, member) {
		return nil
	}

	startTimer := time.Now()
	hasExternal, err := model.HasExternalPremiumCode(ctx, as.BunDB, member.User.ID)
	utils.Observe(as.MetricChans.DatabaseRead, startTimer)
	if err != nil {
		return fmt.Errorf("OnMemberJoin: %w", err)
	}
	if !hasExternal {
		return nil
	}

	for _, roleID := range []string{utils.PremiumRoleID, utils.SupporterRoleID} {
		if err := as.Discord.GuildMemberRoleAdd(member.GuildID, member.User.ID, roleID); err != nil {
			return fmt.Errorf("OnMemberJoin: can't add role %s: %w", roleID, err)
		}
	}
	return nil
}

// OnMemberLeave deletes the Ko-fi codes of whoever left.
func OnMemberLeave(ctx context.Context, as *utils.AppState, member *discordgo.Member) error {
	if !isHomeGuild(as, member) {
		return nil
	}
	if err := deleteCodesOfUser(ctx, as, member.User.ID, reasonMemberLeft); err != nil {
		return fmt.Errorf("OnMemberLeave: %w", err)
	}
	return nil
}

// Sweep takes the premium role from members who have no active code and
// joined longer than the grace period ago. The database isn't touched.
func Sweep(ctx context.Context, as *utils.AppState, now time.Time) (int, error) {
	guildID := as.Config.GetDiscordGuildID()

	holders, err := utils.RoleHolders(as.Discord, guildID, utils.PremiumRoleID)
	if err != nil {
		return 0, fmt.Errorf("Sweep: %w", err)
	}

	startTimer := time.Now()
	active, err := model.ActivePremiumUserIDs(ctx, as.BunDB, now)
	utils.Observe(as.MetricChans.DatabaseRead, startTimer)
	if err != nil {
		return 0, fmt.Errorf("Sweep: %w", err)
	}

	cutoff := now.Add(-as.Config.GetPremiumGracePeriod())
	seen := make(map[string]struct{}, len(holders))
	removed := 0
	var errs []error
	for _, member := range holders {
		if member.User == nil {
			continue
		}
		if _, ok := seen[member.User.ID]; ok {
			continue
		}
		seen[member.User.ID] = struct{}{}

		if _, ok := active[member.User.ID]; ok {
			continue
		}
		if !member.JoinedAt.Before(cutoff) {
			continue
		}

		if err := as.Discord.GuildMemberRoleRemove(guildID, member.User.ID, utils.PremiumRoleID); err != nil {
			errs = append(errs, fmt.Errorf("can't remove role from %s: %w", member.User.ID, err))
			continue
		}
		removed++
		metric.PremiumRolesRemoved.Inc()
		slog.Info("premium role removed", "user", member.User.ID)
	}

	if err := errors.Join(errs...); err != nil {
		return removed, fmt.Errorf("Sweep: %w", err)
	}
	return removed, nil
}

// Resync deletes every Ko-fi code whose owner is neither a premium role
// holder nor the bot owner. It returns how many codes were deleted.
func Resync(ctx context.Context, as *utils.AppState) (int, error) {
	ownerID := as.GetOwnerID()
	if ownerID == "" {
		return 0, fmt.Errorf("Resync: bot owner is unknown")
	}

	holders, err := utils.RoleHolders(as.Discord, as.Config.GetDiscordGuildID(), utils.PremiumRoleID)
	if err != nil {
		return 0, fmt.Errorf("Resync: %w", err)
	}
	keep := make([]string, 0, len(holders)+1)
	for _, member := range holders {
		if member.User != nil {
			keep = append(keep, member.User.ID)
		}
	}
	keep = append(keep, ownerID)

	startTimer := time.Now()
	codes, err := model.PremiumCodesNotHeldBy(ctx, as.BunDB, keep)
	utils.Observe(as.MetricChans.DatabaseRead, startTimer)
	if err != nil {
		return 0, fmt.Errorf("Resync: %w", err)
	}

	deleted, err := deleteCodes(ctx, as, codes, reasonResync)
	if err != nil {
		return deleted, fmt.Errorf("Resync: %w", err)
	}
	return deleted, nil
}

func deleteCodesOfUser(ctx context.Context, as *utils.AppState, userID, reason string) error {
	startTimer := time.Now()
	externallyManaged := false
	codes, err := model.PremiumCodesOfUser(ctx, as.BunDB, userID, &externallyManaged)
	utils.Observe(as.MetricChans.DatabaseRead, startTimer)
	if err != nil {
		return err
	}
	_, err = deleteCodes(ctx, as, codes, reason)
	return err
}

func deleteCodes(ctx context.Context, as *utils.AppState, codes []*model.PremiumCode, reason string) (int, error) {
	deleted := 0
	for _, code := range codes {
		if code.IsExternallyManaged() {
			continue
		}
		startTimer := time.Now()
		if err := code.Delete(ctx, as.BunDB); err != nil {
			return deleted, err
		}
		utils.Observe(as.MetricChans.DatabaseWrite, startTimer)
		deleted++
		metric.PremiumCodesDeleted.WithLabelValues(reason).Inc()
		slog.Info("premium code deleted", "code_id", code.ID, "user", code.UserID, "reason", reason)
	}
	return deleted, nil
}
