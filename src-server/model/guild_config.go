package model

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// Per-guild settings of the Realms Playerlist bot.
type GuildConfig struct {
	bun.BaseModel `bun:"table:realmguildconfig"`

	GuildID              string `bun:"guild_id,pk"`
	ClubID               string `bun:"club_id,nullzero,type:varchar(50)"`
	PlayerlistChan       string `bun:"playerlist_chan,nullzero"`
	RealmID              string `bun:"realm_id,nullzero,type:varchar(50)"`
	LivePlayerlist       bool   `bun:"live_playerlist,notnull,default:false"`
	RealmOfflineRole     string `bun:"realm_offline_role,nullzero"`
	WarningNotifications *bool  `bun:"warning_notifications,notnull,default:true"`
	FetchDevices         bool   `bun:"fetch_devices,notnull,default:false"`
	LiveOnlineChannel    string `bun:"live_online_channel,nullzero,type:varchar(75)"`
	PremiumCodeID        int64  `bun:"premium_code_id,nullzero"`

	PremiumCode *PremiumCode `bun:"rel:belongs-to,join:premium_code_id=id"`
}

// NewGuildConfig returns the settings a guild starts with.
func NewGuildConfig(guildID string) *GuildConfig {
	return &GuildConfig{
		GuildID: guildID,
	}
}

// Warns reports whether the guild gets warning notifications. Unset means
// the column default, which is on.
func (g *GuildConfig) Warns() bool {
	return g.WarningNotifications == nil || *g.WarningNotifications
}

func (g *GuildConfig) Upsert(ctx context.Context, db bun.IDB) error {
	if g.GuildID == "" {
		return fmt.Errorf("(*GuildConfig).Upsert: guild id is required")
	}

	if _, err := db.NewInsert().
		Model(g).
		On("CONFLICT (guild_id) DO UPDATE").
		Set("club_id = EXCLUDED.club_id").
		Set("playerlist_chan = EXCLUDED.playerlist_chan").
		Set("realm_id = EXCLUDED.realm_id").
		Set("live_playerlist = EXCLUDED.live_playerlist").
		Set("realm_offline_role = EXCLUDED.realm_offline_role").
		Set("warning_notifications = EXCLUDED.warning_notifications").
		Set("fetch_devices = EXCLUDED.fetch_devices").
		Set("live_online_channel = EXCLUDED.live_online_channel").
		Set("premium_code_id = EXCLUDED.premium_code_id").
		Exec(ctx); err != nil {
		return fmt.Errorf("(*GuildConfig).Upsert: %w", err)
	}

	return nil
}

// ClearGuildConfigsOfCode detaches the code from every guild using it and
// turns off the features that need premium.
func ClearGuildConfigsOfCode(ctx context.Context, db bun.IDB, codeID int64) error {
	if _, err := db.NewUpdate().
		Model((*GuildConfig)(nil)).
		Set("premium_code_id = NULL").
		Set("live_playerlist = ?", false).
		Set("fetch_devices = ?", false).
		Set("live_online_channel = NULL").
		Where("premium_code_id = ?", codeID).
		Exec(ctx); err != nil {
		return fmt.Errorf("ClearGuildConfigsOfCode: %w", err)
	}
	return nil
}
