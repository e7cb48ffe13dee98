// This package contains all the Discord Interaction handlers
//
// There should be 2 functions per handler, one for adding the handler &
// information to send to Discord (public), and one for handling the
// interaction (private). Logic worth testing on its own lives in plain
// functions next to them.
//
// Return user-facing errors (utils.BadArgument, utils.CooldownError,
// utils.ErrMissingPermissions) for the user's fault; anything else gets
// reported to the owner.
package handler

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"stellarbot/src-server/utils"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	sourceURL  = "https://github.com/Astrea-Stellarium-Labs/StellariumLabsBot"
	supportURL = "https://discord.gg/NSdetwGjpK"
)

var printer = message.NewPrinter(language.English)

type AboutInfo struct {
	GuildName string
	AvatarURL string
	Servers   int
	Commands  int
	StartTime time.Time
	Revision  string
}

func About(as *utils.AppState) {
	id := "about"
	as.AddAppCmdHandler(id, aboutHandler(as))
	as.AddAppCmdInfo(id, &discordgo.ApplicationCommand{
		Name:        id,
		Description: "Gives information about the bot.",
	})
}

func aboutHandler(as *utils.AppState) utils.InteractionHandler {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		info := AboutInfo{
			Servers:   len(s.State.Guilds),
			Commands:  as.CountAppCmds(),
			StartTime: as.GetStartTime(),
			Revision:  revision(),
		}
		if guild, err := s.State.Guild(as.Config.GetDiscordGuildID()); err == nil {
			info.GuildName = guild.Name
		}
		if s.State.User != nil {
			info.AvatarURL = s.State.User.AvatarURL("")
		}

		return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Embeds: []*discordgo.MessageEmbed{AboutEmbed(info)},
			},
		})
	}
}

func AboutEmbed(info AboutInfo) *discordgo.MessageEmbed {
	guildName := info.GuildName
	if guildName == "" {
		guildName = "this server"
	}

	stats := []string{
		printer.Sprintf("Servers: %d", info.Servers),
		printer.Sprintf("Commands: %d", info.Commands),
		fmt.Sprintf("Startup Time: <t:%d:R>", info.StartTime.Unix()),
	}
	if info.Revision != "" {
		short := info.Revision[:min(7, len(info.Revision))]
		stats = append(stats, fmt.Sprintf("Commit Hash: [%s](%s/commit/%s)", short, sourceURL, info.Revision))
	}
	stats = append(stats, "Made By: [AstreaTSS](https://github.com/AstreaTSS)")

	embed := &discordgo.MessageEmbed{
		Title: "About",
		Color: utils.EmbedColor,
		Description: fmt.Sprintf(
			"Hello! I'm the helper bot for **%s**, doing various things around the server. "+
				"I probably don't have anything useful for you, but feel free to poke around!",
			guildName,
		),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Stats:", Value: strings.Join(stats, "\n"), Inline: true},
			{
				Name:   "Links:",
				Value:  fmt.Sprintf("Support Server: [Link](%s)\nSource Code: [Link](%s)", supportURL, sourceURL),
				Inline: true,
			},
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if info.AvatarURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: info.AvatarURL}
	}
	return embed
}

// vcs revision stamped by the go toolchain, empty outside a git checkout
func revision() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range bi.Settings {
		if setting.Key == "vcs.revision" {
			return setting.Value
		}
	}
	return ""
}
