package handler

import (
	"fmt"
	"runtime"
	"time"

	"stellarbot/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

const pingCooldown = 5 * time.Second

func Ping(as *utils.AppState) {
	id := "ping"
	as.AddAppCmdHandler(id, pingHandler(as))
	as.AddAppCmdInfo(id, &discordgo.ApplicationCommand{
		Name:        id,
		Description: "Pings the bot. Great way of finding out if the bot's working correctly, but has no real use.",
	})
}

func pingHandler(as *utils.AppState) utils.InteractionHandler {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		if err := as.Cooldowns.UserCooldown("ping", utils.InteractionUserID(i), pingCooldown); err != nil {
			return err
		}

		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		memUsage := float64(m.Sys) / 1024 / 1024

		embeds := []*discordgo.MessageEmbed{
			{
				Title: "Pong!",
				Color: utils.EmbedColor,
				Fields: []*discordgo.MessageEmbedField{
					{
						Name:  "Uptime",
						Value: as.GetUptime().Round(time.Second).String(),
					},
					{
						Name:   "Latency",
						Value:  fmt.Sprintf("%dms", s.HeartbeatLatency().Milliseconds()),
						Inline: true,
					},
					{
						Name:   "Go version",
						Value:  runtime.Version(),
						Inline: true,
					},
					{
						Name:   "Memory",
						Value:  fmt.Sprintf("%.2fMB", memUsage),
						Inline: true,
					},
				},
			},
		}

		startTimer := time.Now()
		if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Flags:  discordgo.MessageFlagsEphemeral,
				Embeds: embeds,
			},
		}); err != nil {
			return fmt.Errorf("pingHandler: can't respond: %w", err)
		}
		utils.Observe(as.MetricChans.DiscordSendMessage, startTimer)
		return nil
	}
}
