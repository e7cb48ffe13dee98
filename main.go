package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"stellarbot/src-server/handler"
	"stellarbot/src-server/listener"
	"stellarbot/src-server/metric"
	"stellarbot/src-server/model"
	"stellarbot/src-server/premium"
	"stellarbot/src-server/route"
	"stellarbot/src-server/scheduler"
	"stellarbot/src-server/utils"
	"stellarbot/src-server/vote"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
)

const voteQueueSize = 256

func init() {
	if err := godotenv.Load(); err != nil {
		slog.Info(err.Error())
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.RFC1123Z,
		}),
	))
}

func main() {
	// There are 3 important things (and others) inside the AppState:
	// - appCmdInfo: a map of all slash commands
	// - appCmdHandler, msgComponentHandler: maps of interaction handlers
	// - Events: the router gateway events go through
	as := utils.NewAppState()

	if err := model.CreateSchema(context.Background(), as.BunDB); err != nil {
		slog.Error("can't create database schema", "error", err)
		os.Exit(1)
	}

	// injecting interaction handlers into appCmdInfo, appCmdHandler in AppState
	handler.Ping(as)
	handler.About(as)
	handler.ResyncPremium(as)
	handler.SelfRoles(as)

	// gateway events go through the event router
	premium.Register(as)
	listener.Register(as)
	as.DgSession.AddHandler(func(s *discordgo.Session, e *discordgo.Ready) {
		as.DispatchEvent(utils.EventReady, e)
	})
	as.DgSession.AddHandler(func(s *discordgo.Session, e *discordgo.GuildCreate) {
		as.DispatchEvent(utils.EventGuildCreate, e)
	})
	as.DgSession.AddHandler(func(s *discordgo.Session, e *discordgo.GuildMemberAdd) {
		as.DispatchEvent(utils.EventMemberAdd, e)
	})
	as.DgSession.AddHandler(func(s *discordgo.Session, e *discordgo.GuildMemberUpdate) {
		as.DispatchEvent(utils.EventMemberUpdate, e)
	})
	as.DgSession.AddHandler(func(s *discordgo.Session, e *discordgo.GuildMemberRemove) {
		as.DispatchEvent(utils.EventMemberRemove, e)
	})
	as.DgSession.AddHandler(func(s *discordgo.Session, e *discordgo.PresenceUpdate) {
		as.DispatchEvent(utils.EventPresenceUpdate, e)
	})

	// tell discordgo how to handle interactions from Discord (w/ appCmdHandler)
	as.DgSession.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		execute := func(id string, h utils.InteractionHandler, ok bool) {
			if ok {
				if err := h(s, i); err != nil {
					utils.HandleInteractionError(as, s, i, id, err)
				}
				return
			}
			if err := utils.InteractRespHiddenReply(s, i, "Expired interaction"); err != nil {
				slog.Warn("can't respond", "error", err.Error())
			}
			slog.Debug("someone used an expired interaction", "user", utils.InteractionUserID(i), "custom_id", id)
		}

		switch i.Type {
		case discordgo.InteractionApplicationCommand: // slash commands
			id := i.ApplicationCommandData().Name
			h, ok := as.GetAppCmdHandler(id)
			execute(id, h, ok)
		case discordgo.InteractionMessageComponent: // buttons, dropdowns, etc
			id := i.MessageComponentData().CustomID
			h, ok := as.GetMsgComponentHandler(id)
			execute(id, h, ok)
		default:
			slog.Error("unknown interaction type", "type", i.Type)
		}
	})

	// open a connection to Discord
	if err := as.DgSession.Open(); err != nil {
		slog.Error("can't open discord session", "error", err)
		os.Exit(1)
	}
	defer as.DgSession.Close()

	// tell Discord what commands we have (w/ appCmdInfo)
	if _, err := as.DgSession.ApplicationCommandBulkOverwrite(
		as.Config.GetDiscordClientId(),
		as.Config.GetDiscordGuildID(),
		func() []*discordgo.ApplicationCommand {
			var cmds []*discordgo.ApplicationCommand
			as.IterateAppCmdInfo(func(k string, v *discordgo.ApplicationCommand) {
				cmds = append(cmds, v)
			})
			return cmds
		}()); err != nil {
		slog.Error("can't create slash commands", "error", err.Error())
	}

	// cleanup appCmdInfo from memory
	as.NukeAppCmdInfo()
	runtime.GC()

	go metric.Init(as)

	if _, err := scheduler.PremiumSweep(as); err != nil {
		slog.Error("can't schedule premium sweep", "error", err)
		os.Exit(1)
	}

	// closers run last registered first: the server stops taking votes
	// before the queue drains
	dispatcher := vote.NewDispatcher(as, voteQueueSize)
	go dispatcher.Run(context.Background())
	as.OnGracefulShutdown(dispatcher.Close)
	route.Serve(as, dispatcher)

	slog.Info("number of guilds", "guilds", len(as.DgSession.State.Guilds))
	slog.Info("app is now running, press Ctrl+C to exit")

	signal.Notify(as.AppCloseSignalChan, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-as.AppCloseSignalChan
	slog.Info("Gracefully shutting down...")
	as.GracefulShutdown()
}
