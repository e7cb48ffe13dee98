package utils

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"syscall"
	"time"

	"stellarbot/src-server/store"

	"github.com/bwmarrin/discordgo"
	"github.com/patrickmn/go-cache"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

type InteractionHandler func(s *discordgo.Session, i *discordgo.InteractionCreate) error

type AppState struct {
	Config    *Config
	RawDB     *sql.DB
	BunDB     *bun.DB
	DgSession *discordgo.Session
	// REST calls go through this; it's DgSession outside of tests
	Discord     Discord
	Markers     store.Markers
	Cooldowns   *Cooldowns
	MetricChans *Metric
	Events      *EventRouter

	startTime time.Time

	ownerMu sync.RWMutex
	ownerID string

	handlerMu sync.RWMutex
	// will be send to Discord
	appCmdInfo map[string]*discordgo.ApplicationCommand
	// handling commands from Discord WSAPI
	appCmdHandler map[string]InteractionHandler
	// same as above but for msg components (buttons, dropdowns, etc),
	// keyed by custom id or by the part of it before "|"
	msgComponentHandler map[string]InteractionHandler

	AppCloseSignalChan      chan os.Signal
	gracefulShutdownMu      sync.Mutex
	gracefulShutdownChans   []chan struct{}
	gracefulShutdownClosers []func()
}

// NewAppState wires everything from the environment. It exits the process
// when the database or Discord session can't be set up.
func NewAppState() *AppState {
	config := NewConfig()

	rawDB, bunDB, err := OpenDatabase(config.GetDatabaseURL())
	if err != nil {
		slog.Error("cannot open database", "error", err)
		os.Exit(1)
	}
	bunDB.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithVerbose(true),
		bundebug.FromEnv("BUNDEBUG"),
	))

	dgSession, err := discordgo.New("Bot " + config.GetDiscordAppToken())
	if err != nil {
		slog.Error("cannot create discord session", "error", err)
		os.Exit(1)
	}
	dgSession.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildPresences
	dgSession.State.TrackMembers = true

	markers, err := openMarkers(config.GetRedisURL())
	if err != nil {
		slog.Error("cannot connect to redis", "error", err)
		os.Exit(1)
	}

	as := New(config, bunDB, dgSession, markers)
	as.RawDB = rawDB
	as.DgSession = dgSession
	as.OnGracefulShutdown(func() {
		if err := markers.Close(); err != nil {
			slog.Warn("can't close marker store", "error", err)
		}
		if err := bunDB.Close(); err != nil {
			slog.Warn("can't close database", "error", err)
		}
	})
	return as
}

// New builds an AppState from already opened dependencies.
func New(config *Config, db *bun.DB, discord Discord, markers store.Markers) *AppState {
	return &AppState{
		Config:      config,
		BunDB:       db,
		Discord:     discord,
		Markers:     markers,
		Cooldowns:   NewCooldowns(),
		MetricChans: NewMetric(),
		Events:      NewEventRouter(),

		startTime: time.Now(),
		ownerID:   config.GetOwnerID(),

		appCmdInfo:          make(map[string]*discordgo.ApplicationCommand),
		appCmdHandler:       make(map[string]InteractionHandler),
		msgComponentHandler: make(map[string]InteractionHandler),

		AppCloseSignalChan: make(chan os.Signal, 1),
	}
}

// OpenDatabase opens Postgres for postgres:// urls and sqlite for anything
// else.
func OpenDatabase(url string) (*sql.DB, *bun.DB, error) {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		rawDB := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(url)))
		return rawDB, bun.NewDB(rawDB, pgdialect.New()), nil
	}

	rawDB, err := sql.Open(sqliteshim.ShimName, url)
	if err != nil {
		return nil, nil, fmt.Errorf("OpenDatabase: %w", err)
	}
	rawDB.SetMaxIdleConns(8)
	return rawDB, bun.NewDB(rawDB, sqlitedialect.New()), nil
}

func openMarkers(redisURL string) (store.Markers, error) {
	if redisURL == "" {
		slog.Info("REDIS_URL is not set, keeping markers in memory")
		return store.NewMemory(), nil
	}
	markers, err := store.NewRedis(context.Background(), redisURL)
	if err != nil {
		return nil, err
	}
	return markers, nil
}

func (as *AppState) GetUptime() time.Duration {
	return time.Since(as.startTime)
}

func (as *AppState) GetStartTime() time.Time {
	return as.startTime
}

// GetOwnerID returns the bot owner, blank until the first Ready unless
// OWNER_ID is set.
func (as *AppState) GetOwnerID() string {
	as.ownerMu.RLock()
	defer as.ownerMu.RUnlock()
	return as.ownerID
}

func (as *AppState) SetOwnerID(id string) {
	as.ownerMu.Lock()
	defer as.ownerMu.Unlock()
	as.ownerID = id
}

func (as *AppState) AddAppCmdInfo(id string, info *discordgo.ApplicationCommand) {
	as.handlerMu.Lock()
	defer as.handlerMu.Unlock()
	as.appCmdInfo[id] = info
}

func (as *AppState) AddAppCmdHandler(id string, handler InteractionHandler) {
	as.handlerMu.Lock()
	defer as.handlerMu.Unlock()
	as.appCmdHandler[id] = handler
}

// AddMsgComponentHandler registers a handler for a custom id. An id ending
// in "|" matches every custom id with that prefix.
func (as *AppState) AddMsgComponentHandler(id string, handler InteractionHandler) {
	as.handlerMu.Lock()
	defer as.handlerMu.Unlock()
	as.msgComponentHandler[id] = handler
}

func (as *AppState) GetAppCmdHandler(id string) (InteractionHandler, bool) {
	as.handlerMu.RLock()
	defer as.handlerMu.RUnlock()
	handler, ok := as.appCmdHandler[id]
	return handler, ok
}

func (as *AppState) GetMsgComponentHandler(customID string) (InteractionHandler, bool) {
	as.handlerMu.RLock()
	defer as.handlerMu.RUnlock()
	if handler, ok := as.msgComponentHandler[customID]; ok {
		return handler, true
	}
	if prefix, _, found := strings.Cut(customID, "|"); found {
		handler, ok := as.msgComponentHandler[prefix+"|"]
		return handler, ok
	}
	return nil, false
}

func (as *AppState) IterateAppCmdInfo(fn func(k string, v *discordgo.ApplicationCommand)) {
	as.handlerMu.RLock()
	defer as.handlerMu.RUnlock()
	for k, v := range as.appCmdInfo {
		fn(k, v)
	}
}

func (as *AppState) CountAppCmds() int {
	as.handlerMu.RLock()
	defer as.handlerMu.RUnlock()
	return len(as.appCmdHandler)
}

// NukeAppCmdInfo drops the command definitions once they're sent to Discord.
func (as *AppState) NukeAppCmdInfo() {
	as.handlerMu.Lock()
	defer as.handlerMu.Unlock()
	as.appCmdInfo = make(map[string]*discordgo.ApplicationCommand)
}

// CreateGracefulShutdownChan returns a channel closed on GracefulShutdown.
func (as *AppState) CreateGracefulShutdownChan() <-chan struct{} {
	as.gracefulShutdownMu.Lock()
	defer as.gracefulShutdownMu.Unlock()
	ch := make(chan struct{})
	as.gracefulShutdownChans = append(as.gracefulShutdownChans, ch)
	return ch
}

// OnGracefulShutdown registers fn to run on GracefulShutdown, last
// registered first.
func (as *AppState) OnGracefulShutdown(fn func()) {
	as.gracefulShutdownMu.Lock()
	defer as.gracefulShutdownMu.Unlock()
	as.gracefulShutdownClosers = append(as.gracefulShutdownClosers, fn)
}

func (as *AppState) GracefulShutdown() {
	as.gracefulShutdownMu.Lock()
	chans := as.gracefulShutdownChans
	closers := as.gracefulShutdownClosers
	as.gracefulShutdownChans = nil
	as.gracefulShutdownClosers = nil
	as.gracefulShutdownMu.Unlock()

	for _, ch := range chans {
		close(ch)
	}
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
}

// Shutdown asks main to stop the app.
func (as *AppState) Shutdown() {
	select {
	case as.AppCloseSignalChan <- syscall.SIGTERM:
	default:
	}
}

// NewCache is the go-cache config every in-process cache of the bot uses.
func NewCache(defaultExpiration time.Duration) *cache.Cache {
	return cache.New(defaultExpiration, 10*time.Minute)
}
