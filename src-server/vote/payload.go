package vote

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"stellarbot/src-server/utils"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
)

var (
	json     = jsoniter.ConfigCompatibleWithStandardLibrary
	validate = validator.New()

	ErrInvalidPayload = errors.New("invalid vote payload")
)

// A vote normalized from whichever listing site sent it.
type Vote struct {
	UserID   string
	BotID    string
	SiteName string
	VoteURL  string
	// how to show the user when Discord doesn't know them
	Username string
	// a Top.gg vote for Realms Playerlist, which unlocks perks there
	MarksVoted bool
}

func decode(body io.Reader, payload any) error {
	if err := json.NewDecoder(body).Decode(payload); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if err := validate.Struct(payload); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return nil
}

type topggPayload struct {
	Bot       string `json:"bot" validate:"required,numeric"`
	User      string `json:"user" validate:"required,numeric"`
	Type      string `json:"type" validate:"required,oneof=upvote test"`
	IsWeekend bool   `json:"isWeekend"`
	Query     string `json:"query"`
}

func ParseTopgg(body io.Reader) (Vote, error) {
	var p topggPayload
	if err := decode(body, &p); err != nil {
		return Vote{}, err
	}
	return Vote{
		UserID:     p.User,
		BotID:      p.Bot,
		SiteName:   "Top.gg",
		VoteURL:    "https://top.gg/bot/" + p.Bot,
		Username:   "<@" + p.User + ">",
		MarksVoted: p.Bot == utils.PlayerlistBotID && p.Type != "test",
	}, nil
}

type dblPayload struct {
	ID       string `json:"id" validate:"required,numeric"`
	Username string `json:"username"`
	Admin    bool   `json:"admin"`
}

// Discord Bot List only has the one bot on this route.
func ParseDBL(body io.Reader) (Vote, error) {
	var p dblPayload
	if err := decode(body, &p); err != nil {
		return Vote{}, err
	}
	username := "<@" + p.ID + ">"
	if p.Username != "" {
		username += " (**@" + p.Username + "**)"
	}
	return Vote{
		UserID:   p.ID,
		BotID:    utils.PlayerlistBotID,
		SiteName: "Discord Bot List",
		VoteURL:  "https://discordbotlist.com/bots/realms-playerlist-bot",
		Username: username,
	}, nil
}

type discordsComPayload struct {
	User string `json:"user" validate:"required,numeric"`
	Bot  string `json:"bot"`
	Type string `json:"type"`
}

// Discords.com sometimes sends the bot's slug instead of its id.
func ParseDiscordsCom(body io.Reader) (Vote, error) {
	var p discordsComPayload
	if err := decode(body, &p); err != nil {
		return Vote{}, err
	}
	botID := strings.TrimSpace(p.Bot)
	if validate.Var(botID, "required,numeric") != nil {
		botID = utils.PlayerlistBotID
	}
	return Vote{
		UserID:   p.User,
		BotID:    botID,
		SiteName: "Discords.com",
		VoteURL:  "https://discords.com/bots/bot/" + botID,
		Username: "<@" + p.User + ">",
	}, nil
}

// A listing site that posts votes to us.
type Site struct {
	// metric label
	Name   string
	Path   string
	Secret func(*utils.Config) string
	Parse  func(io.Reader) (Vote, error)
}

var Sites = []Site{
	{Name: "topgg", Path: "/topgg", Secret: (*utils.Config).GetTopggAuth, Parse: ParseTopgg},
	{Name: "dbl", Path: "/dbl_rpl", Secret: (*utils.Config).GetDBLAuth, Parse: ParseDBL},
	{Name: "discordscom", Path: "/discordscom", Secret: (*utils.Config).GetDiscordsComAuth, Parse: ParseDiscordsCom},
}
