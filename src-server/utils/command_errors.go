package utils

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
)

var ErrMissingPermissions = errors.New("missing permissions")

// The user hit a cooldown; Remaining is how long until they can retry.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("on cooldown for %s", e.Remaining)
}

// The user gave an argument the command can't work with. The message is
// shown to them as is.
type BadArgumentError struct {
	Msg string
}

func (e *BadArgumentError) Error() string {
	return e.Msg
}

func BadArgument(format string, args ...any) error {
	return &BadArgumentError{Msg: fmt.Sprintf(format, args...)}
}

const (
	internalErrorMsg = "An internal error has occurred. The bot owner has been notified."
	botForbiddenMsg  = "I don't have the permissions to do that. Please let a server admin know."
)

// UserFacingError picks what to tell the user about err, and whether err
// needs to be reported to the owner.
func UserFacingError(err error, now time.Time) (msg string, report bool) {
	var cooldownErr *CooldownError
	var badArgErr *BadArgumentError
	var restErr *discordgo.RESTError

	switch {
	case errors.As(err, &cooldownErr):
		return fmt.Sprintf(
			"You're doing that command too fast! Try again %s.",
			humanize.Time(now.Add(cooldownErr.Remaining)),
		), false
	case errors.As(err, &badArgErr):
		return badArgErr.Msg, false
	case errors.Is(err, ErrMissingPermissions):
		return "You do not have the proper permissions to use that command.", false
	case errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusForbidden:
		// the bot lacks a permission or sits below the role it touches
		return botForbiddenMsg, false
	default:
		return internalErrorMsg, true
	}
}

// HandleInteractionError tells the user what went wrong with their command,
// reporting unexpected errors to the owner.
func HandleInteractionError(as *AppState, s *discordgo.Session, i *discordgo.InteractionCreate, id string, err error) {
	msg, report := UserFacingError(err, time.Now())
	switch {
	case report:
		as.ReportError(err, "interaction "+id)
	default:
		slog.Debug("user error", "interaction", id, "error", err)
	}

	embeds := []*discordgo.MessageEmbed{ErrorEmbed(msg)}
	if respErr := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags:  discordgo.MessageFlagsEphemeral,
			Embeds: embeds,
		},
	}); respErr != nil {
		// already responded or deferred
		if _, err := s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
			Flags:  discordgo.MessageFlagsEphemeral,
			Embeds: embeds,
		}); err != nil {
			slog.Warn("HandleInteractionError: can't tell user about error", "interaction", id, "error", err)
		}
	}
}

func ErrorEmbed(msg string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Error",
		Description: msg,
		Color:       0xD50000,
	}
}

// RequireAdmin fails with ErrMissingPermissions unless the interaction
// comes from a guild member with Administrator.
func RequireAdmin(i *discordgo.InteractionCreate) error {
	if i.Member == nil || i.Member.Permissions&discordgo.PermissionAdministrator == 0 {
		return ErrMissingPermissions
	}
	return nil
}

// RequireManager is RequireAdmin that also accepts Manage Server.
func RequireManager(i *discordgo.InteractionCreate) error {
	if i.Member == nil {
		return ErrMissingPermissions
	}
	if i.Member.Permissions&(discordgo.PermissionAdministrator|discordgo.PermissionManageServer) == 0 {
		return ErrMissingPermissions
	}
	return nil
}

// InteractionUserID is the id of whoever triggered the interaction, in a
// guild or in DMs.
func InteractionUserID(i *discordgo.InteractionCreate) string {
	switch {
	case i.Member != nil && i.Member.User != nil:
		return i.Member.User.ID
	case i.User != nil:
		return i.User.ID
	default:
		return ""
	}
}
