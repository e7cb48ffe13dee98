package utils_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"stellarbot/src-server/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserFacingError(t *testing.T) {
	now := time.Now()

	msg, report := utils.UserFacingError(fmt.Errorf("ping: %w", &utils.CooldownError{Remaining: 3 * time.Second}), now)
	assert.False(t, report)
	assert.Contains(t, msg, "You're doing that command too fast! Try again")

	msg, report = utils.UserFacingError(utils.BadArgument("Nope, %d", 2), now)
	assert.False(t, report)
	assert.Equal(t, "Nope, 2", msg)

	msg, report = utils.UserFacingError(utils.ErrMissingPermissions, now)
	assert.False(t, report)
	assert.Equal(t, "You do not have the proper permissions to use that command.", msg)

	msg, report = utils.UserFacingError(&discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusForbidden}}, now)
	assert.False(t, report)
	assert.Contains(t, msg, "I don't have the permissions")

	msg, report = utils.UserFacingError(errors.New("db is gone"), now)
	assert.True(t, report)
	assert.Equal(t, "An internal error has occurred. The bot owner has been notified.", msg)
}

func TestUserFacingErrorDiscordFailures(t *testing.T) {
	now := time.Now()

	// a failing Discord call after the reply was deferred still has to
	// reach the user and the owner
	serverErr := fmt.Errorf("resyncPremiumHandler: Resync: %w", &discordgo.RESTError{
		Response: &http.Response{StatusCode: http.StatusBadGateway, Status: "502 Bad Gateway"},
	})
	msg, report := utils.UserFacingError(serverErr, now)
	assert.True(t, report)
	assert.Equal(t, "An internal error has occurred. The bot owner has been notified.", msg)

	notFound := &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusNotFound}}
	msg, report = utils.UserFacingError(notFound, now)
	assert.True(t, report)
	assert.NotEmpty(t, msg)

	// a REST error without a response is still an internal error
	msg, report = utils.UserFacingError(&discordgo.RESTError{}, now)
	assert.True(t, report)
	assert.NotEmpty(t, msg)
}

func TestRequirePermissions(t *testing.T) {
	member := func(perms int64) *discordgo.InteractionCreate {
		return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
			Member: &discordgo.Member{User: &discordgo.User{ID: "1"}, Permissions: perms},
		}}
	}
	dm := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{User: &discordgo.User{ID: "2"}}}

	assert.NoError(t, utils.RequireAdmin(member(discordgo.PermissionAdministrator)))
	assert.ErrorIs(t, utils.RequireAdmin(member(discordgo.PermissionManageServer)), utils.ErrMissingPermissions)
	assert.ErrorIs(t, utils.RequireAdmin(dm), utils.ErrMissingPermissions)

	assert.NoError(t, utils.RequireManager(member(discordgo.PermissionManageServer)))
	assert.ErrorIs(t, utils.RequireManager(member(0)), utils.ErrMissingPermissions)

	assert.Equal(t, "1", utils.InteractionUserID(member(0)))
	assert.Equal(t, "2", utils.InteractionUserID(dm))
}

func TestCooldowns(t *testing.T) {
	c := utils.NewCooldowns()

	require.NoError(t, c.UserCooldown("ping", "1", time.Minute))
	err := c.UserCooldown("ping", "1", time.Minute)
	var cooldownErr *utils.CooldownError
	require.ErrorAs(t, err, &cooldownErr)
	assert.Greater(t, cooldownErr.Remaining, 50*time.Second)

	assert.NoError(t, c.UserCooldown("ping", "2", time.Minute), "per user")
	assert.NoError(t, c.UserCooldown("about", "1", time.Minute), "per command")

	require.NoError(t, c.Use("short", 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)
	assert.NoError(t, c.Use("short", 10*time.Millisecond))
}
