package handler

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"stellarbot/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

const (
	pronounSelectID  = "pronounselect"
	pronounPrefix    = "pronoun:"
	roleButtonPrefix = "rolebutton|"
	roleButtonCD     = 3 * time.Second
)

var managerPermission int64 = discordgo.PermissionManageServer

// SelfRoles registers the commands posting the self role messages and the
// handlers of their components.
func SelfRoles(as *utils.AppState) {
	addSendCommand(as, "send-pronoun-select", "Sends the pronoun select menu.", pronounSelectMessage)
	addSendCommand(as, "send-other-roles", "Sends the other roles buttons.", otherRolesMessage)
	addSendCommand(as, "send-verification", "Sends the verification button.", verificationMessage)

	as.AddMsgComponentHandler(pronounSelectID, pronounSelectHandler(as))
	as.AddMsgComponentHandler(roleButtonPrefix, roleButtonHandler(as))
}

func addSendCommand(as *utils.AppState, id, description string, build func() *discordgo.MessageSend) {
	as.AddAppCmdHandler(id, func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		if err := utils.RequireManager(i); err != nil {
			return err
		}
		if _, err := as.Discord.ChannelMessageSendComplex(i.ChannelID, build()); err != nil {
			return fmt.Errorf("%s: can't send: %w", id, err)
		}
		return utils.InteractRespHiddenReply(s, i, "Sent!")
	})
	as.AddAppCmdInfo(id, &discordgo.ApplicationCommand{
		Name:                     id,
		Description:              description,
		DefaultMemberPermissions: &managerPermission,
	})
}

func pronounSelectMessage() *discordgo.MessageSend {
	options := make([]discordgo.SelectMenuOption, 0, len(utils.PronounRoles))
	for _, role := range utils.PronounRoles {
		options = append(options, discordgo.SelectMenuOption{
			Label: role.Name,
			Value: pronounPrefix + role.RoleID + "|" + role.Name,
		})
	}
	minValues := 0

	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title: "Pronouns",
			Description: "Select the pronouns you wish to have. They will appear in your profile as a bright green role.\n" +
				"Any old pronouns not re-selected will be removed.",
			Color: utils.EmbedColor,
		}},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					MenuType:    discordgo.StringSelectMenu,
					CustomID:    pronounSelectID,
					Placeholder: "Select your pronouns!",
					MinValues:   &minValues,
					MaxValues:   len(options),
					Options:     options,
				},
			}},
		},
	}
}

func otherRolesMessage() *discordgo.MessageSend {
	buttons := make([]discordgo.MessageComponent, 0, len(utils.OtherRoles))
	for _, role := range utils.OtherRoles {
		buttons = append(buttons, discordgo.Button{
			Label:    role.Label,
			Style:    discordgo.SecondaryButton,
			Emoji:    &discordgo.ComponentEmoji{Name: role.Emoji},
			CustomID: roleButtonPrefix + role.RoleID,
		})
	}

	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "Other Roles",
			Description: "Select any other roles you wish to have.",
			Color:       utils.EmbedColor,
		}},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: buttons},
		},
	}
}

func verificationMessage() *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "Verification",
			Description: "Click the button below to verify yourself. This will give you access to the rest of the server.",
			Color:       utils.EmbedColor,
		}},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Verify",
					Style:    discordgo.SuccessButton,
					Emoji:    &discordgo.ComponentEmoji{Name: "✅"},
					CustomID: roleButtonPrefix + utils.VerifiedRoleID,
				},
			}},
		},
	}
}

// PronounRoles works out the member's roles after picking the pronouns in
// values: every pronoun role is dropped, then the picked ones added back.
// It also returns the picked names, in order.
func PronounRoles(current []string, values []string) (roles []string, names []string, err error) {
	roles = slices.DeleteFunc(slices.Clone(current), isPronounRole)

	for _, value := range values {
		roleID, name, ok := strings.Cut(strings.TrimPrefix(value, pronounPrefix), "|")
		if !ok || !isPronounRole(roleID) {
			return nil, nil, utils.BadArgument("Unknown pronoun option. Please try again.")
		}
		if !slices.Contains(roles, roleID) {
			roles = append(roles, roleID)
		}
		names = append(names, "`"+name+"`")
	}
	return roles, names, nil
}

func isPronounRole(roleID string) bool {
	return slices.ContainsFunc(utils.PronounRoles, func(r utils.PronounRole) bool {
		return r.RoleID == roleID
	})
}

func pronounSelectHandler(as *utils.AppState) utils.InteractionHandler {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		if i.Member == nil || i.Member.User == nil {
			return utils.BadArgument("An error occured. Please try again.")
		}

		roles, names, err := PronounRoles(i.Member.Roles, i.MessageComponentData().Values)
		if err != nil {
			return err
		}
		if _, err := as.Discord.GuildMemberEdit(i.GuildID, i.Member.User.ID, &discordgo.GuildMemberParams{Roles: &roles}); err != nil {
			return fmt.Errorf("pronounSelectHandler: can't edit roles: %w", err)
		}

		if len(names) == 0 {
			return utils.InteractRespHiddenReply(s, i, "All pronouns removed.")
		}
		return utils.InteractRespHiddenReply(s, i, fmt.Sprintf("New pronouns: %s.", strings.Join(names, ", ")))
	}
}

// roles the buttons are allowed to hand out
func isSelfRole(roleID string) bool {
	return roleID == utils.VerifiedRoleID || slices.ContainsFunc(utils.OtherRoles, func(r utils.ButtonRole) bool {
		return r.RoleID == roleID
	})
}

// ToggleRole adds roleID to the member, or removes it if they have it.
// It returns whether the role was added.
func ToggleRole(as *utils.AppState, guildID string, member *discordgo.Member, roleID string) (bool, error) {
	if !isSelfRole(roleID) {
		return false, utils.BadArgument("That role can't be self-assigned.")
	}
	if utils.MemberHasRole(member, roleID) {
		if err := as.Discord.GuildMemberRoleRemove(guildID, member.User.ID, roleID); err != nil {
			return false, fmt.Errorf("ToggleRole: can't remove role: %w", err)
		}
		return false, nil
	}
	if err := as.Discord.GuildMemberRoleAdd(guildID, member.User.ID, roleID); err != nil {
		return false, fmt.Errorf("ToggleRole: can't add role: %w", err)
	}
	return true, nil
}

func roleButtonHandler(as *utils.AppState) utils.InteractionHandler {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		if i.Member == nil || i.Member.User == nil {
			return utils.BadArgument("An error occured. Please try again.")
		}
		if err := as.Cooldowns.UserCooldown(roleButtonPrefix, i.Member.User.ID, roleButtonCD); err != nil {
			return err
		}

		roleID := strings.TrimPrefix(i.MessageComponentData().CustomID, roleButtonPrefix)
		added, err := ToggleRole(as, i.GuildID, i.Member, roleID)
		if err != nil {
			return err
		}
		if added {
			return utils.InteractRespHiddenReply(s, i, fmt.Sprintf("Added <@&%s>.", roleID))
		}
		return utils.InteractRespHiddenReply(s, i, fmt.Sprintf("Removed <@&%s>.", roleID))
	}
}
