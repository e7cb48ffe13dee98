package utils

// Snowflakes of the support server. These only make sense for the
// deployment this bot runs in.
const (
	PremiumRoleID   = "1007868499772846081"
	SupporterRoleID = "987447832715857961"

	VoteRoleID    = "1122748827649192027"
	VoteChannelID = "1122755262466498590"

	// Realms Playerlist, the bot most votes are for
	PlayerlistBotID = "725483868777611275"

	TrackedBotRoleID = "775913721092374528"
	StatusChannelID  = "952033760931610624"

	VerifyChannelID = "1132483624726429696"
	VerifiedRoleID  = "775914041440337940"
	TicketChannelID = "1029164782617632768"
)

const EmbedColor = 0x7DB9F2

type PronounRole struct {
	Name   string
	RoleID string
}

// Pronoun roles offered by the pronoun select menu, in display order.
var PronounRoles = []PronounRole{
	{"She/Her", "993731445308805180"},
	{"It/Its", "993731485959995462"},
	{"He/Him", "993731511335538719"},
	{"They/Them", "993731574157803661"},
	{"Neopronouns", "993731619666022402"},
	{"Any Pronouns", "993731664322764892"},
	{"Ask for Pronouns", "993731692667863060"},
}

type ButtonRole struct {
	Label  string
	Emoji  string
	RoleID string
}

// Toggleable roles offered as buttons.
var OtherRoles = []ButtonRole{
	{"Realms Playerlist News Ping", "⛏", "993730531831320586"},
	{"GitHub Log Viewer", "📃", "1131832642476724255"},
}
