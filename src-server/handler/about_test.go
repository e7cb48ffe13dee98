package handler_test

import (
	"testing"
	"time"

	"stellarbot/src-server/handler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAboutEmbed(t *testing.T) {
	embed := handler.AboutEmbed(handler.AboutInfo{
		GuildName: "Stellarium",
		Servers:   1234,
		Commands:  7,
		StartTime: time.Unix(1700000000, 0),
		Revision:  "0123456789abcdef",
	})

	assert.Contains(t, embed.Description, "**Stellarium**")
	require.Len(t, embed.Fields, 2)
	stats := embed.Fields[0].Value
	assert.Contains(t, stats, "Servers: 1,234")
	assert.Contains(t, stats, "Commands: 7")
	assert.Contains(t, stats, "<t:1700000000:R>")
	assert.Contains(t, stats, "[0123456](")
	assert.Nil(t, embed.Thumbnail)
}

func TestAboutEmbedWithoutRevision(t *testing.T) {
	embed := handler.AboutEmbed(handler.AboutInfo{StartTime: time.Now()})
	assert.NotContains(t, embed.Fields[0].Value, "Commit Hash")
	assert.Contains(t, embed.Description, "this server")
}

func TestResyncReply(t *testing.T) {
	assert.Equal(t, "Done! Removed 0 code(s).", handler.ResyncReply(0))
	assert.Equal(t, "Done! Removed 3 code(s).", handler.ResyncReply(3))
}
