package utils_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"stellarbot/src-server/utils"
	"stellarbot/src-server/utils/discordtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringSplit(t *testing.T) {
	assert.Equal(t, []string{"abcd", "ef"}, utils.StringSplit("abcdef", 4))
	assert.Equal(t, []string{"abc"}, utils.StringSplit("abc", 4))
	assert.Equal(t, []string{""}, utils.StringSplit("", 4))

	// never cuts a rune in half
	parts := utils.StringSplit(strings.Repeat("é", 5), 3)
	for _, part := range parts {
		assert.True(t, utf8.ValidString(part), part)
		assert.LessOrEqual(t, len(part), 3)
	}
	assert.Equal(t, strings.Repeat("é", 5), strings.Join(parts, ""))
}

func TestFormatErrorReport(t *testing.T) {
	lines := make([]string, 45)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i)
	}
	chunks := utils.FormatErrorReport("abc", "vote", errors.New(strings.Join(lines, "\n")))

	require.Len(t, chunks, 4)
	assert.Equal(t, "Error `abc` on: `vote`", chunks[0])
	for _, chunk := range chunks[1:] {
		assert.True(t, strings.HasPrefix(chunk, "```go\n"))
		assert.True(t, strings.HasSuffix(chunk, "```"))
		assert.LessOrEqual(t, len(chunk), 2000)
	}
	assert.Contains(t, chunks[1], "line 19\n")
	assert.NotContains(t, chunks[1], "line 20\n")
	assert.Contains(t, chunks[3], "line 44\n")
}

func TestFormatErrorReportLongLines(t *testing.T) {
	long := strings.Repeat("x", 3000)
	chunks := utils.FormatErrorReport("abc", "vote", errors.New(long+"\n"+long))

	total := 0
	for _, chunk := range chunks[1:] {
		assert.LessOrEqual(t, len(chunk), 2000)
		total += strings.Count(chunk, "x")
	}
	assert.Equal(t, 6000, total)
}

func TestReportErrorDMsOwner(t *testing.T) {
	as, fake := discordtest.NewApp(t)

	incident := as.ReportError(errors.New("boom"), "somewhere")

	sent := fake.SentTo(discordtest.DMChannelID(discordtest.OwnerID))
	require.Len(t, sent, 2)
	assert.Contains(t, sent[0].Content, incident)
	assert.Contains(t, sent[1].Content, "boom")
}

func TestReportErrorWithoutOwner(t *testing.T) {
	as, fake := discordtest.NewApp(t)
	as.SetOwnerID("")

	assert.NotEmpty(t, as.ReportError(errors.New("boom"), "somewhere"))
	assert.Empty(t, fake.Sent)
}
