package utils

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/lmittmann/tint"
)

const (
	reportLinesPerChunk = 20
	reportMaxChunkLen   = 1950
)

// ReportError logs err and sends it to the bot owner's DMs. It returns the
// incident id so callers can show it.
func (as *AppState) ReportError(err error, where string) string {
	incident := uuid.NewString()
	slog.Error("unexpected error", "incident", incident, "where", where, tint.Err(err))

	ownerID := as.GetOwnerID()
	if ownerID == "" || as.Discord == nil {
		slog.Warn("can't report error, owner unknown", "incident", incident)
		return incident
	}

	channel, chErr := as.Discord.UserChannelCreate(ownerID)
	if chErr != nil {
		slog.Warn("can't open DM with owner", "incident", incident, "error", chErr)
		return incident
	}
	for _, chunk := range FormatErrorReport(incident, where, err) {
		if _, sendErr := as.Discord.ChannelMessageSend(channel.ID, chunk); sendErr != nil {
			slog.Warn("can't send error report to owner", "incident", incident, "error", sendErr)
			break
		}
	}
	return incident
}

// MsgToOwner sends content to the owner, split into messages Discord
// accepts.
func (as *AppState) MsgToOwner(content string) error {
	ownerID := as.GetOwnerID()
	if ownerID == "" {
		return fmt.Errorf("MsgToOwner: owner unknown")
	}
	channel, err := as.Discord.UserChannelCreate(ownerID)
	if err != nil {
		return fmt.Errorf("MsgToOwner: %w", err)
	}
	for _, chunk := range StringSplit(content, reportMaxChunkLen) {
		if _, err := as.Discord.ChannelMessageSend(channel.ID, chunk); err != nil {
			return fmt.Errorf("MsgToOwner: %w", err)
		}
	}
	return nil
}

// FormatErrorReport renders err as code blocks of at most 20 lines each,
// preceded by a header naming the incident.
func FormatErrorReport(incident, where string, err error) []string {
	lines := make([]string, 0)
	for _, line := range strings.Split(err.Error(), "\n") {
		// a single line longer than a message gets cut into pieces
		lines = append(lines, StringSplit(line, reportMaxChunkLen-16)...)
	}

	chunks := []string{fmt.Sprintf("Error `%s` on: `%s`", incident, where)}
	for start := 0; start < len(lines); start += reportLinesPerChunk {
		end := min(start+reportLinesPerChunk, len(lines))
		var b strings.Builder
		b.WriteString("```go\n")
		for _, line := range lines[start:end] {
			if b.Len()+len(line)+5 > reportMaxChunkLen {
				b.WriteString("```")
				chunks = append(chunks, b.String())
				b.Reset()
				b.WriteString("```go\n")
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("```")
		chunks = append(chunks, b.String())
	}
	return chunks
}

// StringSplit cuts s into parts of at most size bytes without splitting
// UTF-8 sequences.
func StringSplit(s string, size int) []string {
	if s == "" {
		return []string{""}
	}
	parts := make([]string, 0, len(s)/size+1)
	for len(s) > size {
		cut := size
		for cut > 0 && !isRuneStart(s[cut]) {
			cut--
		}
		if cut == 0 {
			cut = size
		}
		parts = append(parts, s[:cut])
		s = s[cut:]
	}
	return append(parts, s)
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
