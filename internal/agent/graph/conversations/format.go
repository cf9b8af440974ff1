package conversations

import (
	"strings"

	"github.com/cloudwego/eino/schema"
)

const (
	userHeading      = "## User"
	assistantHeading = "## AI Assistant"
)

// FormatHistory renders a conversation history into a single text block for
// prompt templates. Each user or assistant message with non-empty content
// becomes a heading line followed by its content; system messages and tool
// records are skipped. An empty history yields an empty string.
func FormatHistory(messages []*schema.Message) string {
	formatted := make([]string, 0, len(messages))
	for _, msg := range messages {
		if msg == nil || msg.Content == "" {
			continue
		}
		switch msg.Role {
		case schema.User:
			formatted = append(formatted, userHeading+"\n"+msg.Content)
		case schema.Assistant:
			formatted = append(formatted, assistantHeading+"\n"+msg.Content)
		}
	}
	return strings.Join(formatted, "\n")
}
