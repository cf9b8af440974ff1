package conversations

import (
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
)

func TestFormatHistory(t *testing.T) {
	tests := []struct {
		name     string
		messages []*schema.Message
		want     string
	}{
		{
			name:     "empty history",
			messages: nil,
			want:     "",
		},
		{
			name: "single user message",
			messages: []*schema.Message{
				schema.UserMessage("Hi"),
			},
			want: "## User\nHi",
		},
		{
			name: "alternating turns keep original order",
			messages: []*schema.Message{
				schema.UserMessage("What drove card fraud in H1 2023?"),
				schema.AssistantMessage("Cross-border transactions were the main driver.", nil),
				schema.UserMessage("Europe"),
			},
			want: "## User\nWhat drove card fraud in H1 2023?\n" +
				"## AI Assistant\nCross-border transactions were the main driver.\n" +
				"## User\nEurope",
		},
		{
			name: "system and tool messages are skipped",
			messages: []*schema.Message{
				schema.SystemMessage("You are a fraud analyst."),
				schema.UserMessage("Hi"),
				{Role: schema.Tool, Content: "rows: []", ToolCallID: "call_1"},
				schema.AssistantMessage("Hello!", nil),
			},
			want: "## User\nHi\n## AI Assistant\nHello!",
		},
		{
			name: "empty content is skipped",
			messages: []*schema.Message{
				schema.UserMessage(""),
				schema.AssistantMessage("", []schema.ToolCall{{ID: "call_1"}}),
				schema.UserMessage("Hi"),
			},
			want: "## User\nHi",
		},
		{
			name: "nil entries are tolerated",
			messages: []*schema.Message{
				nil,
				schema.UserMessage("Hi"),
			},
			want: "## User\nHi",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatHistory(tt.messages)
			if got != tt.want {
				t.Errorf("FormatHistory() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatHistoryBlockCount(t *testing.T) {
	messages := []*schema.Message{
		schema.UserMessage("one"),
		schema.AssistantMessage("two", nil),
		schema.SystemMessage("skipped"),
		schema.UserMessage("three"),
	}
	out := FormatHistory(messages)

	userBlocks := strings.Count(out, "## User\n")
	assistantBlocks := strings.Count(out, "## AI Assistant\n")
	if userBlocks != 2 {
		t.Errorf("user blocks = %d, want 2", userBlocks)
	}
	if assistantBlocks != 1 {
		t.Errorf("assistant blocks = %d, want 1", assistantBlocks)
	}
}
