package model

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// ConversationRepository checkpoints conversation state across turns, keyed
// by thread identifier. Messages are append-only: nothing mutates or
// reorders a message once added.
type ConversationRepository interface {
	// AddMessage appends a message to the thread's history
	AddMessage(ctx context.Context, threadID string, message *schema.Message) error

	// LoadHistory retrieves the full ordered history for a thread
	LoadHistory(ctx context.Context, threadID string) (*ConversationHistory, error)

	// ClearHistory removes all history for a thread
	ClearHistory(ctx context.Context, threadID string) error

	// GetMessageCount returns the number of messages in the thread
	GetMessageCount(ctx context.Context, threadID string) (int, error)
}

// ConversationHistory represents loaded conversation data with metadata.
type ConversationHistory struct {
	ThreadID string
	Messages []*schema.Message
}
