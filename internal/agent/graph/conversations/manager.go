package conversations

import (
	"context"

	"github.com/fraud-detection-agent/server/internal/agent/model"

	"github.com/cloudwego/eino/schema"
)

// MessagesManager mediates between the graph and the conversation
// repository: it appends turn messages and loads the full history the
// supervisor formats into its prompt.
type MessagesManager struct {
	conversationRepo model.ConversationRepository
}

func NewMessagesManager(conversationRepo model.ConversationRepository) *MessagesManager {
	return &MessagesManager{conversationRepo: conversationRepo}
}

// AppendUserMessage records the incoming user turn before the supervisor
// runs, so retries of the same turn see an identical input state.
func (cm *MessagesManager) AppendUserMessage(ctx context.Context, threadID string, query string) error {
	return cm.conversationRepo.AddMessage(ctx, threadID, schema.UserMessage(query))
}

// LoadHistory returns the full ordered history for a thread.
func (cm *MessagesManager) LoadHistory(ctx context.Context, threadID string) (*model.ConversationHistory, error) {
	return cm.conversationRepo.LoadHistory(ctx, threadID)
}

// SaveResponse records the final assistant reply. Called only after the
// whole turn succeeded; a failed turn leaves no assistant message behind.
func (cm *MessagesManager) SaveResponse(ctx context.Context, threadID string, content string) error {
	return cm.conversationRepo.AddMessage(ctx, threadID, schema.AssistantMessage(content, nil))
}
