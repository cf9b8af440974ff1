package repo

import (
	"context"
	"sync"

	"github.com/fraud-detection-agent/server/internal/agent/model"
	"github.com/cloudwego/eino/schema"
)

// MemoryConversationRepository keeps conversation history in process memory.
// Useful for tests and local runs without Redis; history does not survive a
// restart.
type MemoryConversationRepository struct {
	mu      sync.RWMutex
	threads map[string][]*schema.Message
}

func NewMemoryConversationRepository() *MemoryConversationRepository {
	return &MemoryConversationRepository{threads: make(map[string][]*schema.Message)}
}

func (r *MemoryConversationRepository) AddMessage(_ context.Context, threadID string, message *schema.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.threads[threadID] = append(r.threads[threadID], message)
	return nil
}

func (r *MemoryConversationRepository) LoadHistory(_ context.Context, threadID string) (*model.ConversationHistory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src := r.threads[threadID]
	msgs := make([]*schema.Message, len(src))
	copy(msgs, src)
	return &model.ConversationHistory{ThreadID: threadID, Messages: msgs}, nil
}

func (r *MemoryConversationRepository) ClearHistory(_ context.Context, threadID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.threads, threadID)
	return nil
}

func (r *MemoryConversationRepository) GetMessageCount(_ context.Context, threadID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.threads[threadID]), nil
}

var _ model.ConversationRepository = (*MemoryConversationRepository)(nil)
