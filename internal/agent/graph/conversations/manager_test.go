package conversations

import (
	"context"
	"testing"

	"github.com/fraud-detection-agent/server/internal/agent/repo"
	"github.com/cloudwego/eino/schema"
)

func TestMessagesManagerRoundTrip(t *testing.T) {
	ctx := context.Background()
	mm := NewMessagesManager(repo.NewMemoryConversationRepository())

	if err := mm.AppendUserMessage(ctx, "thread-1", "Hi"); err != nil {
		t.Fatalf("append user: %v", err)
	}
	if err := mm.SaveResponse(ctx, "thread-1", "Hello!"); err != nil {
		t.Fatalf("save response: %v", err)
	}

	history, err := mm.LoadHistory(ctx, "thread-1")
	if err != nil {
		t.Fatalf("load history: %v", err)
	}
	if len(history.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(history.Messages))
	}
	if history.Messages[0].Role != schema.User || history.Messages[0].Content != "Hi" {
		t.Errorf("first message = %+v", history.Messages[0])
	}
	if history.Messages[1].Role != schema.Assistant || history.Messages[1].Content != "Hello!" {
		t.Errorf("second message = %+v", history.Messages[1])
	}
}

func TestMessagesManagerThreadsAreIsolated(t *testing.T) {
	ctx := context.Background()
	mm := NewMessagesManager(repo.NewMemoryConversationRepository())

	if err := mm.AppendUserMessage(ctx, "thread-a", "question a"); err != nil {
		t.Fatalf("append: %v", err)
	}

	history, err := mm.LoadHistory(ctx, "thread-b")
	if err != nil {
		t.Fatalf("load history: %v", err)
	}
	if len(history.Messages) != 0 {
		t.Errorf("thread-b messages = %d, want 0", len(history.Messages))
	}
}
