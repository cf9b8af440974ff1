package model

import (
	"github.com/cloudwego/eino/schema"
)

// TurnState stores per-turn state for the agent loop graph.
// Concurrency model:
//   - This struct is registered as Graph Local State via compose.WithGenLocalState.
//   - All reads/writes happen only inside Eino state handlers:
//     WithStatePreHandler, WithStatePostHandler, or compose.ProcessState.
//   - Eino serializes access to state within these handlers, so no additional
//     mutex/atomic is required as long as it's never touched outside handlers.
type TurnState struct {
	ThreadID             string
	History              []*schema.Message // mutated only inside Eino state handlers
	ToolCallCount        int               // maintained in handlers (reset/increment)
	ToolCallLimitReached bool              // set when tool call limit is exceeded
	ToolCallIDSeq        int               // local sequence to synthesize tool_call_id when provider omits
}

// QueryInput represents one user turn entering the conversation graph.
type QueryInput struct {
	ThreadID string `json:"thread_id"`
	Query    string `json:"query"`
}
