package nodes

import (
	"context"
	"strings"
	"testing"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/fraud-detection-agent/server/internal/agent/model"
)

func TestNormalizeMaxToolCalls(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{name: "zero falls back to default", in: 0, want: DefaultMaxToolCalls},
		{name: "negative falls back to default", in: -3, want: DefaultMaxToolCalls},
		{name: "positive passes through", in: 4, want: 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizeMaxToolCalls(tc.in); got != tc.want {
				t.Errorf("normalizeMaxToolCalls(%d) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}

func TestToolBudgetAccounting(t *testing.T) {
	state := &model.TurnState{}

	// The first two calls stay within a budget of 2.
	if incrementToolCallAndCheck(state, 2) {
		t.Error("call 1 flagged as exceeded")
	}
	if incrementToolCallAndCheck(state, 2) {
		t.Error("call 2 flagged as exceeded")
	}
	if state.ToolCallLimitReached {
		t.Error("limit marked before it was exceeded")
	}

	// The third call exceeds it and marks the state.
	if !incrementToolCallAndCheck(state, 2) {
		t.Error("call 3 not flagged as exceeded")
	}
	if !state.ToolCallLimitReached {
		t.Error("limit not marked after exceeding")
	}
}

func TestAgentModelPreHandlerInjectsWrapUpNotice(t *testing.T) {
	ctx := context.Background()
	handler := newAgentModelPreHandler(2)

	state := &model.TurnState{ToolCallCount: 2}
	msgs, err := handler(ctx, []*schema.Message{schema.UserMessage("question")}, state)
	if err != nil {
		t.Fatalf("pre handler: %v", err)
	}

	last := msgs[len(msgs)-1]
	if last.Role != schema.System {
		t.Fatalf("last role = %v, want system", last.Role)
	}
	if !strings.Contains(last.Content, "maximum tool call limit (2)") {
		t.Errorf("wrap-up notice = %q", last.Content)
	}
	if !state.ToolCallLimitReached {
		t.Error("state not marked as limit reached")
	}

	// The notice is injected once; a second pass appends no duplicate.
	msgs, err = handler(ctx, nil, state)
	if err != nil {
		t.Fatalf("pre handler second pass: %v", err)
	}
	notices := 0
	for _, m := range msgs {
		if m.Role == schema.System {
			notices++
		}
	}
	if notices != 1 {
		t.Errorf("system notices = %d, want 1", notices)
	}
}

func TestAgentModelPreHandlerRecoversToolCallID(t *testing.T) {
	ctx := context.Background()
	handler := newAgentModelPreHandler(10)

	state := &model.TurnState{History: []*schema.Message{
		schema.UserMessage("question"),
		schema.AssistantMessage("", []schema.ToolCall{{
			ID:       "call_7",
			Function: schema.FunctionCall{Name: "search_pdf_contents"},
		}}),
	}}

	toolResult := &schema.Message{Role: schema.Tool, Content: "result"}
	if _, err := handler(ctx, []*schema.Message{toolResult}, state); err != nil {
		t.Fatalf("pre handler: %v", err)
	}
	if toolResult.ToolCallID != "call_7" {
		t.Errorf("recovered tool_call_id = %q, want call_7", toolResult.ToolCallID)
	}
}

func TestAgentModelPostHandlerSynthesizesIDs(t *testing.T) {
	ctx := context.Background()
	handler := newAgentModelPostHandler()
	state := &model.TurnState{}

	out := schema.AssistantMessage("", []schema.ToolCall{
		{Function: schema.FunctionCall{Name: "search_pdf_contents"}},
		{ID: "call_keep", Function: schema.FunctionCall{Name: "search_fraud_records"}},
		{Function: schema.FunctionCall{Name: "search_pdf_contents"}},
	})
	if _, err := handler(ctx, out, state); err != nil {
		t.Fatalf("post handler: %v", err)
	}

	if out.ToolCalls[0].ID != "call_1" {
		t.Errorf("first synthesized id = %q, want call_1", out.ToolCalls[0].ID)
	}
	if out.ToolCalls[1].ID != "call_keep" {
		t.Errorf("existing id rewritten to %q", out.ToolCalls[1].ID)
	}
	if out.ToolCalls[2].ID != "call_2" {
		t.Errorf("second synthesized id = %q, want call_2", out.ToolCalls[2].ID)
	}
	if len(state.History) != 1 {
		t.Errorf("history length = %d, want 1", len(state.History))
	}
}

func TestToolExecutorConditionRouting(t *testing.T) {
	ctx := context.Background()
	condition := newToolExecutorCondition()

	withCalls := schema.AssistantMessage("", []schema.ToolCall{{
		ID:       "call_1",
		Function: schema.FunctionCall{Name: "search_pdf_contents"},
	}})
	next, err := condition(ctx, withCalls)
	if err != nil {
		t.Fatalf("condition: %v", err)
	}
	if next != NodeToolExecutor {
		t.Errorf("next = %q, want %q", next, NodeToolExecutor)
	}

	final := schema.AssistantMessage("done", nil)
	next, err = condition(ctx, final)
	if err != nil {
		t.Fatalf("condition: %v", err)
	}
	if next != compose.END {
		t.Errorf("next = %q, want %q", next, compose.END)
	}
}
