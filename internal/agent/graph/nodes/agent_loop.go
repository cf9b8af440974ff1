package nodes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/fraud-detection-agent/server/internal/agent/model"
	logx "github.com/fraud-detection-agent/server/pkg/logger"
)

// Node names of the per-turn agent loop.
const (
	NodeAgentModel   = "agent_model"
	NodeToolExecutor = "tool_executor"
)

// buildAgentLoop composes the per-turn loop: chat model node, tool executor
// node, and a branch that routes back through the tools until the model
// stops requesting them or the tool budget is spent. The model is already
// bound to the tool set; the loop is rebuilt each turn because the model
// itself is chosen per turn by the prompt registry.
func buildAgentLoop(
	ctx context.Context,
	cm einomodel.BaseChatModel,
	businessTools []tool.BaseTool,
	threadID string,
	maxToolCalls int,
) (compose.Runnable[[]*schema.Message, *schema.Message], error) {
	g := compose.NewGraph[[]*schema.Message, *schema.Message](
		compose.WithGenLocalState(func(ctx context.Context) *model.TurnState {
			return &model.TurnState{ThreadID: threadID}
		}),
	)

	toolsNode, err := compose.NewToolNode(ctx, &compose.ToolsNodeConfig{
		Tools:               businessTools,
		ExecuteSequentially: true,
		UnknownToolsHandler: func(ctx context.Context, name, input string) (string, error) {
			// Gracefully handle hallucinated or malformed tool calls
			logx.Warn().
				Str("tool_name", name).
				Str("arguments", input).
				Msg("Unknown or invalid tool call; returning fallback result")
			return fmt.Sprintf("{\"error\":\"unknown_tool\",\"name\":%q,\"note\":\"ignored\"}", name), nil
		},
		ToolArgumentsHandler: func(ctx context.Context, name, arguments string) (string, error) {
			// Best-effort sanitize; never fail hard here
			var m map[string]any
			if err := json.Unmarshal([]byte(arguments), &m); err != nil {
				return arguments, nil
			}

			// Both query tools take a single "query" string.
			if v, ok := m["query"]; ok {
				switch vv := v.(type) {
				case string:
					m["query"] = strings.TrimSpace(vv)
				default:
					m["query"] = strings.TrimSpace(fmt.Sprint(v))
				}
			}

			b, err := json.Marshal(m)
			if err != nil {
				return arguments, nil
			}
			return string(b), nil
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Failed to create tools node")
		return nil, fmt.Errorf("failed to create tools node: %w", err)
	}

	g.AddChatModelNode(NodeAgentModel, cm,
		compose.WithStatePreHandler(newAgentModelPreHandler(maxToolCalls)),
		compose.WithStatePostHandler(newAgentModelPostHandler()),
	)
	g.AddToolsNode(NodeToolExecutor, toolsNode,
		compose.WithStatePreHandler(newToolExecutorPreHandler(maxToolCalls)),
	)

	g.AddEdge(compose.START, NodeAgentModel)
	g.AddEdge(NodeToolExecutor, NodeAgentModel)

	decisionBranch := compose.NewGraphBranch(
		newToolExecutorCondition(),
		map[string]bool{
			NodeToolExecutor: true,
			compose.END:      true,
		},
	)
	if err := g.AddBranch(NodeAgentModel, decisionBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding decision branch")
		return nil, fmt.Errorf("error adding decision branch: %w", err)
	}

	// Limit total run steps to avoid infinite loops in tool routing
	maxSteps := 10 + normalizeMaxToolCalls(maxToolCalls)*2
	if maxSteps < 20 {
		maxSteps = 20
	}

	runnable, err := g.Compile(ctx, compose.WithMaxRunSteps(maxSteps))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling agent loop")
		return nil, fmt.Errorf("error compiling agent loop: %w", err)
	}

	return runnable, nil
}
