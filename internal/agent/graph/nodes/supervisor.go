package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/fraud-detection-agent/server/internal/agent/graph/chatmodels"
	"github.com/fraud-detection-agent/server/internal/agent/graph/conversations"
	"github.com/fraud-detection-agent/server/internal/agent/graph/tools"
	"github.com/fraud-detection-agent/server/internal/agent/model"
	"github.com/fraud-detection-agent/server/internal/promptreg"
	logx "github.com/fraud-detection-agent/server/pkg/logger"
)

// NodeSupervisor is the sole processing node of the conversation graph.
const NodeSupervisor = "supervisor"

// SupervisorPromptName is the registry name of the supervisor prompt.
const SupervisorPromptName = "supervisor"

// Supervisor produces exactly one assistant message per invocation: it
// renders the conversation history into the supervisor prompt, binds the
// per-turn chat model to the query tools, and runs the agent loop until the
// model settles on a final answer.
type Supervisor struct {
	registry     promptreg.Registry
	chatModels   chatmodels.Factory
	messages     *conversations.MessagesManager
	tools        []tool.BaseTool
	toolInfos    []*schema.ToolInfo
	maxToolCalls int
}

func NewSupervisor(
	ctx context.Context,
	registry promptreg.Registry,
	chatModels chatmodels.Factory,
	messages *conversations.MessagesManager,
	businessTools []tool.BaseTool,
	maxToolCalls int,
) (*Supervisor, error) {
	if registry == nil {
		return nil, fmt.Errorf("prompt registry is nil")
	}
	if chatModels == nil {
		return nil, fmt.Errorf("chat model factory is nil")
	}
	if messages == nil {
		return nil, fmt.Errorf("messages manager is nil")
	}
	if len(businessTools) == 0 {
		return nil, fmt.Errorf("no tools configured")
	}

	toolInfos, err := tools.GetToolInfos(ctx, businessTools)
	if err != nil {
		return nil, fmt.Errorf("get tool infos: %w", err)
	}

	return &Supervisor{
		registry:     registry,
		chatModels:   chatModels,
		messages:     messages,
		tools:        businessTools,
		toolInfos:    toolInfos,
		maxToolCalls: maxToolCalls,
	}, nil
}

// Run executes one supervisor attempt. Failures propagate to the node-level
// retry policy; each retry re-enters here and re-fetches the prompt,
// re-binds the tools and re-invokes the model from the same input state.
func (s *Supervisor) Run(ctx context.Context, in model.QueryInput) (*schema.Message, error) {
	history, err := s.messages.LoadHistory(ctx, in.ThreadID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	rendered := conversations.FormatHistory(history.Messages)

	spec, err := s.registry.GetPrompt(ctx, SupervisorPromptName, promptreg.DefaultLabel, promptreg.DefaultCacheTTL)
	if err != nil {
		return nil, fmt.Errorf("fetch supervisor prompt: %w", err)
	}

	compiled, err := spec.Compile(ctx, map[string]string{
		"conversation_history": rendered,
	})
	if err != nil {
		return nil, err
	}

	cm, err := s.chatModels.New(ctx, spec.Model, spec.TemperatureOrDefault())
	if err != nil {
		return nil, err
	}
	bound, err := cm.WithTools(s.toolInfos)
	if err != nil {
		logx.Error().Err(err).Msg("Failed to bind tools to chat model")
		return nil, fmt.Errorf("bind tools: %w", err)
	}

	runnable, err := buildAgentLoop(ctx, bound, s.tools, in.ThreadID, s.maxToolCalls)
	if err != nil {
		return nil, err
	}

	out, err := runnable.Invoke(ctx, []*schema.Message{schema.UserMessage(compiled)})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("agent loop returned no message")
	}

	return out, nil
}
