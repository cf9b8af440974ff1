package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fraud-detection-agent/server/internal/agent/graph/chatmodels"
	"github.com/fraud-detection-agent/server/internal/agent/graph/conversations"
	"github.com/fraud-detection-agent/server/internal/agent/graph/nodes"
	"github.com/fraud-detection-agent/server/internal/agent/graph/observers"
	"github.com/fraud-detection-agent/server/internal/agent/graph/tools"
	"github.com/fraud-detection-agent/server/internal/agent/model"
	"github.com/fraud-detection-agent/server/internal/core/retry"
	"github.com/fraud-detection-agent/server/internal/promptreg"
	"github.com/fraud-detection-agent/server/internal/vectorstore"
	logx "github.com/fraud-detection-agent/server/pkg/logger"
)

// Runner executes one conversation turn end-to-end.
type Runner interface {
	Invoke(ctx context.Context, in model.QueryInput) (string, error)
}

// Config holds everything needed to compose the conversation graph.
type Config struct {
	Registry         promptreg.Registry
	ChatModels       chatmodels.Factory
	ConversationRepo model.ConversationRepository
	Pool             *pgxpool.Pool
	VectorStore      vectorstore.Searcher
	Retrieval        model.RetrievalConfig
	Conversation     model.ConversationConfig
	Retry            model.RetryConfig
}

type graphRunner struct {
	runnable compose.Runnable[model.QueryInput, *schema.Message]
	registry promptreg.Registry
}

func (r *graphRunner) Invoke(ctx context.Context, in model.QueryInput) (string, error) {
	// The registry handle travels with the invocation so tools can
	// re-fetch their own sub-prompts mid-turn.
	ctx = promptreg.WithClient(ctx, r.registry)

	out, err := r.runnable.Invoke(ctx, in, compose.WithCallbacks(observers.NewAllCallbacks()))
	if err != nil {
		return "", err
	}
	if out == nil {
		return "", nil
	}
	return out.Content, nil
}

// BuildConversationGraph composes the minimal one-node state machine:
// START → supervisor → END, with the supervisor wrapped in the node-level
// retry policy. Exhausting the retries surfaces the turn error to the
// caller; no fallback answer is synthesized.
func BuildConversationGraph(ctx context.Context, cfg Config) (Runner, error) {
	if cfg.ConversationRepo == nil {
		return nil, fmt.Errorf("conversation repo is nil")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("prompt registry is nil")
	}
	if cfg.ChatModels == nil {
		return nil, fmt.Errorf("chat model factory is nil")
	}
	if cfg.VectorStore == nil {
		return nil, fmt.Errorf("vector store is nil")
	}

	mm := conversations.NewMessagesManager(cfg.ConversationRepo)

	businessTools := tools.QueryTools(tools.Deps{
		Pool:        cfg.Pool,
		ChatModels:  cfg.ChatModels,
		VectorStore: cfg.VectorStore,
		Retrieval:   cfg.Retrieval,
		Retry:       cfg.Retry,
	})

	supervisor, err := nodes.NewSupervisor(ctx, cfg.Registry, cfg.ChatModels, mm, businessTools, cfg.Conversation.Tools.MaxCalls)
	if err != nil {
		return nil, err
	}

	nodePolicy := retry.Policy{MaxAttempts: cfg.Retry.NodeMaxAttempts}

	g := compose.NewGraph[model.QueryInput, *schema.Message]()
	g.AddLambdaNode(nodes.NodeSupervisor, compose.InvokableLambda(
		func(ctx context.Context, in model.QueryInput) (*schema.Message, error) {
			if strings.TrimSpace(in.Query) == "" {
				return nil, fmt.Errorf("query is empty")
			}

			// The user message is recorded once, before the retry loop, so
			// every supervisor attempt sees the same input state.
			if err := mm.AppendUserMessage(ctx, in.ThreadID, in.Query); err != nil {
				return nil, fmt.Errorf("append user message: %w", err)
			}

			out, err := retry.Do(ctx, nodePolicy, func(ctx context.Context) (*schema.Message, error) {
				return supervisor.Run(ctx, in)
			})
			if err != nil {
				logx.Error().Err(err).Str("thread_id", in.ThreadID).Msg("Supervisor turn failed after retries")
				return nil, err
			}

			// Persist the assistant reply only after the whole turn
			// succeeded; a failed or cancelled turn appends nothing.
			if strings.TrimSpace(out.Content) != "" {
				if err := mm.SaveResponse(ctx, in.ThreadID, out.Content); err != nil {
					return nil, fmt.Errorf("save assistant response: %w", err)
				}
			}

			return out, nil
		},
	))

	g.AddEdge(compose.START, nodes.NodeSupervisor)
	g.AddEdge(nodes.NodeSupervisor, compose.END)

	runnable, err := g.Compile(ctx)
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling conversation graph")
		return nil, fmt.Errorf("error compiling conversation graph: %w", err)
	}

	logx.Debug().Msg("Conversation graph built successfully")
	return &graphRunner{runnable: runnable, registry: cfg.Registry}, nil
}
