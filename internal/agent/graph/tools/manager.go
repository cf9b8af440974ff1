package tools

import (
	"context"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fraud-detection-agent/server/internal/agent/graph/chatmodels"
	"github.com/fraud-detection-agent/server/internal/agent/model"
	"github.com/fraud-detection-agent/server/internal/core/retry"
	"github.com/fraud-detection-agent/server/internal/vectorstore"
)

// Deps carries the shared resource handles the query tools read from. All
// tool invocations are read-only and idempotent with respect to the stores.
type Deps struct {
	Pool        *pgxpool.Pool
	ChatModels  chatmodels.Factory
	VectorStore vectorstore.Searcher
	Retrieval   model.RetrievalConfig
	Retry       model.RetryConfig
}

// QueryTools builds the tool set the supervisor binds to the model, each
// wrapped in the tool-level retry policy.
func QueryTools(d Deps) []tool.BaseTool {
	policy := retry.Policy{
		MaxAttempts:    d.Retry.ToolMaxRetries + 1,
		InitialBackoff: time.Duration(d.Retry.ToolInitialBackoff) * time.Second,
		Multiplier:     2,
	}

	return []tool.BaseTool{
		WithRetry(NewSearchFraudRecordsTool(d.Pool, d.ChatModels), policy),
		WithRetry(NewSearchPDFContentsTool(d.VectorStore, d.Retrieval.TopK), policy),
	}
}

// GetToolInfos collects the ToolInfo of every tool for model binding.
func GetToolInfos(ctx context.Context, ts []tool.BaseTool) ([]*schema.ToolInfo, error) {
	infos := make([]*schema.ToolInfo, 0, len(ts))
	for _, t := range ts {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}
