package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/fraud-detection-agent/server/internal/vectorstore"
	logx "github.com/fraud-detection-agent/server/pkg/logger"
)

// ToolSearchPDFContents retrieves passages from the vectorized reference
// document by nearest-neighbour search.
const ToolSearchPDFContents = "search_pdf_contents"

// NoResultsSentinel is returned verbatim when the search yields nothing, so
// the model can state that the document does not cover the question.
const NoResultsSentinel = "No relevant information found in the PDF contents."

const DefaultTopK = 3

type searchPDFContentsInput struct {
	Query string `json:"query"`
}

type searchPDFContentsTool struct {
	store vectorstore.Searcher
	topK  int
}

func NewSearchPDFContentsTool(store vectorstore.Searcher, topK int) tool.InvokableTool {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &searchPDFContentsTool{store: store, topK: topK}
}

func (t *searchPDFContentsTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: ToolSearchPDFContents,
		Desc: "Retrieve information from the reference PDF document using vector similarity search. Use this tool for definitional, regulatory or report-style questions that the fraud transaction table cannot answer.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {
				Type:     "string",
				Desc:     "The user's search query, in natural language.",
				Required: true,
			},
		}),
	}, nil
}

func (t *searchPDFContentsTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	var in searchPDFContentsInput
	if err := json.Unmarshal([]byte(argumentsInJSON), &in); err != nil {
		return "", fmt.Errorf("parse %s arguments: %w", ToolSearchPDFContents, err)
	}
	if strings.TrimSpace(in.Query) == "" {
		return "", fmt.Errorf("query is required")
	}

	passages, err := t.store.SimilaritySearch(ctx, in.Query, t.topK)
	if err != nil {
		return "", err
	}

	if len(passages) == 0 {
		logx.Debug().Str("query", in.Query).Msg("No passages retrieved")
		return NoResultsSentinel, nil
	}

	contents := make([]string, 0, len(passages))
	for _, p := range passages {
		contents = append(contents, p.Content)
	}
	return strings.Join(contents, "\n"), nil
}
