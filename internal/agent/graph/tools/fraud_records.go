package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fraud-detection-agent/server/internal/agent/graph/chatmodels"
	errx "github.com/fraud-detection-agent/server/internal/core/error"
	"github.com/fraud-detection-agent/server/internal/promptreg"
	logx "github.com/fraud-detection-agent/server/pkg/logger"
)

// ToolSearchFraudRecords answers natural-language questions by generating
// and executing SQL against the fraud transaction table.
const ToolSearchFraudRecords = "search_fraud_records"

const schemaIntrospectionSQL = `
	SELECT table_name, column_name, data_type
	FROM information_schema.columns
	WHERE table_schema = 'public'
	ORDER BY table_name, ordinal_position`

type searchFraudRecordsInput struct {
	Query string `json:"query"`
}

// searchFraudRecordsTool implements tool.InvokableTool directly so the raw
// result text reaches the model without an extra serialization layer.
type searchFraudRecordsTool struct {
	pool       *pgxpool.Pool
	chatModels chatmodels.Factory
}

// NewSearchFraudRecordsTool builds the structured-query tool. The prompt
// registry handle is not taken here: it travels through the invocation
// context, and its absence is a configuration error at call time.
func NewSearchFraudRecordsTool(pool *pgxpool.Pool, chatModels chatmodels.Factory) tool.InvokableTool {
	return &searchFraudRecordsTool{pool: pool, chatModels: chatModels}
}

func (t *searchFraudRecordsTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: ToolSearchFraudRecords,
		Desc: "Search fraud transaction records in the SQL database. Use this tool for quantitative questions about fraud transactions: counts, shares, trends, breakdowns by merchant, category, state, gender, job, age or date.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {
				Type:     "string",
				Desc:     "The user's question about the fraud records, in natural language.",
				Required: true,
			},
		}),
	}, nil
}

func (t *searchFraudRecordsTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	registry, err := promptreg.FromContext(ctx)
	if err != nil {
		return "", err
	}

	var in searchFraudRecordsInput
	if err := json.Unmarshal([]byte(argumentsInJSON), &in); err != nil {
		return "", fmt.Errorf("parse %s arguments: %w", ToolSearchFraudRecords, err)
	}
	if strings.TrimSpace(in.Query) == "" {
		return "", fmt.Errorf("query is required")
	}

	schemaText, err := t.introspectSchema(ctx)
	if err != nil {
		return "", err
	}

	spec, err := registry.GetPrompt(ctx, ToolSearchFraudRecords, promptreg.DefaultLabel, promptreg.DefaultCacheTTL)
	if err != nil {
		return "", fmt.Errorf("fetch %s prompt: %w", ToolSearchFraudRecords, err)
	}

	compiled, err := spec.Compile(ctx, map[string]string{
		"schema": schemaText,
		"query":  in.Query,
	})
	if err != nil {
		return "", err
	}

	cm, err := t.chatModels.New(ctx, spec.Model, spec.TemperatureOrDefault())
	if err != nil {
		return "", err
	}

	resp, err := cm.Generate(ctx, []*schema.Message{schema.UserMessage(compiled)})
	if err != nil {
		return "", fmt.Errorf("generate sql: %w", err)
	}

	// The model output is executed verbatim: no statement-type allow-list,
	// no parameterization. The prompt is the only guardrail here.
	// TODO: reject non-SELECT statements before executing.
	sqlStatement := strings.TrimSpace(resp.Content)
	logx.Debug().Str("sql", sqlStatement).Msg("Executing generated SQL")

	rows, err := t.pool.Query(ctx, sqlStatement)
	if err != nil {
		return "", errx.WrapPostgres(err)
	}
	defer rows.Close()

	var results [][]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return "", fmt.Errorf("read result row: %w", err)
		}
		results = append(results, values)
	}
	if err := rows.Err(); err != nil {
		return "", errx.WrapPostgres(err)
	}

	return renderRows(results), nil
}

// introspectSchema reads the live table catalog and renders it as a text
// block for the SQL-generation prompt. Never cached: the schema can evolve
// between turns.
func (t *searchFraudRecordsTool) introspectSchema(ctx context.Context) (string, error) {
	rows, err := t.pool.Query(ctx, schemaIntrospectionSQL)
	if err != nil {
		return "", errx.WrapPostgres(err)
	}
	defer rows.Close()

	var cols []columnDescriptor
	for rows.Next() {
		var c columnDescriptor
		if err := rows.Scan(&c.Table, &c.Column, &c.DataType); err != nil {
			return "", fmt.Errorf("scan schema row: %w", err)
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return "", errx.WrapPostgres(err)
	}

	return renderSchema(cols), nil
}

type columnDescriptor struct {
	Table    string
	Column   string
	DataType string
}

// renderSchema groups columns under their table, preserving catalog order.
func renderSchema(cols []columnDescriptor) string {
	var b strings.Builder
	currentTable := ""
	for _, c := range cols {
		if c.Table != currentTable {
			b.WriteString("\n" + c.Table + ":\n")
			currentTable = c.Table
		}
		b.WriteString("  - " + c.Column + ": " + c.DataType + "\n")
	}
	return b.String()
}

// renderRows serializes result rows as a tuple-list text block for the
// model's synthesis step, e.g. "[(2023, 41.5), (2024, 38.2)]".
func renderRows(rows [][]any) string {
	var b strings.Builder
	b.WriteString("[")
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j, v := range row {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%v", v)
		}
		b.WriteString(")")
	}
	b.WriteString("]")
	return b.String()
}
