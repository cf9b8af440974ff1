package chatmodels

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	einomodel "github.com/cloudwego/eino/components/model"

	logx "github.com/fraud-detection-agent/server/pkg/logger"
)

// Factory builds a chat model for a given model name and temperature. The
// supervisor and the structured-query tool construct a model per invocation
// because the prompt registry decides which model each prompt runs on.
type Factory interface {
	New(ctx context.Context, modelName string, temperature float32) (einomodel.ToolCallingChatModel, error)
}

// OpenAIFactory creates models against an OpenAI-compatible endpoint
// (OpenRouter in production).
type OpenAIFactory struct {
	APIKey  string
	BaseURL string
}

func NewOpenAIFactory(apiKey, baseURL string) *OpenAIFactory {
	return &OpenAIFactory{APIKey: apiKey, BaseURL: baseURL}
}

func (f *OpenAIFactory) New(ctx context.Context, modelName string, temperature float32) (einomodel.ToolCallingChatModel, error) {
	if modelName == "" {
		return nil, fmt.Errorf("model name is empty")
	}

	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:      f.APIKey,
		BaseURL:     f.BaseURL,
		Model:       modelName,
		Temperature: &temperature,
	})
	if err != nil {
		logx.Error().Err(err).Str("model", modelName).Msg("Error creating chat model")
		return nil, fmt.Errorf("error creating chat model %q: %w", modelName, err)
	}
	return cm, nil
}

var _ Factory = (*OpenAIFactory)(nil)
