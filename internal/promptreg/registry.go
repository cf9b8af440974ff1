// Package promptreg is the read-side client for the external prompt
// registry: versioned prompt templates plus per-prompt model settings,
// addressed by name and label. The registry owns versioning; nothing in
// this package persists prompts beyond a short-lived cache.
package promptreg

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

// DefaultLabel is the registry label used for every fetch in this service.
const DefaultLabel = "latest"

// DefaultCacheTTL bounds how stale a cached prompt may be.
const DefaultCacheTTL = 600 * time.Second

// PromptSpec is a fetched prompt template together with its model settings.
type PromptSpec struct {
	Name        string
	Label       string
	Template    string
	Model       string
	Temperature *float32
}

// TemperatureOrDefault returns the configured temperature, or 0.0 when the
// registry did not set one.
func (s *PromptSpec) TemperatureOrDefault() float32 {
	if s.Temperature == nil {
		return 0.0
	}
	return *s.Temperature
}

// Compile substitutes {{var}} placeholders in the template and routes the
// result through the Eino prompt component so prompt callbacks fire for
// observability. Unknown placeholders are left untouched.
func (s *PromptSpec) Compile(ctx context.Context, vars map[string]string) (string, error) {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	content := strings.NewReplacer(pairs...).Replace(s.Template)

	// Wrap via a messages placeholder so the rendered text passes through
	// untouched while still emitting prompt callbacks.
	tpl := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("compiled_messages", false),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"compiled_messages": []*schema.Message{schema.UserMessage(content)},
	})
	if err != nil {
		return "", fmt.Errorf("compile prompt %q: %w", s.Name, err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("compile prompt %q: empty result", s.Name)
	}
	return msgs[0].Content, nil
}

// Registry fetches prompt specs by name and label. maxAge bounds how stale a
// cached copy may be; implementations without a cache may ignore it.
type Registry interface {
	GetPrompt(ctx context.Context, name, label string, maxAge time.Duration) (*PromptSpec, error)
}
