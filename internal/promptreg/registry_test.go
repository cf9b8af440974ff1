package promptreg

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	errx "github.com/fraud-detection-agent/server/internal/core/error"
)

func TestCompileSubstitutesVariables(t *testing.T) {
	spec := &PromptSpec{
		Name:     "supervisor",
		Template: "History:\n{{conversation_history}}\n\nAnswer the user.",
	}
	out, err := spec.Compile(context.Background(), map[string]string{
		"conversation_history": "## User\nHi",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "History:\n## User\nHi\n\nAnswer the user."
	if out != want {
		t.Errorf("compiled = %q, want %q", out, want)
	}
}

func TestCompileLeavesUnknownPlaceholders(t *testing.T) {
	spec := &PromptSpec{Name: "search_fraud_records", Template: "{{schema}} / {{unbound}}"}
	out, err := spec.Compile(context.Background(), map[string]string{"schema": "fraud_detection: ..."})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "fraud_detection: ... / {{unbound}}" {
		t.Errorf("compiled = %q", out)
	}
}

func TestTemperatureOrDefault(t *testing.T) {
	spec := &PromptSpec{}
	if got := spec.TemperatureOrDefault(); got != 0.0 {
		t.Errorf("default temperature = %v, want 0.0", got)
	}
	temp := float32(0.4)
	spec.Temperature = &temp
	if got := spec.TemperatureOrDefault(); got != 0.4 {
		t.Errorf("temperature = %v, want 0.4", got)
	}
}

func TestClientGetPrompt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/public/v2/prompts/supervisor" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("label"); got != "latest" {
			t.Errorf("label = %q, want latest", got)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "pk" || pass != "sk" {
			t.Errorf("basic auth = %q/%q/%v", user, pass, ok)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"name":   "supervisor",
			"prompt": "You are a fraud analyst.\n{{conversation_history}}",
			"config": map[string]any{"model": "openai/gpt-4o-mini", "temperature": 0.2},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "pk", "sk", nil)
	spec, err := client.GetPrompt(context.Background(), "supervisor", "latest", DefaultCacheTTL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.Model != "openai/gpt-4o-mini" {
		t.Errorf("model = %q", spec.Model)
	}
	if spec.TemperatureOrDefault() != 0.2 {
		t.Errorf("temperature = %v, want 0.2", spec.TemperatureOrDefault())
	}
	if spec.Template == "" {
		t.Error("empty template")
	}
}

func TestClientGetPromptStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "pk", "sk", nil)
	if _, err := client.GetPrompt(context.Background(), "missing", "latest", 0); err == nil {
		t.Fatal("expected error for non-OK status")
	}
}

type countingRegistry struct {
	calls int
	spec  *PromptSpec
	err   error
}

func (c *countingRegistry) GetPrompt(ctx context.Context, name, label string, maxAge time.Duration) (*PromptSpec, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.spec, nil
}

func TestCachedServesFreshEntries(t *testing.T) {
	inner := &countingRegistry{spec: &PromptSpec{Name: "supervisor", Template: "t"}}
	cached := NewCached(inner)

	now := time.Unix(1000, 0)
	cached.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if _, err := cached.GetPrompt(context.Background(), "supervisor", "latest", DefaultCacheTTL); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}

	// Entry expires once older than maxAge.
	now = now.Add(DefaultCacheTTL + time.Second)
	if _, err := cached.GetPrompt(context.Background(), "supervisor", "latest", DefaultCacheTTL); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2", inner.calls)
	}
}

func TestCachedBypassesWithZeroMaxAge(t *testing.T) {
	inner := &countingRegistry{spec: &PromptSpec{Name: "supervisor", Template: "t"}}
	cached := NewCached(inner)

	for i := 0; i < 2; i++ {
		if _, err := cached.GetPrompt(context.Background(), "supervisor", "latest", 0); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2", inner.calls)
	}
}

func TestCachedDoesNotCacheFailures(t *testing.T) {
	inner := &countingRegistry{err: errors.New("registry down")}
	cached := NewCached(inner)

	for i := 0; i < 2; i++ {
		if _, err := cached.GetPrompt(context.Background(), "supervisor", "latest", DefaultCacheTTL); err == nil {
			t.Fatal("expected error")
		}
	}
	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2", inner.calls)
	}
}

func TestFromContext(t *testing.T) {
	if _, err := FromContext(context.Background()); !errors.Is(err, errx.ErrConfiguration) {
		t.Fatalf("err = %v, want configuration error", err)
	}

	reg := &countingRegistry{spec: &PromptSpec{}}
	ctx := WithClient(context.Background(), reg)
	got, err := FromContext(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != reg {
		t.Error("FromContext returned a different registry")
	}
}
