package model

// ================ Config ================

// LLMConfig points the agent at an OpenAI-compatible provider. The model
// name and temperature for each call come from the prompt registry, not
// from here.
type LLMConfig struct {
	APIKey  string `envconfig:"OPENROUTER_API_KEY" required:"true"`
	BaseURL string `envconfig:"OPENROUTER_BASE_URL" default:"https://openrouter.ai/api/v1"`
}

// EmbeddingConfig selects the embedding model used for semantic retrieval.
type EmbeddingConfig struct {
	Model string `envconfig:"EMBEDDING_MODEL" default:"qwen/qwen3-embedding-8b"`
}

// RetrievalConfig controls the vector-store read side.
type RetrievalConfig struct {
	Table string `envconfig:"VECTOR_TABLE" default:"pdf_contents_vector_store"`
	TopK  int    `envconfig:"RETRIEVAL_TOP_K" default:"3"`
}

type ConversationConfig struct {
	TTL   string `envconfig:"CONVERSATION_TTL" default:"15m"`
	Tools struct {
		MaxCalls int `envconfig:"CONVERSATION_TOOL_MAX_CALLS" default:"10"`
	}
}

// RetryConfig holds the two independent retry budgets: a narrow tool-level
// budget for transient tool failures, nested inside the coarse node-level
// budget that re-runs the whole supervisor turn.
type RetryConfig struct {
	NodeMaxAttempts    int `envconfig:"NODE_MAX_ATTEMPTS" default:"3"`
	ToolMaxRetries     int `envconfig:"TOOL_MAX_RETRIES" default:"1"`
	ToolInitialBackoff int `envconfig:"TOOL_INITIAL_BACKOFF_SECONDS" default:"1"`
}
