package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	embopenai "github.com/cloudwego/eino-ext/components/embedding/openai"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/fraud-detection-agent/server/internal/agent/graph"
	"github.com/fraud-detection-agent/server/internal/agent/graph/chatmodels"
	"github.com/fraud-detection-agent/server/internal/agent/model"
	"github.com/fraud-detection-agent/server/internal/agent/repo"
	"github.com/fraud-detection-agent/server/internal/core"
	"github.com/fraud-detection-agent/server/internal/promptreg"
	"github.com/fraud-detection-agent/server/internal/vectorstore"
	logx "github.com/fraud-detection-agent/server/pkg/logger"
	pkgpostgres "github.com/fraud-detection-agent/server/pkg/postgres"
	pkgredis "github.com/fraud-detection-agent/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the service, sourced
// from environment variables (loaded from .env for local runs).
type AppConfig struct {
	// Infrastructure
	Postgres pkgpostgres.Config
	Redis    pkgredis.Config

	// Prompt registry (Langfuse-compatible)
	Langfuse promptreg.Config

	// LLM provider + retrieval
	LLM       model.LLMConfig
	Embedding model.EmbeddingConfig
	Retrieval model.RetrievalConfig

	// Agent behavior
	Conversation model.ConversationConfig
	Retry        model.RetryConfig
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load .env file: %v\n", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(os.Getenv("APP_ENV"))})

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		logx.Fatal().Err(err).Msg("Failed to process environment config")
	}

	rdb, err := cfg.Redis.New()
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise Redis client")
	}
	defer rdb.Close()

	pool, err := cfg.Postgres.New(ctx)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise Postgres pool")
	}
	defer pool.Close()

	embedder, err := embopenai.NewEmbedder(ctx, &embopenai.EmbeddingConfig{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.Embedding.Model,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to create embedder")
	}

	store, err := vectorstore.NewStore(pool, embedder, cfg.Retrieval.Table)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to create vector store")
	}

	ttl, err := time.ParseDuration(cfg.Conversation.TTL)
	if err != nil {
		logx.Fatal().Str("ttl", cfg.Conversation.TTL).Err(err).Msg("Invalid CONVERSATION_TTL")
	}

	runner, err := graph.BuildConversationGraph(ctx, graph.Config{
		Registry:         cfg.Langfuse.New(),
		ChatModels:       chatmodels.NewOpenAIFactory(cfg.LLM.APIKey, cfg.LLM.BaseURL),
		ConversationRepo: repo.NewRedisConversationRepository(rdb, ttl),
		Pool:             pool,
		VectorStore:      store,
		Retrieval:        cfg.Retrieval,
		Conversation:     cfg.Conversation,
		Retry:            cfg.Retry,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build conversation graph")
	}

	session := model.ResolveSession(model.SessionConfig{})
	logx.Info().Str("thread_id", session.ThreadID).Msg("Fraud analytics assistant ready")

	fmt.Println("Fraud analytics assistant. Ask about the fraud records or the reference PDF; empty line exits.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			break
		}

		answer, err := runner.Invoke(ctx, model.QueryInput{
			ThreadID: session.ThreadID,
			Query:    query,
		})
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			logx.Error().Err(err).Msg("Turn failed")
			fmt.Println("Sorry, that question could not be answered. Please try again.")
			continue
		}

		fmt.Println(answer)
	}

	if err := scanner.Err(); err != nil {
		logx.Error().Err(err).Msg("Input error")
	}
}
