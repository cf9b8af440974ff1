// Package vectorstore is the read side of the PDF-chunk vector index:
// embed a query, return the nearest chunks. The ingestion pipeline that
// populates the index lives outside this service.
package vectorstore

import (
	"context"
	"fmt"
	"regexp"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	errx "github.com/fraud-detection-agent/server/internal/core/error"
	logx "github.com/fraud-detection-agent/server/pkg/logger"
)

// Passage is one retrieved document chunk. Ephemeral: produced per
// retrieval call, never persisted beyond the current turn.
type Passage struct {
	Content string
	Page    int
}

// Searcher is the capability interface for semantic retrieval. Either a
// pgvector table or any other nearest-neighbour backend satisfies it.
type Searcher interface {
	SimilaritySearch(ctx context.Context, query string, k int) ([]Passage, error)
}

// Store performs nearest-neighbour search over a pgvector table of document
// chunks, ordered by cosine distance.
type Store struct {
	pool     *pgxpool.Pool
	embedder embedding.Embedder
	table    string
}

// Table names come from config, not user input, but they are interpolated
// into SQL so they are still restricted to plain identifiers.
var identPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func NewStore(pool *pgxpool.Pool, embedder embedding.Embedder, table string) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder is nil")
	}
	if !identPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid vector table name %q", table)
	}
	return &Store{pool: pool, embedder: embedder, table: table}, nil
}

func (s *Store) SimilaritySearch(ctx context.Context, query string, k int) ([]Passage, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	vectors, err := s.embedder.EmbedStrings(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embed query: empty embedding result")
	}

	vec := make([]float32, len(vectors[0]))
	for i, v := range vectors[0] {
		vec[i] = float32(v)
	}

	sql := fmt.Sprintf(
		"SELECT content, page_index FROM %s ORDER BY embedding <=> $1 LIMIT $2",
		s.table,
	)
	rows, err := s.pool.Query(ctx, sql, pgvector.NewVector(vec), k)
	if err != nil {
		return nil, errx.WrapPostgres(err)
	}
	defer rows.Close()

	var passages []Passage
	for rows.Next() {
		var p Passage
		if err := rows.Scan(&p.Content, &p.Page); err != nil {
			return nil, fmt.Errorf("scan passage: %w", err)
		}
		passages = append(passages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errx.WrapPostgres(err)
	}

	logx.Debug().Int("passages", len(passages)).Int("k", k).Msg("Similarity search completed")
	return passages, nil
}

var _ Searcher = (*Store)(nil)
