package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

type Config struct {
	URL            string `split_words:"true" required:"true"`
	ConnectTimeout int    `split_words:"true" default:"5"`
	MaxConns       int32  `split_words:"true" default:"4"`
}

// New builds a pgx connection pool from the config, registers the pgvector
// types on every connection, and verifies connectivity with a ping.
func (c *Config) New(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(c.URL)
	if err != nil {
		return nil, err
	}

	cfg.MaxConns = c.MaxConns
	cfg.ConnConfig.ConnectTimeout = time.Duration(c.ConnectTimeout) * time.Second
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}
