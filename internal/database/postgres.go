package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lningthou/asimov-backend/internal/apperr"
	"github.com/rs/zerolog/log"
)

type Config struct {
	URL      string
	MinConns int32
	MaxConns int32
}

type DB struct {
	Pool *pgxpool.Pool
}

// Searcher runs the read queries on one checked-out connection.
type Searcher interface {
	SemanticSearch(ctx context.Context, vectorLiteral string, limit int) ([]Video, error)
	KeywordSearch(ctx context.Context, text string, limit int) ([]Video, error)
}

func (c Config) poolConfig() (*pgxpool.Config, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("database url is empty")
	}

	poolConfig, err := pgxpool.ParseConfig(c.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}

	if c.MinConns > 0 {
		poolConfig.MinConns = c.MinConns
	}
	if c.MaxConns > 0 {
		poolConfig.MaxConns = c.MaxConns
	}

	return poolConfig, nil
}

func New(ctx context.Context, config Config) (*DB, error) {
	poolConfig, err := config.poolConfig()
	if err != nil {
		return nil, err
	}

	pgPool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	return &DB{
		Pool: pgPool,
	}, nil
}

// NewWithBackoff creates the pool and pings it, retrying with exponential
// backoff until maxRetries attempts have failed.
func NewWithBackoff(ctx context.Context, config Config, maxRetries int) (*DB, error) {
	db, err := New(ctx, config)
	if err != nil {
		return nil, err
	}

	if maxRetries < 1 {
		maxRetries = 1
	}

	for i := range maxRetries {
		if i > 0 {
			backoff := time.Duration(1<<uint(i)) * time.Second
			log.Info().Dur("backoff", backoff).Msg("Waiting before database retry")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				db.Close()
				return nil, ctx.Err()
			}
		}

		log.Info().Int("attempt", i+1).Int("max_retries", maxRetries).Msg("Connecting to database")

		err = db.Ping(ctx)
		if err == nil {
			log.Info().
				Int("attempts_needed", i+1).
				Int32("min_conns", db.Pool.Config().MinConns).
				Int32("max_conns", db.Pool.Config().MaxConns).
				Msg("Database connected")
			return db, nil
		}

		log.Warn().Err(err).Int("attempt", i+1).Msg("Database ping failed")
	}

	db.Close()
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}

// WithConn checks out one connection for the duration of fn and always
// returns it to the pool.
func (db *DB) WithConn(ctx context.Context, fn func(Searcher) error) error {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%w: acquire connection: %v", apperr.ErrStore, err)
	}
	defer conn.Release()

	return fn(NewRepository(conn))
}

func (db *DB) Ping(ctx context.Context) error {
	if err := db.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrUnavailable, err)
	}

	return nil
}

func (db *DB) Close() {
	db.Pool.Close()
}
