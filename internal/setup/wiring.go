package setup

import (
	"context"
	"fmt"

	"github.com/lningthou/asimov-backend/internal/cache"
	"github.com/lningthou/asimov-backend/internal/config"
	"github.com/lningthou/asimov-backend/internal/database"
	"github.com/lningthou/asimov-backend/internal/embedding"
	"github.com/lningthou/asimov-backend/internal/recordings"
	"github.com/lningthou/asimov-backend/internal/redis"
	"github.com/lningthou/asimov-backend/internal/search"
	"github.com/rs/zerolog"
)

const redisConnectRetries = 3

type Dependencies struct {
	DB         *database.DB
	Service    *search.Service
	Recordings recordings.Source
	Logger     *zerolog.Logger

	closers []func()
}

// Wire connects to the database and builds the search stack. The embedder
// is not loaded until the first query that needs it.
func Wire(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: logger}

	db, err := database.NewWithBackoff(ctx, database.Config{
		URL:      cfg.Database.URL,
		MinConns: int32(cfg.Database.MinConns),
		MaxConns: int32(cfg.Database.MaxConns),
	}, cfg.Database.ConnectRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	deps.DB = db
	deps.closers = append(deps.closers, db.Close)

	embedder, err := embedding.NewFromConfig(cfg.Embedding, logger)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to configure embedder: %w", err)
	}

	var resultCache search.ResultCache
	if cfg.Redis.Addr != "" {
		client, err := redis.ConnectRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, redisConnectRetries)
		if err != nil {
			logger.Warn().Err(err).Msg("Result cache disabled")
		} else {
			redisCache := cache.NewRedisSearchCache(client, cfg.Redis.TTL, logger)
			resultCache = redisCache
			deps.closers = append(deps.closers, func() { _ = redisCache.Close() })
		}
	}

	ranker := search.NewRanker(db, search.RankerConfig{
		RRFConstant:    cfg.Search.RRFConstant,
		QueryTimeout:   cfg.Search.QueryTimeout,
		HybridParallel: cfg.Search.HybridParallel,
	}, logger)
	deps.Service = search.NewService(ranker, embedder, resultCache, logger)

	source, err := NewRecordingsSource(ctx, cfg.Recordings)
	if err != nil {
		deps.Close()
		return nil, err
	}
	deps.Recordings = source

	return deps, nil
}

// Close releases every connection Wire opened, newest first.
func (d *Dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
	d.closers = nil
}

// NewRecordingsSource prefers the bucket when both a bucket and a directory
// are configured. It returns nil when neither is.
func NewRecordingsSource(ctx context.Context, cfg config.RecordingsConfig) (recordings.Source, error) {
	switch {
	case cfg.Bucket != "":
		client, err := recordings.NewS3Client(ctx, cfg.Region)
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		return recordings.NewS3Source(client, cfg.Bucket, cfg.Prefix), nil
	case cfg.Dir != "":
		return recordings.LocalSource{Root: cfg.Dir}, nil
	default:
		return nil, nil
	}
}
