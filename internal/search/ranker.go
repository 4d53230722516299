package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lningthou/asimov-backend/internal/apperr"
	"github.com/lningthou/asimov-backend/internal/database"
	"github.com/lningthou/asimov-backend/internal/embedding"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Store hands out one pooled connection per call.
type Store interface {
	WithConn(ctx context.Context, fn func(database.Searcher) error) error
}

type RankerConfig struct {
	RRFConstant    float64
	QueryTimeout   time.Duration
	HybridParallel bool
}

type Ranker struct {
	store  Store
	config RankerConfig
	logger *zerolog.Logger
}

func NewRanker(store Store, config RankerConfig, logger *zerolog.Logger) *Ranker {
	if config.RRFConstant <= 0 {
		config.RRFConstant = DefaultRRFConstant
	}

	return &Ranker{
		store:  store,
		config: config,
		logger: logger,
	}
}

// Rank validates req, runs the strategy its mode names and returns at most
// K results ordered best-first.
func (r *Ranker) Rank(ctx context.Context, req RankRequest) ([]Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if r.config.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.QueryTimeout)
		defer cancel()
	}

	start := time.Now()

	var results []Result
	var err error

	switch req.Mode {
	case ModeSemantic:
		results, err = r.semantic(ctx, req)
	case ModeKeyword:
		results, err = r.keyword(ctx, req)
	case ModeHybrid:
		if r.config.HybridParallel {
			results, err = r.hybridParallel(ctx, req)
		} else {
			results, err = r.hybrid(ctx, req)
		}
	}

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %s search exceeded %s", apperr.ErrUnavailable, req.Mode, r.config.QueryTimeout)
		}
		r.logger.Debug().Err(err).Str("mode", string(req.Mode)).Int("k", req.K).Msg("Rank failed")
		return nil, err
	}

	r.logger.Debug().
		Str("mode", string(req.Mode)).
		Int("k", req.K).
		Int("results", len(results)).
		Dur("duration", time.Since(start)).
		Msg("Rank complete")

	return results, nil
}

func (r *Ranker) semantic(ctx context.Context, req RankRequest) ([]Result, error) {
	var videos []database.Video
	err := r.store.WithConn(ctx, func(s database.Searcher) error {
		var err error
		videos, err = s.SemanticSearch(ctx, embedding.FormatVector(req.Vector), req.K)
		return err
	})
	if err != nil {
		return nil, err
	}

	return toResults(videos, ModeSemantic, req.K), nil
}

func (r *Ranker) keyword(ctx context.Context, req RankRequest) ([]Result, error) {
	var videos []database.Video
	err := r.store.WithConn(ctx, func(s database.Searcher) error {
		var err error
		videos, err = s.KeywordSearch(ctx, req.Text, req.K)
		return err
	})
	if err != nil {
		return nil, err
	}

	return toResults(videos, ModeKeyword, req.K), nil
}

// hybrid fetches 2k candidates per strategy on a single connection.
func (r *Ranker) hybrid(ctx context.Context, req RankRequest) ([]Result, error) {
	candidates := 2 * req.K
	literal := embedding.FormatVector(req.Vector)

	var semantic, keyword []database.Video
	err := r.store.WithConn(ctx, func(s database.Searcher) error {
		var err error
		semantic, err = s.SemanticSearch(ctx, literal, candidates)
		if err != nil {
			return err
		}
		keyword, err = s.KeywordSearch(ctx, req.Text, candidates)
		return err
	})
	if err != nil {
		return nil, err
	}

	return r.fuse(semantic, keyword, req.K), nil
}

// hybridParallel runs both candidate queries concurrently, each on its own
// pooled connection.
func (r *Ranker) hybridParallel(ctx context.Context, req RankRequest) ([]Result, error) {
	candidates := 2 * req.K
	literal := embedding.FormatVector(req.Vector)

	var semantic, keyword []database.Video
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return r.store.WithConn(gctx, func(s database.Searcher) error {
			var err error
			semantic, err = s.SemanticSearch(gctx, literal, candidates)
			return err
		})
	})

	g.Go(func() error {
		return r.store.WithConn(gctx, func(s database.Searcher) error {
			var err error
			keyword, err = s.KeywordSearch(gctx, req.Text, candidates)
			return err
		})
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return r.fuse(semantic, keyword, req.K), nil
}

func (r *Ranker) fuse(semantic, keyword []database.Video, k int) []Result {
	orderVideos(semantic, ModeSemantic)
	orderVideos(keyword, ModeKeyword)

	return Fuse(semantic, keyword, r.config.RRFConstant, k)
}

func toResults(videos []database.Video, mode Mode, k int) []Result {
	orderVideos(videos, mode)
	if len(videos) > k {
		videos = videos[:k]
	}

	results := make([]Result, 0, len(videos))
	for _, video := range videos {
		results = append(results, newResult(video, video.Score, mode))
	}

	return results
}
