package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lningthou/asimov-backend/internal/apperr"
	"github.com/lningthou/asimov-backend/internal/embedding"
	"github.com/rs/zerolog"
)

//go:generate mockgen -destination=mocks/mocks.go -package=mocks github.com/lningthou/asimov-backend/internal/embedding Embedder
//go:generate mockgen -destination=mocks/cache.go -package=mocks . ResultCache

// ResultCache stores serialized result lists by query key.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Clear(ctx context.Context) (int64, error)
}

type Service struct {
	ranker   *Ranker
	embedder embedding.Embedder
	cache    ResultCache
	logger   *zerolog.Logger
}

// NewService wires the query path. cache may be nil.
func NewService(ranker *Ranker, embedder embedding.Embedder, cache ResultCache, logger *zerolog.Logger) *Service {
	return &Service{
		ranker:   ranker,
		embedder: embedder,
		cache:    cache,
		logger:   logger,
	}
}

// Search runs one query. K is taken as given; callers that accept an
// omitted k apply DefaultK themselves via SetDefaults.
func (s *Service) Search(ctx context.Context, req SearchRequest) ([]Result, error) {
	if req.Mode == "" {
		req.Mode = ModeSemantic
	}
	req.Query = strings.TrimSpace(req.Query)

	if req.Query == "" {
		return nil, fmt.Errorf("%w: q must be non-empty", apperr.ErrValidation)
	}
	if err := validateK(req.K); err != nil {
		return nil, err
	}
	if err := validateMode(req.Mode); err != nil {
		return nil, err
	}

	key := CacheKey(req)
	if cached, ok := s.lookup(ctx, key); ok {
		return cached, nil
	}

	rankReq := RankRequest{
		Text: req.Query,
		K:    req.K,
		Mode: req.Mode,
	}

	if req.Mode.needsVector() {
		vector, err := s.embedder.Embed(ctx, req.Query)
		if err != nil {
			s.logger.Debug().Err(err).Msg("Unable to embed query")
			return nil, err
		}
		rankReq.Vector = vector
	}

	results, err := s.ranker.Rank(ctx, rankReq)
	if err != nil {
		return nil, err
	}

	s.store(ctx, key, results)

	return results, nil
}

// ClearCache drops every cached result list.
func (s *Service) ClearCache(ctx context.Context) (int64, error) {
	if s.cache == nil {
		return 0, fmt.Errorf("%w: result cache is disabled", apperr.ErrUnavailable)
	}

	deleted, err := s.cache.Clear(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: clear cache: %v", apperr.ErrUnavailable, err)
	}

	s.logger.Info().Int64("deleted", deleted).Msg("Result cache cleared")
	return deleted, nil
}

// CacheKey identifies a normalized query.
func CacheKey(req SearchRequest) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%d|%s", req.Mode, req.K, strings.TrimSpace(req.Query)))
	return hex.EncodeToString(sum[:])
}

func (s *Service) lookup(ctx context.Context, key string) ([]Result, bool) {
	if s.cache == nil {
		return nil, false
	}

	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Result cache read failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var results []Result
	if err := json.Unmarshal(data, &results); err != nil {
		s.logger.Warn().Err(err).Msg("Discarding unreadable cache entry")
		return nil, false
	}

	s.logger.Debug().Str("key", key).Msg("Result cache hit")
	return results, true
}

func (s *Service) store(ctx context.Context, key string, results []Result) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(results)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Unable to encode results for cache")
		return
	}

	if err := s.cache.Set(ctx, key, data); err != nil {
		s.logger.Warn().Err(err).Msg("Result cache write failed")
	}
}
