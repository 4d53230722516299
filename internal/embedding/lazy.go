package embedding

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Factory builds the underlying embedder. It runs at most once per Lazy.
type Factory func(ctx context.Context) (Embedder, error)

// Lazy defers building the model client until the first Embed call.
// Concurrent first callers block on one initialization; a failed
// initialization is remembered and reported on every later call.
type Lazy struct {
	factory    Factory
	dimensions int
	logger     *zerolog.Logger

	once     sync.Once
	embedder Embedder
	initErr  error
}

func NewLazy(factory Factory, dimensions int, logger *zerolog.Logger) *Lazy {
	return &Lazy{
		factory:    factory,
		dimensions: dimensions,
		logger:     logger,
	}
}

func (l *Lazy) load() error {
	l.once.Do(func() {
		// Initialization is shared by every caller, so no single request's
		// cancellation may abort it.
		embedder, err := l.factory(context.Background())
		if err != nil {
			l.initErr = err
			l.logger.Error().Err(err).Msg("Embedding model failed to load")
			return
		}
		if embedder == nil {
			l.initErr = fmt.Errorf("factory returned no embedder")
			l.logger.Error().Err(l.initErr).Msg("Embedding model failed to load")
			return
		}
		l.embedder = embedder
		l.logger.Info().Int("dimensions", l.dimensions).Msg("Embedding model loaded")
	})

	if l.initErr != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, l.initErr)
	}
	return nil
}

func (l *Lazy) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := l.load(); err != nil {
		return nil, err
	}

	vector, err := l.embedder.Embed(ctx, text)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if l.dimensions > 0 && len(vector) != l.dimensions {
		return nil, fmt.Errorf("%w: expected %d dimensions, got %d", ErrUnavailable, l.dimensions, len(vector))
	}

	return vector, nil
}
