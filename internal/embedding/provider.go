package embedding

import (
	"context"
	"fmt"

	"github.com/lningthou/asimov-backend/internal/config"
	"github.com/rs/zerolog"
)

// NewFromConfig returns the process-wide query embedder: a lazily loaded
// provider behind an LRU of recent query vectors.
func NewFromConfig(cfg config.EmbeddingConfig, logger *zerolog.Logger) (Embedder, error) {
	var factory Factory

	switch cfg.Provider {
	case "bedrock", "":
		factory = func(ctx context.Context) (Embedder, error) {
			client, err := NewBedrockClient(ctx, cfg.Region)
			if err != nil {
				return nil, err
			}
			return NewBedrockEmbedder(client, cfg.ModelID, cfg.Dimensions), nil
		}
	case "openai":
		factory = func(ctx context.Context) (Embedder, error) {
			return NewOpenAIEmbedder(cfg.OpenAIKey, cfg.ModelID, cfg.Dimensions)
		}
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}

	logger.Info().
		Str("provider", cfg.Provider).
		Str("model_id", cfg.ModelID).
		Int("dimensions", cfg.Dimensions).
		Msg("Embedding provider configured")

	lazy := NewLazy(factory, cfg.Dimensions, logger)
	if cfg.CacheSize <= 0 {
		return lazy, nil
	}

	return NewCached(lazy, cfg.CacheSize)
}
