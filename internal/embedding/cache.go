package embedding

import (
	"context"
	"fmt"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cached memoizes query vectors by exact (trimmed) text.
type Cached struct {
	next  Embedder
	cache *lru.Cache[string, []float32]
}

func NewCached(next Embedder, size int) (*Cached, error) {
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding cache: %w", err)
	}

	return &Cached{next: next, cache: cache}, nil
}

func (c *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	key := strings.TrimSpace(text)
	if vector, ok := c.cache.Get(key); ok {
		return slices.Clone(vector), nil
	}

	vector, err := c.next.Embed(ctx, key)
	if err != nil {
		return nil, err
	}

	c.cache.Add(key, slices.Clone(vector))
	return vector, nil
}

func (c *Cached) Len() int {
	return c.cache.Len()
}
