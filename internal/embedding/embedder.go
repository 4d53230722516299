// Package embedding turns query text into fixed-dimension vectors and
// renders them as pgvector literals.
package embedding

import (
	"context"
	"fmt"

	"github.com/lningthou/asimov-backend/internal/apperr"
)

// ErrUnavailable is returned when the embedding model cannot be loaded or
// cannot produce a usable vector.
var ErrUnavailable = fmt.Errorf("embedding model %w", apperr.ErrUnavailable)

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
