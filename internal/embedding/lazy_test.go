package embedding

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/lningthou/asimov-backend/internal/apperr"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	vector []float32
	err    error
	calls  atomic.Int32
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func TestLazy_InitializesOnceUnderConcurrency(t *testing.T) {
	var loads atomic.Int32
	inner := &fakeEmbedder{vector: []float32{1, 2, 3}}

	lazy := NewLazy(func(ctx context.Context) (Embedder, error) {
		loads.Add(1)
		return inner, nil
	}, 3, newTestLogger())

	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := lazy.Embed(context.Background(), "pick up the cup")
			assert.NoError(t, err)
			assert.Len(t, v, 3)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), loads.Load())
	assert.Equal(t, int32(32), inner.calls.Load())
}

func TestLazy_LatchesInitFailure(t *testing.T) {
	var loads atomic.Int32
	lazy := NewLazy(func(ctx context.Context) (Embedder, error) {
		loads.Add(1)
		return nil, errors.New("no credentials")
	}, 3, newTestLogger())

	for range 3 {
		_, err := lazy.Embed(context.Background(), "q")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.ErrorIs(t, err, apperr.ErrUnavailable)
	}
	assert.Equal(t, int32(1), loads.Load())
}

func TestLazy_WrongDimension(t *testing.T) {
	lazy := NewLazy(func(ctx context.Context) (Embedder, error) {
		return &fakeEmbedder{vector: []float32{1, 2}}, nil
	}, 3, newTestLogger())

	_, err := lazy.Embed(context.Background(), "q")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestLazy_ProviderErrorIsUnavailable(t *testing.T) {
	lazy := NewLazy(func(ctx context.Context) (Embedder, error) {
		return &fakeEmbedder{err: errors.New("throttled")}, nil
	}, 3, newTestLogger())

	_, err := lazy.Embed(context.Background(), "q")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCached_HitsSkipProvider(t *testing.T) {
	inner := &fakeEmbedder{vector: []float32{0.1, 0.2}}
	cached, err := NewCached(inner, 4)
	require.NoError(t, err)

	first, err := cached.Embed(context.Background(), "open drawer")
	require.NoError(t, err)
	first[0] = 99

	second, err := cached.Embed(context.Background(), "  open drawer ")
	require.NoError(t, err)

	assert.Equal(t, int32(1), inner.calls.Load())
	assert.Equal(t, float32(0.1), second[0])
	assert.Equal(t, 1, cached.Len())
}

func TestCached_ErrorsAreNotCached(t *testing.T) {
	inner := &fakeEmbedder{err: errors.New("down")}
	cached, err := NewCached(inner, 4)
	require.NoError(t, err)

	_, err = cached.Embed(context.Background(), "q")
	require.Error(t, err)
	_, err = cached.Embed(context.Background(), "q")
	require.Error(t, err)

	assert.Equal(t, int32(2), inner.calls.Load())
	assert.Equal(t, 0, cached.Len())
}
