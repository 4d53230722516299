package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/lningthou/asimov-backend/internal/apperr"
	"github.com/lningthou/asimov-backend/internal/database"
	"github.com/lningthou/asimov-backend/internal/embedding"
	"github.com/lningthou/asimov-backend/internal/search/mocks"
	"go.uber.org/mock/gomock"
)

func newTestService(store Store, embedder embedding.Embedder, cache ResultCache) *Service {
	return NewService(newTestRanker(store, false), embedder, cache, newTestLogger())
}

func TestService_Search_Semantic(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEmbedder := mocks.NewMockEmbedder(ctrl)
	mockCache := mocks.NewMockResultCache(ctrl)
	store := &fakeStore{semantic: []database.Video{video("A", 0.2), video("B", 0.1)}}

	req := SearchRequest{Query: "  pick up the cup ", K: 2, Mode: ModeSemantic}
	key := CacheKey(SearchRequest{Query: "pick up the cup", K: 2, Mode: ModeSemantic})

	mockCache.EXPECT().Get(gomock.Any(), key).Return(nil, false, nil)
	mockEmbedder.EXPECT().Embed(gomock.Any(), "pick up the cup").Return(testVector, nil)
	mockCache.EXPECT().Set(gomock.Any(), key, gomock.Any()).DoAndReturn(
		func(ctx context.Context, key string, value []byte) error {
			var cached []Result
			if err := json.Unmarshal(value, &cached); err != nil {
				t.Errorf("Cached value is not a result list: %v", err)
			}
			if len(cached) != 2 {
				t.Errorf("Expected 2 cached results, got %d", len(cached))
			}
			return nil
		})

	results, err := newTestService(store, mockEmbedder, mockCache).Search(context.Background(), req)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(results) != 2 || results[0].HDF5 != "B" {
		t.Errorf("Unexpected results %+v", results)
	}
}

func TestService_Search_KeywordSkipsEmbedder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEmbedder := mocks.NewMockEmbedder(ctrl)
	store := &fakeStore{keyword: []database.Video{video("A", 0.5)}}

	results, err := newTestService(store, mockEmbedder, nil).Search(context.Background(), SearchRequest{
		Query: "fold towel", K: DefaultK, Mode: ModeKeyword,
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 || results[0].SearchType != ModeKeyword {
		t.Errorf("Unexpected results %+v", results)
	}
	if store.keywordLimits[0] != DefaultK {
		t.Errorf("Expected default k=%d, got %d", DefaultK, store.keywordLimits[0])
	}
}

func TestService_Search_CacheHit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEmbedder := mocks.NewMockEmbedder(ctrl)
	mockCache := mocks.NewMockResultCache(ctrl)
	store := &fakeStore{}

	cached, _ := json.Marshal([]Result{{Task: "pour", HDF5: "X", Score: 0.03, SearchType: ModeHybrid}})
	mockCache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(cached, true, nil)

	results, err := newTestService(store, mockEmbedder, mockCache).Search(context.Background(), SearchRequest{
		Query: "pour", K: 1, Mode: ModeHybrid,
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 || results[0].HDF5 != "X" {
		t.Errorf("Expected cached result, got %+v", results)
	}
	if store.queried() {
		t.Error("Store was queried on a cache hit")
	}
}

func TestService_Search_CacheFailureFallsThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEmbedder := mocks.NewMockEmbedder(ctrl)
	mockCache := mocks.NewMockResultCache(ctrl)
	store := &fakeStore{keyword: []database.Video{video("A", 0.5)}}

	mockCache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, false, errors.New("connection refused"))
	mockCache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))

	results, err := newTestService(store, mockEmbedder, mockCache).Search(context.Background(), SearchRequest{
		Query: "cup", K: 1, Mode: ModeKeyword,
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("Expected 1 result, got %d", len(results))
	}
}

func TestService_Search_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  SearchRequest
	}{
		{"empty query", SearchRequest{Query: ""}},
		{"whitespace query", SearchRequest{Query: " \t\n"}},
		{"k zero", SearchRequest{Query: "cup", K: 0, Mode: ModeKeyword}},
		{"k unset", SearchRequest{Query: "cup"}},
		{"k negative", SearchRequest{Query: "cup", K: -1}},
		{"k above max", SearchRequest{Query: "cup", K: 101}},
		{"bad mode", SearchRequest{Query: "cup", K: DefaultK, Mode: "vector"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			// No expectations: any embedder or cache call fails the test.
			mockEmbedder := mocks.NewMockEmbedder(ctrl)
			mockCache := mocks.NewMockResultCache(ctrl)
			store := &fakeStore{}

			_, err := newTestService(store, mockEmbedder, mockCache).Search(context.Background(), tt.req)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("Expected validation error, got %v", err)
			}
			if store.queried() {
				t.Error("Store was touched for an invalid request")
			}
		})
	}
}

func TestService_Search_EmbedderUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEmbedder := mocks.NewMockEmbedder(ctrl)
	store := &fakeStore{}

	mockEmbedder.EXPECT().Embed(gomock.Any(), "cup").
		Return(nil, fmt.Errorf("%w: no credentials", embedding.ErrUnavailable))

	_, err := newTestService(store, mockEmbedder, nil).Search(context.Background(), SearchRequest{
		Query: "cup", K: DefaultK, Mode: ModeHybrid,
	})
	if !errors.Is(err, apperr.ErrUnavailable) {
		t.Errorf("Expected unavailable error, got %v", err)
	}
	if store.queried() {
		t.Error("Store was touched without a query vector")
	}
}

func TestService_ClearCache(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		_, err := newTestService(&fakeStore{}, nil, nil).ClearCache(context.Background())
		if !errors.Is(err, apperr.ErrUnavailable) {
			t.Errorf("Expected unavailable error, got %v", err)
		}
	})

	t.Run("enabled", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockCache := mocks.NewMockResultCache(ctrl)
		mockCache.EXPECT().Clear(gomock.Any()).Return(int64(7), nil)

		deleted, err := newTestService(&fakeStore{}, nil, mockCache).ClearCache(context.Background())
		if err != nil {
			t.Fatalf("ClearCache failed: %v", err)
		}
		if deleted != 7 {
			t.Errorf("Expected 7 deleted, got %d", deleted)
		}
	})
}

func TestCacheKey(t *testing.T) {
	base := SearchRequest{Query: "cup", K: 5, Mode: ModeSemantic}

	if CacheKey(base) != CacheKey(SearchRequest{Query: " cup ", K: 5, Mode: ModeSemantic}) {
		t.Error("Expected surrounding whitespace to be ignored")
	}
	if CacheKey(base) == CacheKey(SearchRequest{Query: "cup", K: 6, Mode: ModeSemantic}) {
		t.Error("Expected k to change the key")
	}
	if CacheKey(base) == CacheKey(SearchRequest{Query: "cup", K: 5, Mode: ModeKeyword}) {
		t.Error("Expected mode to change the key")
	}
}
