package database

import (
	"context"
	"flag"
	"os"
	"testing"
	"time"
)

var runIntegration = flag.Bool("integration", false, "Run integration tests against DATABASE_URL")

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	if !*runIntegration {
		t.Skip("Skipping integration test (use -integration flag)")
	}

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := NewWithBackoff(ctx, Config{URL: url, MinConns: 1, MaxConns: 2}, 1)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(db.Close)

	return db
}

func TestIntegration_KeywordSearch(t *testing.T) {
	db := setupTestDB(t)

	var videos []Video
	err := db.WithConn(context.Background(), func(s Searcher) error {
		var err error
		videos, err = s.KeywordSearch(context.Background(), "pour water", 5)
		return err
	})
	if err != nil {
		t.Fatalf("KeywordSearch failed: %v", err)
	}

	if len(videos) > 5 {
		t.Errorf("Expected at most 5 rows, got %d", len(videos))
	}
	for i := 1; i < len(videos); i++ {
		if videos[i].Score > videos[i-1].Score {
			t.Errorf("Rank increased at %d: %f > %f", i, videos[i].Score, videos[i-1].Score)
		}
	}
}

func TestIntegration_SemanticSearchReleasesConnection(t *testing.T) {
	db := setupTestDB(t)

	// A malformed literal fails in Postgres; the connection must still return to the pool.
	err := db.WithConn(context.Background(), func(s Searcher) error {
		_, err := s.SemanticSearch(context.Background(), "[not-a-vector]", 5)
		return err
	})
	if err == nil {
		t.Fatal("Expected error for malformed vector literal")
	}

	if acquired := db.Pool.Stat().AcquiredConns(); acquired != 0 {
		t.Errorf("Expected 0 acquired connections, got %d", acquired)
	}
}
