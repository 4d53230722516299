package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lningthou/asimov-backend/internal/apperr"
)

// Querier is the subset of pgx shared by pools, pooled connections and
// transactions.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type repository struct {
	q Querier
}

// NewRepository exposes the search queries over any Querier.
func NewRepository(q Querier) Searcher {
	return &repository{q: q}
}

const semanticSearchQuery = `
	SELECT
		task,
		description,
		s3_uri_mp4,
		s3_uri_h5,
		embedding <=> $1::vector AS score
	FROM egodex_videos
	ORDER BY embedding <=> $1::vector
	LIMIT $2`

const keywordSearchQuery = `
	SELECT
		task,
		description,
		s3_uri_mp4,
		s3_uri_h5,
		ts_rank(description_tsv, websearch_to_tsquery('english', $1))::float8 AS score
	FROM egodex_videos
	WHERE description_tsv @@ websearch_to_tsquery('english', $1)
	ORDER BY score DESC
	LIMIT $2`

func (r *repository) SemanticSearch(ctx context.Context, vectorLiteral string, limit int) ([]Video, error) {
	rows, err := r.q.Query(ctx, semanticSearchQuery, vectorLiteral, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: semantic search: %v", apperr.ErrStore, err)
	}

	return scanVideos(rows)
}

func (r *repository) KeywordSearch(ctx context.Context, text string, limit int) ([]Video, error) {
	rows, err := r.q.Query(ctx, keywordSearchQuery, text, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: keyword search: %v", apperr.ErrStore, err)
	}

	return scanVideos(rows)
}

func scanVideos(rows pgx.Rows) ([]Video, error) {
	defer rows.Close()

	var videos []Video
	for rows.Next() {
		var video Video
		var description *string

		if err := rows.Scan(&video.Task, &description, &video.MP4URI, &video.H5URI, &video.Score); err != nil {
			return nil, fmt.Errorf("%w: failed to scan row: %v", apperr.ErrStore, err)
		}
		if description != nil {
			video.Description = *description
		}

		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: row iteration error: %v", apperr.ErrStore, err)
	}

	return videos, nil
}
