package search

import (
	"cmp"
	"slices"

	"github.com/lningthou/asimov-backend/internal/database"
)

// DefaultRRFConstant is the C in 1/(C + rank).
const DefaultRRFConstant = 60.0

type fusedEntry struct {
	video        database.Video
	semanticRank int
	keywordRank  int
	score        float64
}

// Fuse merges two best-first candidate lists with reciprocal rank fusion.
// Records are identified by their h5 URI; a record contributes 1/(c+rank)
// for each list it appears in. Attributes come from the semantic row when
// the record is in both lists. Ties break by h5 URI ascending.
func Fuse(semantic, keyword []database.Video, c float64, k int) []Result {
	entries := make(map[string]*fusedEntry, len(semantic)+len(keyword))

	for i, video := range semantic {
		if _, seen := entries[video.H5URI]; seen {
			continue
		}
		entries[video.H5URI] = &fusedEntry{video: video, semanticRank: i + 1}
	}

	for i, video := range keyword {
		entry, exists := entries[video.H5URI]
		if !exists {
			entries[video.H5URI] = &fusedEntry{video: video, keywordRank: i + 1}
			continue
		}
		if entry.keywordRank == 0 {
			entry.keywordRank = i + 1
		}
	}

	fused := make([]*fusedEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.semanticRank > 0 {
			entry.score += 1.0 / (c + float64(entry.semanticRank))
		}
		if entry.keywordRank > 0 {
			entry.score += 1.0 / (c + float64(entry.keywordRank))
		}
		fused = append(fused, entry)
	}

	slices.SortFunc(fused, func(a, b *fusedEntry) int {
		if a.score != b.score {
			return cmp.Compare(b.score, a.score)
		}
		return cmp.Compare(a.video.H5URI, b.video.H5URI)
	})

	if len(fused) > k {
		fused = fused[:k]
	}

	results := make([]Result, 0, len(fused))
	for _, entry := range fused {
		results = append(results, newResult(entry.video, entry.score, ModeHybrid))
	}

	return results
}

func newResult(video database.Video, score float64, mode Mode) Result {
	return Result{
		Task:        video.Task,
		Description: video.Description,
		Score:       score,
		MP4:         video.MP4URI,
		HDF5:        video.H5URI,
		SearchType:  mode,
	}
}

// orderVideos sorts rows best-first for the given single strategy.
func orderVideos(videos []database.Video, mode Mode) {
	slices.SortStableFunc(videos, func(a, b database.Video) int {
		if a.Score != b.Score {
			if mode == ModeSemantic {
				return cmp.Compare(a.Score, b.Score)
			}
			return cmp.Compare(b.Score, a.Score)
		}
		return cmp.Compare(a.H5URI, b.H5URI)
	})
}
