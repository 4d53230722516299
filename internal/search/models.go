package search

import (
	"fmt"
	"strings"

	"github.com/lningthou/asimov-backend/internal/apperr"
)

const (
	MinK     = 1
	MaxK     = 100
	DefaultK = 5
)

type Mode string

const (
	ModeSemantic Mode = "semantic"
	ModeKeyword  Mode = "keyword"
	ModeHybrid   Mode = "hybrid"
)

var ErrInvalidMode = fmt.Errorf("%w: mode must be one of semantic, keyword, hybrid", apperr.ErrValidation)

// ParseMode accepts the query-string spelling of a mode. Empty means semantic.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeSemantic:
		return ModeSemantic, nil
	case ModeKeyword:
		return ModeKeyword, nil
	case ModeHybrid:
		return ModeHybrid, nil
	default:
		return "", ErrInvalidMode
	}
}

func (m Mode) needsVector() bool {
	return m == ModeSemantic || m == ModeHybrid
}

func (m Mode) needsText() bool {
	return m == ModeKeyword || m == ModeHybrid
}

// Result is one ranked video. Score is cosine distance for semantic (lower
// is better), ts_rank for keyword and the fused RRF score for hybrid.
type Result struct {
	Task        string  `json:"task" description:"Task label of the recording"`
	Description string  `json:"description" description:"Natural-language description"`
	Score       float64 `json:"score" description:"Distance (semantic) or relevance (keyword, hybrid)"`
	MP4         string  `json:"mp4" description:"Object URI of the video"`
	HDF5        string  `json:"hdf5" description:"Object URI of the pose/sensor file"`
	SearchType  Mode    `json:"search_type" description:"semantic, keyword or hybrid"`
}

// RankRequest is the input to Ranker.Rank. Vector is required for semantic
// and hybrid, Text for keyword and hybrid.
type RankRequest struct {
	Text   string
	Vector []float32
	K      int
	Mode   Mode
}

func validateK(k int) error {
	if k < MinK || k > MaxK {
		return fmt.Errorf("%w: k must be between %d and %d, got %d", apperr.ErrValidation, MinK, MaxK, k)
	}
	return nil
}

func validateMode(m Mode) error {
	switch m {
	case ModeSemantic, ModeKeyword, ModeHybrid:
		return nil
	default:
		return ErrInvalidMode
	}
}

func (r RankRequest) Validate() error {
	if err := validateK(r.K); err != nil {
		return err
	}
	if err := validateMode(r.Mode); err != nil {
		return err
	}
	if r.Mode.needsVector() && len(r.Vector) == 0 {
		return fmt.Errorf("%w: %s search requires a query vector", apperr.ErrValidation, r.Mode)
	}
	if r.Mode.needsText() && strings.TrimSpace(r.Text) == "" {
		return fmt.Errorf("%w: %s search requires query text", apperr.ErrValidation, r.Mode)
	}
	return nil
}

// SearchRequest is a text query as received from a caller.
type SearchRequest struct {
	Query string `json:"q" description:"Search text"`
	K     int    `json:"k,omitempty" description:"Number of results (1-100, default: 5)"`
	Mode  Mode   `json:"mode,omitempty" description:"semantic (default), keyword or hybrid"`
}

// SetDefaults fills an absent k and mode. Only facades call it, after they
// have rejected an explicit k=0.
func (r *SearchRequest) SetDefaults() {
	if r.K == 0 {
		r.K = DefaultK
	}
	if r.Mode == "" {
		r.Mode = ModeSemantic
	}
}

type HealthResponse struct {
	OK      bool   `json:"ok" description:"Liveness flag"`
	Status  string `json:"status" description:"Service status"`
	Version string `json:"version" description:"API version"`
}

type ClearCacheResponse struct {
	Deleted int64 `json:"deleted" description:"Number of cached queries removed"`
}
