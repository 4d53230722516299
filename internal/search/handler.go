package search

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/emicklei/go-restful/v3"
	"github.com/lningthou/asimov-backend/internal/apperr"
	"github.com/lningthou/asimov-backend/internal/middleware"
	"github.com/rs/zerolog"
)

const apiVersion = "1.0.0"

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type SearchHandler struct {
	service *Service
	pinger  Pinger
	logger  *zerolog.Logger
}

func NewSearchHandler(service *Service, pinger Pinger, logger *zerolog.Logger) *SearchHandler {
	return &SearchHandler{
		service: service,
		pinger:  pinger,
		logger:  logger,
	}
}

// Search handles GET /search?q=&k=&mode=
func (h *SearchHandler) Search(req *restful.Request, resp *restful.Response) {
	searchReq, err := parseSearchRequest(req)
	if err != nil {
		middleware.WriteAppError(resp, err)
		return
	}

	ctx := req.Request.Context()
	results, err := h.service.Search(ctx, searchReq)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("mode", string(searchReq.Mode)).
			Int("k", searchReq.K).
			Msg("Search failed")
		middleware.WriteAppError(resp, err)
		return
	}

	h.logger.Info().
		Str("mode", string(searchReq.Mode)).
		Int("k", searchReq.K).
		Int("count", len(results)).
		Msg("Search complete")

	resp.WriteHeaderAndEntity(http.StatusOK, results)
}

// Health handles GET /health
func (h *SearchHandler) Health(req *restful.Request, resp *restful.Response) {
	resp.WriteHeaderAndEntity(http.StatusOK, HealthResponse{
		OK:      true,
		Status:  "ok",
		Version: apiVersion,
	})
}

// Ready handles GET /ready
func (h *SearchHandler) Ready(req *restful.Request, resp *restful.Response) {
	if err := h.pinger.Ping(req.Request.Context()); err != nil {
		h.logger.Warn().Err(err).Msg("Readiness check failed")
		middleware.HandleError(resp, err, http.StatusServiceUnavailable)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, HealthResponse{
		OK:      true,
		Status:  "ready",
		Version: apiVersion,
	})
}

// ClearCache handles POST /admin/cache/clear
func (h *SearchHandler) ClearCache(req *restful.Request, resp *restful.Response) {
	deleted, err := h.service.ClearCache(req.Request.Context())
	if err != nil {
		middleware.WriteAppError(resp, err)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, ClearCacheResponse{Deleted: deleted})
}

func parseSearchRequest(req *restful.Request) (SearchRequest, error) {
	searchReq := SearchRequest{
		Query: req.QueryParameter("q"),
	}

	if strings.TrimSpace(searchReq.Query) == "" {
		return searchReq, fmt.Errorf("%w: q must be non-empty", apperr.ErrValidation)
	}

	if kStr := req.QueryParameter("k"); kStr != "" {
		k, err := strconv.Atoi(kStr)
		if err != nil {
			return searchReq, fmt.Errorf("%w: k must be an integer", apperr.ErrValidation)
		}
		if k == 0 {
			return searchReq, fmt.Errorf("%w: k must be between %d and %d, got 0", apperr.ErrValidation, MinK, MaxK)
		}
		searchReq.K = k
	}

	mode, err := ParseMode(req.QueryParameter("mode"))
	if err != nil {
		return searchReq, err
	}
	searchReq.Mode = mode

	searchReq.SetDefaults()
	return searchReq, nil
}
