package recordings

import (
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/emicklei/go-restful/v3"
	"github.com/lningthou/asimov-backend/internal/middleware"
	"github.com/rs/zerolog"
)

type Handler struct {
	source Source
	logger *zerolog.Logger
}

func NewHandler(source Source, logger *zerolog.Logger) *Handler {
	return &Handler{
		source: source,
		logger: logger,
	}
}

// GetFile handles GET /files/{filename}
func (h *Handler) GetFile(req *restful.Request, resp *restful.Response) {
	name := req.PathParameter("filename")

	if h.source == nil {
		middleware.HandleError(resp, fmt.Errorf("no recordings source configured"), http.StatusServiceUnavailable)
		return
	}

	ctx := req.Request.Context()
	obj, err := h.source.Open(ctx, name)
	if err != nil {
		h.logger.Warn().Err(err).Str("filename", name).Msg("Unable to open recording")
		middleware.WriteAppError(resp, err)
		return
	}
	defer obj.Body.Close()

	header := resp.Header()
	header.Set("Content-Type", obj.ContentType)
	header.Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": name}))
	if obj.Size >= 0 {
		header.Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	resp.WriteHeader(http.StatusOK)

	written, err := Stream(ctx, resp, obj.Body)
	if err != nil {
		// Headers are already sent; the client sees a truncated body.
		h.logger.Error().Err(err).Str("filename", name).Int64("bytes", written).Msg("Recording stream aborted")
		return
	}

	h.logger.Info().Str("filename", name).Int64("bytes", written).Msg("Recording streamed")
}
