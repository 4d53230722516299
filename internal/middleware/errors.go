package middleware

import (
	"errors"
	"net/http"

	"github.com/emicklei/go-restful/v3"
	"github.com/lningthou/asimov-backend/internal/apperr"
	"github.com/rs/zerolog/log"
)

type ErrorResponse struct {
	Error   string `json:"error" description:"Error message"`
	Code    int    `json:"code" description:"HTTP status code"`
	Details string `json:"details,omitempty" description:"Additional error details"`
}

// HandleError writes err as an ErrorResponse with the given status.
func HandleError(resp *restful.Response, err error, status int) {
	body := ErrorResponse{
		Error: http.StatusText(status),
		Code:  status,
	}
	if err != nil {
		body.Details = err.Error()
	}

	if writeErr := resp.WriteHeaderAndEntity(status, body); writeErr != nil {
		log.Error().Err(writeErr).Int("status", status).Msg("Failed to write error response")
	}
}

// WriteAppError maps err to a status through its apperr kind. Internal
// failures are reported without their details.
func WriteAppError(resp *restful.Response, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		HandleError(resp, errors.New("internal error"), status)
		return
	}
	HandleError(resp, err, status)
}
