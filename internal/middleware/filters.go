package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const RequestIDHeader = "X-Request-ID"

// Logger tags every request with an id and logs its outcome.
func Logger(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	start := time.Now()

	requestID := req.Request.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.SetAttribute("request_id", requestID)
	resp.AddHeader(RequestIDHeader, requestID)

	chain.ProcessFilter(req, resp)

	status := resp.StatusCode()
	event := log.Info()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	} else if status >= http.StatusBadRequest {
		event = log.Warn()
	}

	event.
		Str("request_id", requestID).
		Str("method", req.Request.Method).
		Str("path", req.Request.URL.Path).
		Int("status", status).
		Dur("duration", time.Since(start)).
		Msg("HTTP request")
}

func RecoverPanic(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("path", req.Request.URL.Path).
				Bytes("stack", debug.Stack()).
				Msg("Recovered from handler panic")
			HandleError(resp, fmt.Errorf("internal error"), http.StatusInternalServerError)
		}
	}()

	chain.ProcessFilter(req, resp)
}
