package search

import (
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/lningthou/asimov-backend/internal/middleware"
)

func RegisterRoutes(container *restful.Container, handler *SearchHandler) {
	ws := new(restful.WebService)
	ws.
		Path("/").
		Produces(restful.MIME_JSON)

	ws.Route(ws.GET("/search").
		To(handler.Search).
		Doc("Search videos by text").
		Metadata(restfulspec.KeyOpenAPITags, []string{"search"}).
		Param(ws.QueryParameter("q", "Search text").DataType("string").Required(true)).
		Param(ws.QueryParameter("k", "Number of results (1-100, default: 5)").DataType("integer").Required(false)).
		Param(ws.QueryParameter("mode", "semantic (default), keyword or hybrid").DataType("string").Required(false)).
		Writes([]Result{}).
		Returns(200, "OK", []Result{}).
		Returns(400, "Bad Request", middleware.ErrorResponse{}).
		Returns(503, "Service Unavailable", middleware.ErrorResponse{}).
		Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.Route(ws.GET("/health").
		To(handler.Health).
		Doc("Health check").
		Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
		Writes(HealthResponse{}).
		Returns(200, "OK", HealthResponse{}))

	ws.Route(ws.GET("/ready").
		To(handler.Ready).
		Doc("Readiness check against the database").
		Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
		Writes(HealthResponse{}).
		Returns(200, "OK", HealthResponse{}).
		Returns(503, "Service Unavailable", middleware.ErrorResponse{}))

	ws.Route(ws.POST("/admin/cache/clear").
		To(handler.ClearCache).
		Doc("Drop all cached search results").
		Metadata(restfulspec.KeyOpenAPITags, []string{"admin"}).
		Writes(ClearCacheResponse{}).
		Returns(200, "OK", ClearCacheResponse{}).
		Returns(503, "Service Unavailable", middleware.ErrorResponse{}))

	container.Add(ws)
}
