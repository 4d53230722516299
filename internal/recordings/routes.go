package recordings

import (
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/lningthou/asimov-backend/internal/middleware"
)

func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)
	ws.
		Path("/files").
		Produces("video/mp4", "application/x-hdf5", restful.MIME_JSON)

	ws.Route(ws.GET("/{filename}").
		To(handler.GetFile).
		Doc("Stream a recording file").
		Metadata(restfulspec.KeyOpenAPITags, []string{"files"}).
		Param(ws.PathParameter("filename", "Recording file name (.mp4, .hdf5, .h5)").DataType("string")).
		Returns(200, "OK", nil).
		Returns(400, "Bad Request", middleware.ErrorResponse{}).
		Returns(404, "Not Found", middleware.ErrorResponse{}).
		Returns(503, "Service Unavailable", middleware.ErrorResponse{}))

	container.Add(ws)
}
