package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/coursecatalog/backend/core/image"
)

func registerImageRoutes(g *echo.Group, s *Server) {
	g.GET("/:id", s.imageServe)
}

func (s *Server) imageServe(ctx echo.Context) error {
	img, content, err := s.ImageSvc.Open(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == image.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "opening image")
	}
	defer content.Close()

	ctx.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return ctx.Stream(http.StatusOK, img.MimeType, content)
}
