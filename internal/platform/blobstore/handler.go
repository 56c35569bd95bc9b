package blobstore

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/synthfhir/synthfhir/pkg/pagination"
)

// Handler provides Echo HTTP handlers for stored exports. Error bodies use
// the {"detail": ...} envelope the client understands.
type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes mounts the export routes on the supplied Echo group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/download/:filename", h.handleDownload)
	g.GET("/exports", h.handleList)
	g.GET("/exports/:filename", h.handleGetMetadata)
	g.DELETE("/exports/:filename", h.handleDelete)
}

func detail(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"detail": msg})
}

func storeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrFileNotFound):
		return detail(c, http.StatusNotFound, "File not found")
	case errors.Is(err, ErrAccessDenied):
		return detail(c, http.StatusForbidden, "Access denied")
	case errors.Is(err, ErrMissingFileName):
		return detail(c, http.StatusBadRequest, err.Error())
	default:
		return detail(c, http.StatusInternalServerError, err.Error())
	}
}

// fileParam returns the filename path parameter. The client escapes the
// whole value as one segment, so it may still carry %2F.
func fileParam(c echo.Context) string {
	raw := c.Param("filename")
	if name, err := url.PathUnescape(raw); err == nil {
		return name
	}
	return raw
}

func (h *Handler) handleDownload(c echo.Context) error {
	rc, meta, err := h.store.Open(c.Request().Context(), fileParam(c))
	if err != nil {
		return storeError(c, err)
	}
	defer rc.Close()

	c.Response().Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, meta.Name))
	return c.Stream(http.StatusOK, meta.ContentType, rc)
}

func (h *Handler) handleGetMetadata(c echo.Context) error {
	meta, err := h.store.Stat(c.Request().Context(), fileParam(c))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, meta)
}

func (h *Handler) handleDelete(c echo.Context) error {
	if err := h.store.Delete(c.Request().Context(), fileParam(c)); err != nil {
		return storeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) handleList(c echo.Context) error {
	p := pagination.FromContext(c)
	items, total, err := h.store.List(c.Request().Context(), c.QueryParam("resource"), p.Limit, p.Offset)
	if err != nil {
		return storeError(c, err)
	}
	if items == nil {
		items = []*FileMetadata{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, p.Limit, p.Offset))
}
