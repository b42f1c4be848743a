package resident

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/caretech/carechart/internal/domain/audit"
	"github.com/caretech/carechart/internal/platform/auth"
	"github.com/caretech/carechart/pkg/pagination"
)

type Handler struct {
	svc   *Service
	audit audit.Recorder
}

func NewHandler(svc *Service, rec audit.Recorder) *Handler {
	return &Handler{svc: svc, audit: rec}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole("user"))
	read.GET("/residents", h.List)
	read.GET("/residents/names", h.ListNames)
	read.GET("/residents/count", h.Count)
	read.GET("/residents/:id", h.Get)

	write := api.Group("", auth.RequireRole("admin"))
	write.POST("/residents", h.Create)
	write.PUT("/residents/:id", h.Update)
	write.DELETE("/residents/:id", h.Delete)
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	res, err := h.svc.Create(c.Request().Context(), &req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	h.audit.Record(c.Request().Context(), auth.UsernameFromContext(c.Request().Context()),
		"create_resident", fmt.Sprintf("Added resident %s", res.Name))
	return c.JSON(http.StatusCreated, res)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	res, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "resident not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListNames(c echo.Context) error {
	names, err := h.svc.ListNames(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"names": names})
}

func (h *Handler) Count(c echo.Context) error {
	count, err := h.svc.Count(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int{"count": count})
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	res, err := h.svc.Update(c.Request().Context(), id, &req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "resident not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	h.audit.Record(c.Request().Context(), auth.UsernameFromContext(c.Request().Context()),
		"update_resident", fmt.Sprintf("Updated resident %s", res.Name))
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "resident not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.audit.Record(c.Request().Context(), auth.UsernameFromContext(c.Request().Context()),
		"delete_resident", fmt.Sprintf("Removed resident %s", id))
	return c.NoContent(http.StatusNoContent)
}
