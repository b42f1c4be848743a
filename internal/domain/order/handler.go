package order

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/caretech/carechart/internal/domain/audit"
	"github.com/caretech/carechart/internal/platform/auth"
)

type Handler struct {
	svc   *Service
	audit audit.Recorder
}

func NewHandler(svc *Service, rec audit.Recorder) *Handler {
	return &Handler{svc: svc, audit: rec}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	user := api.Group("", auth.RequireRole("user"))
	user.GET("/residents/:residentId/orders", h.ListForResident)
	user.GET("/orders/:id", h.Get)
	user.GET("/orders/:id/administrations", h.MonthAdministrations)
	user.POST("/orders/:id/perform", h.RecordPerformance)
	user.POST("/orders/:id/discontinue", h.Discontinue)

	admin := api.Group("", auth.RequireRole("admin"))
	admin.POST("/orders", h.Create)
	admin.PUT("/orders/:id", h.Update)
	admin.DELETE("/orders/:id", h.Delete)
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	o, err := h.svc.Create(c.Request().Context(), &req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	h.audit.Record(c.Request().Context(), auth.UsernameFromContext(c.Request().Context()),
		"create_order", fmt.Sprintf("Added order %s", o.OrderName))
	return c.JSON(http.StatusCreated, o)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	o, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) ListForResident(c echo.Context) error {
	residentID, err := uuid.Parse(c.Param("residentId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid resident id")
	}
	items, err := h.svc.ListForResident(c.Request().Context(), residentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"orders": items})
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	o, err := h.svc.Update(c.Request().Context(), id, &req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	h.audit.Record(c.Request().Context(), auth.UsernameFromContext(c.Request().Context()),
		"update_order", fmt.Sprintf("Updated order %s", o.OrderName))
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.audit.Record(c.Request().Context(), auth.UsernameFromContext(c.Request().Context()),
		"delete_order", fmt.Sprintf("Removed order %s", id))
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Discontinue(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req DiscontinueRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	applied, err := h.svc.Discontinue(c.Request().Context(), id, req.Date)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if applied {
		h.audit.Record(c.Request().Context(), auth.UsernameFromContext(c.Request().Context()),
			"discontinue_order", fmt.Sprintf("Discontinued order %s effective %s", id, req.Date))
	}
	return c.JSON(http.StatusOK, map[string]bool{"applied": applied})
}

func (h *Handler) RecordPerformance(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req PerformRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Initials == "" {
		req.Initials = auth.InitialsFromContext(c.Request().Context())
	}
	a, err := h.svc.RecordPerformance(c.Request().Context(), id, &req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	h.audit.Record(c.Request().Context(), auth.UsernameFromContext(c.Request().Context()),
		"perform_order", fmt.Sprintf("Recorded order %s performed on %s", id, req.Date))
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) MonthAdministrations(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	items, err := h.svc.MonthAdministrations(c.Request().Context(), id, c.QueryParam("month"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"administrations": items})
}
