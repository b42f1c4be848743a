package medication

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
	user.GET("/residents/:residentId/medications", h.ListForResident)
	user.GET("/residents/:residentId/medications/grouped", h.Grouped)
	user.GET("/residents/:residentId/medications/discontinued", h.DiscontinuedDates)
	user.GET("/medications/:id", h.Get)
	user.GET("/medications/:id/count", h.ControlledCount)
	user.POST("/medications/discontinue", h.Discontinue)

	admin := api.Group("", auth.RequireRole("admin"))
	admin.POST("/medications", h.Create)
	admin.PUT("/medications/:id", h.Update)
	admin.DELETE("/medications/:id", h.Delete)
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	m, err := h.svc.Create(c.Request().Context(), &req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	h.audit.Record(c.Request().Context(), auth.UsernameFromContext(c.Request().Context()),
		"create_medication", fmt.Sprintf("Added %s medication %s", m.MedicationType, m.MedicationName))
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	m, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "medication not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) ListForResident(c echo.Context) error {
	residentID, err := uuid.Parse(c.Param("residentId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid resident id")
	}
	var items []*Medication
	if c.QueryParam("active") == "true" {
		items, err = h.svc.ListActive(c.Request().Context(), residentID)
	} else {
		items, err = h.svc.ListForResident(c.Request().Context(), residentID)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"medications": items})
}

func (h *Handler) Grouped(c echo.Context) error {
	residentID, err := uuid.Parse(c.Param("residentId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid resident id")
	}
	g, err := h.svc.Grouped(c.Request().Context(), residentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, g)
}

func (h *Handler) DiscontinuedDates(c echo.Context) error {
	residentID, err := uuid.Parse(c.Param("residentId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid resident id")
	}
	dates, err := h.svc.DiscontinuedDates(c.Request().Context(), residentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	out := make(map[string]string, len(dates))
	for name, d := range dates {
		out[name] = d.Format("2006-01-02")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"discontinued": out})
}

func (h *Handler) ControlledCount(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	count, err := h.svc.ControlledCount(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "medication not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int{"count": count})
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
	m, err := h.svc.Update(c.Request().Context(), id, &req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "medication not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	h.audit.Record(c.Request().Context(), auth.UsernameFromContext(c.Request().Context()),
		"update_medication", fmt.Sprintf("Updated medication %s", m.MedicationName))
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "medication not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.audit.Record(c.Request().Context(), auth.UsernameFromContext(c.Request().Context()),
		"delete_medication", fmt.Sprintf("Removed medication %s", id))
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Discontinue(c echo.Context) error {
	var req DiscontinueRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	applied, err := h.svc.Discontinue(c.Request().Context(), &req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if applied {
		h.audit.Record(c.Request().Context(), auth.UsernameFromContext(c.Request().Context()),
			"discontinue_medication",
			fmt.Sprintf("Discontinued %s for %s effective %s", req.MedicationName, req.ResidentName, req.Date))
	}
	return c.JSON(http.StatusOK, map[string]bool{"applied": applied})
}
