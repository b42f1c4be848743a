package chart

import (
	"errors"
	"fmt"
	"net/http"

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
	g := api.Group("", auth.RequireRole("user"))
	g.GET("/charts/adl", h.ADLMonth)
	g.GET("/charts/adl/day", h.ADLDay)
	g.GET("/charts/emar", h.EMARMonth)
	g.GET("/charts/emar/events", h.Events)
	g.POST("/charts/adl", h.SaveADL)
	g.POST("/charts/emar", h.SaveEMAR)
	g.POST("/charts/emar/prn", h.RecordPRN)
	g.POST("/charts/emar/controlled", h.RecordControlled)
}

// SaveRequest carries a month of grid edits keyed the way the charting UI
// names its cells.
type SaveRequest struct {
	ResidentName string            `json:"resident_name"`
	Month        string            `json:"month"` // YYYY-MM
	Values       map[string]string `json:"values"`
}

func (h *Handler) SaveADL(c echo.Context) error {
	var req SaveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	edits := CollectADLEdits(req.Values)
	err := h.svc.SaveADLMonth(c.Request().Context(), req.ResidentName, req.Month, edits)
	if err != nil {
		if errors.Is(err, ErrResidentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "resident not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	h.audit.Record(c.Request().Context(), auth.UsernameFromContext(c.Request().Context()),
		"save_adl_chart", fmt.Sprintf("Saved ADL chart for %s (%s)", req.ResidentName, req.Month))
	return c.JSON(http.StatusOK, map[string]int{"saved": len(edits)})
}

func (h *Handler) SaveEMAR(c echo.Context) error {
	var req SaveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	result, err := h.svc.SaveEMARMonth(c.Request().Context(), req.ResidentName, req.Month,
		CollectEMAREdits(req.Values))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	h.audit.Record(c.Request().Context(), auth.UsernameFromContext(c.Request().Context()),
		"save_emar_chart", fmt.Sprintf("Saved eMAR chart for %s (%s)", req.ResidentName, req.Month))
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) RecordPRN(c echo.Context) error {
	var req EventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Initials == "" {
		req.Initials = auth.InitialsFromContext(c.Request().Context())
	}
	if err := h.svc.RecordPRN(c.Request().Context(), &req); err != nil {
		switch {
		case errors.Is(err, ErrResidentNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "resident not found")
		case errors.Is(err, ErrMedicationNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "medication not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	h.audit.Record(c.Request().Context(), auth.UsernameFromContext(c.Request().Context()),
		"record_prn", fmt.Sprintf("Recorded PRN %s for %s", req.MedicationName, req.ResidentName))
	return c.NoContent(http.StatusCreated)
}

func (h *Handler) RecordControlled(c echo.Context) error {
	var req EventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Initials == "" {
		req.Initials = auth.InitialsFromContext(c.Request().Context())
	}
	remaining, err := h.svc.RecordControlled(c.Request().Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrResidentNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "resident not found")
		case errors.Is(err, ErrMedicationNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "medication not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	h.audit.Record(c.Request().Context(), auth.UsernameFromContext(c.Request().Context()),
		"record_controlled", fmt.Sprintf("Recorded controlled %s for %s", req.MedicationName, req.ResidentName))
	return c.JSON(http.StatusCreated, map[string]int{"remaining_count": remaining})
}

func (h *Handler) ADLMonth(c echo.Context) error {
	rows, err := h.svc.ADLMonth(c.Request().Context(),
		c.QueryParam("resident"), c.QueryParam("month"))
	if err != nil {
		if errors.Is(err, ErrResidentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "resident not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"rows": rows})
}

func (h *Handler) ADLDay(c echo.Context) error {
	row, err := h.svc.ADLDay(c.Request().Context(),
		c.QueryParam("resident"), c.QueryParam("date"))
	if err != nil {
		if errors.Is(err, ErrResidentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "resident not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, row)
}

func (h *Handler) Events(c echo.Context) error {
	events, err := h.svc.Events(c.Request().Context(),
		c.QueryParam("resident"), c.QueryParam("medication"), c.QueryParam("period"))
	if err != nil {
		switch {
		case errors.Is(err, ErrResidentNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "resident not found")
		case errors.Is(err, ErrMedicationNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "medication not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"events": events})
}

func (h *Handler) EMARMonth(c echo.Context) error {
	proj, err := h.svc.EMARMonth(c.Request().Context(),
		c.QueryParam("resident"), c.QueryParam("month"))
	if err != nil {
		if errors.Is(err, ErrResidentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "resident not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, proj)
}
