package user

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

// RegisterPublicRoutes mounts sign-in and first-run setup, which have to
// work before any token exists.
func (h *Handler) RegisterPublicRoutes(g *echo.Group) {
	g.POST("/auth/login", h.Login)
	g.GET("/auth/setup-needed", h.SetupNeeded)
	g.POST("/auth/setup", h.Setup)
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	self := api.Group("", auth.RequireRole("user"))
	self.POST("/auth/reset-password", h.ResetPassword)
	self.GET("/auth/needs-reset", h.NeedsReset)
	self.GET("/auth/is-admin", h.IsAdmin)

	admin := api.Group("", auth.RequireRole("admin"))
	admin.POST("/users", h.Create)
	admin.GET("/users", h.List)
	admin.DELETE("/users/:id", h.Delete)
}

func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	resp, err := h.svc.Login(c.Request().Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.audit.Record(c.Request().Context(), resp.Username, "login", "Signed in")
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) SetupNeeded(c echo.Context) error {
	needed, err := h.svc.SetupNeeded(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]bool{"setup_needed": needed})
}

func (h *Handler) Setup(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u, err := h.svc.CreateAdmin(c.Request().Context(), &req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	h.audit.Record(c.Request().Context(), u.Username, "setup", "Created initial admin account")
	return c.JSON(http.StatusCreated, u)
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u, err := h.svc.Create(c.Request().Context(), &req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	h.audit.Record(c.Request().Context(), auth.UsernameFromContext(c.Request().Context()),
		"create_user", fmt.Sprintf("Added user %s", u.Username))
	return c.JSON(http.StatusCreated, u)
}

func (h *Handler) List(c echo.Context) error {
	users, err := h.svc.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"users": users})
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	h.audit.Record(c.Request().Context(), auth.UsernameFromContext(c.Request().Context()),
		"delete_user", fmt.Sprintf("Removed user %s", id))
	return c.NoContent(http.StatusNoContent)
}

// ResetPassword lets a signed-in user change their own password; admins may
// reset anyone's.
func (h *Handler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	caller := auth.UsernameFromContext(ctx)
	if req.Username == "" {
		req.Username = caller
	}
	if req.Username != caller && auth.RoleFromContext(ctx) != RoleAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "cannot reset another user's password")
	}
	if err := h.svc.ResetPassword(ctx, &req); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	h.audit.Record(ctx, caller, "reset_password", fmt.Sprintf("Password reset for %s", req.Username))
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) NeedsReset(c echo.Context) error {
	username := auth.UsernameFromContext(c.Request().Context())
	needed, err := h.svc.NeedsReset(c.Request().Context(), username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]bool{"needs_reset": needed})
}

func (h *Handler) IsAdmin(c echo.Context) error {
	username := auth.UsernameFromContext(c.Request().Context())
	isAdmin, err := h.svc.IsAdmin(c.Request().Context(), username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]bool{"is_admin": isAdmin})
}
