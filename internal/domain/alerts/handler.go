package alerts

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/healthchain/portal/internal/platform/apperr"
	"github.com/healthchain/portal/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/alerts", h.List)
	api.POST("/alerts/create", h.Create)
	api.PUT("/alerts/:id/read", h.MarkRead)
}

func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	alerts, err := h.svc.List(ctx, auth.PrincipalFromContext(ctx))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"alerts":  alerts,
	})
}

// Create raises an alert on behalf of the caller. It is delivered to the
// caller and, when named, to the facility.
func (h *Handler) Create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	ctx := c.Request().Context()
	in.Recipients = []string{auth.UserIDFromContext(ctx), in.FacilityID}

	a, err := h.svc.Create(ctx, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"alert":   a,
	})
}

func (h *Handler) MarkRead(c echo.Context) error {
	ctx := c.Request().Context()
	a, err := h.svc.MarkRead(ctx, auth.PrincipalFromContext(ctx), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"alert":   a,
	})
}
