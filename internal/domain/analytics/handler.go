package analytics

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/healthchain/portal/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/analytics/dashboard/:role", h.Dashboard)
}

func (h *Handler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	summary, err := h.svc.DashboardSummary(ctx, auth.PrincipalFromContext(ctx), c.Param("role"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":   true,
		"analytics": summary,
	})
}
