package scoring

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/healthchain/portal/internal/platform/apperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/ai/validate-document", h.ValidateDocument)
	api.POST("/ai/detect-fraud", h.DetectFraud)
}

func (h *Handler) ValidateDocument(c echo.Context) error {
	var doc DocumentMeta
	if err := c.Bind(&doc); err != nil {
		return apperr.Validation("invalid request body")
	}
	v, err := h.svc.ValidateDocument(c.Request().Context(), doc)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":    true,
		"validation": v,
	})
}

type detectFraudRequest struct {
	ClaimID string `json:"claimId"`
}

func (h *Handler) DetectFraud(c echo.Context) error {
	var req detectFraudRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	analysis, err := h.svc.DetectFraud(c.Request().Context(), req.ClaimID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":       true,
		"fraudAnalysis": analysis,
	})
}
