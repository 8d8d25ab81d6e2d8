package iot

import (
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"

	"github.com/healthchain/portal/internal/platform/apperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/iot/queue/:facilityId", h.GetQueue)
	api.GET("/iot/devices/:facilityId", h.GetDevices)
	api.POST("/iot/update-queue", h.UpdateQueue)
}

func (h *Handler) GetQueue(c echo.Context) error {
	q, err := h.svc.GetQueue(c.Request().Context(), c.Param("facilityId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":   true,
		"queueData": q,
	})
}

func (h *Handler) GetDevices(c echo.Context) error {
	devices, err := h.svc.GetDevices(c.Request().Context(), c.Param("facilityId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"devices": devices,
	})
}

// updateQueueRequest accepts count as a JSON number or numeric string.
type updateQueueRequest struct {
	FacilityID string      `json:"facilityId"`
	QueueType  string      `json:"queueType"`
	Count      interface{} `json:"count"`
}

func (h *Handler) UpdateQueue(c echo.Context) error {
	var req updateQueueRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	count, err := parseCount(req.Count)
	if err != nil {
		return apperr.Validation("count must be an integer")
	}
	q, err := h.svc.UpdateQueue(c.Request().Context(), req.FacilityID, req.QueueType, count)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":   true,
		"queueData": q,
	})
}

// parseCount reads a queue count. Strings are decimal even with leading
// zeros, and numbers must be whole.
func parseCount(v interface{}) (int, error) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("count %v is not a whole number", n)
		}
	case string:
		s := strings.TrimSpace(n)
		sign := ""
		if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
			sign, s = s[:1], s[1:]
		}
		if s == "" || strings.Trim(s, "0123456789") != "" {
			return 0, fmt.Errorf("count %q is not a decimal integer", n)
		}
		if s = strings.TrimLeft(s, "0"); s == "" {
			s = "0"
		}
		v = sign + s
	}
	return cast.ToIntE(v)
}
