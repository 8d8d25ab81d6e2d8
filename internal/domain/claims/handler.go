package claims

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"

	"github.com/healthchain/portal/internal/platform/apperr"
	"github.com/healthchain/portal/internal/platform/auth"
	"github.com/healthchain/portal/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/claims/create", h.Create)
	api.GET("/claims", h.ListAll, auth.RequireRole(auth.RoleAdmin))
	api.GET("/claims/user/:userId", h.ListForUser)
	api.GET("/claims/:id", h.Get)
	api.PUT("/claims/:id/status", h.UpdateStatus)
}

// createRequest accepts amount as either a JSON string or number.
type createRequest struct {
	PatientName string      `json:"patientName"`
	Service     string      `json:"service"`
	Diagnosis   string      `json:"diagnosis"`
	Amount      interface{} `json:"amount"`
	FacilityID  string      `json:"facilityId"`
	Documents   []Document  `json:"documents"`
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	amount, err := cast.ToStringE(req.Amount)
	if err != nil {
		return apperr.Validation("amount must be a string or number")
	}

	ctx := c.Request().Context()
	claim, err := h.svc.Create(ctx, auth.UserIDFromContext(ctx), CreateInput{
		PatientName: req.PatientName,
		Service:     req.Service,
		Diagnosis:   req.Diagnosis,
		Amount:      amount,
		FacilityID:  req.FacilityID,
		Documents:   req.Documents,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"claim":   claim,
		"message": "Claim created successfully",
	})
}

func (h *Handler) Get(c echo.Context) error {
	claim, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"claim":   claim,
	})
}

func (h *Handler) ListForUser(c echo.Context) error {
	ctx := c.Request().Context()
	claims, err := h.svc.ListForUser(ctx, auth.PrincipalFromContext(ctx), c.Param("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"claims":  claims,
	})
}

func (h *Handler) ListAll(c echo.Context) error {
	page, err := pagination.FromContext(c)
	if err != nil {
		return apperr.Validation("%s", err.Error())
	}
	ctx := c.Request().Context()
	claims, total, err := h.svc.ListAll(ctx, auth.PrincipalFromContext(ctx), page)
	if err != nil {
		return err
	}
	resp := map[string]interface{}{
		"success": true,
		"claims":  claims,
		"total":   total,
		"hasNext": page.HasNext(total),
	}
	if page.HasNext(total) {
		resp["nextOffset"] = page.NextOffset()
	}
	return c.JSON(http.StatusOK, resp)
}

type statusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	claim, err := h.svc.UpdateStatus(c.Request().Context(), c.Param("id"), req.Status, req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"claim":   claim,
	})
}
