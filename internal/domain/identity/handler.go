package identity

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
	api.POST("/auth/signup", h.Signup)
	api.POST("/auth/login", h.Login)
	api.GET("/auth/me", h.Me)
}

func (h *Handler) Signup(c echo.Context) error {
	var in SignupInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	u, err := h.svc.Signup(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "User created successfully",
		"user":    u.Summary(),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	sess, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":      true,
		"access_token": sess.AccessToken,
		"expires_at":   sess.ExpiresAt,
		"user":         sess.User,
	})
}

func (h *Handler) Me(c echo.Context) error {
	ctx := c.Request().Context()
	p := auth.PrincipalFromContext(ctx)
	u, err := h.svc.Resolve(ctx, p.UserID)
	if err != nil {
		return err
	}
	resp := map[string]interface{}{
		"success": true,
		"user":    u,
	}
	card, err := h.svc.Card(ctx, u.ID)
	if err != nil {
		return err
	}
	if card != nil {
		resp["participantCard"] = card
	}
	return c.JSON(http.StatusOK, resp)
}
