package identity

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/healthchain/portal/internal/platform/apperr"
	"github.com/healthchain/portal/internal/platform/auth"
)

func newTestHandler() (*Handler, *Service, *echo.Echo) {
	svc, _ := newTestService()
	return NewHandler(svc), svc, echo.New()
}

func jsonContext(e *echo.Echo, method, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandler_Signup(t *testing.T) {
	h, _, e := newTestHandler()
	c, rec := jsonContext(e, http.MethodPost,
		`{"email":"peserta@email.com","password":"demo123","name":"Ahmad Wijaya","role":"peserta"}`)

	if err := h.Signup(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Success bool    `json:"success"`
		Message string  `json:"message"`
		User    Summary `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.User.Role != auth.RoleBeneficiary || body.User.ID == "" {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("response must not echo the password")
	}
}

func TestHandler_Signup_MissingFields(t *testing.T) {
	h, _, e := newTestHandler()
	c, _ := jsonContext(e, http.MethodPost, `{"email":"a@b.c"}`)

	if err := h.Signup(c); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestHandler_Login(t *testing.T) {
	h, svc, e := newTestHandler()
	signup(t, svc, "admin@rscipto.id", "faskes")

	c, rec := jsonContext(e, http.MethodPost, `{"email":"admin@rscipto.id","password":"demo123"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var body struct {
		Success     bool      `json:"success"`
		AccessToken string    `json:"access_token"`
		User        LoginUser `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.AccessToken == "" {
		t.Errorf("expected token, got %s", rec.Body.String())
	}
	if body.User.Profile == nil || body.User.Profile.Role != auth.RoleFacility {
		t.Errorf("expected profile in user block, got %s", rec.Body.String())
	}
}

func TestHandler_Login_BadCredentials(t *testing.T) {
	h, svc, e := newTestHandler()
	signup(t, svc, "admin@rscipto.id", "faskes")

	c, _ := jsonContext(e, http.MethodPost, `{"email":"admin@rscipto.id","password":"nope"}`)
	if err := h.Login(c); !errors.Is(err, apperr.ErrAuthentication) {
		t.Errorf("expected authentication error, got %v", err)
	}
}

func TestHandler_Me(t *testing.T) {
	h, svc, e := newTestHandler()
	u := signup(t, svc, "peserta@email.com", "peserta")

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req = req.WithContext(auth.WithPrincipal(req.Context(), auth.Principal{UserID: u.ID, Roles: []string{"beneficiary"}}))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Me(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body struct {
		User            User             `json:"user"`
		ParticipantCard *ParticipantCard `json:"participantCard"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.User.ID != u.ID {
		t.Errorf("expected user %s, got %s", u.ID, body.User.ID)
	}
	if body.ParticipantCard == nil || body.ParticipantCard.UserID != u.ID {
		t.Errorf("expected participant card, got %s", rec.Body.String())
	}
}
