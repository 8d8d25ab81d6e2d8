package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var testSigningKey = []byte("test-secret-key-for-unit-tests-only")

func createTestToken(t *testing.T, claims Claims, key []byte) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return tokenStr
}

func runMiddleware(t *testing.T, cfg JWTConfig, header string, handler echo.HandlerFunc) error {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/claims", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if handler == nil {
		handler = func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	}
	return JWTMiddleware(cfg)(handler)(c)
}

func expectStatus(t *testing.T, err error, code int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with status %d", code)
	}
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != code {
		t.Errorf("expected %d, got %d", code, httpErr.Code)
	}
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	err := runMiddleware(t, JWTConfig{SigningKey: testSigningKey}, "", nil)
	expectStatus(t, err, http.StatusUnauthorized)
}

func TestJWTMiddleware_InvalidFormat(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"no bearer prefix", "Token abc123"},
		{"missing token", "Bearer"},
		{"empty value", "Bearer "},
		{"basic auth", "Basic dXNlcjpwYXNz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runMiddleware(t, JWTConfig{SigningKey: testSigningKey}, tt.header, nil)
			expectStatus(t, err, http.StatusUnauthorized)
		})
	}
}

func TestJWTMiddleware_IssuedTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer(testSigningKey, time.Hour)
	token, exp, err := issuer.Issue("user-123", RoleFacility)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Errorf("expiry %v should be in the future", exp)
	}

	var called bool
	err = runMiddleware(t, JWTConfig{SigningKey: testSigningKey}, "Bearer "+token, func(c echo.Context) error {
		called = true
		p := PrincipalFromContext(c.Request().Context())
		if p.UserID != "user-123" {
			t.Errorf("expected user-123, got %s", p.UserID)
		}
		if !p.Has(RoleFacility) || p.IsAdmin() {
			t.Errorf("unexpected roles %v", p.Roles)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("handler was not called")
	}
}

func TestJWTMiddleware_RejectsBadTokens(t *testing.T) {
	valid := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   "user-123",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	noExp := valid
	noExp.ExpiresAt = nil

	wrongIssuer := valid
	wrongIssuer.Issuer = "someone-else"

	tests := []struct {
		name  string
		token string
	}{
		{"expired", createTestToken(t, Claims{RegisteredClaims: expired}, testSigningKey)},
		{"no expiry", createTestToken(t, Claims{RegisteredClaims: noExp}, testSigningKey)},
		{"wrong issuer", createTestToken(t, Claims{RegisteredClaims: wrongIssuer}, testSigningKey)},
		{"wrong key", createTestToken(t, Claims{RegisteredClaims: valid}, []byte("other-key"))},
		{"garbage", "not.a.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runMiddleware(t, JWTConfig{SigningKey: testSigningKey}, "Bearer "+tt.token, nil)
			expectStatus(t, err, http.StatusUnauthorized)
		})
	}
}

type verifierFunc func(ctx context.Context, userID string) error

func (f verifierFunc) VerifyAccount(ctx context.Context, userID string) error { return f(ctx, userID) }

func TestJWTMiddleware_AccountVerifier(t *testing.T) {
	token, _, err := NewTokenIssuer(testSigningKey, time.Hour).Issue("deleted-user", RoleBeneficiary)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	errGone := echo.NewHTTPError(http.StatusUnauthorized, "account not found")
	cfg := JWTConfig{
		SigningKey: testSigningKey,
		Accounts: verifierFunc(func(_ context.Context, userID string) error {
			if userID == "deleted-user" {
				return errGone
			}
			return nil
		}),
	}

	err = runMiddleware(t, cfg, "Bearer "+token, nil)
	if err != errGone {
		t.Fatalf("expected verifier error, got %v", err)
	}
}

func TestJWTMiddleware_Skipper(t *testing.T) {
	cfg := JWTConfig{
		SigningKey: testSigningKey,
		Skipper:    func(echo.Context) bool { return true },
	}
	if err := runMiddleware(t, cfg, "", nil); err != nil {
		t.Errorf("skipped route should not require a token, got %v", err)
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"admin", RoleAdmin, false},
		{"admin-bpjs", RoleAdmin, false},
		{"Faskes", RoleFacility, false},
		{"facility", RoleFacility, false},
		{"peserta", RoleBeneficiary, false},
		{" beneficiary ", RoleBeneficiary, false},
		{"doctor", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseRole(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRole(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRole(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
