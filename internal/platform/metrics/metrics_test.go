package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_DomainCounters(t *testing.T) {
	m := New()
	m.ClaimCreated("approved")
	m.ClaimCreated("approved")
	m.ClaimTransition("processing", "rejected")
	m.AlertCreated("fraud", "high")

	if got := testutil.ToFloat64(m.claimsCreated.WithLabelValues("approved")); got != 2 {
		t.Errorf("claims_created_total{approved} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.claimTransitions.WithLabelValues("processing", "rejected")); got != 1 {
		t.Errorf("claim_status_transitions_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.alertsCreated.WithLabelValues("fraud", "high")); got != 1 {
		t.Errorf("alerts_created_total = %v, want 1", got)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ClaimCreated("approved")
	m.ClaimTransition("a", "b")
	m.AlertCreated("fraud", "high")

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if err := m.Middleware()(func(c echo.Context) error { return nil })(c); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMetrics_MiddlewareAndHandler(t *testing.T) {
	m := New()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/claims/:id", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/missing/:id", func(c echo.Context) error { return echo.NewHTTPError(http.StatusNotFound) })
	e.GET("/metrics", m.Handler())

	for _, path := range []string{"/claims/CLM-1", "/claims/CLM-2", "/missing/x"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/claims/:id", "200")); got != 2 {
		t.Errorf("requests for /claims/:id = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/missing/:id", "404")); got != 1 {
		t.Errorf("404 requests = %v, want 1", got)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "healthchain_http_requests_total") {
		t.Error("expected request counter in exposition")
	}
}
