package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func newSanitizeEcho() *echo.Echo {
	e := echo.New()
	e.Use(Sanitize(zerolog.Nop()))
	ok := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	e.GET("/*", ok)
	e.POST("/*", ok)
	return e
}

func assertRejected(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error == "" {
		t.Error("expected an error message")
	}
}

func TestSanitize_PathTraversal(t *testing.T) {
	e := newSanitizeEcho()
	for _, target := range []string{
		"/../../etc/passwd",
		"/%2e%2e/%2e%2e/etc/passwd",
		"/api/%252e%252e/secret",
	} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assertRejected(t, rec)
	}
}

func TestSanitize_NullByteInQuery(t *testing.T) {
	e := newSanitizeEcho()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nearby-hospitals?lat=1%00&long=2", nil))
	assertRejected(t, rec)
}

func TestSanitize_HeaderChecks(t *testing.T) {
	e := newSanitizeEcho()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Custom", strings.Repeat("a", maxHeaderValueSize+1))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assertRejected(t, rec)

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header["X-Injected"] = []string{"value\r\nSet-Cookie: x=y"}
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assertRejected(t, rec)
}

func TestSanitize_PassesNormalRequests(t *testing.T) {
	e := newSanitizeEcho()

	for _, target := range []string{
		"/api/nearby-hospitals?lat=12.97&long=77.59",
		"/health",
		"/api/admin/incidents?since=2026-01-01T00:00:00Z",
	} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", target, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/emergency-response", strings.NewReader(`{"message":"my friend fainted"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for POST, got %d", rec.Code)
	}
}
