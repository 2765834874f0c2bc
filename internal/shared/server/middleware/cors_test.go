package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

const testOrigin = "http://localhost:3000"

func corsRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORS([]string{" " + testOrigin + " ", ""}))
	router.OPTIONS("/predict-with-photo", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	router.POST("/predict", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func TestCORSPreflightIsAnsweredWithoutHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/predict-with-photo", nil)
	req.Header.Set("Origin", testOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp := httptest.NewRecorder()
	corsRouter().ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	assertCORSHeaders(t, resp)
}

func TestCORSHeadersOnPredict(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/predict", nil)
	req.Header.Set("Origin", testOrigin)
	resp := httptest.NewRecorder()
	corsRouter().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	assertCORSHeaders(t, resp)
}

func TestCORSUnknownOriginGetsNoHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/predict", nil)
	req.Header.Set("Origin", "http://evil.example")
	resp := httptest.NewRecorder()
	corsRouter().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	for _, h := range []string{"Access-Control-Allow-Origin", "Access-Control-Allow-Methods", "Access-Control-Max-Age"} {
		if got := resp.Header().Get(h); got != "" {
			t.Fatalf("expected no %s for unknown origin, got %q", h, got)
		}
	}
}

func assertCORSHeaders(t *testing.T, resp *httptest.ResponseRecorder) {
	t.Helper()
	h := resp.Header()
	if got := h.Get("Access-Control-Allow-Origin"); got != testOrigin {
		t.Fatalf("expected Allow-Origin %s, got %q", testOrigin, got)
	}
	if got := h.Get("Vary"); got != "Origin" {
		t.Fatalf("expected Vary Origin, got %q", got)
	}
	if got := h.Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("expected Allow-Credentials true, got %q", got)
	}
	if got := h.Get("Access-Control-Allow-Methods"); got != "GET,POST,OPTIONS" {
		t.Fatalf("expected methods GET,POST,OPTIONS, got %q", got)
	}
	allowHeaders := h.Get("Access-Control-Allow-Headers")
	for _, want := range []string{"Content-Type", "Authorization", "X-Request-Id"} {
		if !strings.Contains(allowHeaders, want) {
			t.Fatalf("expected Allow-Headers to contain %s, got %q", want, allowHeaders)
		}
	}
	expose := h.Get("Access-Control-Expose-Headers")
	for _, want := range []string{"X-Request-Id", "Retry-After"} {
		if !strings.Contains(expose, want) {
			t.Fatalf("expected Expose-Headers to contain %s, got %q", want, expose)
		}
	}
	if got := h.Get("Access-Control-Max-Age"); got != "600" {
		t.Fatalf("expected Max-Age 600, got %q", got)
	}
}
