package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRecoveryReturnsDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logs := observeLogs(t)

	router := gin.New()
	router.Use(RequestID(), Recovery())
	router.GET("/boom", func(c *gin.Context) {
		panic("kaboom")
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["detail"] != "Internal server error" {
		t.Fatalf("unexpected body %v", body)
	}
	if logs.FilterMessage("panic").Len() != 1 {
		t.Fatalf("expected panic to be logged")
	}
}

func TestRequestIDGeneratedAndEchoed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/id", func(c *gin.Context) {
		c.String(http.StatusOK, RequestIDFromContext(c))
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/id", nil))
	generated := resp.Header().Get("X-Request-Id")
	if generated == "" || resp.Body.String() != generated {
		t.Fatalf("expected generated id echoed, header=%q body=%q", generated, resp.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set("X-Request-Id", "client-id")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Header().Get("X-Request-Id") != "client-id" {
		t.Fatalf("expected client id kept, got %q", resp.Header().Get("X-Request-Id"))
	}
}
