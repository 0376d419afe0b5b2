package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"transcript-analyzer/internal/shared/metrics"
)

type pingRoutes struct{}

func (pingRoutes) RegisterRoutes(r gin.IRoutes) {
	r.POST("/ping", func(c *gin.Context) { c.JSON(http.StatusCreated, gin.H{"pong": true}) })
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(RouterDeps{
		CORSAllowOrigins: []string{"http://localhost:5173"},
		Metrics:          metrics.NewRecorder(),
		Handlers:         []RouteRegistrar{pingRoutes{}},
	})
}

func TestHealth(t *testing.T) {
	r := newTestRouter()
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "healthy" {
		t.Fatalf("unexpected body %v", body)
	}
	if resp.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestRegisteredHandlersAndMetrics(t *testing.T) {
	r := newTestRouter()

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/ping", nil))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `http_requests_total{method="POST",route="/ping",status="201"} 1`) {
		t.Fatalf("expected request counter in metrics output:\n%s", resp.Body.String())
	}
}

func TestUnknownRouteAndMethod(t *testing.T) {
	r := newTestRouter()

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if resp.Code != http.StatusNotFound || !strings.Contains(resp.Body.String(), `"detail"`) {
		t.Fatalf("expected 404 detail, got %d %s", resp.Code, resp.Body.String())
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.Code)
	}
}

func TestAddr(t *testing.T) {
	cases := map[string]string{"": ":8080", "9000": ":9000", ":7000": ":7000"}
	for in, want := range cases {
		if got := Addr(in); got != want {
			t.Fatalf("Addr(%q) = %q, want %q", in, got, want)
		}
	}
}
