package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns the analysis metrics and the registry they are exposed from.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry  *prometheus.Registry
	started   *prometheus.CounterVec
	completed *prometheus.CounterVec
	failed    *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	requests  *prometheus.CounterVec
}

// NewRecorder builds a Recorder with its own registry, including Go runtime collectors.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		started: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analysis_started_total",
			Help: "Total analyses started",
		}, []string{"mode"}),
		completed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analysis_completed_total",
			Help: "Total analyses completed",
		}, []string{"mode"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analysis_failed_total",
			Help: "Total analyses failed",
		}, []string{"mode", "kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "analysis_duration_ms",
			Help:    "Analysis duration in milliseconds",
			Buckets: []float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000},
		}, []string{"mode"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(
		r.started, r.completed, r.failed, r.duration, r.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Registry exposes the underlying registry (tests gather from it).
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// AnalysisStarted increments the started counter.
func (r *Recorder) AnalysisStarted(mode string) {
	if r == nil {
		return
	}
	r.started.WithLabelValues(mode).Inc()
}

// AnalysisCompleted records a successful analysis and its duration.
func (r *Recorder) AnalysisCompleted(mode string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.completed.WithLabelValues(mode).Inc()
	r.duration.WithLabelValues(mode).Observe(float64(elapsed.Microseconds()) / 1000.0)
}

// AnalysisFailed records a failed analysis by error kind.
func (r *Recorder) AnalysisFailed(mode, kind string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.failed.WithLabelValues(mode, kind).Inc()
	r.duration.WithLabelValues(mode).Observe(float64(elapsed.Microseconds()) / 1000.0)
}

// ObserveRequest counts a served HTTP request.
func (r *Recorder) ObserveRequest(method, route string, status int) {
	if r == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	r.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Handler exposes metrics in Prometheus text format.
func (r *Recorder) Handler() gin.HandlerFunc {
	if r == nil {
		return func(c *gin.Context) {
			c.Status(http.StatusNotFound)
		}
	}
	h := promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}

// Middleware counts every request once the handler chain has run.
func (r *Recorder) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		r.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status())
	}
}
