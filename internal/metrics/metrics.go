package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector agrupa as métricas do serviço em um registry próprio.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	TokenReservations   *prometheus.CounterVec
	StageMoves          prometheus.Counter
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crm",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status_code"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "crm",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		TokenReservations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crm",
			Name:      "token_reservations_total",
			Help:      "Token reservations by result",
		}, []string{"result"}),
		StageMoves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crm",
			Name:      "stage_moves_total",
			Help:      "Deals moved between pipeline stages",
		}),
	}
	reg.MustRegister(c.HTTPRequestsTotal, c.HTTPRequestDuration, c.TokenReservations, c.StageMoves)
	return c
}

// Handler serve /metrics
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) RecordHTTPRequest(method, path string, statusCode int, d time.Duration) {
	c.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	c.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

func (c *Collector) RecordReservation(ok bool) {
	result := "denied"
	if ok {
		result = "granted"
	}
	c.TokenReservations.WithLabelValues(result).Inc()
}

func (c *Collector) RecordStageMove() {
	c.StageMoves.Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Hijack mantém o upgrade de websocket funcionando por trás do middleware
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer não suporta hijack")
	}
	return h.Hijack()
}

// Middleware usa o template da rota do mux como label para não explodir a cardinalidade.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				path = tpl
			}
		}
		c.RecordHTTPRequest(r.Method, path, rec.status, time.Since(start))
	})
}
