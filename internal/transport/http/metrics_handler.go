package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler exposes a Prometheus registry in the text format
type MetricsHandler struct {
	handler http.Handler
}

// NewMetricsHandler serves registry. A nil registry answers 404, which is
// what a scraper sees when metrics are disabled.
func NewMetricsHandler(registry *prometheus.Registry) *MetricsHandler {
	if registry == nil {
		return &MetricsHandler{handler: http.NotFoundHandler()}
	}
	return &MetricsHandler{
		handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{
			Registry:          registry,
			EnableOpenMetrics: true,
		}),
	}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}
