package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns the HTTP handler for the Prometheus scrape endpoint.
//
// The handler serves every metric registered on this collector's
// registry. Mount it at the configured metrics path:
//
//	mux.Handle(cfg.Telemetry.Metrics.Path, gm.Handler())
func (gm *GatewayMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(
		gm.registry,
		promhttp.HandlerOpts{
			// Prefer OpenMetrics encoding when the scraper accepts it
			EnableOpenMetrics: true,

			ErrorHandling: promhttp.ContinueOnError,
		},
	)
}
