// Package metrics holds the prometheus metrics of the rendering and statistics engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// tile kinds
const (
	KindData   = "data"
	KindShapes = "shapes"
)

var (
	TilesRendered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pingrid",
		Name:      "tiles_rendered_total",
		Help:      "Total tiles rendered",
	}, []string{"kind"})

	RenderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pingrid",
		Name:      "render_duration_seconds",
		Help:      "Duration of rendering a single tile",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"kind"})

	ZonalResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pingrid",
		Name:      "zonal_results_total",
		Help:      "Total zonal statistics computed, per slice",
	}, []string{"outcome"})

	ColormapCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pingrid",
		Name:      "colormap_cache_total",
		Help:      "Colormap lookups by cache result",
	}, []string{"result"})
)

// ObserveRender counts a rendered tile of the given kind and its duration since start.
func ObserveRender(kind string, start time.Time) {
	TilesRendered.WithLabelValues(kind).Inc()
	RenderDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

// ObserveZonal counts one statistic, by whether it had data.
func ObserveZonal(noData bool) {
	outcome := "value"
	if noData {
		outcome = "nodata"
	}
	ZonalResults.WithLabelValues(outcome).Inc()
}

// ObserveColormapLookup fits colormap.WithLookupObserver.
func ObserveColormapLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	ColormapCache.WithLabelValues(result).Inc()
}
