package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "visionary"

// Metrics はギャラリー固有のメトリクスです。
type Metrics struct {
	Generations *prometheus.CounterVec
	Uploads     *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer, itemCount func() int) *Metrics {
	f := promauto.With(reg)
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "gallery_items",
		Help:      "Number of items currently in the gallery.",
	}, func() float64 { return float64(itemCount()) })

	return &Metrics{
		Generations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "generations_total",
			Help:      "Image generation requests by result.",
		}, []string{"result"}),
		Uploads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "uploads_total",
			Help:      "Image uploads by result.",
		}, []string{"result"}),
	}
}
