package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// LoaderMetrics observes dataloader batching behavior per loader name.
type LoaderMetrics struct {
	batches   *prometheus.CounterVec
	batchSize *prometheus.HistogramVec
	cacheHits *prometheus.CounterVec
}

// NewLoaderMetrics registers dataloader instruments on the default registry.
func NewLoaderMetrics() *LoaderMetrics {
	return &LoaderMetrics{
		batches: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "shipgraph_dataloader_batches_total",
			Help: "Count of batch fetches issued by each loader.",
		}, []string{"loader"}),
		batchSize: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shipgraph_dataloader_batch_size",
			Help:    "Number of unique keys per batch fetch.",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
		}, []string{"loader"}),
		cacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "shipgraph_dataloader_cache_hits_total",
			Help: "Count of loads satisfied from the request cache.",
		}, []string{"loader"}),
	}
}

// ObserveBatch records one batch fetch of the given key count.
func (m *LoaderMetrics) ObserveBatch(loader string, keys int) {
	if m == nil {
		return
	}
	m.batches.WithLabelValues(loader).Inc()
	m.batchSize.WithLabelValues(loader).Observe(float64(keys))
}

// ObserveCacheHit records a load answered without queueing a fetch.
func (m *LoaderMetrics) ObserveCacheHit(loader string) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(loader).Inc()
}
