package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "unisync"

var (
	quickAddRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "quickadd",
		Name:      "requests_total",
		Help:      "Quick-add parse requests by outcome.",
	}, []string{"outcome"})

	quickAddRepairs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "quickadd",
		Name:      "repairs_total",
		Help:      "Fields the normalizer had to default or correct.",
	}, []string{"repair"})

	llmDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "llm",
		Name:      "request_duration_seconds",
		Help:      "Latency of completion calls.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
	})
)

// CountQuickAdd records one parse outcome ("ok" or an error code).
func CountQuickAdd(outcome string) {
	quickAddRequests.WithLabelValues(outcome).Inc()
}

func CountRepair(repair string) {
	quickAddRepairs.WithLabelValues(repair).Inc()
}

func ObserveLLM(d time.Duration) {
	llmDuration.Observe(d.Seconds())
}

func Handler() http.Handler {
	return promhttp.Handler()
}
