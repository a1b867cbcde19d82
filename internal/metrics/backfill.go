package metrics

import (
	"time"

	"github.com/goodnatureofminers/chainweb-indexer/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	backfillRangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "backfill",
		Name:      "ranges_total",
		Help:      "Count of processed backfill ranges.",
	}, []string{"network", "chain", "status"})

	backfillRangeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "backfill",
		Name:      "range_duration_seconds",
		Help:      "Duration of processing a backfill range.",
		Buckets:   []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"network", "chain", "status"})

	backfillRangeSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "backfill",
		Name:      "range_size",
		Help:      "Number of heights per backfill range.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1..2048
	}, []string{"network", "chain"})

	backfillFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "backfill",
		Name:      "fetch_total",
		Help:      "Count of block window fetch attempts.",
	}, []string{"network", "chain", "status"})

	backfillFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "backfill",
		Name:      "fetch_duration_seconds",
		Help:      "Duration of fetching a window of blocks.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "chain", "status"})

	backfillInFlightRanges = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "backfill",
		Name:      "in_flight_ranges",
		Help:      "Number of ranges queued or being filled.",
	}, []string{"network"})
)

// Backfill tracks metrics for the backfill worker pool.
type Backfill struct {
	network string
}

// NewBackfill constructs a Backfill collector.
func NewBackfill(network model.Network) *Backfill {
	return &Backfill{network: networkLabel(network)}
}

// ObserveRange records the outcome of one range.
func (m Backfill) ObserveRange(chain model.ChainID, err error, heights int64, started time.Time) {
	c := chainLabel(chain)
	backfillRangesTotal.WithLabelValues(m.network, c, status(err)).Inc()
	backfillRangeDuration.WithLabelValues(m.network, c, status(err)).Observe(time.Since(started).Seconds())
	backfillRangeSize.WithLabelValues(m.network, c).Observe(float64(heights))
}

// ObserveFetch records one window fetch attempt.
func (m Backfill) ObserveFetch(chain model.ChainID, err error, started time.Time) {
	c := chainLabel(chain)
	backfillFetchTotal.WithLabelValues(m.network, c, status(err)).Inc()
	backfillFetchDuration.WithLabelValues(m.network, c, status(err)).Observe(time.Since(started).Seconds())
}

func (m Backfill) SetInFlight(ranges int) {
	backfillInFlightRanges.WithLabelValues(m.network).Set(float64(ranges))
}
