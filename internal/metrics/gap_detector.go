package metrics

import (
	"time"

	"github.com/goodnatureofminers/chainweb-indexer/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gapDetectTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "gap_detector",
		Name:      "detect_total",
		Help:      "Count of gap detection passes.",
	}, []string{"network", "chain", "status"})

	gapDetectDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "gap_detector",
		Name:      "detect_duration_seconds",
		Help:      "Duration of a gap detection pass.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "chain", "status"})

	gapRangesFound = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "gap_detector",
		Name:      "ranges",
		Help:      "Number of ranges emitted by the last detection pass.",
	}, []string{"network", "chain"})

	gapCandidatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "gap_detector",
		Name:      "candidates_total",
		Help:      "Count of candidate ranges reported by reconcilers.",
	}, []string{"network", "chain"})
)

// GapDetector tracks metrics for gap detection.
type GapDetector struct {
	network string
}

// NewGapDetector constructs a GapDetector collector.
func NewGapDetector(network model.Network) *GapDetector {
	return &GapDetector{network: networkLabel(network)}
}

// ObserveDetect records one detection pass and the number of ranges it emitted.
func (m GapDetector) ObserveDetect(chain model.ChainID, err error, ranges int, started time.Time) {
	c := chainLabel(chain)
	gapDetectTotal.WithLabelValues(m.network, c, status(err)).Inc()
	gapDetectDuration.WithLabelValues(m.network, c, status(err)).Observe(time.Since(started).Seconds())
	if err == nil {
		gapRangesFound.WithLabelValues(m.network, c).Set(float64(ranges))
	}
}

func (m GapDetector) ObserveCandidate(chain model.ChainID) {
	gapCandidatesTotal.WithLabelValues(m.network, chainLabel(chain)).Inc()
}
