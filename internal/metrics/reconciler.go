package metrics

import (
	"time"

	"github.com/goodnatureofminers/chainweb-indexer/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reconcilerAcceptTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reconciler",
		Name:      "accept_total",
		Help:      "Count of blocks offered to the reconciler by origin and outcome.",
	}, []string{"network", "chain", "origin", "outcome", "status"})

	reconcilerAcceptDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "reconciler",
		Name:      "accept_duration_seconds",
		Help:      "Duration of reconciling one block.",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"network", "chain", "origin", "status"})

	reconcilerReorgsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reconciler",
		Name:      "reorgs_total",
		Help:      "Count of applied chain reorganizations.",
	}, []string{"network", "chain"})

	reconcilerOrphanedBlocks = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "reconciler",
		Name:      "orphaned_blocks",
		Help:      "Number of canonical blocks orphaned per reorganization.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 8), // 1..128
	}, []string{"network", "chain"})

	reconcilerHaltsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reconciler",
		Name:      "halts_total",
		Help:      "Count of chains halted by an integrity violation.",
	}, []string{"network", "chain"})

	reconcilerTipHeight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "reconciler",
		Name:      "tip_height",
		Help:      "Height of the canonical tip.",
	}, []string{"network", "chain"})

	reconcilerParkedBlocks = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "reconciler",
		Name:      "parked_blocks",
		Help:      "Number of blocks waiting for their ancestors.",
	}, []string{"network", "chain"})
)

// Reconciler tracks metrics of the per-chain reconcilers.
type Reconciler struct {
	network string
}

// NewReconciler constructs a Reconciler collector for the network.
func NewReconciler(network model.Network) *Reconciler {
	return &Reconciler{network: networkLabel(network)}
}

// ObserveAccept records one Accept call.
func (m Reconciler) ObserveAccept(chain model.ChainID, origin, outcome string, err error, started time.Time) {
	c := chainLabel(chain)
	reconcilerAcceptTotal.WithLabelValues(m.network, c, origin, outcome, status(err)).Inc()
	reconcilerAcceptDuration.WithLabelValues(m.network, c, origin, status(err)).Observe(time.Since(started).Seconds())
}

func (m Reconciler) ObserveReorg(chain model.ChainID, orphaned int) {
	c := chainLabel(chain)
	reconcilerReorgsTotal.WithLabelValues(m.network, c).Inc()
	reconcilerOrphanedBlocks.WithLabelValues(m.network, c).Observe(float64(orphaned))
}

func (m Reconciler) ObserveHalt(chain model.ChainID) {
	reconcilerHaltsTotal.WithLabelValues(m.network, chainLabel(chain)).Inc()
}

func (m Reconciler) SetTip(chain model.ChainID, height int64) {
	reconcilerTipHeight.WithLabelValues(m.network, chainLabel(chain)).Set(float64(height))
}

func (m Reconciler) SetParked(chain model.ChainID, parked int) {
	reconcilerParkedBlocks.WithLabelValues(m.network, chainLabel(chain)).Set(float64(parked))
}
