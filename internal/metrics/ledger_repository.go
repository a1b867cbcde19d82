package metrics

import (
	"time"

	"github.com/goodnatureofminers/chainweb-indexer/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ledgerRepositoryRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ledger_repository",
		Name:      "operations_total",
		Help:      "Count of ledger repository operations.",
	}, []string{"operation", "network", "chain", "status"})
	ledgerRepositoryRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "ledger_repository",
		Name:      "operation_duration_seconds",
		Help:      "Duration of ledger repository operations.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15, 20, 30},
	}, []string{"operation", "network", "chain", "status"})
)

// LedgerRepository tracks metrics for Postgres ledger operations.
type LedgerRepository struct {
	network string
}

// NewLedgerRepository creates a LedgerRepository metrics collector.
func NewLedgerRepository(network model.Network) *LedgerRepository {
	return &LedgerRepository{network: networkLabel(network)}
}

// Observe records duration and status of a repository operation. Operations
// spanning several chains report chain -1 as "all".
func (m LedgerRepository) Observe(operation string, chain model.ChainID, err error, started time.Time) {
	c := "all"
	if chain >= 0 {
		c = chainLabel(chain)
	}
	ledgerRepositoryRequestsTotal.WithLabelValues(operation, m.network, c, status(err)).Inc()
	ledgerRepositoryRequestDuration.WithLabelValues(operation, m.network, c, status(err)).Observe(time.Since(started).Seconds())
}
