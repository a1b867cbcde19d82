package metrics

import (
	"github.com/goodnatureofminers/chainweb-indexer/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	supervisorChainState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "supervisor",
		Name:      "chain_state",
		Help:      "Current ingestion state of a chain; the active state is 1.",
	}, []string{"network", "chain", "state"})

	supervisorReconnectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "supervisor",
		Name:      "reconnects_total",
		Help:      "Count of live subscription faults followed by a reconnect.",
	}, []string{"network", "chain"})
)

// Supervisor tracks the lifecycle of the per-chain live followers.
type Supervisor struct {
	network string
}

// NewSupervisor constructs a Supervisor collector.
func NewSupervisor(network model.Network) *Supervisor {
	return &Supervisor{network: networkLabel(network)}
}

// SetState marks state as the only active state of the chain.
func (m Supervisor) SetState(chain model.ChainID, state string) {
	c := chainLabel(chain)
	supervisorChainState.DeletePartialMatch(prometheus.Labels{"network": m.network, "chain": c})
	supervisorChainState.WithLabelValues(m.network, c, state).Set(1)
}

func (m Supervisor) ObserveReconnect(chain model.ChainID) {
	supervisorReconnectsTotal.WithLabelValues(m.network, chainLabel(chain)).Inc()
}
