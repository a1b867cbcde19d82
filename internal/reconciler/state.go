package reconciler

import (
	"sync"

	"github.com/goodnatureofminers/chainweb-indexer/internal/model"
	"github.com/shopspring/decimal"
)

// Tip is the head of a chain's canonical view.
type Tip struct {
	Height int64
	Hash   string
	Weight decimal.Decimal
}

// ChainState is the per-chain view shared between a reconciler and its supervisor.
type ChainState struct {
	mu      sync.RWMutex
	chain   model.ChainID
	tip     *Tip
	haltErr error
}

func NewChainState(chain model.ChainID) *ChainState {
	return &ChainState{chain: chain}
}

func (s *ChainState) Chain() model.ChainID {
	return s.chain
}

// Tip returns the last known tip; ok is false while the chain is empty.
func (s *ChainState) Tip() (tip Tip, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tip == nil {
		return Tip{}, false
	}
	return *s.tip, true
}

// Halted returns the error that halted the chain, or nil.
func (s *ChainState) Halted() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.haltErr
}

func (s *ChainState) setTip(b *model.Block) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b == nil {
		s.tip = nil
		return
	}
	s.tip = &Tip{Height: b.Height, Hash: b.Hash, Weight: b.Weight}
}

func (s *ChainState) halt(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.haltErr == nil {
		s.haltErr = err
	}
}
