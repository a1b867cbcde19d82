package reconciler

import (
	"errors"
	"fmt"

	"github.com/goodnatureofminers/chainweb-indexer/internal/model"
)

var (
	ErrClosed             = errors.New("reconciler closed")
	ErrUnattached         = errors.New("block does not attach to stored history")
	ErrChainHalted        = errors.New("chain halted")
	ErrIntegrityViolation = errors.New("integrity violation")
	ErrWrongChain         = errors.New("block belongs to another chain")
	ErrBelowLowerBound    = errors.New("block is below the chain lower bound")
)

// IntegrityError reports a fork that would replace confirmed history.
type IntegrityError struct {
	Chain      model.ChainID
	ForkHeight int64
	TipHeight  int64
	BranchTip  string
	Origin     Origin
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("chain %s: %s branch ending at %s forks at height %d, below confirmed tip %d",
		e.Chain, e.Origin, e.BranchTip, e.ForkHeight, e.TipHeight)
}

func (e *IntegrityError) Is(target error) bool {
	return target == ErrIntegrityViolation
}
