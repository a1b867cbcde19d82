package reconciler

import (
	"context"
	"fmt"

	"github.com/goodnatureofminers/chainweb-indexer/internal/model"
	"go.uber.org/zap"
)

// Refresh rewrites the stored rows of blocks that are already canonical with
// the same hash: the block, its transactions, events and derived transfers are
// deleted and inserted again from fb in one ledger transaction. Blocks that
// are missing or differ from the stored block are skipped; Accept owns those.
// It returns how many blocks were rewritten.
func (r *Reconciler) Refresh(ctx context.Context, blocks []*model.FullBlock) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return 0, ErrClosed
	}
	if haltErr := r.state.Halted(); haltErr != nil {
		return 0, fmt.Errorf("%w: %w", ErrChainHalted, haltErr)
	}

	var (
		branch []*model.FullBlock
		stored []model.Block
	)
	for _, fb := range blocks {
		b := fb.Block
		if b.ChainID != r.chain {
			return 0, fmt.Errorf("%w: block %s is on chain %s, expected %s", ErrWrongChain, b.Hash, b.ChainID, r.chain)
		}
		canonical, err := r.store.CanonicalBlock(ctx, r.chain, b.Height)
		if err != nil {
			return 0, fmt.Errorf("load canonical block %d: %w", b.Height, err)
		}
		if canonical == nil || canonical.Hash != b.Hash {
			r.logger.Debug("block not stored, refresh skipped", zap.Int64("height", b.Height), zap.String("hash", b.Hash))
			continue
		}
		branch = append(branch, fb)
		stored = append(stored, *canonical)
	}
	if len(branch) == 0 {
		return 0, nil
	}

	n, err := r.write(ctx, branch, stored, nil)
	if err != nil {
		return 0, err
	}
	r.logger.Info("blocks refreshed",
		zap.Int64("from", branch[0].Block.Height),
		zap.Int64("to", branch[len(branch)-1].Block.Height),
		zap.Int("blocks", n),
	)
	return n, nil
}
