package reconciler

import (
	"context"
	"fmt"

	"github.com/goodnatureofminers/chainweb-indexer/internal/derivation"
	"github.com/goodnatureofminers/chainweb-indexer/internal/model"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// RederiveResult summarizes one transfer re-derivation.
type RederiveResult struct {
	Blocks    int
	Removed   int
	Inserted  int
	Malformed int
}

// Rederive rebuilds the transfers and balances of the canonical blocks in
// [from, to] from their stored events with the current deriver. The old
// transfers are reversed out of the balances and the new ones applied in the
// same ledger transaction, so balances stay the net of the stored transfers.
func (r *Reconciler) Rederive(ctx context.Context, from, to int64) (res RederiveResult, err error) {
	if to < from {
		return RederiveResult{}, fmt.Errorf("invalid range [%d, %d]", from, to)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return RederiveResult{}, ErrClosed
	}

	stored, err := r.store.CanonicalBlocksFrom(ctx, r.chain, from)
	if err != nil {
		return RederiveResult{}, fmt.Errorf("load blocks of chain %s: %w", r.chain, err)
	}
	var (
		blocks []model.Block
		hashes []string
	)
	for _, b := range stored {
		if b.Height > to {
			break
		}
		blocks = append(blocks, b)
		hashes = append(hashes, b.Hash)
	}
	if len(blocks) == 0 {
		return RederiveResult{}, nil
	}

	tx, err := r.store.Begin(ctx)
	if err != nil {
		return RederiveResult{}, fmt.Errorf("begin rederivation: %w", err)
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, tx.Rollback())
		}
	}()

	retracted, err := tx.TransfersByBlocks(ctx, hashes)
	if err != nil {
		return RederiveResult{}, fmt.Errorf("load transfers: %w", err)
	}
	txs, err := tx.TransactionsByBlocks(ctx, hashes)
	if err != nil {
		return RederiveResult{}, fmt.Errorf("load transactions: %w", err)
	}
	events, err := tx.EventsByBlocks(ctx, hashes)
	if err != nil {
		return RederiveResult{}, fmt.Errorf("load events: %w", err)
	}
	if err = tx.DeleteTransfers(ctx, hashes); err != nil {
		return RederiveResult{}, fmt.Errorf("delete transfers: %w", err)
	}

	txsByBlock := make(map[string][]model.Transaction, len(blocks))
	for _, t := range txs {
		txsByBlock[t.Block] = append(txsByBlock[t.Block], t)
	}
	eventsByBlock := make(map[string][]model.Event, len(blocks))
	for _, ev := range events {
		eventsByBlock[ev.Block] = append(eventsByBlock[ev.Block], ev)
	}

	deltas := [][]model.BalanceDelta{derivation.Reverse(retracted)}
	res = RederiveResult{Blocks: len(blocks), Removed: len(retracted)}
	for _, b := range blocks {
		derived := r.deriver.Derive(b, txsByBlock[b.Hash], eventsByBlock[b.Hash])
		if err = tx.InsertTransfers(ctx, derived.Transfers); err != nil {
			return RederiveResult{}, fmt.Errorf("insert transfers of %s: %w", b.Hash, err)
		}
		if err = tx.InsertMalformedTransfers(ctx, derived.Malformed); err != nil {
			return RederiveResult{}, fmt.Errorf("insert malformed transfers of %s: %w", b.Hash, err)
		}
		res.Inserted += len(derived.Transfers)
		res.Malformed += len(derived.Malformed)
		deltas = append(deltas, derived.Deltas)
	}

	if err = tx.ApplyBalanceDeltas(ctx, derivation.MergeDeltas(deltas...)); err != nil {
		return RederiveResult{}, fmt.Errorf("apply balance deltas: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return RederiveResult{}, fmt.Errorf("commit rederivation: %w", err)
	}

	r.logger.Info("transfers rederived",
		zap.Int64("from", blocks[0].Height),
		zap.Int64("to", blocks[len(blocks)-1].Height),
		zap.Int("blocks", res.Blocks),
		zap.Int("removed", res.Removed),
		zap.Int("inserted", res.Inserted),
	)
	return res, nil
}
