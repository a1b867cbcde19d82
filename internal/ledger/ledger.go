// Package ledger defines the access contract of the relational ledger store.
package ledger

import (
	"context"
	"errors"

	"github.com/goodnatureofminers/chainweb-indexer/internal/model"
)

// ErrTxDone is returned when a finished transaction is used again.
var ErrTxDone = errors.New("ledger transaction already finished")

// Reader exposes the canonical view of stored chains.
type Reader interface {
	// Tip returns the highest canonical block of the chain, or nil when the chain is empty.
	Tip(ctx context.Context, chain model.ChainID) (*model.Block, error)
	// CanonicalBlock returns the canonical block at height, or nil when the height is missing.
	CanonicalBlock(ctx context.Context, chain model.ChainID, height int64) (*model.Block, error)
	// CanonicalBlocksFrom returns canonical blocks at or above height in ascending order.
	CanonicalBlocksFrom(ctx context.Context, chain model.ChainID, height int64) ([]model.Block, error)
	// MissingRanges returns maximal runs of heights in [lower, upper] without a canonical block.
	MissingRanges(ctx context.Context, chain model.ChainID, lower, upper int64) ([]model.HeightRange, error)
}

// Store is a Reader that can open write transactions.
type Store interface {
	Reader
	Begin(ctx context.Context) (Tx, error)
}

// Tx is one all-or-nothing reconciliation unit.
type Tx interface {
	TransfersByBlocks(ctx context.Context, hashes []string) ([]model.Transfer, error)
	// TransactionsByBlocks loads the request key and pact id of every transaction owned by the blocks.
	TransactionsByBlocks(ctx context.Context, hashes []string) ([]model.Transaction, error)
	EventsByBlocks(ctx context.Context, hashes []string) ([]model.Event, error)
	// DeleteTransfers removes the transfers and malformed transfers owned by the blocks.
	DeleteTransfers(ctx context.Context, hashes []string) error
	DeleteBlocks(ctx context.Context, hashes []string) error
	RecordOrphans(ctx context.Context, orphans []model.OrphanedBlock) error
	// InsertBlock inserts the block unless a row with its hash exists and reports whether it did.
	InsertBlock(ctx context.Context, b model.Block) (bool, error)
	InsertTransactions(ctx context.Context, txs []model.Transaction) error
	InsertEvents(ctx context.Context, events []model.Event) error
	InsertTransfers(ctx context.Context, transfers []model.Transfer) error
	InsertMalformedTransfers(ctx context.Context, malformed []model.MalformedTransfer) error
	ApplyBalanceDeltas(ctx context.Context, deltas []model.BalanceDelta) error
	Commit() error
	Rollback() error
}
