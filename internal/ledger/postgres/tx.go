package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/chainweb-indexer/internal/ledger"
	"github.com/goodnatureofminers/chainweb-indexer/internal/model"
)

// Tx is a ledger write transaction.
type Tx struct {
	tx      *sql.Tx
	metrics Metrics
	chain   model.ChainID
}

// Begin opens a write transaction. Postgres read committed isolation keeps its
// writes invisible to readers until Commit.
func (r *Repository) Begin(ctx context.Context) (ledger.Tx, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("begin", -1, err, start)
	}()

	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &Tx{tx: sqlTx, metrics: r.metrics, chain: -1}, nil
}

// Commit makes every write of the transaction visible at once.
func (t *Tx) Commit() error {
	start := time.Now()
	err := t.tx.Commit()
	t.metrics.Observe("commit", t.chain, err, start)
	if errors.Is(err, sql.ErrTxDone) {
		return ledger.ErrTxDone
	}
	if err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Rollback discards the transaction; it is a no-op after Commit.
func (t *Tx) Rollback() error {
	err := t.tx.Rollback()
	if err == nil || errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return fmt.Errorf("rollback transaction: %w", err)
}

func (t *Tx) observe(operation string, chain model.ChainID, err error, started time.Time) {
	if chain >= 0 {
		t.chain = chain
	}
	t.metrics.Observe(operation, t.chain, err, started)
}

// exec runs query once per argument list through a prepared statement.
func (t *Tx) exec(ctx context.Context, query string, args [][]any) error {
	stmt, err := t.tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, a := range args {
		if _, err := stmt.ExecContext(ctx, a...); err != nil {
			return err
		}
	}
	return nil
}

// TransfersByBlocks loads the transfers owned by the given blocks.
func (t *Tx) TransfersByBlocks(ctx context.Context, hashes []string) ([]model.Transfer, error) {
	start := time.Now()
	var err error
	defer func() {
		t.observe("transfers_by_blocks", -1, err, start)
	}()

	const query = `SELECT amount, block, chain_id, from_account, height, idx, module_hash, module_name, request_key, to_account, pact_id
FROM transfers WHERE block = $1 ORDER BY request_key, idx`

	var transfers []model.Transfer
	for _, hash := range hashes {
		var batch []model.Transfer
		batch, err = t.transfersByBlock(ctx, query, hash)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, batch...)
	}
	return transfers, nil
}

func (t *Tx) transfersByBlock(ctx context.Context, query, hash string) (transfers []model.Transfer, err error) {
	rows, err := t.tx.QueryContext(ctx, query, hash)
	if err != nil {
		return nil, fmt.Errorf("query transfers of block %s: %w", hash, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		var tr model.Transfer
		if err = rows.Scan(
			&tr.Amount,
			&tr.Block,
			&tr.ChainID,
			&tr.FromAccount,
			&tr.Height,
			&tr.Idx,
			&tr.ModuleHash,
			&tr.ModuleName,
			&tr.RequestKey,
			&tr.ToAccount,
			&tr.PactID,
		); err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		transfers = append(transfers, tr)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transfers: %w", err)
	}
	return transfers, nil
}

// DeleteBlocks removes blocks; transactions, events, transfers and malformed
// transfers go with them through ON DELETE CASCADE.
func (t *Tx) DeleteBlocks(ctx context.Context, hashes []string) error {
	start := time.Now()
	var err error
	defer func() {
		t.observe("delete_blocks", -1, err, start)
	}()

	if len(hashes) == 0 {
		return nil
	}

	const query = `DELETE FROM blocks WHERE hash = $1`

	args := make([][]any, 0, len(hashes))
	for _, h := range hashes {
		args = append(args, []any{h})
	}
	if err = t.exec(ctx, query, args); err != nil {
		return fmt.Errorf("delete blocks: %w", err)
	}
	return nil
}

// RecordOrphans keeps an audit row per block removed by a reorg.
func (t *Tx) RecordOrphans(ctx context.Context, orphans []model.OrphanedBlock) error {
	start := time.Now()
	var err error
	defer func() {
		t.observe("record_orphans", firstChain(orphans), err, start)
	}()

	if len(orphans) == 0 {
		return nil
	}

	const query = `INSERT INTO orphaned_blocks (hash, chain_id, height, parent, replaced_by, orphaned_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT DO NOTHING`

	args := make([][]any, 0, len(orphans))
	for _, o := range orphans {
		args = append(args, []any{o.Hash, o.ChainID, o.Height, o.Parent, o.ReplacedBy, o.OrphanedAt})
	}
	if err = t.exec(ctx, query, args); err != nil {
		return fmt.Errorf("insert orphaned blocks: %w", err)
	}
	return nil
}
