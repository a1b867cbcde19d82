package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goodnatureofminers/chainweb-indexer/internal/model"
)

// TransactionsByBlocks loads the request key and pact id of the transactions
// owned by the given blocks, which is all transfer derivation reads of them.
func (t *Tx) TransactionsByBlocks(ctx context.Context, hashes []string) (txs []model.Transaction, err error) {
	start := time.Now()
	defer func() {
		t.observe("transactions_by_blocks", -1, err, start)
	}()

	const query = `SELECT block, chain_id, height, request_key, pact_id
FROM transactions WHERE block = $1 ORDER BY request_key`

	for _, hash := range hashes {
		err = t.queryBlock(ctx, query, hash, func(rows *sql.Rows) error {
			var tx model.Transaction
			if err := rows.Scan(&tx.Block, &tx.ChainID, &tx.Height, &tx.RequestKey, &tx.PactID); err != nil {
				return fmt.Errorf("scan transaction: %w", err)
			}
			txs = append(txs, tx)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("load transactions of block %s: %w", hash, err)
		}
	}
	return txs, nil
}

// EventsByBlocks loads the events owned by the given blocks.
func (t *Tx) EventsByBlocks(ctx context.Context, hashes []string) (events []model.Event, err error) {
	start := time.Now()
	defer func() {
		t.observe("events_by_blocks", -1, err, start)
	}()

	const query = `SELECT block, chain_id, height, idx, module, module_hash, name, params, param_text, qual_name, request_key, pact_id
FROM events WHERE block = $1 ORDER BY request_key, idx`

	for _, hash := range hashes {
		err = t.queryBlock(ctx, query, hash, func(rows *sql.Rows) error {
			var (
				ev     model.Event
				params []byte
			)
			if err := rows.Scan(
				&ev.Block,
				&ev.ChainID,
				&ev.Height,
				&ev.Idx,
				&ev.Module,
				&ev.ModuleHash,
				&ev.Name,
				&params,
				&ev.ParamText,
				&ev.QualName,
				&ev.RequestKey,
				&ev.PactID,
			); err != nil {
				return fmt.Errorf("scan event: %w", err)
			}
			ev.Params = params
			events = append(events, ev)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("load events of block %s: %w", hash, err)
		}
	}
	return events, nil
}

// queryBlock runs query for one block hash and hands every row to scan.
func (t *Tx) queryBlock(ctx context.Context, query, hash string, scan func(*sql.Rows) error) (err error) {
	rows, err := t.tx.QueryContext(ctx, query, hash)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		if err = scan(rows); err != nil {
			return err
		}
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("iterate rows: %w", err)
	}
	return nil
}

// DeleteTransfers removes the transfers and malformed transfers owned by the
// given blocks, leaving the blocks and their events in place.
func (t *Tx) DeleteTransfers(ctx context.Context, hashes []string) (err error) {
	start := time.Now()
	defer func() {
		t.observe("delete_transfers", -1, err, start)
	}()

	if len(hashes) == 0 {
		return nil
	}

	args := make([][]any, 0, len(hashes))
	for _, h := range hashes {
		args = append(args, []any{h})
	}
	if err = t.exec(ctx, `DELETE FROM transfers WHERE block = $1`, args); err != nil {
		return fmt.Errorf("delete transfers: %w", err)
	}
	if err = t.exec(ctx, `DELETE FROM malformed_transfers WHERE block = $1`, args); err != nil {
		return fmt.Errorf("delete malformed transfers: %w", err)
	}
	return nil
}
