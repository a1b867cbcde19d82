package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/chainweb-indexer/internal/model"
)

// InsertTransfers stores derived transfer rows, skipping ones already present.
func (t *Tx) InsertTransfers(ctx context.Context, transfers []model.Transfer) error {
	start := time.Now()
	var err error
	defer func() {
		t.observe("insert_transfers", firstChain(transfers), err, start)
	}()

	if len(transfers) == 0 {
		return nil
	}

	const query = `INSERT INTO transfers (
	amount,
	block,
	chain_id,
	from_account,
	height,
	idx,
	module_hash,
	module_name,
	request_key,
	to_account,
	pact_id
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT DO NOTHING`

	args := make([][]any, 0, len(transfers))
	for _, tr := range transfers {
		args = append(args, []any{
			tr.Amount,
			tr.Block,
			tr.ChainID,
			tr.FromAccount,
			tr.Height,
			tr.Idx,
			tr.ModuleHash,
			tr.ModuleName,
			tr.RequestKey,
			tr.ToAccount,
			tr.PactID,
		})
	}
	if err = t.exec(ctx, query, args); err != nil {
		return fmt.Errorf("insert transfers: %w", err)
	}
	return nil
}

// InsertMalformedTransfers stores transfer events that could not be parsed.
func (t *Tx) InsertMalformedTransfers(ctx context.Context, malformed []model.MalformedTransfer) error {
	start := time.Now()
	var err error
	defer func() {
		t.observe("insert_malformed_transfers", firstChain(malformed), err, start)
	}()

	if len(malformed) == 0 {
		return nil
	}

	const query = `INSERT INTO malformed_transfers (block, request_key, idx, chain_id, height, module, params, reason)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT DO NOTHING`

	args := make([][]any, 0, len(malformed))
	for _, m := range malformed {
		args = append(args, []any{m.Block, m.RequestKey, m.Idx, m.ChainID, m.Height, m.Module, m.Params, m.Reason})
	}
	if err = t.exec(ctx, query, args); err != nil {
		return fmt.Errorf("insert malformed transfers: %w", err)
	}
	return nil
}
