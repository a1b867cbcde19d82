package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/chainweb-indexer/internal/model"
)

// InsertTransactions stores transaction rows, skipping ones already present.
func (t *Tx) InsertTransactions(ctx context.Context, txs []model.Transaction) error {
	start := time.Now()
	var err error
	defer func() {
		t.observe("insert_transactions", firstChain(txs), err, start)
	}()

	if len(txs) == 0 {
		return nil
	}

	const query = `INSERT INTO transactions (
	bad_result,
	block,
	chain_id,
	code,
	continuation,
	creation_time,
	data,
	gas,
	gas_limit,
	gas_price,
	good_result,
	height,
	logs,
	metadata,
	nonce,
	num_events,
	pact_id,
	proof,
	request_key,
	rollback,
	sender,
	step,
	ttl,
	tx_id
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
ON CONFLICT DO NOTHING`

	args := make([][]any, 0, len(txs))
	for _, tx := range txs {
		args = append(args, []any{
			nullJSON(tx.BadResult),
			tx.Block,
			tx.ChainID,
			tx.Code,
			nullJSON(tx.Continuation),
			tx.CreationTime,
			nullJSON(tx.Data),
			tx.Gas,
			tx.GasLimit,
			tx.GasPrice,
			nullJSON(tx.GoodResult),
			tx.Height,
			tx.Logs,
			nullJSON(tx.Metadata),
			tx.Nonce,
			tx.NumEvents,
			tx.PactID,
			tx.Proof,
			tx.RequestKey,
			tx.Rollback,
			tx.Sender,
			tx.Step,
			tx.TTL,
			tx.TxID,
		})
	}
	if err = t.exec(ctx, query, args); err != nil {
		return fmt.Errorf("insert transactions: %w", err)
	}
	return nil
}
