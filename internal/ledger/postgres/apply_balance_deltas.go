package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/chainweb-indexer/internal/model"
)

// ApplyBalanceDeltas adds signed deltas to balances, creating missing rows.
// Balance keys include the chain, so concurrent chains never contend on a row.
func (t *Tx) ApplyBalanceDeltas(ctx context.Context, deltas []model.BalanceDelta) error {
	start := time.Now()
	var err error
	defer func() {
		t.observe("apply_balance_deltas", firstChain(deltas), err, start)
	}()

	if len(deltas) == 0 {
		return nil
	}

	const query = `INSERT INTO balances (account, chain_id, height, qual_name, module, amount)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (account, chain_id, qual_name) DO UPDATE
SET amount = balances.amount + EXCLUDED.amount,
    height = GREATEST(balances.height, EXCLUDED.height)`

	args := make([][]any, 0, len(deltas))
	for _, d := range deltas {
		args = append(args, []any{d.Account, d.ChainID, d.Height, d.QualName, d.Module, d.Amount})
	}
	if err = t.exec(ctx, query, args); err != nil {
		return fmt.Errorf("apply balance deltas: %w", err)
	}
	return nil
}
