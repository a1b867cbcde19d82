package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/chainweb-indexer/internal/model"
)

// InsertBlock stores the block unless its hash is already present.
// A different block at the same chain height violates the unique constraint.
func (t *Tx) InsertBlock(ctx context.Context, b model.Block) (bool, error) {
	start := time.Now()
	var err error
	defer func() {
		t.observe("insert_block", b.ChainID, err, start)
	}()

	const query = `INSERT INTO blocks (` + blockColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (hash) DO NOTHING`

	res, err := t.tx.ExecContext(ctx, query,
		b.ChainID,
		b.CreationTime,
		b.Epoch,
		b.Flags,
		b.Hash,
		b.Height,
		b.Miner,
		b.Nonce,
		b.Parent,
		b.Payload,
		b.PowHash,
		b.Predicate,
		b.Target,
		b.Weight,
	)
	if err != nil {
		return false, fmt.Errorf("insert block %s: %w", b.Hash, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected == 1, nil
}
