package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/chainweb-indexer/internal/model"
)

const blockColumns = `chain_id, creation_time, epoch, flags, hash, height, miner, nonce, parent, payload, pow_hash, predicate, target, weight`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBlock(row rowScanner) (model.Block, error) {
	var b model.Block
	err := row.Scan(
		&b.ChainID,
		&b.CreationTime,
		&b.Epoch,
		&b.Flags,
		&b.Hash,
		&b.Height,
		&b.Miner,
		&b.Nonce,
		&b.Parent,
		&b.Payload,
		&b.PowHash,
		&b.Predicate,
		&b.Target,
		&b.Weight,
	)
	return b, err
}

// Tip returns the highest canonical block of the chain or nil for an empty chain.
func (r *Repository) Tip(ctx context.Context, chain model.ChainID) (*model.Block, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("tip", chain, err, start)
	}()

	const query = `SELECT ` + blockColumns + ` FROM blocks WHERE chain_id = $1 ORDER BY height DESC LIMIT 1`

	b, err := scanBlock(r.db.QueryRowContext(ctx, query, chain))
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query tip: %w", err)
	}
	return &b, nil
}

// CanonicalBlock returns the block stored at height or nil when the height is missing.
func (r *Repository) CanonicalBlock(ctx context.Context, chain model.ChainID, height int64) (*model.Block, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("canonical_block", chain, err, start)
	}()

	const query = `SELECT ` + blockColumns + ` FROM blocks WHERE chain_id = $1 AND height = $2`

	b, err := scanBlock(r.db.QueryRowContext(ctx, query, chain, height))
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query canonical block %d: %w", height, err)
	}
	return &b, nil
}

// CanonicalBlocksFrom returns the stored blocks at or above height in ascending order.
func (r *Repository) CanonicalBlocksFrom(ctx context.Context, chain model.ChainID, height int64) (blocks []model.Block, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("canonical_blocks_from", chain, err, start)
	}()

	const query = `SELECT ` + blockColumns + ` FROM blocks WHERE chain_id = $1 AND height >= $2 ORDER BY height`

	rows, err := r.db.QueryContext(ctx, query, chain, height)
	if err != nil {
		return nil, fmt.Errorf("query canonical blocks from %d: %w", height, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		var b model.Block
		if b, err = scanBlock(rows); err != nil {
			return nil, fmt.Errorf("scan canonical block: %w", err)
		}
		blocks = append(blocks, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate canonical blocks: %w", err)
	}
	return blocks, nil
}
