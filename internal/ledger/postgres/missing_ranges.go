package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/chainweb-indexer/internal/model"
)

// MissingRanges returns maximal runs of heights in [lower, upper] with no stored block.
func (r *Repository) MissingRanges(ctx context.Context, chain model.ChainID, lower, upper int64) (ranges []model.HeightRange, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("missing_ranges", chain, err, start)
	}()

	if upper < lower {
		return nil, nil
	}

	const query = `WITH bounds AS (
    SELECT $2::bigint - 1 AS height
    UNION ALL
    SELECT height FROM blocks WHERE chain_id = $1 AND height BETWEEN $2 AND $3
    UNION ALL
    SELECT $3::bigint + 1
), ordered AS (
    SELECT height, LEAD(height) OVER (ORDER BY height) AS next_height
    FROM bounds
)
SELECT height + 1 AS gap_from, next_height - 1 AS gap_to
FROM ordered
WHERE next_height - height > 1
ORDER BY height`

	rows, err := r.db.QueryContext(ctx, query, chain, lower, upper)
	if err != nil {
		return nil, fmt.Errorf("query missing ranges: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		rng := model.HeightRange{ChainID: chain}
		if err = rows.Scan(&rng.From, &rng.To); err != nil {
			return nil, fmt.Errorf("scan missing range: %w", err)
		}
		ranges = append(ranges, rng)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate missing ranges: %w", err)
	}
	return ranges, nil
}
