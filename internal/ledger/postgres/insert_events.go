package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/chainweb-indexer/internal/model"
)

// InsertEvents stores event rows, skipping ones already present.
func (t *Tx) InsertEvents(ctx context.Context, events []model.Event) error {
	start := time.Now()
	var err error
	defer func() {
		t.observe("insert_events", firstChain(events), err, start)
	}()

	if len(events) == 0 {
		return nil
	}

	const query = `INSERT INTO events (
	block,
	chain_id,
	height,
	idx,
	module,
	module_hash,
	name,
	params,
	param_text,
	qual_name,
	request_key,
	pact_id
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT DO NOTHING`

	args := make([][]any, 0, len(events))
	for _, ev := range events {
		params := nullJSON(ev.Params)
		if params == nil {
			params = "[]"
		}
		args = append(args, []any{
			ev.Block,
			ev.ChainID,
			ev.Height,
			ev.Idx,
			ev.Module,
			ev.ModuleHash,
			ev.Name,
			params,
			ev.ParamText,
			ev.QualName,
			ev.RequestKey,
			ev.PactID,
		})
	}
	if err = t.exec(ctx, query, args); err != nil {
		return fmt.Errorf("insert events: %w", err)
	}
	return nil
}
