// Package derivation turns pact events into transfers and balance deltas.
package derivation

import (
	"strings"

	"github.com/goodnatureofminers/chainweb-indexer/internal/model"
)

const (
	transferEventName = "TRANSFER"
	// AnyModule accepts TRANSFER events of every module with the fungible parameter shape.
	AnyModule = "*"

	fungibleParamCount = 3
)

// DefaultModules are the token modules recognized when none are configured.
var DefaultModules = []string{"coin"}

// Result holds the rows derived from one block.
type Result struct {
	Transfers []model.Transfer
	Deltas    []model.BalanceDelta
	Malformed []model.MalformedTransfer
}

// Deriver recognizes transfer events of a configured set of modules.
type Deriver struct {
	modules   map[string]struct{}
	anyModule bool
}

// NewDeriver builds a Deriver for the given modules; AnyModule widens it to every
// module emitting three-parameter TRANSFER events.
func NewDeriver(modules []string) *Deriver {
	if len(modules) == 0 {
		modules = DefaultModules
	}
	d := &Deriver{modules: make(map[string]struct{}, len(modules))}
	for _, m := range modules {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		if m == AnyModule {
			d.anyModule = true
			continue
		}
		d.modules[m] = struct{}{}
	}
	return d
}

// Derive extracts transfers and balance deltas from the events of a block.
// Malformed transfer events are reported in Result.Malformed and contribute nothing else.
func (d *Deriver) Derive(block model.Block, txs []model.Transaction, events []model.Event) Result {
	pactIDs := make(map[string]*string, len(txs))
	for _, tx := range txs {
		if tx.PactID != nil {
			pactIDs[tx.RequestKey] = tx.PactID
		}
	}

	var res Result
	for _, ev := range events {
		if ev.Name != transferEventName {
			continue
		}
		params, shaped := d.recognize(ev)
		if !shaped {
			continue
		}

		from, to, amount, err := parseTransferParams(params)
		if err != nil {
			res.Malformed = append(res.Malformed, model.MalformedTransfer{
				Block:      ev.Block,
				RequestKey: ev.RequestKey,
				Idx:        ev.Idx,
				ChainID:    block.ChainID,
				Height:     block.Height,
				Module:     ev.Module,
				Params:     ev.ParamText,
				Reason:     err.Error(),
			})
			continue
		}

		pactID := ev.PactID
		if pactID == nil {
			pactID = pactIDs[ev.RequestKey]
		}
		t := model.Transfer{
			Block:       ev.Block,
			RequestKey:  ev.RequestKey,
			Idx:         ev.Idx,
			ChainID:     block.ChainID,
			Height:      block.Height,
			ModuleHash:  ev.ModuleHash,
			ModuleName:  ev.Module,
			FromAccount: from,
			ToAccount:   to,
			Amount:      amount,
			PactID:      pactID,
		}
		res.Transfers = append(res.Transfers, t)
		res.Deltas = append(res.Deltas, transferDeltas(t, QualName(ev.Module), false)...)
	}
	return res
}

// recognize reports whether the event is transfer-shaped for this deriver and
// returns its decoded parameter list when it could be decoded.
func (d *Deriver) recognize(ev model.Event) ([]any, bool) {
	if _, ok := d.modules[ev.Module]; ok {
		params, _ := decodeParams(ev.Params)
		return params, true
	}
	if !d.anyModule {
		return nil, false
	}
	params, err := decodeParams(ev.Params)
	if err != nil || len(params) != fungibleParamCount {
		return nil, false
	}
	return params, true
}
