package derivation

import "github.com/goodnatureofminers/chainweb-indexer/internal/model"

func transferDeltas(t model.Transfer, qualName string, reverse bool) []model.BalanceDelta {
	amount := t.Amount
	if reverse {
		amount = amount.Neg()
	}
	deltas := make([]model.BalanceDelta, 0, 2)
	if t.FromAccount != "" {
		deltas = append(deltas, model.BalanceDelta{
			Account:  t.FromAccount,
			ChainID:  t.ChainID,
			QualName: qualName,
			Module:   t.ModuleName,
			Amount:   amount.Neg(),
			Height:   t.Height,
		})
	}
	if t.ToAccount != "" {
		deltas = append(deltas, model.BalanceDelta{
			Account:  t.ToAccount,
			ChainID:  t.ChainID,
			QualName: qualName,
			Module:   t.ModuleName,
			Amount:   amount,
			Height:   t.Height,
		})
	}
	return deltas
}

// QualName is the balance key of transfers emitted by module.
func QualName(module string) string {
	return module + "." + transferEventName
}

// Reverse returns the deltas that undo the given transfers.
func Reverse(transfers []model.Transfer) []model.BalanceDelta {
	deltas := make([]model.BalanceDelta, 0, 2*len(transfers))
	for _, t := range transfers {
		deltas = append(deltas, transferDeltas(t, QualName(t.ModuleName), true)...)
	}
	return deltas
}

// MergeDeltas sums deltas per balance key, keeping first-seen order and dropping zero sums.
func MergeDeltas(groups ...[]model.BalanceDelta) []model.BalanceDelta {
	index := make(map[model.BalanceKey]int)
	var merged []model.BalanceDelta
	for _, group := range groups {
		for _, d := range group {
			k := d.Key()
			i, ok := index[k]
			if !ok {
				index[k] = len(merged)
				merged = append(merged, d)
				continue
			}
			merged[i].Amount = merged[i].Amount.Add(d.Amount)
			if d.Height > merged[i].Height {
				merged[i].Height = d.Height
			}
		}
	}

	out := merged[:0]
	for _, d := range merged {
		if !d.Amount.IsZero() {
			out = append(out, d)
		}
	}
	return out
}
