package reconciler

import "github.com/goodnatureofminers/chainweb-indexer/internal/model"

// prefers reports whether head a wins over head b: greater height, then
// greater cumulative weight, then the smaller hash.
func prefers(a, b model.Block) bool {
	if a.Height != b.Height {
		return a.Height > b.Height
	}
	if c := a.Weight.Cmp(b.Weight); c != 0 {
		return c > 0
	}
	return a.Hash < b.Hash
}
