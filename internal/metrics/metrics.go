// Package metrics exposes application metrics collectors.
package metrics

import (
	"strconv"

	"github.com/goodnatureofminers/chainweb-indexer/internal/model"
)

const namespace = "chainweb_indexer"

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func chainLabel(chain model.ChainID) string {
	return strconv.FormatInt(int64(chain), 10)
}

func networkLabel(network model.Network) string {
	if network == "" {
		return "unknown"
	}
	return string(network)
}
