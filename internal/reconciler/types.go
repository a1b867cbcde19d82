package reconciler

import (
	"time"

	"github.com/goodnatureofminers/chainweb-indexer/internal/derivation"
	"github.com/goodnatureofminers/chainweb-indexer/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Deriver interface {
		Derive(block model.Block, txs []model.Transaction, events []model.Event) derivation.Result
	}
	// GapSink receives height ranges that should be backfilled.
	GapSink interface {
		ReportCandidate(r model.HeightRange)
	}
	Metrics interface {
		ObserveAccept(chain model.ChainID, origin, outcome string, err error, started time.Time)
		ObserveReorg(chain model.ChainID, orphaned int)
		ObserveHalt(chain model.ChainID)
		SetTip(chain model.ChainID, height int64)
		SetParked(chain model.ChainID, parked int)
	}
)
