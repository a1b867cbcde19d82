package ingester

import (
	"context"
	"time"

	"github.com/goodnatureofminers/chainweb-indexer/internal/model"
	"github.com/goodnatureofminers/chainweb-indexer/internal/reconciler"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Source provides blocks of every chain from a node.
	Source interface {
		Chains(ctx context.Context) ([]model.ChainID, error)
		LatestHeight(ctx context.Context, chain model.ChainID) (int64, error)
		FetchRange(ctx context.Context, chain model.ChainID, from, to int64) ([]*model.FullBlock, error)
		Subscribe(ctx context.Context, chain model.ChainID, fn func(*model.FullBlock) error) error
	}

	// Reconciler accepts blocks of one chain.
	Reconciler interface {
		Chain() model.ChainID
		LowerBound() int64
		Tip(ctx context.Context) (*model.Block, error)
		Accept(ctx context.Context, origin reconciler.Origin, fb *model.FullBlock) (reconciler.Result, error)
		ExpireParked(now time.Time) int
		Close()
	}

	// GapStore finds heights without a canonical block.
	GapStore interface {
		MissingRanges(ctx context.Context, chain model.ChainID, lower, upper int64) ([]model.HeightRange, error)
	}

	// InFlight reports ranges queued or being filled.
	InFlight interface {
		InFlight(chain model.ChainID) []model.HeightRange
	}

	// RangeSubmitter queues ranges for backfill.
	RangeSubmitter interface {
		Submit(ranges ...model.HeightRange) int
	}

	BackfillMetrics interface {
		ObserveRange(chain model.ChainID, err error, heights int64, started time.Time)
		ObserveFetch(chain model.ChainID, err error, started time.Time)
		SetInFlight(ranges int)
	}

	GapDetectorMetrics interface {
		ObserveDetect(chain model.ChainID, err error, ranges int, started time.Time)
		ObserveCandidate(chain model.ChainID)
	}

	SupervisorMetrics interface {
		SetState(chain model.ChainID, state string)
		ObserveReconnect(chain model.ChainID)
	}
)
