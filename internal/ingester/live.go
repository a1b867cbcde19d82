package ingester

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goodnatureofminers/chainweb-indexer/internal/clock"
	"github.com/goodnatureofminers/chainweb-indexer/internal/model"
	"github.com/goodnatureofminers/chainweb-indexer/internal/reconciler"
	"go.uber.org/zap"
)

// ChainStatus is the lifecycle state of one chain's live ingestion.
type ChainStatus string

const (
	StatusStarting       ChainStatus = "starting"
	StatusLiveSubscribed ChainStatus = "live_subscribed"
	StatusFaulted        ChainStatus = "faulted"
	StatusReconnecting   ChainStatus = "reconnecting"
	StatusHalted         ChainStatus = "halted"
	StatusStopped        ChainStatus = "stopped"
)

// LiveFollower keeps one chain at the node's head: it catches up from the
// stored tip, then follows the live header stream, reconnecting on faults.
type LiveFollower struct {
	chain       model.ChainID
	source      Source
	rec         Reconciler
	submitter   RangeSubmitter
	metrics     SupervisorMetrics
	fetchWindow int64
	newBackOff  func() backoff.BackOff
	sleep       func(context.Context, time.Duration) error
	logger      *zap.Logger

	mu     sync.Mutex
	status ChainStatus
	err    error
}

// NewLiveFollower builds a LiveFollower for the chain of rec.
func NewLiveFollower(
	source Source,
	rec Reconciler,
	submitter RangeSubmitter,
	metrics SupervisorMetrics,
	fetchWindow int64,
	logger *zap.Logger,
) (*LiveFollower, error) {
	if source == nil {
		return nil, errors.New("source is required")
	}
	if rec == nil {
		return nil, errors.New("reconciler is required")
	}
	if metrics == nil {
		return nil, errors.New("supervisor metrics is required")
	}
	if fetchWindow <= 0 {
		fetchWindow = defaultFetchWindow
	}
	return &LiveFollower{
		chain:       rec.Chain(),
		source:      source,
		rec:         rec,
		submitter:   submitter,
		metrics:     metrics,
		fetchWindow: fetchWindow,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = reconnectInitialInterval
			b.MaxInterval = reconnectMaxInterval
			b.MaxElapsedTime = 0
			return b
		},
		sleep:  clock.SleepWithContext,
		logger: logger.Named("live").With(zap.Int64("chain", int64(rec.Chain()))),
		status: StatusStarting,
	}, nil
}

// Chain returns the followed chain.
func (f *LiveFollower) Chain() model.ChainID {
	return f.chain
}

// Status returns the current state and, once halted, the halting error.
func (f *LiveFollower) Status() (ChainStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status, f.err
}

func (f *LiveFollower) setStatus(status ChainStatus, err error) {
	f.mu.Lock()
	f.status, f.err = status, err
	f.mu.Unlock()
	f.metrics.SetState(f.chain, string(status))
}

// Run follows the chain until ctx is done or the chain halts. Faults are
// retried with exponential backoff and never returned.
func (f *LiveFollower) Run(ctx context.Context) error {
	f.setStatus(StatusStarting, nil)
	b := f.newBackOff()
	for {
		err := f.session(ctx, b)
		if ctx.Err() != nil || errors.Is(err, reconciler.ErrClosed) {
			f.setStatus(StatusStopped, nil)
			return nil
		}
		if errors.Is(err, reconciler.ErrIntegrityViolation) || errors.Is(err, reconciler.ErrChainHalted) {
			f.setStatus(StatusHalted, err)
			f.logger.Error("chain halted, live ingestion stopped", zap.Error(err))
			return nil
		}

		f.setStatus(StatusFaulted, err)
		f.metrics.ObserveReconnect(f.chain)
		delay := b.NextBackOff()
		if delay == backoff.Stop {
			delay = reconnectMaxInterval
		}
		f.logger.Warn("live ingestion faulted, reconnecting", zap.Error(err), zap.Duration("sleep", delay))
		f.setStatus(StatusReconnecting, nil)
		if err := f.sleep(ctx, delay); err != nil {
			f.setStatus(StatusStopped, nil)
			return nil
		}
	}
}

// session catches up to the node's head and then consumes the live stream
// until it fails.
func (f *LiveFollower) session(ctx context.Context, b backoff.BackOff) error {
	if err := f.catchUp(ctx, b); err != nil {
		return err
	}
	f.setStatus(StatusLiveSubscribed, nil)
	f.logger.Info("subscribed to live blocks")
	return f.source.Subscribe(ctx, f.chain, func(fb *model.FullBlock) error {
		return f.deliver(ctx, fb, b)
	})
}

// catchUp re-delivers the stored tip and everything above it up to the
// node's current head. An empty chain is anchored at the head.
func (f *LiveFollower) catchUp(ctx context.Context, b backoff.BackOff) error {
	tip, err := f.rec.Tip(ctx)
	if err != nil {
		return err
	}
	head, err := f.source.LatestHeight(ctx, f.chain)
	if err != nil {
		return fmt.Errorf("latest height of chain %s: %w", f.chain, err)
	}

	from := max(head, f.rec.LowerBound())
	if tip != nil {
		from = tip.Height
	}
	if from > head {
		return nil
	}
	f.logger.Info("catching up", zap.Int64("from", from), zap.Int64("head", head))

	for from <= head {
		to := min(from+f.fetchWindow-1, head)
		blocks, err := f.source.FetchRange(ctx, f.chain, from, to)
		if err != nil {
			return fmt.Errorf("fetch chain %s [%d..%d]: %w", f.chain, from, to, err)
		}
		if len(blocks) == 0 {
			return nil
		}
		for _, fb := range blocks {
			if err := f.deliver(ctx, fb, b); err != nil {
				return err
			}
		}
		from = blocks[len(blocks)-1].Block.Height + 1
	}
	return nil
}

func (f *LiveFollower) deliver(ctx context.Context, fb *model.FullBlock, b backoff.BackOff) error {
	res, err := f.rec.Accept(ctx, reconciler.OriginLive, fb)
	if err != nil {
		return fmt.Errorf("accept block %s at %d: %w", fb.Block.Hash, fb.Block.Height, err)
	}
	switch res.Outcome {
	case reconciler.OutcomeExtended, reconciler.OutcomeReorganized, reconciler.OutcomeFilled:
		b.Reset()
	case reconciler.OutcomeParked:
		if res.Candidate != nil && f.submitter != nil {
			f.submitter.Submit(*res.Candidate)
		}
	}
	return nil
}
