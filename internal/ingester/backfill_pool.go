package ingester

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goodnatureofminers/chainweb-indexer/internal/chainweb"
	"github.com/goodnatureofminers/chainweb-indexer/internal/model"
	"github.com/goodnatureofminers/chainweb-indexer/internal/reconciler"
	"github.com/goodnatureofminers/chainweb-indexer/pkg/workerpool"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// BackfillConfig tunes a BackfillPool. Zero values select defaults.
type BackfillConfig struct {
	Workers       int
	FetchWindow   int64
	RetryAttempts uint64
	MaxRewind     int64
}

func (c BackfillConfig) withDefaults() BackfillConfig {
	if c.Workers <= 0 {
		c.Workers = defaultBackfillWorkers
	}
	if c.FetchWindow <= 0 {
		c.FetchWindow = defaultFetchWindow
	}
	if c.RetryAttempts == 0 {
		c.RetryAttempts = defaultRetryAttempts
	}
	if c.MaxRewind <= 0 {
		c.MaxRewind = defaultMaxRewind
	}
	return c
}

// BackfillPool fills height ranges: ascending and sequential within a chain,
// concurrent across chains.
type BackfillPool struct {
	source      Source
	reconcilers map[model.ChainID]Reconciler
	metrics     BackfillMetrics
	cfg         BackfillConfig
	newBackOff  func() backoff.BackOff
	logger      *zap.Logger

	mu       sync.Mutex
	queue    map[model.ChainID][]model.HeightRange
	inFlight map[model.ChainID][]model.HeightRange
	active   map[model.ChainID]bool
	wake     chan struct{}

	stopOnce sync.Once
	stopped  chan struct{}
}

// NewBackfillPool builds a BackfillPool over the given reconcilers.
func NewBackfillPool(
	source Source,
	reconcilers []Reconciler,
	metrics BackfillMetrics,
	cfg BackfillConfig,
	logger *zap.Logger,
) (*BackfillPool, error) {
	if source == nil {
		return nil, errors.New("source is required")
	}
	if metrics == nil {
		return nil, errors.New("backfill metrics is required")
	}
	byChain := make(map[model.ChainID]Reconciler, len(reconcilers))
	for _, r := range reconcilers {
		byChain[r.Chain()] = r
	}
	return &BackfillPool{
		source:      source,
		reconcilers: byChain,
		metrics:     metrics,
		cfg:         cfg.withDefaults(),
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = retryInitialInterval
			b.MaxInterval = retryMaxInterval
			b.MaxElapsedTime = 0
			return b
		},
		logger:   logger.Named("backfill"),
		queue:    make(map[model.ChainID][]model.HeightRange),
		inFlight: make(map[model.ChainID][]model.HeightRange),
		active:   make(map[model.ChainID]bool),
		wake:     make(chan struct{}, 1),
		stopped:  make(chan struct{}),
	}, nil
}

// Submit queues the parts of ranges that are not already in flight and
// returns how many ranges were queued.
func (p *BackfillPool) Submit(ranges ...model.HeightRange) int {
	p.mu.Lock()
	queued := 0
	for _, r := range model.NormalizeRanges(ranges) {
		if _, ok := p.reconcilers[r.ChainID]; !ok {
			p.logger.Warn("range of untracked chain ignored", zap.Stringer("range", r))
			continue
		}
		for _, part := range r.Subtract(p.inFlight[r.ChainID]) {
			p.queue[part.ChainID] = append(p.queue[part.ChainID], part)
			p.inFlight[part.ChainID] = append(p.inFlight[part.ChainID], part)
			queued++
		}
	}
	p.metrics.SetInFlight(p.inFlightCount())
	p.mu.Unlock()

	if queued > 0 {
		select {
		case p.wake <- struct{}{}:
		default:
		}
	}
	return queued
}

// InFlight returns the ranges of chain that are queued or being filled.
func (p *BackfillPool) InFlight(chain model.ChainID) []model.HeightRange {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.inFlight[chain])
}

// Run fills queued ranges until Stop is called or ctx is done. Every chain
// with queued work gets its own loop, at most Workers of them at a time, so a
// long range on one chain does not hold back the others.
func (p *BackfillPool) Run(ctx context.Context) error {
	var (
		wg    sync.WaitGroup
		slots = make(chan struct{}, p.cfg.Workers)
	)
	defer func() {
		wg.Wait()
		p.releaseQueued()
	}()

	for {
		for _, chain := range p.claimIdle() {
			wg.Add(1)
			go func() {
				defer wg.Done()
				p.runChain(ctx, chain, slots)
			}()
		}
		select {
		case <-p.stopped:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-p.wake:
		}
	}
}

// runChain fills the queued ranges of chain until its queue is empty.
func (p *BackfillPool) runChain(ctx context.Context, chain model.ChainID, slots chan struct{}) {
	select {
	case slots <- struct{}{}:
	case <-p.stopped:
		p.unclaim(chain)
		return
	case <-ctx.Done():
		p.unclaim(chain)
		return
	}
	defer func() {
		<-slots
	}()

	for {
		if p.isStopped() || ctx.Err() != nil {
			p.unclaim(chain)
			return
		}
		ranges := p.take(chain)
		if len(ranges) == 0 {
			return
		}
		if err := p.processChain(ctx, p.reconcilers[chain], ranges); err != nil {
			p.logger.Warn("backfill of chain finished with failures", zap.Int64("chain", int64(chain)), zap.Error(err))
		}
	}
}

// claimIdle marks the chains that have queued ranges and no running loop as
// claimed and returns them in ascending order.
func (p *BackfillPool) claimIdle() []model.ChainID {
	p.mu.Lock()
	defer p.mu.Unlock()
	var chains []model.ChainID
	for chain, ranges := range p.queue {
		if len(ranges) == 0 || p.active[chain] {
			continue
		}
		p.active[chain] = true
		chains = append(chains, chain)
	}
	slices.Sort(chains)
	return chains
}

// take pops the queued ranges of chain. With nothing queued it gives up the
// claim so the next Submit dispatches the chain again.
func (p *BackfillPool) take(chain model.ChainID) []model.HeightRange {
	p.mu.Lock()
	defer p.mu.Unlock()
	ranges := p.queue[chain]
	delete(p.queue, chain)
	if len(ranges) == 0 {
		delete(p.active, chain)
	}
	return ranges
}

func (p *BackfillPool) unclaim(chain model.ChainID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.active, chain)
}

// Process fills ranges synchronously and returns the combined failures.
func (p *BackfillPool) Process(ctx context.Context, ranges []model.HeightRange) error {
	batch := make(map[model.ChainID][]model.HeightRange)
	p.mu.Lock()
	for _, r := range model.NormalizeRanges(ranges) {
		if _, ok := p.reconcilers[r.ChainID]; !ok {
			p.mu.Unlock()
			return fmt.Errorf("range %s: %w", r, ErrUnknownChain)
		}
		batch[r.ChainID] = append(batch[r.ChainID], r)
		p.inFlight[r.ChainID] = append(p.inFlight[r.ChainID], r)
	}
	p.metrics.SetInFlight(p.inFlightCount())
	p.mu.Unlock()

	return p.processBatch(ctx, batch)
}

// Stop makes workers finish the block in hand and return.
func (p *BackfillPool) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopped)
	})
}

func (p *BackfillPool) isStopped() bool {
	select {
	case <-p.stopped:
		return true
	default:
		return false
	}
}

func (p *BackfillPool) drain() map[model.ChainID][]model.HeightRange {
	p.mu.Lock()
	defer p.mu.Unlock()
	batch := p.queue
	p.queue = make(map[model.ChainID][]model.HeightRange)
	return batch
}

func (p *BackfillPool) releaseQueued() {
	for _, ranges := range p.drain() {
		for _, r := range ranges {
			p.release(r)
		}
	}
}

func (p *BackfillPool) release(r model.HeightRange) {
	p.mu.Lock()
	defer p.mu.Unlock()
	held := p.inFlight[r.ChainID]
	if i := slices.Index(held, r); i >= 0 {
		held = slices.Delete(held, i, i+1)
	}
	if len(held) == 0 {
		delete(p.inFlight, r.ChainID)
	} else {
		p.inFlight[r.ChainID] = held
	}
	p.metrics.SetInFlight(p.inFlightCount())
}

func (p *BackfillPool) inFlightCount() int {
	n := 0
	for _, ranges := range p.inFlight {
		n += len(ranges)
	}
	return n
}

func (p *BackfillPool) processBatch(ctx context.Context, batch map[model.ChainID][]model.HeightRange) error {
	chains := make([]model.ChainID, 0, len(batch))
	for c := range batch {
		chains = append(chains, c)
	}
	slices.Sort(chains)

	return workerpool.ProcessAll(ctx, p.cfg.Workers, chains, func(ctx context.Context, chain model.ChainID) error {
		return p.processChain(ctx, p.reconcilers[chain], batch[chain])
	})
}

func (p *BackfillPool) processChain(ctx context.Context, rec Reconciler, ranges []model.HeightRange) error {
	slices.SortFunc(ranges, func(a, b model.HeightRange) int {
		return cmp.Compare(a.From, b.From)
	})
	logger := p.logger.With(zap.Int64("chain", int64(rec.Chain())))

	var errs error
	for i, r := range ranges {
		started := time.Now()
		err := p.fillRange(ctx, rec, r, logger)
		p.metrics.ObserveRange(r.ChainID, err, r.Len(), started)
		p.release(r)
		if err == nil {
			logger.Debug("range filled", zap.Stringer("range", r))
			continue
		}
		errs = multierr.Append(errs, fmt.Errorf("backfill %s: %w", r, err))

		if errors.Is(err, ErrStopped) || ctx.Err() != nil ||
			errors.Is(err, reconciler.ErrIntegrityViolation) || errors.Is(err, reconciler.ErrChainHalted) ||
			errors.Is(err, reconciler.ErrClosed) {
			for _, rest := range ranges[i+1:] {
				p.release(rest)
			}
			return errs
		}
		logger.Warn("backfill range failed, released for the next gap pass",
			zap.Stringer("range", r),
			zap.Error(err),
		)
	}
	return errs
}

// fillRange fetches and accepts the blocks of r in ascending order. A range
// that does not attach is rewound towards the common ancestor; a range that
// ends on a losing branch is followed upwards until the branch wins or the
// node has nothing more.
func (p *BackfillPool) fillRange(ctx context.Context, rec Reconciler, r model.HeightRange, logger *zap.Logger) error {
	var (
		from    = r.From
		end     = r.To
		step    = rewindStep
		rewound int64
	)
	for from <= end {
		if p.isStopped() {
			return ErrStopped
		}
		to := min(from+p.cfg.FetchWindow-1, end)
		blocks, err := p.fetch(ctx, r.ChainID, from, to)
		if errors.Is(err, chainweb.ErrBlockNotFound) {
			logger.Debug("range above node head", zap.Int64("from", from), zap.Int64("to", to))
			return nil
		}
		if err != nil {
			return err
		}
		if len(blocks) == 0 {
			return nil
		}

		var (
			last   reconciler.Result
			lastH  int64
			rewind bool
		)
		for _, fb := range blocks {
			if p.isStopped() {
				return ErrStopped
			}
			res, err := p.accept(ctx, rec, fb)
			if errors.Is(err, reconciler.ErrUnattached) {
				target := max(fb.Block.Height-step, rec.LowerBound())
				if target >= fb.Block.Height || rewound+(fb.Block.Height-target) > p.cfg.MaxRewind {
					return err
				}
				logger.Info("backfill range does not attach, rewinding",
					zap.Int64("height", fb.Block.Height),
					zap.Int64("rewind_to", target),
				)
				rewound += fb.Block.Height - target
				step *= 2
				from = target
				rewind = true
				break
			}
			if err != nil {
				return err
			}
			last, lastH = res, fb.Block.Height
		}
		if rewind {
			continue
		}

		from = lastH + 1
		if from > end && last.Outcome == reconciler.OutcomeStale {
			end = from + p.cfg.FetchWindow - 1
			logger.Debug("branch lost fork choice, following it upwards",
				zap.Int64("from", from),
				zap.Int64("tip_height", last.TipHeight),
			)
		}
	}
	return nil
}

func (p *BackfillPool) fetch(ctx context.Context, chain model.ChainID, from, to int64) ([]*model.FullBlock, error) {
	var blocks []*model.FullBlock
	err := p.retry(ctx, func() error {
		started := time.Now()
		var err error
		blocks, err = p.source.FetchRange(ctx, chain, from, to)
		p.metrics.ObserveFetch(chain, err, started)
		if errors.Is(err, chainweb.ErrBlockNotFound) {
			return backoff.Permanent(err)
		}
		if err != nil {
			p.logger.Warn("fetch failed, retrying",
				zap.Int64("chain", int64(chain)),
				zap.Int64("from", from),
				zap.Int64("to", to),
				zap.Error(err),
			)
		}
		return err
	})
	return blocks, err
}

func (p *BackfillPool) accept(ctx context.Context, rec Reconciler, fb *model.FullBlock) (reconciler.Result, error) {
	var res reconciler.Result
	err := p.retry(ctx, func() error {
		var err error
		res, err = rec.Accept(ctx, reconciler.OriginBackfill, fb)
		if err != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		if err != nil {
			p.logger.Warn("accept failed, retrying",
				zap.Int64("chain", int64(fb.Block.ChainID)),
				zap.Int64("height", fb.Block.Height),
				zap.Error(err),
			)
		}
		return err
	})
	return res, err
}

func (p *BackfillPool) retry(ctx context.Context, op func() error) error {
	b := backoff.WithContext(backoff.WithMaxRetries(p.newBackOff(), p.cfg.RetryAttempts), ctx)
	return backoff.Retry(op, b)
}

// retryable reports whether err may succeed on a later attempt.
func retryable(err error) bool {
	for _, permanent := range []error{
		reconciler.ErrUnattached,
		reconciler.ErrIntegrityViolation,
		reconciler.ErrChainHalted,
		reconciler.ErrClosed,
		reconciler.ErrWrongChain,
		reconciler.ErrBelowLowerBound,
		context.Canceled,
	} {
		if errors.Is(err, permanent) {
			return false
		}
	}
	return true
}
