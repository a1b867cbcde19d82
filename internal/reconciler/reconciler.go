// Package reconciler merges live and backfilled blocks into the canonical
// per-chain history kept by the ledger store.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/goodnatureofminers/chainweb-indexer/internal/derivation"
	"github.com/goodnatureofminers/chainweb-indexer/internal/ledger"
	"github.com/goodnatureofminers/chainweb-indexer/internal/model"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Origin tells which ingestion path delivered a block.
type Origin int

const (
	OriginLive Origin = iota
	OriginBackfill
)

func (o Origin) String() string {
	switch o {
	case OriginLive:
		return "live"
	case OriginBackfill:
		return "backfill"
	default:
		return "unknown"
	}
}

// Outcome classifies what Accept did with a block.
type Outcome int

const (
	OutcomeRejected Outcome = iota
	OutcomeDuplicate
	OutcomeExtended
	OutcomeFilled
	OutcomeReorganized
	OutcomeParked
	OutcomeStale
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeExtended:
		return "extended"
	case OutcomeFilled:
		return "filled"
	case OutcomeReorganized:
		return "reorganized"
	case OutcomeParked:
		return "parked"
	case OutcomeStale:
		return "stale"
	default:
		return "rejected"
	}
}

// Result describes the effect of one Accept call.
type Result struct {
	Outcome Outcome
	// TipHeight is -1 while the chain is empty.
	TipHeight int64
	TipHash   string
	Inserted  int
	Orphaned  int
	// Candidate is the range that would attach a parked block.
	Candidate *model.HeightRange
}

// Config tunes a Reconciler. Zero values select defaults, except
// ConfirmationDepth where zero disables the confirmed-history check.
type Config struct {
	LowerBound        int64
	ConfirmationDepth int64
	ParkCapacity      int
	ParkTimeout       time.Duration
	CommitTimeout     time.Duration
}

func (c Config) withDefaults() Config {
	if c.ParkCapacity <= 0 {
		c.ParkCapacity = defaultParkCapacity
	}
	if c.ParkTimeout <= 0 {
		c.ParkTimeout = defaultParkTimeout
	}
	if c.CommitTimeout <= 0 {
		c.CommitTimeout = defaultCommitTimeout
	}
	if c.ConfirmationDepth < 0 {
		c.ConfirmationDepth = 0
	}
	return c
}

// Reconciler serializes every write to one chain.
type Reconciler struct {
	mu      sync.Mutex
	chain   model.ChainID
	state   *ChainState
	store   ledger.Store
	deriver Deriver
	sink    GapSink
	metrics Metrics
	cfg     Config
	pool    *parkedPool
	closed  bool
	now     func() time.Time
	logger  *zap.Logger
}

// New builds a Reconciler for the chain of state.
func New(
	state *ChainState,
	store ledger.Store,
	deriver Deriver,
	sink GapSink,
	metrics Metrics,
	cfg Config,
	logger *zap.Logger,
) (*Reconciler, error) {
	if state == nil {
		return nil, errors.New("chain state is required")
	}
	if store == nil {
		return nil, errors.New("ledger store is required")
	}
	if deriver == nil {
		return nil, errors.New("deriver is required")
	}
	if metrics == nil {
		return nil, errors.New("reconciler metrics is required")
	}
	if sink == nil {
		sink = discardSink{}
	}
	cfg = cfg.withDefaults()

	return &Reconciler{
		chain:   state.Chain(),
		state:   state,
		store:   store,
		deriver: deriver,
		sink:    sink,
		metrics: metrics,
		cfg:     cfg,
		pool:    newParkedPool(cfg.ParkCapacity, cfg.ParkTimeout),
		now:     time.Now,
		logger:  logger.With(zap.Int64("chain", int64(state.Chain()))),
	}, nil
}

// Chain returns the chain served by the reconciler.
func (r *Reconciler) Chain() model.ChainID {
	return r.chain
}

// LowerBound returns the first height indexed for the chain.
func (r *Reconciler) LowerBound() int64 {
	return r.cfg.LowerBound
}

// Tip loads the stored tip of the chain, nil when it is empty.
func (r *Reconciler) Tip(ctx context.Context) (*model.Block, error) {
	tip, err := r.store.Tip(ctx, r.chain)
	if err != nil {
		return nil, fmt.Errorf("load tip of chain %s: %w", r.chain, err)
	}
	return tip, nil
}

// loadTip refreshes the chain state from the store. Callers hold r.mu.
func (r *Reconciler) loadTip(ctx context.Context) (*model.Block, error) {
	tip, err := r.Tip(ctx)
	if err != nil {
		return nil, err
	}
	r.state.setTip(tip)
	return tip, nil
}

// Close stops admission; later Accept calls fail with ErrClosed.
func (r *Reconciler) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}

// ExpireParked drops parked blocks older than the park timeout, reports the
// ranges that would attach them and returns how many were dropped.
func (r *Reconciler) ExpireParked(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	expired := r.pool.expire(now)
	r.reportDropped(expired, "expired")
	r.metrics.SetParked(r.chain, r.pool.len())
	return len(expired)
}

// Accept reconciles one block with the stored history of its chain.
func (r *Reconciler) Accept(ctx context.Context, origin Origin, fb *model.FullBlock) (res Result, err error) {
	started := time.Now()
	defer func() {
		r.metrics.ObserveAccept(r.chain, origin.String(), res.Outcome.String(), err, started)
	}()
	if fb == nil {
		return Result{}, errors.New("accept nil block")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return Result{}, ErrClosed
	}
	if haltErr := r.state.Halted(); haltErr != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrChainHalted, haltErr)
	}
	b := fb.Block
	if b.ChainID != r.chain {
		return Result{}, fmt.Errorf("%w: block %s is on chain %s, expected %s", ErrWrongChain, b.Hash, b.ChainID, r.chain)
	}
	if b.Height < r.cfg.LowerBound {
		return Result{}, fmt.Errorf("%w: block %s at height %d, lower bound %d", ErrBelowLowerBound, b.Hash, b.Height, r.cfg.LowerBound)
	}

	res, err = r.accept(ctx, origin, fb)
	r.metrics.SetParked(r.chain, r.pool.len())
	if err == nil {
		r.logger.Debug("block accepted",
			zap.String("origin", origin.String()),
			zap.String("outcome", res.Outcome.String()),
			zap.Int64("height", b.Height),
			zap.String("hash", b.Hash),
		)
	}
	return res, err
}

func (r *Reconciler) accept(ctx context.Context, origin Origin, fb *model.FullBlock) (Result, error) {
	b := fb.Block
	tip, err := r.loadTip(ctx)
	if err != nil {
		return Result{}, err
	}

	canonical, err := r.store.CanonicalBlock(ctx, r.chain, b.Height)
	if err != nil {
		return Result{}, fmt.Errorf("load canonical block at %d: %w", b.Height, err)
	}
	if canonical != nil && canonical.Hash == b.Hash {
		r.pool.remove(b.Hash)
		// Only live delivery parks pending blocks.
		if child := r.pool.pendingChild(b); child != nil {
			return r.accept(ctx, OriginLive, child)
		}
		return r.result(OutcomeDuplicate, tip), nil
	}

	branch, attached, err := r.branch(ctx, fb, tip)
	if err != nil {
		return Result{}, err
	}
	if !attached {
		if origin == OriginBackfill {
			return Result{}, fmt.Errorf("%w: block %s at height %d", ErrUnattached, b.Hash, b.Height)
		}
		return r.park(fb, tip), nil
	}
	return r.reconcile(ctx, origin, r.extend(branch), tip)
}

// branch walks parked ancestors of fb until one attaches to stored history
// and returns the path in ascending order.
func (r *Reconciler) branch(ctx context.Context, fb *model.FullBlock, tip *model.Block) ([]*model.FullBlock, bool, error) {
	path := []*model.FullBlock{fb}
	cur := fb
	for {
		ok, err := r.attaches(ctx, cur.Block, tip)
		if err != nil {
			return nil, false, err
		}
		if ok {
			break
		}
		parent := r.pool.get(cur.Block.Parent)
		if parent == nil || parent.Block.Height != cur.Block.Height-1 {
			return nil, false, nil
		}
		path = append(path, parent)
		cur = parent
	}
	slices.Reverse(path)
	return path, true, nil
}

func (r *Reconciler) attaches(ctx context.Context, b model.Block, tip *model.Block) (bool, error) {
	if tip == nil || b.Height <= r.cfg.LowerBound {
		return true, nil
	}
	parent, err := r.store.CanonicalBlock(ctx, r.chain, b.Height-1)
	if err != nil {
		return false, fmt.Errorf("load parent of %s: %w", b.Hash, err)
	}
	return parent != nil && parent.Hash == b.Parent, nil
}

// extend appends the best parked descendants to the branch.
func (r *Reconciler) extend(branch []*model.FullBlock) []*model.FullBlock {
	for {
		child := r.pool.pendingChild(branch[len(branch)-1].Block)
		if child == nil {
			return branch
		}
		branch = append(branch, child)
	}
}

// conflicts reports whether the branch disagrees with stored history.
func (r *Reconciler) conflicts(ctx context.Context, branch []*model.FullBlock) (bool, error) {
	for _, fb := range branch {
		c, err := r.store.CanonicalBlock(ctx, r.chain, fb.Block.Height)
		if err != nil {
			return false, fmt.Errorf("load canonical block at %d: %w", fb.Block.Height, err)
		}
		if c != nil && c.Hash != fb.Block.Hash {
			return true, nil
		}
	}
	last := branch[len(branch)-1].Block
	above, err := r.store.CanonicalBlock(ctx, r.chain, last.Height+1)
	if err != nil {
		return false, fmt.Errorf("load canonical block at %d: %w", last.Height+1, err)
	}
	return above != nil && above.Parent != last.Hash, nil
}

func (r *Reconciler) reconcile(ctx context.Context, origin Origin, branch []*model.FullBlock, tip *model.Block) (Result, error) {
	first, last := branch[0].Block, branch[len(branch)-1].Block
	forkHeight := first.Height - 1

	conflict, err := r.conflicts(ctx, branch)
	if err != nil {
		return Result{}, err
	}

	var orphans []model.Block
	if conflict {
		wins := prefers(last, *tip)
		confirmed := r.cfg.ConfirmationDepth > 0 && forkHeight <= tip.Height-r.cfg.ConfirmationDepth
		if confirmed && (wins || origin == OriginBackfill) {
			return Result{}, r.halt(origin, forkHeight, tip, last)
		}
		if !wins {
			for _, fb := range branch {
				r.reportDropped(r.pool.add(fb, true, r.now()), "evicted")
			}
			r.logger.Info("branch lost fork choice",
				zap.Int64("fork_height", forkHeight),
				zap.Int64("branch_height", last.Height),
				zap.String("branch_tip", last.Hash),
				zap.Int64("tip_height", tip.Height),
			)
			return r.result(OutcomeStale, tip), nil
		}
		orphans, err = r.store.CanonicalBlocksFrom(ctx, r.chain, first.Height)
		if err != nil {
			return Result{}, fmt.Errorf("load orphaned segment above %d: %w", forkHeight, err)
		}
	}

	inserted, err := r.commit(ctx, branch, orphans)
	if err != nil {
		return Result{}, err
	}
	for _, fb := range branch {
		r.pool.remove(fb.Block.Hash)
	}

	outcome := OutcomeFilled
	newTip := tip
	switch {
	case conflict:
		outcome = OutcomeReorganized
		newTip = &last
		r.metrics.ObserveReorg(r.chain, len(orphans))
		r.logger.Info("chain reorganized",
			zap.Int64("fork_height", forkHeight),
			zap.Int("orphaned", len(orphans)),
			zap.Int("inserted", inserted),
			zap.String("new_tip", last.Hash),
		)
	case tip == nil || last.Height > tip.Height:
		outcome = OutcomeExtended
		newTip = &last
	}
	r.state.setTip(newTip)
	r.metrics.SetTip(r.chain, newTip.Height)

	res := r.result(outcome, newTip)
	res.Inserted = inserted
	res.Orphaned = len(orphans)
	return res, nil
}

// commit writes one reconciliation unit; it is detached from the caller's
// cancellation and bounded by the commit timeout instead.
func (r *Reconciler) commit(ctx context.Context, branch []*model.FullBlock, orphans []model.Block) (int, error) {
	return r.write(ctx, branch, orphans, r.orphanRecords(orphans, branch))
}

// write removes the given stored blocks with their transfers' balance effect,
// records the audit rows and inserts branch, all in one ledger transaction.
func (r *Reconciler) write(ctx context.Context, branch []*model.FullBlock, removed []model.Block, audit []model.OrphanedBlock) (inserted int, err error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.CommitTimeout)
	defer cancel()

	tx, err := r.store.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin reconciliation: %w", err)
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, tx.Rollback())
		}
	}()

	var deltas [][]model.BalanceDelta
	if len(removed) > 0 {
		hashes := make([]string, 0, len(removed))
		for _, o := range removed {
			hashes = append(hashes, o.Hash)
		}
		var retracted []model.Transfer
		if retracted, err = tx.TransfersByBlocks(ctx, hashes); err != nil {
			return 0, fmt.Errorf("load removed transfers: %w", err)
		}
		deltas = append(deltas, derivation.Reverse(retracted))
		if err = tx.DeleteBlocks(ctx, hashes); err != nil {
			return 0, fmt.Errorf("delete removed blocks: %w", err)
		}
	}
	if len(audit) > 0 {
		if err = tx.RecordOrphans(ctx, audit); err != nil {
			return 0, fmt.Errorf("record orphaned blocks: %w", err)
		}
	}

	for _, fb := range branch {
		var ok bool
		if ok, err = tx.InsertBlock(ctx, fb.Block); err != nil {
			return 0, fmt.Errorf("insert block %s: %w", fb.Block.Hash, err)
		}
		if !ok {
			continue
		}
		inserted++
		if err = tx.InsertTransactions(ctx, fb.Transactions); err != nil {
			return 0, fmt.Errorf("insert transactions of %s: %w", fb.Block.Hash, err)
		}
		if err = tx.InsertEvents(ctx, fb.Events); err != nil {
			return 0, fmt.Errorf("insert events of %s: %w", fb.Block.Hash, err)
		}
		derived := r.deriver.Derive(fb.Block, fb.Transactions, fb.Events)
		if err = tx.InsertTransfers(ctx, derived.Transfers); err != nil {
			return 0, fmt.Errorf("insert transfers of %s: %w", fb.Block.Hash, err)
		}
		if len(derived.Malformed) > 0 {
			r.logger.Warn("malformed transfer events",
				zap.String("block", fb.Block.Hash),
				zap.Int("count", len(derived.Malformed)),
				zap.String("reason", derived.Malformed[0].Reason),
			)
			if err = tx.InsertMalformedTransfers(ctx, derived.Malformed); err != nil {
				return 0, fmt.Errorf("insert malformed transfers of %s: %w", fb.Block.Hash, err)
			}
		}
		deltas = append(deltas, derived.Deltas)
	}

	if err = tx.ApplyBalanceDeltas(ctx, derivation.MergeDeltas(deltas...)); err != nil {
		return 0, fmt.Errorf("apply balance deltas: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit reconciliation: %w", err)
	}
	return inserted, nil
}

func (r *Reconciler) orphanRecords(orphans []model.Block, branch []*model.FullBlock) []model.OrphanedBlock {
	replacement := make(map[int64]string, len(branch))
	for _, fb := range branch {
		replacement[fb.Block.Height] = fb.Block.Hash
	}
	at := r.now().UTC()
	out := make([]model.OrphanedBlock, 0, len(orphans))
	for _, o := range orphans {
		out = append(out, model.OrphanedBlock{
			ChainID:    o.ChainID,
			Hash:       o.Hash,
			Height:     o.Height,
			Parent:     o.Parent,
			ReplacedBy: replacement[o.Height],
			OrphanedAt: at,
		})
	}
	return out
}

func (r *Reconciler) halt(origin Origin, forkHeight int64, tip *model.Block, branchTip model.Block) error {
	ierr := &IntegrityError{
		Chain:      r.chain,
		ForkHeight: forkHeight,
		TipHeight:  tip.Height,
		BranchTip:  branchTip.Hash,
		Origin:     origin,
	}
	r.state.halt(ierr)
	r.metrics.ObserveHalt(r.chain)
	r.logger.Error("chain halted", zap.Error(ierr))
	return ierr
}

func (r *Reconciler) park(fb *model.FullBlock, tip *model.Block) Result {
	r.reportDropped(r.pool.add(fb, false, r.now()), "evicted")
	candidate := r.candidate(fb.Block.Height)
	res := r.result(OutcomeParked, tip)
	res.Candidate = &candidate
	return res
}

// candidate returns the heights whose blocks would attach a block at height.
func (r *Reconciler) candidate(height int64) model.HeightRange {
	from := height - 1
	if tip, ok := r.state.Tip(); ok && height > tip.Height {
		from = tip.Height + 1
	}
	if from < r.cfg.LowerBound {
		from = r.cfg.LowerBound
	}
	return model.HeightRange{ChainID: r.chain, From: from, To: height}
}

func (r *Reconciler) reportDropped(dropped []*parkedBlock, reason string) {
	for _, pb := range dropped {
		if pb.side {
			continue
		}
		c := r.candidate(pb.block.Block.Height)
		r.logger.Warn("parked block dropped",
			zap.String("reason", reason),
			zap.String("hash", pb.block.Block.Hash),
			zap.Int64("height", pb.block.Block.Height),
			zap.Stringer("candidate", c),
		)
		r.sink.ReportCandidate(c)
	}
}

func (r *Reconciler) result(outcome Outcome, tip *model.Block) Result {
	res := Result{Outcome: outcome, TipHeight: -1}
	if tip != nil {
		res.TipHeight = tip.Height
		res.TipHash = tip.Hash
	}
	return res
}

type discardSink struct{}

func (discardSink) ReportCandidate(model.HeightRange) {}
