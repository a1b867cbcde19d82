package ingester

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/goodnatureofminers/chainweb-indexer/internal/model"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ChainView is the part of a reconciler the gap detector reads.
type ChainView interface {
	Chain() model.ChainID
	LowerBound() int64
	Tip(ctx context.Context) (*model.Block, error)
}

// GapDetector finds missing height ranges below each chain's tip.
type GapDetector struct {
	store        GapStore
	inFlight     InFlight
	metrics      GapDetectorMetrics
	maxRangeSize int64
	logger       *zap.Logger

	mu         sync.Mutex
	chains     map[model.ChainID]ChainView
	candidates map[model.ChainID][]model.HeightRange
	signal     chan struct{}
}

// NewGapDetector builds a GapDetector. A maxRangeSize of zero selects the default.
func NewGapDetector(store GapStore, inFlight InFlight, metrics GapDetectorMetrics, maxRangeSize int64, logger *zap.Logger) (*GapDetector, error) {
	if store == nil {
		return nil, errors.New("gap store is required")
	}
	if metrics == nil {
		return nil, errors.New("gap detector metrics is required")
	}
	if maxRangeSize <= 0 {
		maxRangeSize = defaultMaxRangeSize
	}
	return &GapDetector{
		store:        store,
		inFlight:     inFlight,
		metrics:      metrics,
		maxRangeSize: maxRangeSize,
		logger:       logger.Named("gap_detector"),
		chains:       make(map[model.ChainID]ChainView),
		candidates:   make(map[model.ChainID][]model.HeightRange),
		signal:       make(chan struct{}, 1),
	}, nil
}

// Track registers the chain of view for detection.
func (d *GapDetector) Track(view ChainView) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.chains[view.Chain()] = view
}

// SetInFlight sets the source of ranges excluded from detection.
func (d *GapDetector) SetInFlight(inFlight InFlight) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.inFlight = inFlight
}

// Chains returns the tracked chains in ascending order.
func (d *GapDetector) Chains() []model.ChainID {
	d.mu.Lock()
	defer d.mu.Unlock()
	chains := make([]model.ChainID, 0, len(d.chains))
	for c := range d.chains {
		chains = append(chains, c)
	}
	slices.Sort(chains)
	return chains
}

// ReportCandidate records a range that would attach a parked block. It is
// merged into the next detection of its chain.
func (d *GapDetector) ReportCandidate(r model.HeightRange) {
	if r.Len() == 0 {
		return
	}
	d.mu.Lock()
	d.candidates[r.ChainID] = append(d.candidates[r.ChainID], r)
	d.mu.Unlock()
	d.metrics.ObserveCandidate(r.ChainID)

	select {
	case d.signal <- struct{}{}:
	default:
	}
}

// Signal fires after a candidate is reported.
func (d *GapDetector) Signal() <-chan struct{} {
	return d.signal
}

// Detect returns the non-overlapping missing ranges of chain that are not in
// flight, at most maxRangeSize heights each, in ascending order.
func (d *GapDetector) Detect(ctx context.Context, chain model.ChainID) (ranges []model.HeightRange, err error) {
	started := time.Now()
	defer func() {
		d.metrics.ObserveDetect(chain, err, len(ranges), started)
	}()

	d.mu.Lock()
	view, ok := d.chains[chain]
	inFlight := d.inFlight
	d.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("chain %s: %w", chain, ErrUnknownChain)
	}

	tip, err := view.Tip(ctx)
	if err != nil {
		return nil, err
	}

	var found []model.HeightRange
	if lower := view.LowerBound(); tip != nil && tip.Height-1 >= lower {
		found, err = d.store.MissingRanges(ctx, chain, lower, tip.Height-1)
		if err != nil {
			return nil, fmt.Errorf("find missing ranges of chain %s: %w", chain, err)
		}
	}
	found = append(found, d.takeCandidates(chain)...)

	var busy []model.HeightRange
	if inFlight != nil {
		busy = inFlight.InFlight(chain)
	}
	for _, r := range model.NormalizeRanges(found) {
		for _, free := range r.Subtract(busy) {
			ranges = append(ranges, free.Split(d.maxRangeSize)...)
		}
	}
	if len(ranges) > 0 {
		d.logger.Info("gaps detected",
			zap.Int64("chain", int64(chain)),
			zap.Int("ranges", len(ranges)),
			zap.Stringer("first", ranges[0]),
		)
	}
	return ranges, nil
}

// DetectAll runs Detect for every tracked chain. Failures of one chain do not
// prevent detection on the others.
func (d *GapDetector) DetectAll(ctx context.Context) ([]model.HeightRange, error) {
	var (
		out  []model.HeightRange
		errs error
	)
	for _, chain := range d.Chains() {
		ranges, err := d.Detect(ctx, chain)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		out = append(out, ranges...)
	}
	return out, errs
}

func (d *GapDetector) takeCandidates(chain model.ChainID) []model.HeightRange {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := d.candidates[chain]
	delete(d.candidates, chain)
	return out
}
