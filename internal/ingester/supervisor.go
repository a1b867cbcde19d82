package ingester

import (
	"context"
	"errors"
	"time"

	"github.com/goodnatureofminers/chainweb-indexer/internal/clock"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SupervisorConfig tunes a Supervisor. Zero values select defaults.
type SupervisorConfig struct {
	GapInterval     time.Duration
	ShutdownTimeout time.Duration
}

// Supervisor owns the live followers of every chain, the gap scheduler and
// the shared backfill pool.
type Supervisor struct {
	followers   []*LiveFollower
	reconcilers []Reconciler
	pool        *BackfillPool
	detector    *GapDetector
	cfg         SupervisorConfig
	now         func() time.Time
	logger      *zap.Logger
}

// NewSupervisor builds a Supervisor.
func NewSupervisor(
	followers []*LiveFollower,
	reconcilers []Reconciler,
	pool *BackfillPool,
	detector *GapDetector,
	cfg SupervisorConfig,
	logger *zap.Logger,
) (*Supervisor, error) {
	if pool == nil {
		return nil, errors.New("backfill pool is required")
	}
	if detector == nil {
		return nil, errors.New("gap detector is required")
	}
	if cfg.GapInterval <= 0 {
		cfg.GapInterval = defaultGapInterval
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	return &Supervisor{
		followers:   followers,
		reconcilers: reconcilers,
		pool:        pool,
		detector:    detector,
		cfg:         cfg,
		now:         time.Now,
		logger:      logger.Named("supervisor"),
	}, nil
}

// Run ingests every chain until ctx is done, then shuts down in order: live
// followers and the gap scheduler, the backfill pool, the reconcilers.
func (s *Supervisor) Run(ctx context.Context) error {
	poolCtx, poolCancel := context.WithCancel(context.WithoutCancel(ctx))
	defer poolCancel()
	poolDone := make(chan error, 1)
	go func() {
		poolDone <- s.pool.Run(poolCtx)
	}()

	g, gctx := errgroup.WithContext(ctx)
	for _, f := range s.followers {
		g.Go(func() error {
			return f.Run(gctx)
		})
	}
	g.Go(func() error {
		return s.scheduleGaps(gctx)
	})
	s.logger.Info("ingestion started", zap.Int("chains", len(s.followers)))

	err := g.Wait()
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		err = nil
	}
	s.logger.Info("live ingestion stopped, stopping backfill")

	s.pool.Stop()
	timer := time.NewTimer(s.cfg.ShutdownTimeout)
	defer timer.Stop()
	select {
	case <-poolDone:
	case <-timer.C:
		s.logger.Warn("backfill did not stop in time, cancelling", zap.Duration("timeout", s.cfg.ShutdownTimeout))
		poolCancel()
		<-poolDone
	}

	for _, r := range s.reconcilers {
		r.Close()
	}
	s.logger.Info("ingestion stopped")
	return err
}

// Statuses returns the state of every followed chain.
func (s *Supervisor) Statuses() map[string]ChainStatus {
	out := make(map[string]ChainStatus, len(s.followers))
	for _, f := range s.followers {
		status, _ := f.Status()
		out[f.Chain().String()] = status
	}
	return out
}

func (s *Supervisor) scheduleGaps(ctx context.Context) error {
	for {
		s.scanGaps(ctx)
		if err := clock.WaitSignal(ctx, s.cfg.GapInterval, s.detector.Signal()); err != nil {
			return err
		}
	}
}

func (s *Supervisor) scanGaps(ctx context.Context) {
	now := s.now()
	for _, r := range s.reconcilers {
		if n := r.ExpireParked(now); n > 0 {
			s.logger.Info("parked blocks expired", zap.Int64("chain", int64(r.Chain())), zap.Int("count", n))
		}
	}

	ranges, err := s.detector.DetectAll(ctx)
	if err != nil && ctx.Err() == nil {
		s.logger.Warn("gap detection failed", zap.Error(err))
	}
	if len(ranges) > 0 {
		queued := s.pool.Submit(ranges...)
		s.logger.Info("gaps submitted for backfill", zap.Int("ranges", len(ranges)), zap.Int("queued", queued))
	}
}
