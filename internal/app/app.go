package app

import (
	"context"
	"fmt"
	"slices"

	"github.com/goodnatureofminers/chainweb-indexer/internal/chainweb"
	"github.com/goodnatureofminers/chainweb-indexer/internal/derivation"
	"github.com/goodnatureofminers/chainweb-indexer/internal/ingester"
	"github.com/goodnatureofminers/chainweb-indexer/internal/ledger/postgres"
	"github.com/goodnatureofminers/chainweb-indexer/internal/metrics"
	"github.com/goodnatureofminers/chainweb-indexer/internal/model"
	"github.com/goodnatureofminers/chainweb-indexer/internal/reconciler"
	"go.uber.org/zap"
)

// App holds the wired components of one network.
type App struct {
	Repository  *postgres.Repository
	Source      *chainweb.Source
	Reconcilers []*reconciler.Reconciler
	Pool        *ingester.BackfillPool
	Detector    *ingester.GapDetector

	cfg    Config
	logger *zap.Logger
}

// New connects to the ledger and the node and builds a reconciler per chain,
// the backfill pool and the gap detector.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	network := cfg.Node.Network

	repo, err := postgres.NewRepository(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns, metrics.NewLedgerRepository(network))
	if err != nil {
		return nil, fmt.Errorf("init repository: %w", err)
	}

	a, err := build(ctx, cfg, repo, logger)
	if err != nil {
		_ = repo.Close()
		return nil, err
	}
	return a, nil
}

func build(ctx context.Context, cfg Config, repo *postgres.Repository, logger *zap.Logger) (*App, error) {
	network := cfg.Node.Network

	client, err := chainweb.NewClient(chainweb.ClientConfig{
		NodeURL:           cfg.Node.URL,
		Network:           network,
		Timeout:           cfg.Node.HTTPTimeout,
		RequestsPerSecond: cfg.Node.RPS,
		BranchLimit:       cfg.Node.BranchLimit,
	}, metrics.NewNodeClient(network))
	if err != nil {
		return nil, fmt.Errorf("init node client: %w", err)
	}
	source, err := chainweb.NewSource(client, logger)
	if err != nil {
		return nil, fmt.Errorf("init chain source: %w", err)
	}

	available, err := source.Chains(ctx)
	if err != nil {
		return nil, fmt.Errorf("list chains: %w", err)
	}
	chains, err := SelectChains(available, cfg.Reconciler.Chains)
	if err != nil {
		return nil, err
	}

	detector, err := ingester.NewGapDetector(repo, nil, metrics.NewGapDetector(network), cfg.Ingester.MaxRangeSize, logger)
	if err != nil {
		return nil, fmt.Errorf("init gap detector: %w", err)
	}

	deriver := derivation.NewDeriver(cfg.Reconciler.TransferModules)
	recMetrics := metrics.NewReconciler(network)
	reconcilers := make([]*reconciler.Reconciler, 0, len(chains))
	views := make([]ingester.Reconciler, 0, len(chains))
	for _, chain := range chains {
		rec, err := reconciler.New(
			reconciler.NewChainState(chain),
			repo,
			deriver,
			detector,
			recMetrics,
			reconciler.Config{
				LowerBound:        LowerBound(network, chain, cfg.Reconciler.StartHeight),
				ConfirmationDepth: cfg.Reconciler.ConfirmationDepth,
				ParkCapacity:      cfg.Reconciler.ParkCapacity,
				ParkTimeout:       cfg.Reconciler.ParkTimeout,
				CommitTimeout:     cfg.Reconciler.CommitTimeout,
			},
			logger.Named("reconciler"),
		)
		if err != nil {
			return nil, fmt.Errorf("init reconciler of chain %s: %w", chain, err)
		}
		detector.Track(rec)
		reconcilers = append(reconcilers, rec)
		views = append(views, rec)
	}

	pool, err := ingester.NewBackfillPool(source, views, metrics.NewBackfill(network), ingester.BackfillConfig{
		Workers:       cfg.Ingester.BackfillWorkers,
		FetchWindow:   cfg.Ingester.FetchWindow,
		RetryAttempts: cfg.Ingester.RetryAttempts,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("init backfill pool: %w", err)
	}
	detector.SetInFlight(pool)

	logger.Info("components ready",
		zap.String("network", string(network)),
		zap.Int("chains", len(chains)),
	)
	return &App{
		Repository:  repo,
		Source:      source,
		Reconcilers: reconcilers,
		Pool:        pool,
		Detector:    detector,
		cfg:         cfg,
		logger:      logger,
	}, nil
}

// Supervisor builds a live follower per chain and the supervisor over them.
func (a *App) Supervisor() (*ingester.Supervisor, error) {
	supMetrics := metrics.NewSupervisor(a.cfg.Node.Network)
	followers := make([]*ingester.LiveFollower, 0, len(a.Reconcilers))
	views := make([]ingester.Reconciler, 0, len(a.Reconcilers))
	for _, rec := range a.Reconcilers {
		f, err := ingester.NewLiveFollower(a.Source, rec, a.Pool, supMetrics, a.cfg.Ingester.FetchWindow, a.logger)
		if err != nil {
			return nil, fmt.Errorf("init live follower of chain %s: %w", rec.Chain(), err)
		}
		followers = append(followers, f)
		views = append(views, rec)
	}
	return ingester.NewSupervisor(followers, views, a.Pool, a.Detector, ingester.SupervisorConfig{
		GapInterval:     a.cfg.Ingester.GapInterval,
		ShutdownTimeout: a.cfg.Ingester.ShutdownTimeout,
	}, a.logger)
}

// Close stops admission on every reconciler and closes the ledger connection.
func (a *App) Close() error {
	for _, rec := range a.Reconcilers {
		rec.Close()
	}
	return a.Repository.Close()
}

// SelectChains returns the wanted chains, or every available chain when none
// are wanted. Unknown chains are an error.
func SelectChains(available []model.ChainID, wanted []int64) ([]model.ChainID, error) {
	if len(wanted) == 0 {
		return available, nil
	}
	out := make([]model.ChainID, 0, len(wanted))
	for _, w := range wanted {
		chain := model.ChainID(w)
		if !slices.Contains(available, chain) {
			return nil, fmt.Errorf("chain %s: %w", chain, chainweb.ErrUnknownChain)
		}
		if !slices.Contains(out, chain) {
			out = append(out, chain)
		}
	}
	slices.Sort(out)
	return out, nil
}

// LowerBound is the first indexed height of chain: its genesis or start,
// whichever is higher.
func LowerBound(network model.Network, chain model.ChainID, start int64) int64 {
	return max(model.GenesisHeight(network, chain), start)
}
