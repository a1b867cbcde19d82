package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goodnatureofminers/chainweb-indexer/internal/app"
	"github.com/goodnatureofminers/chainweb-indexer/internal/chainweb"
	"github.com/goodnatureofminers/chainweb-indexer/internal/model"
	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"
)

type config struct {
	app.Config
	Chain       int64 `long:"chain" env:"CHAINWEB_INDEXER_BACKFILL_CHAIN" description:"chain to backfill" required:"true"`
	From        int64 `long:"from" env:"CHAINWEB_INDEXER_BACKFILL_FROM" description:"first height of the range" required:"true"`
	To          int64 `long:"to" env:"CHAINWEB_INDEXER_BACKFILL_TO" description:"last height of the range" required:"true"`
	ForceUpdate bool  `long:"force-update" env:"CHAINWEB_INDEXER_BACKFILL_FORCE_UPDATE" description:"refetch and rewrite blocks of the range that are already stored"`
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		os.Exit(2)
	}

	logger, err := app.NewLogger(cfg.LogJSON)
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("backfill failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	r := model.HeightRange{ChainID: model.ChainID(cfg.Chain), From: cfg.From, To: cfg.To}
	if r.From < 0 || r.Len() == 0 {
		return fmt.Errorf("invalid range %s", r)
	}
	cfg.Reconciler.Chains = []int64{cfg.Chain}

	a, err := app.New(ctx, cfg.Config, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("failed to close ledger", zap.Error(err))
		}
	}()

	started := time.Now()
	logger.Info("backfilling range", zap.Stringer("range", r))
	if err := a.Pool.Process(ctx, []model.HeightRange{r}); err != nil {
		return err
	}
	logger.Info("range backfilled", zap.Stringer("range", r), zap.Duration("took", time.Since(started)))

	if !cfg.ForceUpdate {
		return nil
	}
	refreshed, err := refresh(ctx, a, r, cfg.Ingester.FetchWindow)
	if err != nil {
		return err
	}
	logger.Info("range refreshed", zap.Stringer("range", r), zap.Int("blocks", refreshed))
	return nil
}

// refresh refetches r window by window and rewrites the blocks already stored.
func refresh(ctx context.Context, a *app.App, r model.HeightRange, window int64) (int, error) {
	rec := a.Reconcilers[0]
	from := max(r.From, rec.LowerBound())
	window = max(window, 1)

	total := 0
	for lo := from; lo <= r.To; lo += window {
		hi := min(lo+window-1, r.To)
		blocks, err := a.Source.FetchRange(ctx, r.ChainID, lo, hi)
		if errors.Is(err, chainweb.ErrBlockNotFound) {
			break
		}
		if err != nil {
			return total, fmt.Errorf("fetch [%d, %d]: %w", lo, hi, err)
		}
		n, err := rec.Refresh(ctx, blocks)
		if err != nil {
			return total, fmt.Errorf("refresh [%d, %d]: %w", lo, hi, err)
		}
		total += n
	}
	return total, nil
}
