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
	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"
)

type config struct {
	app.Config
	Chain int64 `long:"chain" env:"CHAINWEB_INDEXER_TRANSFERS_CHAIN" description:"chain whose transfers are rederived" required:"true"`
	From  int64 `long:"from" env:"CHAINWEB_INDEXER_TRANSFERS_FROM" description:"first height, the chain lower bound when below it" default:"0"`
	To    int64 `long:"to" env:"CHAINWEB_INDEXER_TRANSFERS_TO" description:"last height, the stored tip when negative" default:"-1"`
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
		logger.Fatal("transfer rederivation failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
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
	rec := a.Reconcilers[0]

	from := max(cfg.From, rec.LowerBound())
	to := cfg.To
	if to < 0 {
		tip, err := rec.Tip(ctx)
		if err != nil {
			return err
		}
		if tip == nil {
			logger.Info("chain is empty, nothing to rederive", zap.Int64("chain", cfg.Chain))
			return nil
		}
		to = tip.Height
	}
	if to < from {
		return fmt.Errorf("invalid range [%d, %d]", from, to)
	}

	started := time.Now()
	logger.Info("rederiving transfers",
		zap.Int64("chain", cfg.Chain),
		zap.Int64("from", from),
		zap.Int64("to", to),
		zap.Strings("modules", cfg.Reconciler.TransferModules),
	)
	res, err := rec.Rederive(ctx, from, to)
	if err != nil {
		return err
	}
	logger.Info("transfers rederived",
		zap.Int("blocks", res.Blocks),
		zap.Int("removed", res.Removed),
		zap.Int("inserted", res.Inserted),
		zap.Int("malformed", res.Malformed),
		zap.Duration("took", time.Since(started)),
	)
	return nil
}
