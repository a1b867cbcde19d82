package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goodnatureofminers/chainweb-indexer/internal/app"
	"github.com/goodnatureofminers/chainweb-indexer/internal/model"
	"github.com/jessevdk/go-flags"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type config struct {
	app.Config
	Fill bool `long:"fill" env:"CHAINWEB_INDEXER_GAPS_FILL" description:"backfill the detected ranges"`
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
		logger.Fatal("gap detection failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	a, err := app.New(ctx, cfg.Config, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("failed to close ledger", zap.Error(err))
		}
	}()

	ranges, detectErr := a.Detector.DetectAll(ctx)
	for _, r := range ranges {
		fmt.Printf("%d\t%d\t%d\n", r.ChainID, r.From, r.To)
	}
	logger.Info("gap detection finished",
		zap.Int("ranges", len(ranges)),
		zap.Int64("heights", totalHeights(ranges)),
	)
	if !cfg.Fill || len(ranges) == 0 {
		return detectErr
	}
	return multierr.Append(detectErr, a.Pool.Process(ctx, ranges))
}

func totalHeights(ranges []model.HeightRange) int64 {
	var n int64
	for _, r := range ranges {
		n += r.Len()
	}
	return n
}
