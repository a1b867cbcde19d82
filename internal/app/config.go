// Package app wires the ingestion components shared by the operator binaries.
package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/chainweb-indexer/internal/model"
	"go.uber.org/zap"
)

// PostgresConfig selects the ledger database.
type PostgresConfig struct {
	DSN      string `long:"postgres-dsn" env:"CHAINWEB_INDEXER_POSTGRES_DSN" description:"PostgreSQL DSN"`
	MaxConns int    `long:"max-conns" env:"CHAINWEB_INDEXER_MAX_CONNS" description:"maximum open database connections" default:"16"`
}

// NodeConfig selects the chainweb node and its request budget.
type NodeConfig struct {
	URL         string        `long:"node-url" env:"CHAINWEB_INDEXER_NODE_URL" description:"chainweb node service API URL" default:"http://127.0.0.1:1848"`
	Network     model.Network `long:"network" env:"CHAINWEB_INDEXER_NETWORK" description:"network name" default:"mainnet01"`
	HTTPTimeout time.Duration `long:"http-timeout" env:"CHAINWEB_INDEXER_HTTP_TIMEOUT" description:"timeout of node REST requests" default:"30s"`
	RPS         int           `long:"rps" env:"CHAINWEB_INDEXER_RPS" description:"node requests per second, 0 for unlimited" default:"50"`
	BranchLimit int           `long:"branch-limit" env:"CHAINWEB_INDEXER_BRANCH_LIMIT" description:"headers per branch page" default:"100"`
}

// ReconcilerConfig tunes the per-chain reconcilers.
type ReconcilerConfig struct {
	Chains            []int64       `long:"chains" env:"CHAINWEB_INDEXER_CHAINS" env-delim:"," description:"chains to index, all chains of the node when empty"`
	StartHeight       int64         `long:"start-height" env:"CHAINWEB_INDEXER_START_HEIGHT" description:"first height indexed on every chain" default:"0"`
	ConfirmationDepth int64         `long:"confirmation-depth" env:"CHAINWEB_INDEXER_CONFIRMATION_DEPTH" description:"depth below which a fork halts the chain, 0 disables the check" default:"50"`
	ParkCapacity      int           `long:"park-capacity" env:"CHAINWEB_INDEXER_PARK_CAPACITY" description:"unattached blocks kept per chain" default:"512"`
	ParkTimeout       time.Duration `long:"park-timeout" env:"CHAINWEB_INDEXER_PARK_TIMEOUT" description:"age after which unattached blocks are dropped" default:"2m"`
	CommitTimeout     time.Duration `long:"commit-timeout" env:"CHAINWEB_INDEXER_COMMIT_TIMEOUT" description:"timeout of one ledger transaction" default:"30s"`
	TransferModules   []string      `long:"transfer-modules" env:"CHAINWEB_INDEXER_TRANSFER_MODULES" env-delim:"," description:"modules whose TRANSFER events become transfers, * for every fungible module" default:"coin"`
}

// IngesterConfig tunes backfill and gap detection.
type IngesterConfig struct {
	BackfillWorkers int           `long:"backfill-workers" env:"CHAINWEB_INDEXER_BACKFILL_WORKERS" description:"chains backfilled concurrently" default:"4"`
	FetchWindow     int64         `long:"fetch-window" env:"CHAINWEB_INDEXER_FETCH_WINDOW" description:"heights fetched per node request" default:"50"`
	RetryAttempts   uint64        `long:"retry-attempts" env:"CHAINWEB_INDEXER_RETRY_ATTEMPTS" description:"retries of a failing backfill fetch or write" default:"5"`
	MaxRangeSize    int64         `long:"max-range-size" env:"CHAINWEB_INDEXER_MAX_RANGE_SIZE" description:"largest range handed to one backfill task" default:"1000"`
	GapInterval     time.Duration `long:"gap-interval" env:"CHAINWEB_INDEXER_GAP_INTERVAL" description:"interval between gap scans" default:"1m"`
	ShutdownTimeout time.Duration `long:"shutdown-timeout" env:"CHAINWEB_INDEXER_SHUTDOWN_TIMEOUT" description:"time given to backfill to stop" default:"30s"`
}

// Config is the full set of options of a binary that ingests.
type Config struct {
	Postgres   PostgresConfig   `group:"postgres"`
	Node       NodeConfig       `group:"node"`
	Reconciler ReconcilerConfig `group:"reconciler"`
	Ingester   IngesterConfig   `group:"ingester"`
	LogJSON    bool             `long:"log-json" env:"CHAINWEB_INDEXER_LOG_JSON" description:"log JSON with the production encoder"`
}

// Validate reports options that cannot be defaulted.
func (c Config) Validate() error {
	if c.Postgres.DSN == "" {
		return errors.New("postgres dsn is required")
	}
	if c.Node.URL == "" {
		return errors.New("node url is required")
	}
	if c.Node.Network == "" {
		return errors.New("network is required")
	}
	if c.Reconciler.StartHeight < 0 {
		return fmt.Errorf("start height %d is negative", c.Reconciler.StartHeight)
	}
	return nil
}

// NewLogger builds the development logger, or the production one when json is set.
func NewLogger(json bool) (*zap.Logger, error) {
	if json {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
