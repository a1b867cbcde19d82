package ingester

import "errors"

var (
	// ErrUnknownChain is returned for a chain without a registered reconciler.
	ErrUnknownChain = errors.New("chain is not tracked")
	// ErrStopped is returned by backfill work interrupted by Stop.
	ErrStopped = errors.New("backfill pool stopped")
)
