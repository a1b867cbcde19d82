package ingester

import "time"

const (
	defaultBackfillWorkers = 4
	defaultFetchWindow     = 50
	defaultMaxRangeSize    = 1000

	defaultRetryAttempts = 5
	retryInitialInterval = 500 * time.Millisecond
	retryMaxInterval     = 30 * time.Second

	reconnectInitialInterval = time.Second
	reconnectMaxInterval     = time.Minute

	// rewindStep is the first step back when a backfill range does not
	// attach; later steps double up to the rewind limit.
	rewindStep       int64 = 8
	defaultMaxRewind int64 = 256

	defaultGapInterval     = time.Minute
	defaultShutdownTimeout = 30 * time.Second
)
