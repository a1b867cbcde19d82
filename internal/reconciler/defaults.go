package reconciler

import "time"

const (
	// DefaultConfirmationDepth is the reorg depth past which history is considered final.
	DefaultConfirmationDepth int64 = 50

	defaultParkCapacity  = 512
	defaultParkTimeout   = 2 * time.Minute
	defaultCommitTimeout = 30 * time.Second
)
