package reaper

import (
	"context"
	"time"
)

// Sweeper abstracts the idle-eviction-and-reconcile pass the reaper drives
// on a timer.
type Sweeper interface {
	Sweep(ctx context.Context, grace time.Duration)
}
