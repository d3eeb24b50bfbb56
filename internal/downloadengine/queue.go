package downloadengine

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/minepkg/launchcore/internal/asset"
)

// AggregateProgress is the cumulative state reported to a queue's
// OnProgress callback, per spec §4.1's queue algorithm.
type AggregateProgress struct {
	ReceivedBytes int64
	TotalBytes    int64
}

// Queue drives a set of assets through an Engine at bounded
// concurrency, aggregating per-asset progress into one running total,
// per spec §4.1.
type Queue struct {
	Engine      *Engine
	Concurrency int
	// RateLimiter, if set, caps aggregate download bandwidth. Left nil
	// by default, preserving unlimited-bandwidth spec semantics
	// (SPEC_FULL.md §6 supplemental addition).
	RateLimiter *rate.Limiter
}

// NewQueue builds a Queue using engine.Config.Concurrency, or 15 when
// that is 0.
func NewQueue(engine *Engine) *Queue {
	c := engine.Config.Concurrency
	if c == 0 {
		c = 15
	}
	return &Queue{Engine: engine, Concurrency: c}
}

// Run downloads every asset concurrently at bounded parallelism,
// calling onProgress with the running aggregate after every per-stream
// progress event. One asset's fatal failure is returned to the caller
// once all in-flight attempts finish; no new tasks start after a fatal
// failure is observed, but per spec §4.1, "other in-flight tasks are
// allowed to finish their current attempt" — a fatal failure gates only
// the launch of new tasks, it never cancels an asset already
// downloading.
func (q *Queue) Run(ctx context.Context, assets []asset.Asset, onProgress func(AggregateProgress)) error {
	if len(assets) == 0 {
		return nil
	}

	totalBytes := int64(0)
	for _, a := range assets {
		totalBytes += a.Size
	}

	var aggregate int64
	var mu sync.Mutex // serializes onProgress calls, matching spec's
	// "per-asset progress callbacks are serialized" ordering guarantee

	sem := make(chan struct{}, q.Concurrency)
	var wg sync.WaitGroup

	var stopLaunching atomic.Bool
	var fatalOnce sync.Once
	var fatalErr atomic.Value

	for _, a := range assets {
		if stopLaunching.Load() || ctx.Err() != nil {
			// a fatal failure was already observed; do not start new tasks
			break
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(a asset.Asset) {
			defer wg.Done()
			defer func() { <-sem }()

			if stopLaunching.Load() || ctx.Err() != nil {
				return
			}

			var prev int64
			// ctx, not a queue-wide cancellable derivative: another
			// asset's fatal failure must not abort this attempt mid-flight.
			err := q.Engine.DownloadOne(ctx, a, func(p Progress) {
				if q.RateLimiter != nil {
					q.RateLimiter.WaitN(ctx, 1)
				}
				mu.Lock()
				defer mu.Unlock()
				if p.Transferred == 0 && p.Total == 0 {
					// retry reset: subtract what we'd previously counted
					// for this asset so the retried bytes are not counted
					// twice once the next attempt reports progress.
					atomic.AddInt64(&aggregate, -prev)
					prev = 0
					if onProgress != nil {
						onProgress(AggregateProgress{ReceivedBytes: atomic.LoadInt64(&aggregate), TotalBytes: totalBytes})
					}
					return
				}
				delta := p.Transferred - prev
				prev = p.Transferred
				newAgg := atomic.AddInt64(&aggregate, delta)
				if onProgress != nil {
					onProgress(AggregateProgress{ReceivedBytes: newAgg, TotalBytes: totalBytes})
				}
			})

			if err != nil {
				fatalOnce.Do(func() {
					fatalErr.Store(err)
					stopLaunching.Store(true)
				})
			}
		}(a)
	}

	wg.Wait()

	if v := fatalErr.Load(); v != nil {
		return v.(error)
	}
	return nil
}
