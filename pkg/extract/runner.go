package extract

import (
	"context"
	"time"

	"github.com/dropshelf/dropshelf/pkg/mediafile"
	"github.com/robinjoseph08/golib/logger"
)

// Runner executes extractors with a hard timeout. The books directory may be
// a slow or unresponsive network mount, so a hung extraction must never stall
// the caller: on deadline the worker goroutine is abandoned, not awaited. The
// result channel is buffered so the abandoned worker's send cannot block, and
// extractors close their own file handles on return.
type Runner struct {
	timeout time.Duration
}

// NewRunner returns a Runner with the given per-extraction deadline.
func NewRunner(timeout time.Duration) *Runner {
	return &Runner{timeout: timeout}
}

// Timeout is the runner's per-extraction deadline.
func (r *Runner) Timeout() time.Duration {
	return r.timeout
}

// Run executes fn against path. ok is true only when the extractor finished
// within the deadline and produced a usable title. Timeouts, extractor
// errors, panics, and empty results all map to ok=false.
func (r *Runner) Run(ctx context.Context, fn Func, path string) (*mediafile.ParsedMetadata, bool) {
	log := logger.FromContext(ctx)

	type result struct {
		metadata *mediafile.ParsedMetadata
		err      error
	}

	results := make(chan result, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				log.Warn("extractor panicked", logger.Data{"path": path, "panic": p})
				results <- result{}
			}
		}()
		metadata, err := fn(path)
		results <- result{metadata, err}
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case res := <-results:
		if res.err != nil {
			log.Debug("extraction yielded no metadata", logger.Data{"path": path, "err": res.err.Error()})
			return nil, false
		}
		if res.metadata == nil || res.metadata.Title == "" {
			return nil, false
		}
		return res.metadata, true
	case <-timer.C:
		log.Debug("extraction timed out", logger.Data{"path": path, "timeout": r.timeout.String()})
		return nil, false
	case <-ctx.Done():
		return nil, false
	}
}
