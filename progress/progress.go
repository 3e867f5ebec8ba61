// Package progress reports coarse-grained pipeline progress, the thin
// interface spec.md leaves unspecified beyond "periodic progress
// lines".
//
// Grounded on markduplicates/mark_duplicates.go's own progress
// reporting, which is nothing more than log.Debug.Printf calls at
// natural checkpoints ("Scanning %d shards", "workers all done in
// %v") -- this package wraps that same idiom in a small reusable type
// instead of reaching for a third-party progress-bar library, since
// the corpus itself never does for this concern.
package progress

import (
	"sync/atomic"
	"time"

	"github.com/grailbio/base/log"
)

// Reporter tracks completed/total work units and logs a debug line
// whenever the completed count crosses a reporting interval.
type Reporter struct {
	label     string
	total     int64
	completed int64
	interval  int64
	start     time.Time
}

// NewReporter creates a Reporter for total work units, logging every
// interval completions (interval <= 0 disables periodic logging; Done
// still logs a final summary).
func NewReporter(label string, total int64, interval int64) *Reporter {
	return &Reporter{label: label, total: total, interval: interval, start: time.Now()}
}

// Add records n newly completed work units and logs a debug line if a
// reporting interval boundary was crossed.
func (r *Reporter) Add(n int64) {
	if r == nil {
		return
	}
	before := atomic.LoadInt64(&r.completed)
	after := atomic.AddInt64(&r.completed, n)
	if r.interval <= 0 {
		return
	}
	if before/r.interval != after/r.interval {
		log.Debug.Printf("%s: %d/%d (%s elapsed)", r.label, after, r.total, time.Since(r.start).Round(time.Millisecond))
	}
}

// Done logs a final summary line.
func (r *Reporter) Done() {
	if r == nil {
		return
	}
	log.Debug.Printf("%s: done, %d/%d in %s", r.label, atomic.LoadInt64(&r.completed), r.total, time.Since(r.start).Round(time.Millisecond))
}
