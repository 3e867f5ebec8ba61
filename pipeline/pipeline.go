// Package pipeline drives the parallel worker pool that turns a loaded
// reference and its suffix array into a deterministic, ordered stream
// of alignments against a collection of query sequences, per spec.md
// section 5.
//
// Grounded on markduplicates/mark_duplicates.go's channel-fed worker
// pool and encoding/bam/shardedbam.go's *syncqueue.OrderedQueue, which
// turns unordered worker completions into an ordered output stream
// exactly as this package's drain goroutine does.
package pipeline

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"github.com/grailbio/base/syncqueue"

	"github.com/cladebio/nucmatch/cluster"
	"github.com/cladebio/nucmatch/extend"
	"github.com/cladebio/nucmatch/match"
	"github.com/cladebio/nucmatch/nucerr"
	"github.com/cladebio/nucmatch/seq"
	"github.com/cladebio/nucmatch/ssa"
)

// Params bundles the driver's tunables, named after their CLI flags
// per spec.md section 6.
type Params struct {
	Threads     int // -t/--threads
	Policy      match.Policy
	MinMatch    int  // -l/--minmatch
	Reverse     bool // also search the reverse-complement strand
	SkipForward bool // -r/--reverse given without -f/--forward: search reverse only
	Cluster     cluster.Params
	Extend      extend.Params
}

// Alignment is one promoted cluster, tagged with the sequence indices
// and strand it belongs to -- the unit the pipeline emits.
type Alignment struct {
	RefSeqIndex   int
	QuerySeqIndex int
	Strand        seq.Strand
	extend.Alignment
}

// Result is one query sequence's full set of alignments against the
// reference: the unit of work a single worker produces and the unit
// the OrderedQueue orders by.
type Result struct {
	QuerySeqIndex int
	Alignments    []Alignment
}

// Sink consumes Results in ascending QuerySeqIndex order as they
// become available. A non-nil return cancels the run.
type Sink func(Result) error

// Run dispatches one task per query sequence to a worker pool sized by
// p.Threads (GOMAXPROCS when p.Threads < 1). Each worker owns its own match.Finder over the shared,
// read-only reference and index (per spec.md section 5: "each
// pipeline task owns its own match buffer and scratch space"), finds
// matches on the forward strand (and, if p.Reverse, the
// reverse-complement strand too), groups them by which reference
// sequence they land in, clusters and extends each group, and inserts
// the resulting Result into an OrderedQueue keyed by query sequence
// index. A drain goroutine streams queue entries to sink strictly in
// that order. The first error from any worker, the sink, or ctx wins
// and is returned after every goroutine has exited; it does not stop
// other in-flight workers from finishing their current task, but tasks
// picked up after it are drained without being run.
func Run(ctx context.Context, ref *seq.Reference, index *ssa.SSA, queries []seq.Sequence, p Params, sink Sink) error {
	threads := p.Threads
	if threads < 1 {
		threads = runtime.GOMAXPROCS(0)
	}

	queue := syncqueue.NewOrderedQueue(len(queries))
	var once nucerr.Once

	var drainWG sync.WaitGroup
	drainWG.Add(1)
	go func() {
		defer drainWG.Done()
		for {
			entry, ok, err := queue.Next()
			if err != nil {
				once.Set(err)
				return
			}
			if !ok {
				return
			}
			if err := sink(entry.(Result)); err != nil {
				once.Set(err)
				queue.Close(err)
				return
			}
		}
	}()

	tasks := make(chan int)
	var workersWG sync.WaitGroup
	for w := 0; w < threads; w++ {
		workersWG.Add(1)
		go func() {
			defer workersWG.Done()
			finder := match.NewFinder(ref.Bases, index, p.Policy)
			for qi := range tasks {
				result := Result{QuerySeqIndex: qi}
				if ctx.Err() != nil {
					once.Set(ctx.Err())
				} else if once.Err() == nil {
					r, err := runOne(ref, finder, qi, queries[qi], p)
					if err != nil {
						once.Set(err)
					} else {
						result = r
					}
				}
				if err := queue.Insert(qi, result); err != nil {
					once.Set(err)
				}
			}
		}()
	}

	for qi := range queries {
		tasks <- qi
	}
	close(tasks)

	workersWG.Wait()
	queue.Close(nil)
	drainWG.Wait()

	return once.Err()
}

// runOne matches, clusters, and extends one query sequence (on one or
// both strands) against the whole reference.
func runOne(ref *seq.Reference, finder *match.Finder, qi int, q seq.Sequence, p Params) (Result, error) {
	result := Result{QuerySeqIndex: qi}

	var strands []seq.Strand
	if !p.SkipForward {
		strands = append(strands, seq.Forward)
	}
	if p.Reverse {
		strands = append(strands, seq.Reverse)
	}

	for _, strand := range strands {
		queryBases := q.Bases
		if strand == seq.Reverse {
			queryBases = seq.ReverseComplement(q).Bases
		}

		matches, err := finder.Find(queryBases, strand, p.MinMatch)
		if err != nil {
			return Result{}, err
		}

		groups, err := groupByRefSeq(ref, matches)
		if err != nil {
			return Result{}, err
		}

		refSeqIndices := make([]int, 0, len(groups))
		for refIdx := range groups {
			refSeqIndices = append(refSeqIndices, refIdx)
		}
		sort.Ints(refSeqIndices)

		for _, refIdx := range refSeqIndices {
			clusters := cluster.Build(groups[refIdx], p.Cluster)
			for _, c := range clusters {
				a, err := extend.Extend(ref.Bases, queryBases, c, p.Extend)
				if err != nil {
					return Result{}, err
				}
				if a == nil {
					continue // below -minalign
				}
				result.Alignments = append(result.Alignments, Alignment{
					RefSeqIndex:   refIdx,
					QuerySeqIndex: qi,
					Strand:        strand,
					Alignment:     *a,
				})
			}
		}
	}

	sort.Slice(result.Alignments, func(i, j int) bool {
		a, b := result.Alignments[i], result.Alignments[j]
		if a.RefSeqIndex != b.RefSeqIndex {
			return a.RefSeqIndex < b.RefSeqIndex
		}
		if a.Strand != b.Strand {
			return a.Strand == seq.Forward
		}
		if a.RefStart != b.RefStart {
			return a.RefStart < b.RefStart
		}
		return a.QueryStart < b.QueryStart
	})
	return result, nil
}

// groupByRefSeq partitions matches by which reference sequence their
// (global, concatenated-buffer) RefPos falls into, since the clusterer
// must never chain matches across a sentinel boundary.
func groupByRefSeq(ref *seq.Reference, matches []match.Match) (map[int][]match.Match, error) {
	groups := make(map[int][]match.Match)
	for _, m := range matches {
		refIdx, _, err := ref.Locate(m.RefPos)
		if err != nil {
			return nil, err
		}
		groups[refIdx] = append(groups[refIdx], m)
	}
	return groups, nil
}
