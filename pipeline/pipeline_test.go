package pipeline_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cladebio/nucmatch/cluster"
	"github.com/cladebio/nucmatch/extend"
	"github.com/cladebio/nucmatch/match"
	"github.com/cladebio/nucmatch/pipeline"
	"github.com/cladebio/nucmatch/seq"
	"github.com/cladebio/nucmatch/ssa"
)

func buildTestRef(t *testing.T, seqs ...seq.Sequence) (*seq.Reference, *ssa.SSA) {
	t.Helper()
	ref, err := seq.ConcatWithSentinels(seqs)
	assert.NoError(t, err)
	idx, err := ssa.Build(ref.Bases, 1)
	assert.NoError(t, err)
	return ref, idx
}

func defaultParams() pipeline.Params {
	return pipeline.Params{
		Threads:  4,
		Policy:   match.MEM,
		MinMatch: 4,
		Cluster:  cluster.Params{MaxGap: 90, DiagDiff: 5, DiagFactor: 0.12, MinMatch: 4, MinCluster: 0},
		Extend:   extend.Params{BreakLen: 0, DiagDiff: 5, MinAlign: 0},
	}
}

func TestRunOrdersResultsByQuerySeqIndex(t *testing.T) {
	ref, idx := buildTestRef(t, seq.Sequence{ID: "chr1", Bases: []byte("ACGTACGTACGTACGT")})
	queries := []seq.Sequence{
		{ID: "q0", Bases: []byte("ACGTACGT")},
		{ID: "q1", Bases: []byte("ACGTACGT")},
		{ID: "q2", Bases: []byte("ACGTACGT")},
	}

	var seen []int
	sink := func(r pipeline.Result) error {
		seen = append(seen, r.QuerySeqIndex)
		return nil
	}

	err := pipeline.Run(context.Background(), ref, idx, queries, defaultParams(), sink)
	assert.NoError(t, err)
	assert.Equal(t, 3, len(seen))
	for i, qi := range seen {
		assert.Equal(t, i, qi, "result %d out of order", i)
	}
}

func TestRunProducesAlignments(t *testing.T) {
	ref, idx := buildTestRef(t, seq.Sequence{ID: "chr1", Bases: []byte("ACGTACGTACGTACGT")})
	queries := []seq.Sequence{{ID: "q0", Bases: []byte("ACGTACGTACGTACGT")}}

	var got pipeline.Result
	sink := func(r pipeline.Result) error {
		got = r
		return nil
	}
	err := pipeline.Run(context.Background(), ref, idx, queries, defaultParams(), sink)
	assert.NoError(t, err)
	assert.NotEmpty(t, got.Alignments)
	for _, a := range got.Alignments {
		assert.Equal(t, 0, a.RefSeqIndex)
		assert.Equal(t, 0, a.QuerySeqIndex)
	}
}

func TestRunPropagatesSinkError(t *testing.T) {
	ref, idx := buildTestRef(t, seq.Sequence{ID: "chr1", Bases: []byte("ACGTACGTACGT")})
	queries := []seq.Sequence{
		{ID: "q0", Bases: []byte("ACGTACGT")},
		{ID: "q1", Bases: []byte("ACGTACGT")},
	}
	sinkErr := errSentinel{}
	sink := func(r pipeline.Result) error {
		return sinkErr
	}
	err := pipeline.Run(context.Background(), ref, idx, queries, defaultParams(), sink)
	if err == nil {
		t.Fatal("expected an error from Run")
	}
}

type errSentinel struct{}

func (errSentinel) Error() string { return "sink failed" }

func TestRunRespectsContextCancellation(t *testing.T) {
	ref, idx := buildTestRef(t, seq.Sequence{ID: "chr1", Bases: []byte("ACGTACGT")})
	queries := []seq.Sequence{{ID: "q0", Bases: []byte("ACGT")}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := pipeline.Run(ctx, ref, idx, queries, defaultParams(), func(pipeline.Result) error { return nil })
	if err == nil {
		t.Fatal("expected a context-cancellation error")
	}
}
