// Package format implements the spec's thin output-format interfaces:
// nucmer delta, PAF, and SAM, plus compressed persistence of a large
// reference's sparse suffix array.
package format

import (
	"bufio"
	"fmt"
	"io"

	"github.com/cladebio/nucmatch/pipeline"
	"github.com/cladebio/nucmatch/seq"
)

// WriteDelta writes alignments in nucmer's delta format: a two-line
// file header, then one ">ref query refLen queryLen" record header per
// distinct (reference sequence, query sequence) pair followed by a
// seven-field coordinate line and a zero-terminated list of signed
// gap-distance integers per alignment.
//
// alignments must already be sorted by (RefSeqIndex, QuerySeqIndex,
// Strand, RefStart) -- the order cmd/nucmatch sorts them into before
// writing.
func WriteDelta(w io.Writer, refLabel, queryLabel string, ref *seq.Reference, queries []seq.Sequence, alignments []pipeline.Alignment) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s %s\n", refLabel, queryLabel)
	fmt.Fprintln(bw, "NUCMER")

	curRef, curQuery := -1, -1
	for _, a := range alignments {
		if a.RefSeqIndex != curRef || a.QuerySeqIndex != curQuery {
			curRef, curQuery = a.RefSeqIndex, a.QuerySeqIndex
			_, refLen := ref.SeqRange(curRef)
			queryLen := queries[curQuery].Len()
			fmt.Fprintf(bw, ">%s %s %d %d\n", ref.SeqID(curRef), queries[curQuery].ID, refLen, queryLen)
		}

		seqStart, _ := ref.SeqRange(a.RefSeqIndex)
		queryLen := queries[a.QuerySeqIndex].Len()

		refStart1 := a.RefStart - seqStart + 1
		refEnd1 := a.RefEnd - seqStart

		var qStart1, qEnd1 int
		if a.Strand == seq.Forward {
			qStart1 = a.QueryStart + 1
			qEnd1 = a.QueryEnd
		} else {
			// Reverse-strand alignments are reported with query
			// coordinates relative to the query's forward orientation,
			// start > end, per nucmer's delta convention.
			qStart1 = queryLen - a.QueryStart
			qEnd1 = queryLen - a.QueryEnd + 1
		}

		mismatches := a.AlignedLen - a.Matches
		fmt.Fprintf(bw, "%d %d %d %d %d %d 0\n", refStart1, refEnd1, qStart1, qEnd1, mismatches, mismatches)
		for _, d := range a.DeltaOps {
			fmt.Fprintln(bw, d)
		}
	}
	return bw.Flush()
}
