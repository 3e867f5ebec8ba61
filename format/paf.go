package format

import (
	"bufio"
	"fmt"
	"io"

	"github.com/cladebio/nucmatch/pipeline"
	"github.com/cladebio/nucmatch/seq"
)

// mapQUnknown is PAF's convention for "mapping quality not applicable",
// used here since the pipeline doesn't compute a mapping-quality score.
const mapQUnknown = 255

// WritePAF writes alignments as 12-column PAF records (minimap2's
// pairwise mapping format): qname qlen qstart qend strand tname tlen
// tstart tend nmatch alnlen mapq.
func WritePAF(w io.Writer, ref *seq.Reference, queries []seq.Sequence, alignments []pipeline.Alignment) error {
	bw := bufio.NewWriter(w)
	for _, a := range alignments {
		seqStart, _ := ref.SeqRange(a.RefSeqIndex)
		_, refLen := ref.SeqRange(a.RefSeqIndex)
		q := queries[a.QuerySeqIndex]

		strand := '+'
		if a.Strand == seq.Reverse {
			strand = '-'
		}

		fmt.Fprintf(bw, "%s\t%d\t%d\t%d\t%c\t%s\t%d\t%d\t%d\t%d\t%d\t%d\n",
			q.ID, q.Len(), a.QueryStart, a.QueryEnd,
			strand,
			ref.SeqID(a.RefSeqIndex), refLen, a.RefStart-seqStart, a.RefEnd-seqStart,
			a.Matches, a.AlignedLen, mapQUnknown)
	}
	return bw.Flush()
}
