package format

import (
	"fmt"
	"io"

	"github.com/biogo/hts/sam"

	"github.com/cladebio/nucmatch/nucerr"
	"github.com/cladebio/nucmatch/pipeline"
	"github.com/cladebio/nucmatch/seq"
)

// WriteSAM writes alignments as SAM text records against ref, one
// @SQ header line per reference sequence plus one record per
// alignment. The CIGAR core is built directly from each alignment's
// DeltaOps run-length encoding rather than a full base-by-base
// traceback, since delta already records every indel's position.
//
// short selects between the two SAM flavors spec.md section 6 names
// (-sam-short/-sam-long): short hard-clips (CigarHardClip) the
// unaligned query flanks and writes only the aligned bases into SEQ;
// long soft-clips (CigarSoftClip) them and writes the query verbatim.
func WriteSAM(w io.Writer, ref *seq.Reference, queries []seq.Sequence, alignments []pipeline.Alignment, short bool) error {
	refs := make([]*sam.Reference, ref.NumSequences())
	for i := 0; i < ref.NumSequences(); i++ {
		_, length := ref.SeqRange(i)
		r, err := sam.NewReference(ref.SeqID(i), "", "", length, nil, nil)
		if err != nil {
			return nucerr.Internalf("sam reference %q: %v", ref.SeqID(i), err)
		}
		refs[i] = r
	}
	header, err := sam.NewHeader(nil, refs)
	if err != nil {
		return nucerr.Internalf("sam header: %v", err)
	}
	if err := header.WriteText(w); err != nil {
		return nucerr.Internalf("writing sam header: %v", err)
	}

	for _, a := range alignments {
		q := queries[a.QuerySeqIndex]
		bases := q.Bases
		if a.Strand == seq.Reverse {
			bases = seq.ReverseComplement(q).Bases
		}
		cigar, err := buildCigar(a, len(bases), short)
		if err != nil {
			return err
		}
		seqBases := bases
		if short {
			seqBases = bases[a.QueryStart:a.QueryEnd]
		}
		flags := sam.Flags(0)
		if a.Strand == seq.Reverse {
			flags |= sam.Reverse
		}
		rec, err := sam.NewRecord(q.ID, refs[a.RefSeqIndex], nil, a.RefStart, -1, 0, mapQUnknown, cigar, seqBases, nil)
		if err != nil {
			return nucerr.Internalf("sam record for %q: %v", q.ID, err)
		}
		rec.Flags = flags
		if _, err := fmt.Fprintln(w, rec); err != nil {
			return nucerr.Internalf("writing sam record: %v", err)
		}
	}
	return nil
}

// buildCigar turns an alignment's DeltaOps (nucmer's signed
// distance-to-next-indel encoding) into a SAM Cigar: a leading/trailing
// clip op for the unaligned query flanks (hard for short, soft for
// long), then a run of matches of the recorded distance, then a
// single-base deletion (positive entries: a gap in the query) or
// insertion (negative entries: a gap in the reference), repeated until
// the terminating 0, with any remaining aligned length emitted as a
// final match run.
func buildCigar(a pipeline.Alignment, queryLen int, short bool) (sam.Cigar, error) {
	clipOp := sam.CigarSoftClip
	if short {
		clipOp = sam.CigarHardClip
	}

	var cigar sam.Cigar
	if a.QueryStart > 0 {
		cigar = append(cigar, sam.NewCigarOp(clipOp, a.QueryStart))
	}

	consumed := 0
	for _, d := range a.DeltaOps {
		if d == 0 {
			break
		}
		dist := d
		op := sam.CigarDeletion
		if d < 0 {
			dist = -d
			op = sam.CigarInsertion
		}
		run := dist - 1
		if run > 0 {
			cigar = append(cigar, sam.NewCigarOp(sam.CigarMatch, run))
			consumed += run
		}
		cigar = append(cigar, sam.NewCigarOp(op, 1))
		consumed++
	}
	if remaining := a.AlignedLen - consumed; remaining > 0 {
		cigar = append(cigar, sam.NewCigarOp(sam.CigarMatch, remaining))
	}

	if trailing := queryLen - a.QueryEnd; trailing > 0 {
		cigar = append(cigar, sam.NewCigarOp(clipOp, trailing))
	}
	return cigar, nil
}
