package format_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cladebio/nucmatch/extend"
	"github.com/cladebio/nucmatch/format"
	"github.com/cladebio/nucmatch/pipeline"
	"github.com/cladebio/nucmatch/seq"
)

func clippedAlignment() []pipeline.Alignment {
	return []pipeline.Alignment{{
		RefSeqIndex:   0,
		QuerySeqIndex: 0,
		Strand:        seq.Forward,
		Alignment: extend.Alignment{
			RefStart: 2, RefEnd: 8,
			QueryStart: 2, QueryEnd: 8,
			Score: 6, Matches: 6, AlignedLen: 6,
			DeltaOps: []int{0},
		},
	}}
}

func TestWriteSAMHeaderAndRecord(t *testing.T) {
	ref, queries := testRefAndQueries(t)
	var buf bytes.Buffer
	if err := format.WriteSAM(&buf, ref, queries, oneAlignment(), true); err != nil {
		t.Fatalf("WriteSAM: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "@SQ") || !strings.Contains(out, "SN:chr1") {
		t.Errorf("missing @SQ header for chr1: %q", out)
	}
	if !strings.Contains(out, "readA") {
		t.Errorf("missing record for readA: %q", out)
	}
}

func TestWriteSAMShortHardClipsAndTrimsSeq(t *testing.T) {
	ref, queries := testRefAndQueries(t)
	var buf bytes.Buffer
	if err := format.WriteSAM(&buf, ref, queries, clippedAlignment(), true); err != nil {
		t.Fatalf("WriteSAM: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	rec := lines[len(lines)-1]
	fields := strings.Split(rec, "\t")
	cigar, seqField := fields[5], fields[9]
	if !strings.HasPrefix(cigar, "2H") {
		t.Errorf("cigar = %q, want leading 2H clip", cigar)
	}
	if seqField != "ACGTACGT"[2:] {
		t.Errorf("seq = %q, want aligned span only", seqField)
	}
}

func TestWriteSAMLongSoftClipsAndKeepsFullSeq(t *testing.T) {
	ref, queries := testRefAndQueries(t)
	var buf bytes.Buffer
	if err := format.WriteSAM(&buf, ref, queries, clippedAlignment(), false); err != nil {
		t.Fatalf("WriteSAM: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	rec := lines[len(lines)-1]
	fields := strings.Split(rec, "\t")
	cigar, seqField := fields[5], fields[9]
	if !strings.HasPrefix(cigar, "2S") {
		t.Errorf("cigar = %q, want leading 2S clip", cigar)
	}
	if seqField != "ACGTACGT" {
		t.Errorf("seq = %q, want full query", seqField)
	}
}

func TestWriteSAMReverseStrandRevcompsSeq(t *testing.T) {
	ref, queries := testRefAndQueries(t)
	alignments := []pipeline.Alignment{{
		RefSeqIndex: 0, QuerySeqIndex: 0, Strand: seq.Reverse,
		Alignment: extend.Alignment{
			RefStart: 0, RefEnd: 8, QueryStart: 0, QueryEnd: 8,
			Score: 8, Matches: 8, AlignedLen: 8, DeltaOps: []int{0},
		},
	}}
	var buf bytes.Buffer
	if err := format.WriteSAM(&buf, ref, queries, alignments, true); err != nil {
		t.Fatalf("WriteSAM: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	rec := lines[len(lines)-1]
	fields := strings.Split(rec, "\t")
	flag, seqField := fields[1], fields[9]
	if flag != "16" {
		t.Errorf("flag = %q, want 16 (reverse)", flag)
	}
	want := string(seq.ReverseComplement(queries[0]).Bases)
	if seqField != want {
		t.Errorf("seq = %q, want reverse complement %q", seqField, want)
	}
}
