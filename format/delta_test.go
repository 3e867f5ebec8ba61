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

func testRefAndQueries(t *testing.T) (*seq.Reference, []seq.Sequence) {
	t.Helper()
	ref, err := seq.ConcatWithSentinels([]seq.Sequence{{ID: "chr1", Bases: []byte("ACGTACGTACGT")}})
	if err != nil {
		t.Fatalf("ConcatWithSentinels: %v", err)
	}
	queries := []seq.Sequence{{ID: "readA", Bases: []byte("ACGTACGT")}}
	return ref, queries
}

func oneAlignment() []pipeline.Alignment {
	return []pipeline.Alignment{{
		RefSeqIndex:   0,
		QuerySeqIndex: 0,
		Strand:        seq.Forward,
		Alignment: extend.Alignment{
			RefStart: 0, RefEnd: 8,
			QueryStart: 0, QueryEnd: 8,
			Score: 8, Matches: 8, AlignedLen: 8,
			DeltaOps: []int{0},
		},
	}}
}

func TestWriteDeltaHeaderAndCoordinates(t *testing.T) {
	ref, queries := testRefAndQueries(t)
	var buf bytes.Buffer
	if err := format.WriteDelta(&buf, "ref.fasta", "query.fasta", ref, queries, oneAlignment()); err != nil {
		t.Fatalf("WriteDelta: %v", err)
	}
	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if lines[0] != "ref.fasta query.fasta" {
		t.Errorf("line 0 = %q, want file header", lines[0])
	}
	if lines[1] != "NUCMER" {
		t.Errorf("line 1 = %q, want NUCMER", lines[1])
	}
	if lines[2] != ">chr1 readA 12 8" {
		t.Errorf("line 2 = %q, want sequence header", lines[2])
	}
	if lines[3] != "1 8 1 8 0 0 0" {
		t.Errorf("line 3 = %q, want coordinate line", lines[3])
	}
	if lines[4] != "0" {
		t.Errorf("line 4 = %q, want terminator", lines[4])
	}
}

func TestWriteDeltaReverseStrandCoordinates(t *testing.T) {
	ref, queries := testRefAndQueries(t)
	alignments := []pipeline.Alignment{{
		RefSeqIndex: 0, QuerySeqIndex: 0, Strand: seq.Reverse,
		Alignment: extend.Alignment{
			RefStart: 0, RefEnd: 8, QueryStart: 0, QueryEnd: 8,
			Score: 8, Matches: 8, AlignedLen: 8, DeltaOps: []int{0},
		},
	}}
	var buf bytes.Buffer
	if err := format.WriteDelta(&buf, "r", "q", ref, queries, alignments); err != nil {
		t.Fatalf("WriteDelta: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	coordLine := lines[3]
	if coordLine != "1 8 8 1 0 0 0" {
		t.Errorf("coord line = %q, want reverse-strand descending query coords", coordLine)
	}
}

func TestWritePAF(t *testing.T) {
	ref, queries := testRefAndQueries(t)
	var buf bytes.Buffer
	if err := format.WritePAF(&buf, ref, queries, oneAlignment()); err != nil {
		t.Fatalf("WritePAF: %v", err)
	}
	fields := strings.Split(strings.TrimRight(buf.String(), "\n"), "\t")
	if len(fields) != 12 {
		t.Fatalf("got %d fields, want 12: %v", len(fields), fields)
	}
	if fields[0] != "readA" || fields[5] != "chr1" {
		t.Errorf("fields[0]=%q fields[5]=%q, want readA/chr1", fields[0], fields[5])
	}
}
