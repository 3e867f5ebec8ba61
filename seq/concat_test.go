package seq_test

import (
	"testing"

	"github.com/cladebio/nucmatch/seq"
)

func TestConcatWithSentinels(t *testing.T) {
	seqs := []seq.Sequence{
		{ID: "a", Bases: []byte("ACGT")},
		{ID: "b", Bases: []byte("TTT")},
	}
	ref, err := seq.ConcatWithSentinels(seqs)
	if err != nil {
		t.Fatalf("ConcatWithSentinels: %v", err)
	}
	want := append(append(append([]byte("ACGT"), seq.SentinelByte), append([]byte("TTT"), seq.SentinelByte)...), seq.TerminatorByte)
	if string(ref.Bases) != string(want) {
		t.Fatalf("Bases = %v, want %v", ref.Bases, want)
	}
	if ref.NumSequences() != 2 {
		t.Fatalf("NumSequences = %d, want 2", ref.NumSequences())
	}
}

func TestLocate(t *testing.T) {
	seqs := []seq.Sequence{
		{ID: "a", Bases: []byte("ACGT")}, // bytes 0-3, sentinel at 4
		{ID: "b", Bases: []byte("TTT")},  // bytes 5-7, sentinel at 8, terminator at 9
	}
	ref, err := seq.ConcatWithSentinels(seqs)
	if err != nil {
		t.Fatalf("ConcatWithSentinels: %v", err)
	}
	cases := []struct {
		offset      int
		wantSeq     int
		wantLocal   int
		expectError bool
	}{
		{0, 0, 0, false},
		{3, 0, 3, false},
		{4, 0, 0, true}, // sentinel
		{5, 1, 0, false},
		{7, 1, 2, false},
		{8, 0, 0, true}, // sentinel
		{9, 0, 0, true}, // terminator
	}
	for _, c := range cases {
		si, lp, err := ref.Locate(c.offset)
		if c.expectError {
			if err == nil {
				t.Errorf("offset %d: expected error", c.offset)
			}
			continue
		}
		if err != nil {
			t.Errorf("offset %d: %v", c.offset, err)
			continue
		}
		if si != c.wantSeq || lp != c.wantLocal {
			t.Errorf("offset %d: got (%d,%d), want (%d,%d)", c.offset, si, lp, c.wantSeq, c.wantLocal)
		}
	}
}

func TestLocateOutOfRange(t *testing.T) {
	ref, err := seq.ConcatWithSentinels([]seq.Sequence{{ID: "a", Bases: []byte("ACGT")}})
	if err != nil {
		t.Fatalf("ConcatWithSentinels: %v", err)
	}
	if _, _, err := ref.Locate(-1); err == nil {
		t.Error("expected error for negative offset")
	}
	if _, _, err := ref.Locate(ref.Len()); err == nil {
		t.Error("expected error for offset == Len()")
	}
}
