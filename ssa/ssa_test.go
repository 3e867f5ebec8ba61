package ssa_test

import (
	"bytes"
	"testing"

	"github.com/cladebio/nucmatch/ssa"
)

// buildRef appends the section 3 terminator (strictly smaller than every
// base) to s, as Build requires.
func buildRef(s string) []byte {
	return append([]byte(s), 0)
}

func TestBuildInvariants(t *testing.T) {
	ref := buildRef("ACGTACGTACGT")
	s, err := ssa.Build(ref, 1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	n := len(s.Positions)
	if n != len(ref) {
		t.Fatalf("len(Positions) = %d, want %d", n, len(ref))
	}
	// invariant (i) & (ii): every entry divisible by k, and a permutation
	// of {0, k, 2k, ...}.
	seen := make(map[int64]bool)
	for _, p := range s.Positions {
		if p%int64(s.K) != 0 {
			t.Fatalf("position %d not divisible by k=%d", p, s.K)
		}
		if seen[p] {
			t.Fatalf("duplicate position %d", p)
		}
		seen[p] = true
	}
	// invariant (iii): strictly increasing suffixes.
	for i := 1; i < n; i++ {
		a := ref[s.Positions[i-1]:]
		b := ref[s.Positions[i]:]
		if bytes.Compare(a, b) >= 0 {
			t.Fatalf("suffixes at %d (%q) and %d (%q) not strictly increasing",
				s.Positions[i-1], a, s.Positions[i], b)
		}
	}
	// invariant (iv): lcp bounds.
	if s.LCP[0] != 0 {
		t.Fatalf("LCP[0] = %d, want 0", s.LCP[0])
	}
	for i := 1; i < n; i++ {
		maxPos := s.Positions[i-1]
		if s.Positions[i] > maxPos {
			maxPos = s.Positions[i]
		}
		bound := int32(len(ref)) - int32(maxPos)
		if s.LCP[i] < 0 || s.LCP[i] > bound {
			t.Fatalf("LCP[%d] = %d out of bounds [0, %d]", i, s.LCP[i], bound)
		}
	}
}

func TestBuildSampling(t *testing.T) {
	ref := buildRef("ACGTACGTACGTACGT")
	s, err := ssa.Build(ref, 4)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, p := range s.Positions {
		if p%4 != 0 {
			t.Fatalf("position %d not a multiple of 4", p)
		}
	}
	wantCount := (len(ref) + 3) / 4
	if len(s.Positions) != wantCount {
		t.Fatalf("len(Positions) = %d, want %d", len(s.Positions), wantCount)
	}
}

func TestLocateFindsExactMatches(t *testing.T) {
	ref := buildRef("ACGTACGTACGT")
	s, err := ssa.Build(ref, 1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	lo, hi := s.Locate(ref, []byte("ACGT"))
	if hi <= lo {
		t.Fatal("expected at least one match for ACGT")
	}
	for i := lo; i < hi; i++ {
		p := int(s.Positions[i])
		if !bytes.HasPrefix(ref[p:], []byte("ACGT")) {
			t.Errorf("position %d does not start with ACGT", p)
		}
	}
	// Every occurrence of ACGT should be within [lo, hi).
	wantOccurrences := 0
	for i := 0; i+4 <= len(ref); i++ {
		if bytes.Equal(ref[i:i+4], []byte("ACGT")) {
			wantOccurrences++
		}
	}
	if hi-lo != wantOccurrences {
		t.Errorf("got %d occurrences, want %d", hi-lo, wantOccurrences)
	}
}

func TestLocateNoMatch(t *testing.T) {
	ref := buildRef("AAAAAAAA")
	s, err := ssa.Build(ref, 1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	lo, hi := s.Locate(ref, []byte("TTTT"))
	if hi != lo {
		t.Errorf("expected empty range, got [%d,%d)", lo, hi)
	}
}

func TestDeterministic(t *testing.T) {
	ref := buildRef("GATTACAGATTACAGATTACA")
	a, err := ssa.Build(ref, 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	b, err := ssa.Build(ref, 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(a.Positions) != len(b.Positions) {
		t.Fatal("position count differs across runs")
	}
	for i := range a.Positions {
		if a.Positions[i] != b.Positions[i] || a.LCP[i] != b.LCP[i] {
			t.Fatalf("run mismatch at %d: (%d,%d) vs (%d,%d)", i, a.Positions[i], a.LCP[i], b.Positions[i], b.LCP[i])
		}
	}
}
