// Package ssa implements the sparse suffix array and its LCP array over a
// concatenated reference buffer, per spec.md sections 3 and 4.2.
package ssa

import (
	"bytes"
	"sort"

	farm "github.com/dgryski/go-farm"

	"github.com/cladebio/nucmatch/nucerr"
)

// hashWindow is the fixed prefix length the suffix comparator hashes to
// short-circuit comparisons on long shared runs (see SPEC_FULL.md section
// 4.2). It is small enough to keep the verification bytes.Equal cheap but
// large enough to matter for typical short tandem repeats.
const hashWindow = 32

// SSA is a sparse suffix array sampled at every k'th position of a
// reference buffer, together with the LCP array between lexicographically
// adjacent sampled suffixes.
type SSA struct {
	K int
	N int

	// Positions[i] is a reference offset, always a multiple of K. The
	// suffix starting at Positions[i] is lexicographically <= the suffix
	// at Positions[i+1].
	Positions []int64

	// LCP[i] is the length of the longest common prefix between the
	// suffixes at Positions[i-1] and Positions[i]; LCP[0] is always 0.
	LCP []int32
}

// Build constructs the sparse suffix array of ref at sampling rate k.
// ref must end with a terminator byte strictly smaller than every other
// byte in ref, per spec.md section 3; Build does not itself append one.
//
// Deterministic: for a given (ref, k), Build's output is byte-identical
// across runs (spec.md section 4.2).
func Build(ref []byte, k int) (*SSA, error) {
	if k < 1 {
		return nil, nucerr.Internalf("sampling rate k must be >= 1, got %d", k)
	}
	n := len(ref)
	count := (n + k - 1) / k
	positions := make([]int64, 0, count)
	for p := 0; p < n; p += k {
		positions = append(positions, int64(p))
	}

	digest := make([]uint64, len(positions))
	for i, p := range positions {
		digest[i] = windowHash(ref, int(p))
	}

	order := make([]int, len(positions))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return compareSuffixes(ref, positions[order[a]], positions[order[b]], digest[order[a]], digest[order[b]]) < 0
	})

	sorted := make([]int64, len(positions))
	sortedDigest := make([]uint64, len(positions))
	for i, idx := range order {
		sorted[i] = positions[idx]
		sortedDigest[i] = digest[idx]
	}

	lcp := make([]int32, len(sorted))
	for i := 1; i < len(sorted); i++ {
		lcp[i] = int32(commonPrefixLen(ref, sorted[i-1], sorted[i], sortedDigest[i-1], sortedDigest[i]))
	}

	return &SSA{K: k, N: n, Positions: sorted, LCP: lcp}, nil
}

// windowHash returns a FarmHash digest of ref[p : p+hashWindow], clamped to
// the end of ref.
func windowHash(ref []byte, p int) uint64 {
	end := p + hashWindow
	if end > len(ref) {
		end = len(ref)
	}
	return farm.Hash64(ref[p:end])
}

// compareSuffixes returns (negative, 0, positive) as the suffix at pa is
// (less than, equal to, greater than) the suffix at pb. Equality never
// occurs in practice once ref carries a unique terminator (spec.md section
// 3, invariant iii), but the comparator stays correct either way.
func compareSuffixes(ref []byte, pa, pb int64, ha, hb uint64) int {
	start := 0
	if ha == hb {
		wa, wb := window(ref, int(pa)), window(ref, int(pb))
		if bytes.Equal(wa, wb) {
			start = len(wa)
		}
	}
	return bytes.Compare(ref[int(pa)+start:], ref[int(pb)+start:])
}

func window(ref []byte, p int) []byte {
	end := p + hashWindow
	if end > len(ref) {
		end = len(ref)
	}
	return ref[p:end]
}

// commonPrefixLen returns the length of the longest common prefix of the
// suffixes at pa and pb, reusing the same hash short-circuit as the
// comparator above.
func commonPrefixLen(ref []byte, pa, pb int64, ha, hb uint64) int {
	start := 0
	if ha == hb {
		wa, wb := window(ref, int(pa)), window(ref, int(pb))
		if bytes.Equal(wa, wb) {
			start = len(wa)
		}
	}
	a, b := ref[int(pa)+start:], ref[int(pb)+start:]
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return start + i
}

// Locate returns the half-open range [lo, hi) of indices into Positions
// whose suffixes share a prefix of length >= len(pattern) with pattern,
// per spec.md section 4.2's locate primitive. Behavior is undefined (spec
// does not constrain it) when len(pattern) < s.K; callers must enforce
// minMatch >= k themselves (spec.md section 4.3).
func (s *SSA) Locate(ref []byte, pattern []byte) (lo, hi int) {
	n := len(s.Positions)
	lo = sort.Search(n, func(i int) bool {
		return bytes.Compare(suffixPrefix(ref, int(s.Positions[i]), len(pattern)), pattern) >= 0
	})
	hi = sort.Search(n, func(i int) bool {
		return bytes.Compare(suffixPrefix(ref, int(s.Positions[i]), len(pattern)), pattern) > 0
	})
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

func suffixPrefix(ref []byte, p, length int) []byte {
	end := p + length
	if end > len(ref) {
		end = len(ref)
	}
	return ref[p:end]
}
