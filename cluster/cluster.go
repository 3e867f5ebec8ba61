// Package cluster groups matches between a single (reference_seq,
// query_seq, strand) pair into colinear anchor chains, per spec.md
// section 4.4. The chaining DP and its deterministic tie-break mirror
// the duplicate-bagging pass in markduplicates/mark_duplicates.go: a
// single forward scan, a per-item "best so far" record, and a
// comparison-method ordering lifted from biopb's Coord type for the
// tie-break itself.
package cluster

import (
	"sort"

	"github.com/cladebio/nucmatch/match"
)

// gapJoinPenalty is the constant-per-join term in the chaining score,
// per spec.md section 4.4: "penalty is linear in the L1 distance
// between diagonals plus a constant for each joined gap."
const gapJoinPenalty = 1

// Params bundles the clusterer's tunables, named after their CLI flags
// per spec.md section 6.
type Params struct {
	MaxGap     int     // -g/--maxgap
	DiagDiff   int     // -D/--diagdiff
	DiagFactor float64 // -d/--diagfactor
	MinMatch   int     // -l/--minmatch; bounds the allowed negative overlap (the "L" in section 4.4's admissibility rule 2/3)
	MinCluster int     // -c/--mincluster
	NoSimplify bool    // -nosimplify: skip shadow removal
}

// Cluster is a colinear chain of matches, in ascending query_pos order.
type Cluster struct {
	Matches []match.Match
	Score   int
	Length  int // sum of the chain's match lengths
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// admissible implements spec.md section 4.4's four admissibility rules
// for joining b after a in a chain.
func admissible(a, b match.Match, p Params) bool {
	if a.Strand != b.Strand {
		return false
	}
	gq := b.QueryPos - (a.QueryPos + a.Length)
	gr := b.RefPos - (a.RefPos + a.Length)
	if gq < -p.MinMatch || gq > p.MaxGap {
		return false
	}
	if gr < -p.MinMatch || gr > p.MaxGap {
		return false
	}
	drift := abs(b.Diagonal() - a.Diagonal())
	bound := float64(p.DiagDiff)
	if fb := p.DiagFactor * float64(maxInt(abs(gq), abs(gr))); fb > bound {
		bound = fb
	}
	return float64(drift) <= bound
}

func joinPenalty(a, b match.Match) int {
	return abs(b.Diagonal()-a.Diagonal()) + gapJoinPenalty
}

// Build chains matches into clusters. matches need not be pre-sorted;
// Build establishes the query_pos-then-ref_pos order itself before
// chaining, per spec.md section 4.4's "ordered by query_pos".
func Build(matches []match.Match, p Params) []Cluster {
	n := len(matches)
	if n == 0 {
		return nil
	}
	sorted := make([]match.Match, n)
	copy(sorted, matches)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].QueryPos != sorted[j].QueryPos {
			return sorted[i].QueryPos < sorted[j].QueryPos
		}
		return sorted[i].RefPos < sorted[j].RefPos
	})

	bestScore := make([]int, n)
	bestLen := make([]int, n)
	pred := make([]int, n)
	for i := range sorted {
		pred[i] = -1
		bestScore[i] = sorted[i].Length
		bestLen[i] = sorted[i].Length
		for j := 0; j < i; j++ {
			if !admissible(sorted[j], sorted[i], p) {
				continue
			}
			cand := bestScore[j] + sorted[i].Length - joinPenalty(sorted[j], sorted[i])
			take := false
			switch {
			case cand > bestScore[i]:
				take = true
			case cand == bestScore[i] && pred[i] != -1:
				// Deterministic tie-break: smaller query_pos then smaller
				// ref_pos of the predecessor, per spec.md section 4.4.
				cur := sorted[pred[i]]
				if sorted[j].QueryPos < cur.QueryPos ||
					(sorted[j].QueryPos == cur.QueryPos && sorted[j].RefPos < cur.RefPos) {
					take = true
				}
			}
			if take {
				bestScore[i] = cand
				bestLen[i] = bestLen[j] + sorted[i].Length
				pred[i] = j
			}
		}
	}

	// A chain's endpoint is any match that is not itself the predecessor
	// of a longer chain: spec.md section 4.4's "trace back maximal
	// chains".
	isPred := make([]bool, n)
	for _, pj := range pred {
		if pj != -1 {
			isPred[pj] = true
		}
	}

	type leaf struct {
		end   int
		score int
	}
	var leaves []leaf
	for i := range sorted {
		if !isPred[i] {
			leaves = append(leaves, leaf{i, bestScore[i]})
		}
	}
	sort.SliceStable(leaves, func(i, j int) bool {
		if leaves[i].score != leaves[j].score {
			return leaves[i].score > leaves[j].score
		}
		return sorted[leaves[i].end].QueryPos < sorted[leaves[j].end].QueryPos
	})

	used := make([]bool, n)
	var clusters []Cluster
	for _, l := range leaves {
		var path []int
		overlap := false
		for cur := l.end; cur != -1; cur = pred[cur] {
			path = append(path, cur)
			if used[cur] {
				overlap = true
			}
		}
		if overlap && !p.NoSimplify {
			// Shadow removal: this chain shares a match with an
			// already-emitted, higher-scoring chain.
			continue
		}
		if bestLen[l.end] < p.MinCluster {
			continue
		}
		cl := Cluster{Score: l.score, Length: bestLen[l.end]}
		for i := len(path) - 1; i >= 0; i-- {
			idx := path[i]
			cl.Matches = append(cl.Matches, sorted[idx])
			if !p.NoSimplify {
				used[idx] = true
			}
		}
		clusters = append(clusters, cl)
	}

	sort.Slice(clusters, func(i, j int) bool {
		return clusters[i].Matches[0].QueryPos < clusters[j].Matches[0].QueryPos
	})
	return clusters
}
