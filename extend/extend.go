// Package extend promotes a cluster of colinear matches into a full
// pairwise alignment record: it closes the gaps between consecutive
// anchors with a banded affine-gap DP, extends the two tips outward
// through low-scoring flanking regions, and optionally trims the ends
// to the highest-scoring contiguous sub-alignment, per spec.md
// section 4.5.
package extend

import (
	"math"

	"github.com/cladebio/nucmatch/cluster"
	"github.com/cladebio/nucmatch/nucerr"
	"github.com/cladebio/nucmatch/seq"
)

// Params bundles the extender's tunables, named after their CLI flags
// per spec.md section 6.
type Params struct {
	BreakLen   int     // -b/--breaklen
	MinCluster int     // -c/--mincluster (not read by Extend; clusters are gated in package cluster)
	DiagDiff   int     // -D/--diagdiff
	DiagFactor float64 // -d/--diagfactor
	Banded     bool    // -banded: always use diagdiff as the band half-width
	MinAlign   int     // -L/--minalign
	NoOptimize bool    // -nooptimize: skip end-trim optimization
	NoExtend   bool    // -noextend: skip outward tip extension, keep only gap closure
}

// Alignment is a promoted cluster: a full pairwise alignment over a
// contiguous reference and query span.
type Alignment struct {
	RefStart, RefEnd     int
	QueryStart, QueryEnd int
	Strand               seq.Strand
	Score                int
	Matches              int
	AlignedLen           int
	DeltaOps             []int
}

// Identity returns the fraction of aligned columns that are exact
// matches.
func (a *Alignment) Identity() float64 {
	if a.AlignedLen == 0 {
		return 0
	}
	return float64(a.Matches) / float64(a.AlignedLen)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func bandWidth(gr, gq int, p Params) int {
	band := p.DiagDiff
	if !p.Banded {
		if fb := int(math.Ceil(p.DiagFactor * float64(maxInt(gr, gq)))); fb > band {
			band = fb
		}
	}
	if band < 1 {
		band = 1
	}
	return band
}

// Extend promotes c into an Alignment by closing its internal gaps,
// extending both tips, and (unless NoOptimize) trimming to the
// highest-scoring sub-alignment.
func Extend(ref, query []byte, c cluster.Cluster, p Params) (*Alignment, error) {
	if len(c.Matches) == 0 {
		return nil, nucerr.Internalf("cannot extend an empty cluster")
	}
	anchors := c.Matches
	strand := anchors[0].Strand

	var ops []stepKind
	refPos, queryPos := anchors[0].RefPos, anchors[0].QueryPos
	for idx, a := range anchors {
		if idx > 0 {
			gr := a.RefPos - refPos
			gq := a.QueryPos - queryPos
			// The clusterer's admissibility rule allows small negative
			// overlaps (spec.md section 4.4); clamp those to zero rather
			// than feed a negative-length region to the gap-closure DP.
			if gr < 0 {
				gr = 0
			}
			if gq < 0 {
				gq = 0
			}
			if gr > 0 || gq > 0 {
				band := bandWidth(gr, gq, p)
				_, gapOps := bandedAlign(ref[refPos:refPos+gr], query[queryPos:queryPos+gq], band)
				ops = append(ops, gapOps...)
			}
			refPos += gr
			queryPos += gq
		}
		for k := 0; k < a.Length; k++ {
			ops = append(ops, stepDiag)
		}
		refPos += a.Length
		queryPos += a.Length
	}

	refStart, queryStart := anchors[0].RefPos, anchors[0].QueryPos
	refEnd, queryEnd := refPos, queryPos

	full := ops
	noOptimize := p.NoOptimize
	if !p.NoExtend {
		leftTrim, leftSteps := extendTip(ref, query, refStart, queryStart, -1, p.BreakLen)
		rightTrim, rightSteps := extendTip(ref, query, refEnd, queryEnd, +1, p.BreakLen)
		refStart -= leftTrim
		queryStart -= leftTrim
		queryEnd += rightTrim

		full = make([]stepKind, 0, len(leftSteps)+len(ops)+len(rightSteps))
		full = append(full, leftSteps...)
		full = append(full, ops...)
		full = append(full, rightSteps...)
	} else {
		// -noextend: the cluster's own bounds are the alignment's bounds;
		// only the gap-closure DP between anchors runs, never the outward
		// tip extension, and the end-trim optimizer has nothing of its own
		// to trim.
		noOptimize = true
	}

	refStart, queryStart, full = trim(ref, query, refStart, queryStart, full, noOptimize)

	alignment := &Alignment{RefStart: refStart, QueryStart: queryStart, Strand: strand}
	replay(ref, query, refStart, queryStart, full, alignment)
	if alignment.AlignedLen < p.MinAlign {
		return nil, nil
	}
	return alignment, nil
}

// extendTip walks outward from (refPos, queryPos) one base at a time
// (dir=-1 leftward, dir=+1 rightward), tracking the running score and
// rewinding to the best-seen offset once the score has dropped more
// than breakLen below its running maximum, per spec.md section 4.5's
// "tip extension" step. It does not open gaps: the flank beyond a
// cluster's last anchor is treated as ungapped, matching nucmer's own
// treatment of alignment tips.
func extendTip(ref, query []byte, refPos, queryPos, dir, breakLen int) (int, []stepKind) {
	if breakLen <= 0 {
		return 0, nil
	}
	best, bestOffset, score, offset := 0, 0, 0, 0
	var steps []stepKind
	for {
		var rp, qp int
		if dir > 0 {
			rp, qp = refPos+offset, queryPos+offset
			if rp >= len(ref) || qp >= len(query) {
				break
			}
		} else {
			rp, qp = refPos-offset-1, queryPos-offset-1
			if rp < 0 || qp < 0 {
				break
			}
		}
		if ref[rp] == query[qp] {
			score += scoreMatch
		} else {
			score += scoreMismatch
		}
		offset++
		steps = append(steps, stepDiag)
		if score > best {
			best, bestOffset = score, offset
		}
		if best-score > breakLen {
			break
		}
	}
	steps = steps[:bestOffset]
	if dir < 0 {
		for a, b := 0, len(steps)-1; a < b; a, b = a+1, b-1 {
			steps[a], steps[b] = steps[b], steps[a]
		}
	}
	return bestOffset, steps
}

// trim finds the highest-scoring contiguous run of ops (a Kadane
// maximum-subarray scan over each op's score contribution) and
// discards anything outside it, per spec.md section 4.5's end-trim
// optimization. Disabled by NoOptimize.
func trim(ref, query []byte, refStart, queryStart int, ops []stepKind, noOptimize bool) (int, int, []stepKind) {
	if noOptimize || len(ops) == 0 {
		return refStart, queryStart, ops
	}
	scores := make([]int, len(ops))
	rp, qp := refStart, queryStart
	// prev tracks the previous op so a gap run is charged scoreGapOpen
	// only on its first base and scoreGapExtend on every base including
	// that first one (band.go's own accounting, band.go:114,124).
	prev := stepDiag
	for i, op := range ops {
		switch op {
		case stepDiag:
			if ref[rp] == query[qp] {
				scores[i] = scoreMatch
			} else {
				scores[i] = scoreMismatch
			}
			rp++
			qp++
		case stepRef:
			if prev == stepRef {
				scores[i] = scoreGapExtend
			} else {
				scores[i] = scoreGapOpen + scoreGapExtend
			}
			rp++
		case stepQuery:
			if prev == stepQuery {
				scores[i] = scoreGapExtend
			} else {
				scores[i] = scoreGapOpen + scoreGapExtend
			}
			qp++
		}
		prev = op
	}

	bestStart, bestEnd, bestSum := 0, 0, math.MinInt32
	curStart, curSum := 0, 0
	for i, s := range scores {
		if curSum <= 0 {
			curStart, curSum = i, s
		} else {
			curSum += s
		}
		if curSum > bestSum {
			bestSum, bestStart, bestEnd = curSum, curStart, i+1
		}
	}

	newRefStart, newQueryStart := refStart, queryStart
	for i := 0; i < bestStart; i++ {
		switch ops[i] {
		case stepDiag:
			newRefStart++
			newQueryStart++
		case stepRef:
			newRefStart++
		case stepQuery:
			newQueryStart++
		}
	}
	return newRefStart, newQueryStart, ops[bestStart:bestEnd]
}

// replay walks ops from (refStart, queryStart) to fill in alignment's
// Score, Matches, AlignedLen, RefEnd, QueryEnd, and DeltaOps.
func replay(ref, query []byte, refStart, queryStart int, ops []stepKind, a *Alignment) {
	rp, qp := refStart, queryStart
	score, matches, alignedLen := 0, 0, 0
	var delta []int
	sinceLastIndel := 0
	// prev tracks the previous op so a gap run is charged scoreGapOpen
	// only on its first base and scoreGapExtend on every base including
	// that first one, matching the DP's own accounting (band.go:114,124).
	prev := stepDiag
	for _, op := range ops {
		alignedLen++
		switch op {
		case stepDiag:
			if ref[rp] == query[qp] {
				score += scoreMatch
				matches++
			} else {
				score += scoreMismatch
			}
			rp++
			qp++
			sinceLastIndel++
		case stepRef:
			// A ref base with no corresponding query base: a gap
			// character in the query row, per nucmer's delta convention
			// (positive entries).
			if prev == stepRef {
				score += scoreGapExtend
			} else {
				score += scoreGapOpen + scoreGapExtend
			}
			rp++
			delta = append(delta, sinceLastIndel+1)
			sinceLastIndel = 0
		case stepQuery:
			// A query base with no corresponding ref base: a gap
			// character in the reference row (negative entries).
			if prev == stepQuery {
				score += scoreGapExtend
			} else {
				score += scoreGapOpen + scoreGapExtend
			}
			qp++
			delta = append(delta, -(sinceLastIndel + 1))
			sinceLastIndel = 0
		}
		prev = op
	}
	delta = append(delta, 0)

	a.RefEnd = rp
	a.QueryEnd = qp
	a.Score = score
	a.Matches = matches
	a.AlignedLen = alignedLen
	a.DeltaOps = delta
}
