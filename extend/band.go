package extend

import "math"

// negInf marks an unreached cell in the banded DP. Halved so that two
// negInf values can be added (e.g. during backpointer comparisons)
// without wrapping.
const negInf = math.MinInt32 / 2

// Default linear-gap, affine-on-open scoring, per spec.md section 4.5:
// "+1 match, -1 mismatch, -2 gap-open, -1 gap-extend". A gap's total
// cost is scoreGapOpen + scoreGapExtend*length (the open cost is paid
// once per gap, the extend cost once per gap base including the
// first).
const (
	scoreMatch     = 1
	scoreMismatch  = -1
	scoreGapOpen   = -2
	scoreGapExtend = -1
)

// stepKind is one column of a pairwise alignment path.
type stepKind byte

const (
	stepDiag  stepKind = iota // consumes one ref byte and one query byte (match or mismatch)
	stepRef                   // consumes one ref byte only: a gap character in the query
	stepQuery                 // consumes one query byte only: a gap character in the reference
)

// bandedAlign runs a banded Gotoh affine-gap alignment of ref against
// query and returns its score and step path from (0,0) to
// (len(ref), len(query)).
//
// Grounded on util/distance.go's matrix-of-cells Levenshtein DP,
// generalized from a single edit-distance matrix to Gotoh's
// three-matrix (match/gap-in-query/gap-in-reference) affine-gap
// formulation, and restricted to a band around the diagonal that
// linearly interpolates from 0 at row 0 to len(query)-len(ref) at the
// last row, per spec.md section 4.5's gap-closure band width.
func bandedAlign(ref, query []byte, half int) (int, []stepKind) {
	score, steps, ok := bandedAlignBand(ref, query, half)
	if ok {
		return score, steps
	}
	// The band was too narrow to connect (0,0) to the far corner (can
	// happen on a short, heavily-indelled gap); widen to the full
	// matrix rather than fail the alignment.
	full := len(ref)
	if len(query) > full {
		full = len(query)
	}
	score, steps, _ = bandedAlignBand(ref, query, full+1)
	return score, steps
}

func bandedAlignBand(ref, query []byte, half int) (int, []stepKind, bool) {
	r := len(ref)
	q := len(query)
	if half < 1 {
		half = 1
	}

	lowJ := make([]int, r+1)
	highJ := make([]int, r+1)
	for i := 0; i <= r; i++ {
		shift := q - r
		if r > 0 {
			shift = (q - r) * i / r
		}
		lo, hi := i+shift-half, i+shift+half
		if lo < 0 {
			lo = 0
		}
		if hi > q {
			hi = q
		}
		lowJ[i] = lo
		highJ[i] = hi
	}
	lowJ[0] = 0
	highJ[r] = q

	width := q + 1
	size := (r + 1) * width
	M := make([]int, size)
	Ix := make([]int, size)
	Iy := make([]int, size)
	for i := range M {
		M[i], Ix[i], Iy[i] = negInf, negInf, negInf
	}
	bM := make([]byte, size)
	bIx := make([]byte, size)
	bIy := make([]byte, size)

	idx := func(i, j int) int { return i*width + j }
	inBand := func(i, j int) bool {
		if i < 0 || i > r {
			return false
		}
		return j >= lowJ[i] && j <= highJ[i]
	}

	M[idx(0, 0)] = 0
	for i := 0; i <= r; i++ {
		for j := lowJ[i]; j <= highJ[i]; j++ {
			if i == 0 && j == 0 {
				continue
			}
			cell := idx(i, j)

			if i > 0 && inBand(i-1, j) {
				prev := idx(i-1, j)
				openScore := M[prev] + scoreGapOpen + scoreGapExtend
				extScore := Ix[prev] + scoreGapExtend
				if openScore >= extScore {
					Ix[cell], bIx[cell] = openScore, 0
				} else {
					Ix[cell], bIx[cell] = extScore, 1
				}
			}
			if j > 0 && inBand(i, j-1) {
				prev := idx(i, j-1)
				openScore := M[prev] + scoreGapOpen + scoreGapExtend
				extScore := Iy[prev] + scoreGapExtend
				if openScore >= extScore {
					Iy[cell], bIy[cell] = openScore, 0
				} else {
					Iy[cell], bIy[cell] = extScore, 1
				}
			}
			if i > 0 && j > 0 && inBand(i-1, j-1) {
				prev := idx(i-1, j-1)
				s := scoreMismatch
				if ref[i-1] == query[j-1] {
					s = scoreMatch
				}
				best, from := M[prev], byte(0)
				if Ix[prev] > best {
					best, from = Ix[prev], 1
				}
				if Iy[prev] > best {
					best, from = Iy[prev], 2
				}
				if best > negInf/2 {
					M[cell], bM[cell] = best+s, from
				}
			}
		}
	}

	end := idx(r, q)
	best, state := M[end], 0
	if Ix[end] > best {
		best, state = Ix[end], 1
	}
	if Iy[end] > best {
		best, state = Iy[end], 2
	}
	if best <= negInf/2 {
		return 0, nil, false
	}

	var steps []stepKind
	i, j := r, q
	for i > 0 || j > 0 {
		switch state {
		case 0:
			steps = append(steps, stepDiag)
			from := bM[idx(i, j)]
			i, j, state = i-1, j-1, int(from)
		case 1:
			steps = append(steps, stepRef)
			from := bIx[idx(i, j)]
			i--
			state = 0
			if from == 1 {
				state = 1
			}
		case 2:
			steps = append(steps, stepQuery)
			from := bIy[idx(i, j)]
			j--
			state = 0
			if from == 1 {
				state = 2
			}
		}
	}
	for a, b := 0, len(steps)-1; a < b; a, b = a+1, b-1 {
		steps[a], steps[b] = steps[b], steps[a]
	}
	return best, steps, true
}
