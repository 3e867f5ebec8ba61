package match

import (
	"sort"

	"github.com/cladebio/nucmatch/nucerr"
	"github.com/cladebio/nucmatch/seq"
	"github.com/cladebio/nucmatch/ssa"
)

// Finder queries a reference's sparse suffix array to produce maximal
// matches against one query view at a time, per spec.md section 4.3.
//
// A Finder is not safe for concurrent use: it caches the on-the-fly query
// SSA built for MUM's query-uniqueness check across calls to Find for the
// same query bytes. Per spec.md section 5, each pipeline task owns its own
// match buffer and scratch space, so each worker constructs its own Finder
// over the shared, read-only Ref/Index rather than sharing one.
type Finder struct {
	Ref    []byte
	Index  *ssa.SSA
	Policy Policy

	cachedQuery    *ssa.SSA
	cachedQueryBuf []byte
	cachedQueryKey []byte // identity key: same backing array as the last query passed to Find.
}

// NewFinder builds a Finder over an already-constructed reference index.
func NewFinder(ref []byte, index *ssa.SSA, policy Policy) *Finder {
	return &Finder{Ref: ref, Index: index, Policy: policy}
}

// Find returns every maximal match of length >= minMatch between f.Ref and
// query, on the given strand, satisfying f.Policy's uniqueness predicate.
//
// minMatch must be >= f.Index.K (spec.md section 4.3's "Requirement: L >=
// k so that any match of length >= L contains at least one sampled
// position"); Find fails with a Usage error otherwise, since this is a
// CLI-parse-time invariant per design note section 9 ("enforce it at CLI
// parse time") that Find re-checks defensively.
func (f *Finder) Find(query []byte, strand seq.Strand, minMatch int) ([]Match, error) {
	if minMatch < f.Index.K {
		return nil, nucerr.Usagef("minmatch %d must be >= sampling rate k=%d", minMatch, f.Index.K)
	}
	m := len(query)
	if m < minMatch {
		return nil, nil
	}

	// seen dedupes maximal matches rediscovered from more than one sampled
	// anchor: since f.Index.Locate only returns sampled (multiple-of-k)
	// positions, several seeds can land inside the same true match and
	// each extends (left and right) to the identical (actualR, actualJ,
	// length) candidate.
	type key struct{ refPos, queryPos int }
	seen := map[key]bool{}

	var out []Match
	for j := 0; j+minMatch <= m; j++ {
		seed := query[j : j+minMatch]
		lo, hi := f.Index.Locate(f.Ref, seed)
		for i := lo; i < hi; i++ {
			r := int(f.Index.Positions[i])

			// Extend left from the sampled anchor to the match's true
			// start (spec.md section 4.3: "extend left and right ...
			// until a mismatch or a sequence boundary"). The anchor
			// itself need not be the left edge of the maximal match.
			left := 0
			for r-left-1 >= 0 && j-left-1 >= 0 && f.Ref[r-left-1] == query[j-left-1] {
				left++
			}
			actualR, actualJ := r-left, j-left

			k := key{actualR, actualJ}
			if seen[k] {
				continue
			}
			seen[k] = true

			length := minMatch + left
			for actualR+length < len(f.Ref) && actualJ+length < m && f.Ref[actualR+length] == query[actualJ+length] {
				length++
			}

			cand := Match{RefPos: actualR, QueryPos: actualJ, Length: length, Strand: strand}
			ok, err := f.satisfiesPolicy(cand, query)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, cand)
			}
		}
	}

	sort.Stable(byQueryThenRef(out))
	return out, nil
}

// satisfiesPolicy applies f.Policy's uniqueness predicate to a maximal
// match candidate.
func (f *Finder) satisfiesPolicy(cand Match, query []byte) (bool, error) {
	if f.Policy == MEM {
		return true, nil
	}
	substr := f.Ref[cand.RefPos:cand.RefEnd()]
	lo, hi := f.Index.Locate(f.Ref, substr)
	if hi-lo != 1 {
		return false, nil // not unique in the reference: fails MAM and MUM alike.
	}
	if f.Policy == MAM {
		return true, nil
	}
	// MUM: also require uniqueness in the query. Per spec.md section
	// 4.3, this is "implemented by a second lookup in an on-the-fly SSA
	// over Q" -- built lazily and cached per Finder, since many
	// candidates from the same query share the lookup.
	qssa, qbuf, err := f.querySSA(query)
	if err != nil {
		return false, err
	}
	qlo, qhi := qssa.Locate(qbuf, query[cand.QueryPos:cand.QueryEnd()])
	return qhi-qlo == 1, nil
}

// querySSA lazily builds (and caches) an unsampled suffix array over
// query, used only by the MUM query-uniqueness check above.
func (f *Finder) querySSA(query []byte) (*ssa.SSA, []byte, error) {
	if f.cachedQuery != nil && len(f.cachedQueryKey) > 0 && len(query) > 0 &&
		&f.cachedQueryKey[0] == &query[0] {
		return f.cachedQuery, f.cachedQueryBuf, nil
	}
	buf := make([]byte, len(query)+1) // +1 for the terminator.
	copy(buf, query)
	// buf's last byte is already the zero value, which serves as a
	// terminator strictly smaller than every base, mirroring the
	// reference's concatenation convention (seq.TerminatorByte).
	built, err := ssa.Build(buf, 1)
	if err != nil {
		return nil, nil, err
	}
	f.cachedQuery = built
	f.cachedQueryBuf = buf
	f.cachedQueryKey = query
	return built, buf, nil
}
