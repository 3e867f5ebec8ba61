// Package match implements the three maximal-match finders (MUM/MAM/MEM)
// that query a sparse suffix array, per spec.md sections 3 and 4.3.
package match

import "github.com/cladebio/nucmatch/seq"

// Policy selects which uniqueness predicate a Match must satisfy to be
// emitted, per spec.md section 4.3 and the GLOSSARY.
type Policy int

const (
	// MEM emits every maximal match, with no uniqueness requirement.
	MEM Policy = iota
	// MAM emits only matches whose reference occurrence is unique.
	MAM
	// MUM is MAM plus uniqueness in the query.
	MUM
)

func (p Policy) String() string {
	switch p {
	case MAM:
		return "MAM"
	case MUM:
		return "MUM"
	default:
		return "MEM"
	}
}

// Match is one maximal match between a reference position and a
// (possibly reverse-complemented) query position, per spec.md section 3.
type Match struct {
	RefPos   int
	QueryPos int
	Length   int
	Strand   seq.Strand
}

// RefEnd returns the half-open end of the match's reference span.
func (m Match) RefEnd() int { return m.RefPos + m.Length }

// QueryEnd returns the half-open end of the match's query span.
func (m Match) QueryEnd() int { return m.QueryPos + m.Length }

// Diagonal returns ref_pos - query_pos on the forward strand and
// ref_pos + query_pos on the reverse strand, per spec.md section 4.4 and
// the GLOSSARY's definition of diagonal. Matches on the same diagonal are
// perfectly colinear.
func (m Match) Diagonal() int {
	if m.Strand == seq.Reverse {
		return m.RefPos + m.QueryPos
	}
	return m.RefPos - m.QueryPos
}

// byQueryThenRef implements spec.md section 4.3's output ordering:
// "sorted by (query_pos ascending, ref_pos ascending). Ties resolved by
// length descending."
type byQueryThenRef []Match

func (s byQueryThenRef) Len() int      { return len(s) }
func (s byQueryThenRef) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s byQueryThenRef) Less(i, j int) bool {
	a, b := s[i], s[j]
	if a.QueryPos != b.QueryPos {
		return a.QueryPos < b.QueryPos
	}
	if a.RefPos != b.RefPos {
		return a.RefPos < b.RefPos
	}
	return a.Length > b.Length
}
