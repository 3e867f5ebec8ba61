// Package seq implements the sequence store: parsing, in-memory
// representation, and sentinel-joined concatenation of the reference and
// query FASTA collections that the rest of nucmatch operates on.
//
// Bases are held as their upper-cased byte values restricted to {A,C,G,T,N};
// any other input byte (including IUPAC ambiguity codes) is normalized to N
// at load time, per spec.md section 6.
package seq

import "github.com/cladebio/nucmatch/nucerr"

// Strand identifies which orientation of a query sequence a match or
// alignment was found on.
type Strand byte

const (
	Forward Strand = '+'
	Reverse Strand = '-'
)

func (s Strand) String() string { return string(s) }

// normalize maps every possible input byte to its canonical base, following
// the "alphabet normalised to {A,C,G,T,N}" rule in spec.md section 6: bases
// are upper-cased, and anything other than A/C/G/T (including IUPAC
// ambiguity codes like R, Y, S, W, K, M, B, D, H, V) becomes N.
//
// Built once as a 256-entry lookup table in the style of biosimd's nibble
// lookup tables, rather than a switch evaluated per base.
var normalize [256]byte

func init() {
	for i := range normalize {
		normalize[i] = 'N'
	}
	normalize['A'], normalize['a'] = 'A', 'A'
	normalize['C'], normalize['c'] = 'C', 'C'
	normalize['G'], normalize['g'] = 'G', 'G'
	normalize['T'], normalize['t'] = 'T', 'T'
	normalize['N'], normalize['n'] = 'N', 'N'
}

// NormalizeInplace rewrites b in place through the normalize table.
func NormalizeInplace(b []byte) {
	for i, c := range b {
		b[i] = normalize[c]
	}
}

// complement maps a normalized base to its Watson-Crick complement:
// A<->T, C<->G, N->N. Any byte outside {A,C,G,T,N} reaching this table is an
// Internal invariant violation -- normalize above should have already
// mapped it to N.
var complement [256]byte

func init() {
	complement['A'] = 'T'
	complement['T'] = 'A'
	complement['C'] = 'G'
	complement['G'] = 'C'
	complement['N'] = 'N'
}

// Complement returns the complement of a single normalized base, failing
// with InvalidAlphabet if b was never normalized.
func Complement(b byte) (byte, error) {
	switch b {
	case 'A', 'C', 'G', 'T', 'N':
		return complement[b], nil
	default:
		return 0, nucerr.E(nucerr.InvalidAlphabet, "", errUnexpectedByte(b))
	}
}

type errUnexpectedByte byte

func (e errUnexpectedByte) Error() string {
	return "unexpected byte after normalization: " + string([]byte{byte(e)})
}

// Sequence is one named DNA sequence, held as normalized upper-case bytes.
type Sequence struct {
	ID    string
	Bases []byte
}

// Len returns the sequence length in bases.
func (s Sequence) Len() int { return len(s.Bases) }

// At returns the base at i on the forward strand.
func (s Sequence) At(i int) byte { return s.Bases[i] }

// View exposes a (possibly reverse-complemented) read-only window over a
// Sequence without copying the underlying bytes for the forward case. The
// match finder itself does not take a View: match.Finder.Find takes the
// query bytes and a strand tag as separate arguments.
type View struct {
	seq    *Sequence
	strand Strand
}

// NewView wraps seq for iteration on the given strand.
func NewView(s *Sequence, strand Strand) View {
	return View{seq: s, strand: strand}
}

// Len returns the view's length, identical on either strand.
func (v View) Len() int { return v.seq.Len() }

// Strand reports which orientation this view represents.
func (v View) Strand() Strand { return v.strand }

// At returns the base at offset i of the view: on Forward this is
// seq.Bases[i]; on Reverse it is complement(seq.Bases[length-1-i]), per
// spec.md section 3's reverse-complement definition. The reverse view is
// virtual -- no bytes are materialized -- except where ReverseComplement
// below is called explicitly to build a standalone Sequence.
func (v View) At(i int) byte {
	if v.strand == Forward {
		return v.seq.Bases[i]
	}
	n := v.seq.Len()
	return complement[v.seq.Bases[n-1-i]]
}

// Bytes materializes the view's bases into a fresh slice, for callers that
// need a contiguous buffer rather than per-base indexing.
func (v View) Bytes() []byte {
	out := make([]byte, v.Len())
	for i := range out {
		out[i] = v.At(i)
	}
	return out
}

// ReverseComplement materializes the reverse-complement of s as a standalone
// Sequence. The pipeline driver calls it once per query whenever the
// reverse strand is searched, and does not use View.
func ReverseComplement(s Sequence) Sequence {
	out := make([]byte, s.Len())
	n := s.Len()
	for i := 0; i < n; i++ {
		out[i] = complement[s.Bases[n-1-i]]
	}
	return Sequence{ID: s.ID, Bases: out}
}
