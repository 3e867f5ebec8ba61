package seq

import (
	"sort"

	"github.com/cladebio/nucmatch/nucerr"
	"github.com/pkg/errors"
)

// SentinelByte separates consecutive records in the concatenated buffer.
// It is not in the {A,C,G,T,N} alphabet, per spec.md section 3.
const SentinelByte = 1

// TerminatorByte ends the concatenated buffer and must sort strictly below
// every base (spec.md section 3's "terminated by a sentinel strictly
// smaller than every base").
const TerminatorByte = 0

// idEntry records where one source Sequence landed in the concatenated
// buffer.
type idEntry struct {
	id     string
	start  int
	length int
}

// Reference is the concatenated byte buffer formed by joining a collection
// of Sequences with SentinelByte and terminating with TerminatorByte, plus
// the auxiliary ordered index that supports offset->(sequence,
// local_position) lookup in O(log S), per spec.md section 3.
type Reference struct {
	Bases   []byte
	entries []idEntry
}

// ConcatWithSentinels builds a Reference from seqs, in the order given.
// Fails with InputFormat if seqs is empty.
func ConcatWithSentinels(seqs []Sequence) (*Reference, error) {
	if len(seqs) == 0 {
		return nil, nucerr.E(nucerr.InputFormat, "", errors.New("no sequences to concatenate"))
	}
	total := 0
	for _, s := range seqs {
		total += s.Len() + 1 // + sentinel
	}
	total++ // terminator
	buf := make([]byte, 0, total)
	entries := make([]idEntry, 0, len(seqs))
	for _, s := range seqs {
		entries = append(entries, idEntry{id: s.ID, start: len(buf), length: s.Len()})
		buf = append(buf, s.Bases...)
		buf = append(buf, SentinelByte)
	}
	buf = append(buf, TerminatorByte)
	return &Reference{Bases: buf, entries: entries}, nil
}

// Len returns the length of the concatenated buffer, including sentinels
// and the terminator.
func (r *Reference) Len() int { return len(r.Bases) }

// NumSequences returns the number of source sequences joined into r.
func (r *Reference) NumSequences() int { return len(r.entries) }

// SeqID returns the identifier of the i'th source sequence, in load order.
func (r *Reference) SeqID(i int) string { return r.entries[i].id }

// SeqRange returns the [start, start+length) half-open range the i'th
// source sequence occupies within r.Bases (sentinel excluded).
func (r *Reference) SeqRange(i int) (start, length int) {
	e := r.entries[i]
	return e.start, e.length
}

// Locate maps a byte offset in r.Bases back to (sequence index, local
// position) in O(log S), where S is the sequence count, via binary search
// over the sorted entry start offsets -- spec.md section 3's
// "offset->(sequence_id, local_position) lookup" primitive.
//
// Locate fails with an Internal error if offset lands on a sentinel or
// terminator byte, or past the end of the buffer.
func (r *Reference) Locate(offset int) (seqIndex, localPos int, err error) {
	if offset < 0 || offset >= len(r.Bases) {
		return 0, 0, nucerr.Internalf("offset %d out of range [0, %d)", offset, len(r.Bases))
	}
	// sort.Search finds the first entry whose start is > offset; the
	// containing entry is the one just before it.
	i := sort.Search(len(r.entries), func(i int) bool {
		return r.entries[i].start > offset
	})
	if i == 0 {
		return 0, 0, nucerr.Internalf("offset %d precedes first sequence", offset)
	}
	e := r.entries[i-1]
	local := offset - e.start
	if local >= e.length {
		return 0, 0, nucerr.Internalf("offset %d falls on a sentinel/terminator byte", offset)
	}
	return i - 1, local, nil
}
