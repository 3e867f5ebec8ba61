package ssa

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/cladebio/nucmatch/nucerr"
	"github.com/pkg/errors"
)

// magic identifies the on-disk SSA format, per spec.md section 6.
var magic = [8]byte{'H', 'L', 'X', 'S', 'S', 'A', '0', '1'}

// header is the fixed-size prefix of the persisted layout, read and
// written with encoding/binary.LittleEndian field by field -- the same
// idiom encoding/bam/index.go uses for the BAI index -- rather than
// reaching for a serialization library: the layout is a flat sequence of
// fixed-width integers and spec.md section 6 pins the exact byte layout,
// which encoding/binary expresses directly.
type header struct {
	K        uint32
	N        uint64
	Sentinel byte
	_        [3]byte // padding
	Digest   [32]byte
}

// Save writes s to w in the layout spec.md section 6 defines. large
// selects whether Positions are stored as u64 (true) or u32 (false); per
// spec.md section 5, large should be set whenever N may exceed 2^31, and
// is otherwise the CLI's -large flag.
func (s *SSA) Save(w io.Writer, large bool, sentinel byte, digest [32]byte) error {
	if !large && s.N >= 1<<31 {
		return nucerr.Internalf("reference length %d requires -large (32-bit positions would overflow)", s.N)
	}
	if _, err := w.Write(magic[:]); err != nil {
		return nucerr.E(nucerr.Io, "", err)
	}
	h := header{K: uint32(s.K), N: uint64(s.N), Sentinel: sentinel, Digest: digest}
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return nucerr.E(nucerr.Io, "", err)
	}
	for _, p := range s.Positions {
		if large {
			if err := binary.Write(w, binary.LittleEndian, uint64(p)); err != nil {
				return nucerr.E(nucerr.Io, "", err)
			}
		} else {
			if err := binary.Write(w, binary.LittleEndian, uint32(p)); err != nil {
				return nucerr.E(nucerr.Io, "", err)
			}
		}
	}
	for _, l := range s.LCP {
		if err := binary.Write(w, binary.LittleEndian, uint32(l)); err != nil {
			return nucerr.E(nucerr.Io, "", err)
		}
	}
	return nil
}

// Load reads an SSA previously written by Save. It fails with
// IndexMismatch when the stored k, sentinel, or digest differ from the
// caller's expectation, per spec.md section 4.2.
func Load(r io.Reader, large bool, wantK int, wantSentinel byte, wantDigest [32]byte) (*SSA, error) {
	var gotMagic [8]byte
	if _, err := io.ReadFull(r, gotMagic[:]); err != nil {
		return nil, nucerr.E(nucerr.Io, "", err)
	}
	if gotMagic != magic {
		return nil, nucerr.E(nucerr.IndexMismatch, "", errors.New("bad magic in persisted SSA"))
	}
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, nucerr.E(nucerr.Io, "", err)
	}
	if int(h.K) != wantK {
		return nil, nucerr.E(nucerr.IndexMismatch, "", errors.Errorf("stored k=%d, want %d", h.K, wantK))
	}
	if h.Sentinel != wantSentinel {
		return nil, nucerr.E(nucerr.IndexMismatch, "", errors.Errorf("stored sentinel=%d, want %d", h.Sentinel, wantSentinel))
	}
	if !bytes.Equal(h.Digest[:], wantDigest[:]) {
		return nil, nucerr.E(nucerr.IndexMismatch, "", errors.New("stored reference digest does not match input reference"))
	}

	count := (int(h.N) + int(h.K) - 1) / int(h.K)
	positions := make([]int64, count)
	for i := 0; i < count; i++ {
		if large {
			var v uint64
			if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
				return nil, nucerr.E(nucerr.Io, "", err)
			}
			positions[i] = int64(v)
		} else {
			var v uint32
			if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
				return nil, nucerr.E(nucerr.Io, "", err)
			}
			positions[i] = int64(v)
		}
	}
	lcp := make([]int32, count)
	for i := 0; i < count; i++ {
		var v uint32
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return nil, nucerr.E(nucerr.Io, "", err)
		}
		lcp[i] = int32(v)
	}

	return &SSA{K: int(h.K), N: int(h.N), Positions: positions, LCP: lcp}, nil
}
