package format

import (
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"

	"github.com/cladebio/nucmatch/nucerr"
	"github.com/cladebio/nucmatch/ssa"
)

// Codec selects the compressor SaveIndex/LoadIndex wrap the persisted
// SSA in, per spec.md section 6's -large option.
type Codec int

const (
	// CodecNone persists s uncompressed, via ssa.Save directly.
	CodecNone Codec = iota
	// CodecGzip favors a smaller file over faster (de)compression.
	CodecGzip
	// CodecSnappy favors faster (de)compression over a smaller file,
	// for -large references where load latency dominates.
	CodecSnappy
)

// SaveIndex persists s to w under the chosen codec.
func SaveIndex(w io.Writer, s *ssa.SSA, codec Codec, sentinel byte, digest [32]byte) error {
	large := codec != CodecNone
	switch codec {
	case CodecNone:
		return s.Save(w, false, sentinel, digest)
	case CodecGzip:
		gw, err := gzip.NewWriterLevel(w, gzip.BestSpeed)
		if err != nil {
			return nucerr.Internalf("gzip writer: %v", err)
		}
		if err := s.Save(gw, large, sentinel, digest); err != nil {
			return err
		}
		if err := gw.Close(); err != nil {
			return nucerr.E(nucerr.Io, "", err)
		}
		return nil
	case CodecSnappy:
		sw := snappy.NewBufferedWriter(w)
		if err := s.Save(sw, large, sentinel, digest); err != nil {
			return err
		}
		if err := sw.Close(); err != nil {
			return nucerr.E(nucerr.Io, "", err)
		}
		return nil
	default:
		return nucerr.Internalf("unknown index codec %d", codec)
	}
}

// LoadIndex loads an SSA persisted by SaveIndex under the same codec.
func LoadIndex(r io.Reader, codec Codec, wantK int, wantSentinel byte, wantDigest [32]byte) (*ssa.SSA, error) {
	large := codec != CodecNone
	switch codec {
	case CodecNone:
		return ssa.Load(r, false, wantK, wantSentinel, wantDigest)
	case CodecGzip:
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nucerr.E(nucerr.Io, "", err)
		}
		defer gr.Close()
		return ssa.Load(gr, large, wantK, wantSentinel, wantDigest)
	case CodecSnappy:
		return ssa.Load(snappy.NewReader(r), large, wantK, wantSentinel, wantDigest)
	default:
		return nil, nucerr.Internalf("unknown index codec %d", codec)
	}
}
