package seq

import (
	"bufio"
	"io"
	"strings"

	"github.com/cladebio/nucmatch/nucerr"
	"github.com/pkg/errors"
)

// bufferInitSize follows encoding/fasta/fasta.go's bufio.Scanner sizing
// idiom (a large initial buffer so individual sequence lines never
// overflow bufio.Scanner's default token size), scaled down from the
// teacher's 300MiB BAM-era constant since nucmatch references don't need
// quite that much headroom per line.
const bufferInitSize = 64 * 1024 * 1024

// Load parses a multi-FASTA file from r, returning one Sequence per record
// in file order. Header lines begin with '>'; any text after the first
// space is dropped from the sequence ID, matching
// encoding/fasta/fasta.go's convention ('>chr1 A viral sequence' becomes
// 'chr1'). Sequence lines may wrap across multiple physical lines.
//
// Load fails with nucerr.InputFormat if the file has no header before
// sequence data, or if any named sequence is empty.
func Load(r io.Reader) ([]Sequence, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, bufferInitSize)

	var out []Sequence
	var seqName string
	var buf strings.Builder
	haveHeader := false

	flush := func() error {
		if !haveHeader {
			return nil
		}
		if buf.Len() == 0 {
			return nucerr.E(nucerr.InputFormat, seqName, errors.New("empty FASTA sequence"))
		}
		bases := []byte(buf.String())
		NormalizeInplace(bases)
		out = append(out, Sequence{ID: seqName, Bases: bases})
		buf.Reset()
		return nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			if err := flush(); err != nil {
				return nil, err
			}
			seqName = strings.SplitN(line[1:], " ", 2)[0]
			if seqName == "" {
				return nil, nucerr.E(nucerr.InputFormat, "", errors.New("empty sequence name in FASTA header"))
			}
			haveHeader = true
			continue
		}
		if !haveHeader {
			return nil, nucerr.E(nucerr.InputFormat, "", errors.New("FASTA data before first header"))
		}
		buf.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, nucerr.E(nucerr.Io, "", errors.Wrap(err, "reading FASTA data"))
	}
	if err := flush(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nucerr.E(nucerr.InputFormat, "", errors.New("no sequences found in FASTA file"))
	}
	return out, nil
}
