// +build linux darwin

package seq

import (
	"os"

	"github.com/cladebio/nucmatch/nucerr"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// mmapFile memory-maps path read-only and returns its bytes without
// copying them into the Go heap. This realizes spec.md section 5's memory
// discipline note ("Sampling rate k is the primary memory knob") for the
// -large CLI option: rather than reading an entire multi-gigabyte
// reference FASTA into RAM before concatenation, LoadLarge maps
// it and lets the kernel page it in on demand.
//
// The returned closer must be called once the mapping is no longer needed.
func mmapFile(path string) (data []byte, closer func() error, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nucerr.E(nucerr.Io, path, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, nucerr.E(nucerr.Io, path, err)
	}
	if st.Size() == 0 {
		f.Close()
		return nil, nil, nucerr.E(nucerr.InputFormat, path, errors.New("empty input file"))
	}
	data, err = unix.Mmap(int(f.Fd()), 0, int(st.Size()), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		f.Close()
		return nil, nil, nucerr.E(nucerr.Io, path, errors.Wrap(err, "mmap"))
	}
	closer = func() error {
		if err := unix.Munmap(data); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	return data, closer, nil
}
