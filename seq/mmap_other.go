// +build !linux,!darwin

package seq

import (
	"io/ioutil"

	"github.com/cladebio/nucmatch/nucerr"
)

// mmapFile falls back to an ordinary full read on platforms without a
// unix-style mmap syscall. -large callers still get correct (if less
// memory-efficient) behavior.
func mmapFile(path string) (data []byte, closer func() error, err error) {
	data, err = ioutil.ReadFile(path)
	if err != nil {
		return nil, nil, nucerr.E(nucerr.Io, path, err)
	}
	return data, func() error { return nil }, nil
}
