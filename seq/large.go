package seq

import "bytes"

// LoadLarge parses a FASTA file the same way Load does, but backs the read
// with a memory-mapped view of path (see mmap_unix.go / mmap_other.go)
// instead of slurping the whole file through a buffered reader. The CLI
// uses it for both the reference and the query whenever -large is set.
//
// LoadLarge releases the mapping itself before returning: the parsed
// Sequences share no memory with it, since Load always copies and
// normalizes into fresh slices.
func LoadLarge(path string) (seqs []Sequence, err error) {
	data, closer, err := mmapFile(path)
	if err != nil {
		return nil, err
	}
	defer closer()
	return Load(bytes.NewReader(data))
}
