package seq

import "github.com/minio/highwayhash"

// contentHashKey is a fixed 32-byte key for the content fingerprint below.
// It only needs to be stable within one nucmatch build -- the hash is never
// persisted across runs or versions -- so an arbitrary fixed key is fine.
var contentHashKey = [32]byte{
	0x6e, 0x75, 0x63, 0x6d, 0x61, 0x74, 0x63, 0x68,
	0x2d, 0x63, 0x6f, 0x6e, 0x74, 0x65, 0x6e, 0x74,
	0x2d, 0x68, 0x61, 0x73, 0x68, 0x2d, 0x6b, 0x65,
	0x79, 0x30, 0x31, 0x32, 0x33, 0x34, 0x35, 0x36,
}

// ContentHash returns a fast, non-cryptographic fingerprint of a
// sequence's normalized bases: byte-identical sequences hash identically.
// The pipeline driver (package pipeline) does not call it; every query
// sequence gets its own task, duplicates included. It never substitutes for the SHA-256 digest used in the persisted SSA's on-disk
// contract, which must be cryptographically stable across runs.
func ContentHash(s Sequence) uint64 {
	return highwayhash.Sum64(s.Bases, contentHashKey[:])
}
