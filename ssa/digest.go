package ssa

import "crypto/sha256"

// Digest returns the SHA-256 digest of ref, used both as the persisted
// index's on-disk identity check (spec.md section 6) and as the
// IndexMismatch comparison key in Load.
func Digest(ref []byte) [32]byte {
	return sha256.Sum256(ref)
}
