package similarity

import (
	"encoding/hex"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
)

// Fingerprint is an opaque 128-bit digest of a normalized line. Two
// lines that are equivalent under normalization produce identical
// fingerprints; unrelated lines colliding is a bounded-probability
// risk of the digest, not actively mitigated.
type Fingerprint [16]byte

// fingerprintOf digests a canonical string into a Fingerprint.
func fingerprintOf(canonical string) Fingerprint {
	sum := blake3.Sum256([]byte(canonical))
	var fp Fingerprint
	copy(fp[:], sum[:16])
	return fp
}

// Key64 projects the fingerprint to 64 bits for compressed-set
// storage. Collision probability stays negligible at realistic batch
// line volumes.
func (f Fingerprint) Key64() uint64 {
	return xxhash.Sum64(f[:])
}

func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}
