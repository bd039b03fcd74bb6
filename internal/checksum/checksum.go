// Package checksum provides the SHA-256 fingerprints used for profiles and trigger files.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Size is the length of a hex-encoded digest returned by Sum.
const Size = sha256.Size * 2

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Short returns the first n characters of sum for display.
// If sum is shorter than n it is returned unchanged.
func Short(sum string, n int) string {
	if n < 0 || len(sum) <= n {
		return sum
	}
	return sum[:n]
}
