package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashKey maps a namespace such as a workspace ID to a fixed-length directory name.
// Object keys never expose raw IDs.
func HashKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
