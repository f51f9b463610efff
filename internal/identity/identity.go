// Package identity derives the content-addressed id every other part of the
// pipeline keys on: queue de-duplication by callers, staging directories and
// artifact names all hang off this value.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashLength is the number of hex characters kept from the SHA-256 digest.
const HashLength = 56

// Hash returns the job id for a raw audio payload: the hex SHA-256 digest of
// the bytes, truncated to HashLength characters. Same bytes always produce
// the same id. Payload size policy is enforced at the submission boundary,
// not here.
func Hash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])[:HashLength]
}
