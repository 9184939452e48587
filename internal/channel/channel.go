// Package channel derives the identifier that links a playlist entry to its
// guide channel and programme records.
package channel

import (
	"crypto/sha256"
	"math/big"

	"github.com/alorle/stream-bridge/internal/catalog"
)

// identifierSpace bounds identifiers to ten decimal digits.
var identifierSpace = big.NewInt(10_000_000_000)

// Identifier hashes "{name}_{start}" with SHA-256, reads the digest as an
// unsigned big-endian integer and returns it modulo 10^10 in decimal.
// Distinct inputs may collide; the identifier space makes that rare.
func Identifier(name, start string) string {
	sum := sha256.Sum256([]byte(name + "_" + start))
	n := new(big.Int).SetBytes(sum[:])
	return n.Mod(n, identifierSpace).String()
}

// ForStream returns the identifier of a catalog stream. Only the name and
// start time take part, so the same event keeps its identifier across
// refreshes even when the upstream reassigns stream ids.
func ForStream(s catalog.Stream) string {
	return Identifier(s.Name, s.StartsAt.Key())
}
