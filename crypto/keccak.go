package crypto

import (
	"github.com/eth2030/eclipsemon/types"
	"golang.org/x/crypto/sha3"
)

// Keccak256 calculates the Keccak-256 hash of the given data.
func Keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// Keccak256Hash calculates Keccak-256 and returns it as a types.Hash32.
func Keccak256Hash(data ...[]byte) types.Hash32 {
	return types.BytesToHash32(Keccak256(data...))
}
